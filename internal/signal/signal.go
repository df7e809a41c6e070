package signal

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Iron-Ham/handoff/internal/errors"
	"github.com/Iron-Ham/handoff/internal/logging"
	"github.com/Iron-Ham/handoff/internal/store"
)

const fileSuffix = "_signal.json"

// UnknownSender is recorded when no sender is configured and USER is unset.
const UnknownSender = "unknown"

// Signal is the body of a signal file. Data holds any JSON value the sender
// supplied.
type Signal struct {
	Timestamp string `json:"timestamp"`
	Sender    string `json:"sender"`
	Data      any    `json:"data"`
}

// DataString returns the string at key when Data is an object.
func (s Signal) DataString(key string) (string, bool) {
	p, ok := store.AsPayload(s.Data)
	if !ok {
		return "", false
	}
	return p.String(key)
}

func (s Signal) isZero() bool {
	return s.Timestamp == "" && s.Sender == "" && s.Data == nil
}

// Channel sends and receives signals in a store.
type Channel struct {
	store  *store.Store
	logger *logging.Logger
	sender string
}

// Option configures a Channel.
type Option func(*Channel)

// WithSender sets the sender recorded on outgoing signals. An empty value
// keeps the default.
func WithSender(sender string) Option {
	return func(c *Channel) {
		if sender != "" {
			c.sender = sender
		}
	}
}

// DefaultSender returns the USER environment variable, or UnknownSender.
func DefaultSender() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return UnknownSender
}

// NewChannel returns a Channel for s.
func NewChannel(s *store.Store, opts ...Option) *Channel {
	c := &Channel{
		store:  s,
		logger: s.Logger().WithComponent("signal"),
		sender: DefaultSender(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Sender returns the sender recorded on outgoing signals.
func (c *Channel) Sender() string { return c.sender }

// Path returns the signal file path for signalType.
func (c *Channel) Path(signalType string) string {
	return c.store.Path(signalType + fileSuffix)
}

// Send writes a signal of signalType carrying data, replacing any unread
// signal of the same type. data may be any JSON value; nil is sent as an
// empty object.
func (c *Channel) Send(signalType string, data any) error {
	if err := validateType(signalType); err != nil {
		return err
	}
	if data == nil {
		data = store.Payload{}
	}

	sig := Signal{
		Timestamp: c.store.Timestamp(),
		Sender:    c.sender,
		Data:      store.CloneValue(data),
	}
	path := c.Path(signalType)
	if c.store.Exists(path) {
		c.logger.Debug("overwriting unread signal", "signal_type", signalType)
	}
	if err := c.store.WriteJSON(path, sig); err != nil {
		c.logger.Failure("send signal failed", err, "signal_type", signalType)
		return err
	}

	c.logger.Debug("signal sent", "signal_type", signalType, "sender", c.sender)
	return nil
}

// Receive consumes the outstanding signal of signalType. It reports false
// when there is none, or when the file was corrupt; a corrupt file is
// deleted either way. The file is claimed by rename before it is read, so
// competing readers never both receive the same signal.
func (c *Channel) Receive(signalType string) (*Signal, bool) {
	if validateType(signalType) != nil {
		return nil, false
	}

	path := c.Path(signalType)
	claimed, err := c.store.Claim(path)
	if err != nil {
		if !errors.IsAbsent(err) {
			c.logger.Failure("claim signal failed", err, "signal_type", signalType)
		}
		return nil, false
	}
	defer c.remove(claimed)

	sig, err := c.read(claimed)
	if err != nil {
		c.logger.Failure("discarding unreadable signal", err, "signal_type", signalType)
		return nil, false
	}

	kind, _ := sig.DataString("type")
	c.logger.Debug("signal received", "signal_type", signalType, "sender", sig.Sender, "kind", kind)
	return sig, true
}

// Peek returns the outstanding signal of signalType without consuming it.
func (c *Channel) Peek(signalType string) (*Signal, bool) {
	if validateType(signalType) != nil {
		return nil, false
	}
	sig, err := c.read(c.Path(signalType))
	if err != nil {
		return nil, false
	}
	return sig, true
}

// Pending returns the types of all outstanding signals, sorted.
func (c *Channel) Pending() []string {
	paths, err := c.store.List(c.store.Dir(), "*"+fileSuffix)
	if err != nil {
		c.logger.Failure("list signals failed", err)
		return nil
	}

	types := make([]string, 0, len(paths))
	for _, p := range paths {
		if t := strings.TrimSuffix(filepath.Base(p), fileSuffix); t != "" {
			types = append(types, t)
		}
	}
	return types
}

func (c *Channel) read(path string) (*Signal, error) {
	var sig Signal
	if err := c.store.ReadJSON(path, &sig); err != nil {
		return nil, err
	}
	if sig.isZero() {
		return nil, errors.NewStoreError("empty signal", errors.ErrDocumentCorrupt).WithOp("decode").WithPath(path)
	}
	return &sig, nil
}

func (c *Channel) remove(path string) {
	if err := c.store.Remove(path); err != nil {
		c.logger.Failure("remove signal failed", err, "path", path)
	}
}

func validateType(signalType string) error {
	if signalType == "" || strings.ContainsAny(signalType, `/\`) || signalType == "." || signalType == ".." {
		return errors.NewValidationError("invalid signal type").WithField("signal_type").WithValue(signalType)
	}
	return nil
}
