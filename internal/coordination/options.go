package coordination

import (
	"time"

	"github.com/Iron-Ham/handoff/internal/event"
	"github.com/Iron-Ham/handoff/internal/logging"
)

// brokerConfig holds optional configuration for a Broker.
type brokerConfig struct {
	dirName   string
	logger    *logging.Logger
	bus       *event.Bus
	sender    string
	locking   bool
	lockWait  time.Duration
	uniqueIDs bool
	clock     func() time.Time
}

// Option configures a Broker.
type Option func(*brokerConfig)

// WithDirName sets the coordination directory name under the project root.
// Empty means store.DefaultDirName.
func WithDirName(name string) Option {
	return func(c *brokerConfig) { c.dirName = name }
}

// WithLogger sets the logger shared by all broker components.
func WithLogger(l *logging.Logger) Option {
	return func(c *brokerConfig) { c.logger = l }
}

// WithBus sets the bus broker events are published on. If unset, the
// broker creates its own.
func WithBus(b *event.Bus) Option {
	return func(c *brokerConfig) { c.bus = b }
}

// WithSender sets the sender recorded on signals.
func WithSender(sender string) Option {
	return func(c *brokerConfig) { c.sender = sender }
}

// WithQueueLocking enables cross-process advisory locks around queue and
// plan updates.
func WithQueueLocking(enabled bool) Option {
	return func(c *brokerConfig) { c.locking = enabled }
}

// WithLockWait bounds how long an update waits for a file lock held by
// another session. It only matters with queue locking.
func WithLockWait(d time.Duration) Option {
	return func(c *brokerConfig) { c.lockWait = d }
}

// WithUniqueIDs controls whether document ids carry a random suffix. The
// default is true.
func WithUniqueIDs(enabled bool) Option {
	return func(c *brokerConfig) { c.uniqueIDs = enabled }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *brokerConfig) { c.clock = now }
}
