package signal

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Iron-Ham/handoff/internal/errors"
)

// DefaultPollInterval is how often Watch checks for a signal when no
// filesystem event has arrived.
const DefaultPollInterval = 2 * time.Second

// Handler is called with each signal consumed by Watch.
type Handler func(*Signal)

// WatchOption configures Watch.
type WatchOption func(*watchConfig)

type watchConfig struct {
	pollInterval time.Duration
}

// WithPollInterval sets the backstop poll interval for Watch.
func WithPollInterval(d time.Duration) WatchOption {
	return func(c *watchConfig) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// Watch consumes signals of signalType as they arrive and passes each to
// handler, until ctx is done. A signal already outstanding when Watch starts
// is delivered first. Every delivery goes through Receive, so a signal is
// still consumed at most once when other readers compete for it.
//
// Watch returns nil when ctx is canceled and an error only if the signal
// type is invalid or the coordination directory cannot be created.
func (c *Channel) Watch(ctx context.Context, signalType string, handler Handler, opts ...WatchOption) error {
	if err := validateType(signalType); err != nil {
		return err
	}
	cfg := watchConfig{pollInterval: DefaultPollInterval}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := os.MkdirAll(c.store.Dir(), 0o755); err != nil {
		return errors.NewStoreError("create directory", err).WithOp("mkdir").WithPath(c.store.Dir())
	}

	var events <-chan fsnotify.Event
	var watchErrs <-chan error
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		c.logger.Warn("fsnotify unavailable, polling only", "error", err)
	} else {
		defer func() { _ = watcher.Close() }()
		if err := watcher.Add(c.store.Dir()); err != nil {
			c.logger.Warn("watch directory failed, polling only", "dir", c.store.Dir(), "error", err)
		} else {
			events = watcher.Events
			watchErrs = watcher.Errors
		}
	}

	target := filepath.Base(c.Path(signalType))
	deliver := func() {
		if ctx.Err() != nil {
			return
		}
		if sig, ok := c.Receive(signalType); ok {
			handler(sig)
		}
	}

	ticker := time.NewTicker(cfg.pollInterval)
	defer ticker.Stop()

	deliver()
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Base(ev.Name) != target || !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			deliver()

		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			c.logger.Debug("fsnotify error", "error", err)

		case <-ticker.C:
			deliver()
		}
	}
}

// Wait blocks until one signal of signalType is consumed or ctx is done.
// It returns errors.ErrSignalAbsent when ctx ends first.
func (c *Channel) Wait(ctx context.Context, signalType string, opts ...WatchOption) (*Signal, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var got *Signal
	err := c.Watch(ctx, signalType, func(sig *Signal) {
		if got == nil {
			got = sig
			cancel()
		}
	}, opts...)
	if err != nil {
		return nil, err
	}
	if got == nil {
		return nil, errors.ErrSignalAbsent
	}
	return got, nil
}
