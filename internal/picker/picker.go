package picker

import (
	"context"
	"errors"
	"sync"

	"jordanella.com/hshj-locator/internal/cv"
	"jordanella.com/hshj-locator/internal/events"
	"jordanella.com/hshj-locator/internal/logging"
)

// ErrPickInProgress is returned when Pick is called while another pick runs
var ErrPickInProgress = errors.New("a target pick is already in progress")

// Options configures target picking
type Options struct {
	// Display is captured where interactive window picking is unavailable
	Display int
}

// Session owns the lifetime of one interactive target selection. On
// Windows it installs a low-level mouse hook for the duration of Pick;
// the hook state lives in the session, never in package globals.
type Session struct {
	opts   Options
	bus    events.Publisher
	logger *logging.Logger

	mu     sync.Mutex
	active bool
	cancel context.CancelFunc
}

// NewSession creates a picker session
func NewSession(opts Options, bus events.Publisher, logger *logging.Logger) *Session {
	return &Session{opts: opts, bus: bus, logger: logger}
}

// Pick blocks until the user selects a target or ctx is done
func (s *Session) Pick(ctx context.Context) (cv.Target, error) {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return cv.Target{}, ErrPickInProgress
	}
	ctx, cancel := context.WithCancel(ctx)
	s.active = true
	s.cancel = cancel
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		s.active = false
		s.cancel = nil
		s.mu.Unlock()
	}()

	target, err := s.pick(ctx)
	if err != nil {
		return cv.Target{}, err
	}

	s.logger.Infof("Selected %s", target)
	if s.bus != nil {
		s.bus.Publish(events.NewTargetPickedEvent(target.String()))
	}
	return target, nil
}

// Active reports whether a pick is waiting for the user
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Close aborts a pending pick and releases its hook
func (s *Session) Close() error {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	return nil
}
