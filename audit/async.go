package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonwraymond/agentguard/observe"
)

// Errors returned by AsyncSink.
var (
	ErrNotStarted     = errors.New("audit: sink not started")
	ErrAlreadyStarted = errors.New("audit: sink already started")
	ErrStopped        = errors.New("audit: sink stopped")
	ErrBufferFull     = errors.New("audit: buffer full")
	ErrStopTimeout    = errors.New("audit: stop timed out")
)

// Defaults for AsyncConfig.
const (
	DefaultBufferSize    = 1024
	DefaultWorkers       = 2
	DefaultRecordTimeout = 5 * time.Second
)

// AsyncConfig configures an AsyncSink.
type AsyncConfig struct {
	BufferSize int
	Workers    int

	// RecordTimeout bounds each delivery to the wrapped sink.
	RecordTimeout time.Duration
}

func (c AsyncConfig) withDefaults() AsyncConfig {
	if c.BufferSize <= 0 {
		c.BufferSize = DefaultBufferSize
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.RecordTimeout <= 0 {
		c.RecordTimeout = DefaultRecordTimeout
	}
	return c
}

// AsyncStats is a point-in-time view of an AsyncSink.
type AsyncStats struct {
	BufferSize int
	Pending    int
	Workers    int
	Dropped    uint64
	Failed     uint64
	Started    bool
}

// AsyncSink delivers entries to another sink from a pool of workers.
//
// Record never blocks: when the buffer is full the entry is dropped and
// counted. Stop drains the buffer before returning.
type AsyncSink struct {
	next   Sink
	logger observe.Logger
	cfg    AsyncConfig

	mu      sync.RWMutex
	queue   chan Entry
	started bool
	stopped bool
	wg      sync.WaitGroup

	dropped atomic.Uint64
	failed  atomic.Uint64
}

// NewAsyncSink wraps next. Zero config fields take their defaults.
func NewAsyncSink(next Sink, logger observe.Logger, cfg AsyncConfig) *AsyncSink {
	if logger == nil {
		logger = observe.NopLogger()
	}
	cfg = cfg.withDefaults()
	return &AsyncSink{
		next:   next,
		logger: logger,
		cfg:    cfg,
		queue:  make(chan Entry, cfg.BufferSize),
	}
}

// Start launches the workers.
func (s *AsyncSink) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.stopped:
		return ErrStopped
	case s.started:
		return ErrAlreadyStarted
	}

	for i := 0; i < s.cfg.Workers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
	s.started = true
	s.logger.Info(context.Background(), "audit sink started",
		observe.F("workers", s.cfg.Workers),
		observe.F("buffer_size", s.cfg.BufferSize))
	return nil
}

// Record enqueues e without blocking.
func (s *AsyncSink) Record(ctx context.Context, e Entry) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case s.stopped:
		return ErrStopped
	case !s.started:
		return ErrNotStarted
	}

	select {
	case s.queue <- e:
		return nil
	default:
		s.dropped.Add(1)
		s.logger.Warn(ctx, "audit buffer full, dropping entry",
			observe.F("action", string(e.Action)),
			observe.F("user_id", e.UserID))
		return ErrBufferFull
	}
}

// Stop stops accepting entries and waits up to timeout for the workers to
// drain the buffer.
func (s *AsyncSink) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return ErrNotStarted
	}
	if s.stopped {
		s.mu.Unlock()
		return ErrStopped
	}
	s.stopped = true
	pending := len(s.queue)
	close(s.queue)
	s.mu.Unlock()

	s.logger.Info(context.Background(), "stopping audit sink", observe.F("pending", pending))

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("%w after %v", ErrStopTimeout, timeout)
	}
}

// Stats returns current counters.
func (s *AsyncSink) Stats() AsyncStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return AsyncStats{
		BufferSize: s.cfg.BufferSize,
		Pending:    len(s.queue),
		Workers:    s.cfg.Workers,
		Dropped:    s.dropped.Load(),
		Failed:     s.failed.Load(),
		Started:    s.started && !s.stopped,
	}
}

func (s *AsyncSink) worker(id int) {
	defer s.wg.Done()
	for e := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RecordTimeout)
		err := s.next.Record(ctx, e)
		cancel()
		if err != nil {
			s.failed.Add(1)
			s.logger.Error(context.Background(), "audit delivery failed",
				observe.F("worker_id", id),
				observe.F("action", string(e.Action)),
				observe.F("error", err))
		}
	}
}
