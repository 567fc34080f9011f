package scheduler

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// TaskFn is the function signature for scheduled tasks.
type TaskFn func()

// Scheduler runs named periodic sweeps and one-shot delayed tasks.
// Challenge and pending-creature timeouts register delays here and
// cancel them by name when the state resolves first.
type Scheduler struct {
	mu      sync.Mutex
	tickers map[string]*tickerEntry
	delays  map[string]*time.Timer
	logger  *zap.Logger
	stopCh  chan struct{}
}

type tickerEntry struct {
	ticker *time.Ticker
	stopCh chan struct{}
}

// New creates an empty Scheduler.
func New(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		tickers: make(map[string]*tickerEntry),
		delays:  make(map[string]*time.Timer),
		stopCh:  make(chan struct{}),
		logger:  logger,
	}
}

func (s *Scheduler) safeRun(name string, fn TaskFn) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduled task panicked",
				zap.String("task", name),
				zap.Any("recover", r))
		}
	}()
	fn()
}

// AddTicker registers fn to run every interval. A task with the same
// name is replaced.
func (s *Scheduler) AddTicker(name string, interval time.Duration, fn TaskFn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.tickers[name]; ok {
		close(old.stopCh)
		delete(s.tickers, name)
	}

	entry := &tickerEntry{
		ticker: time.NewTicker(interval),
		stopCh: make(chan struct{}),
	}
	s.tickers[name] = entry

	go func() {
		for {
			select {
			case <-entry.ticker.C:
				s.safeRun(name, fn)
			case <-entry.stopCh:
				entry.ticker.Stop()
				return
			case <-s.stopCh:
				entry.ticker.Stop()
				return
			}
		}
	}()
	s.logger.Info("sweep registered",
		zap.String("task", name),
		zap.Duration("interval", interval))
}

// AddDelay runs fn once after delay. A pending delay with the same name
// is cancelled and replaced.
func (s *Scheduler) AddDelay(name string, delay time.Duration, fn TaskFn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.delays[name]; ok {
		old.Stop()
	}
	s.delays[name] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.delays, name)
		s.mu.Unlock()
		s.safeRun(name, fn)
	})
}

// Remove cancels the ticker or delay registered under name, if any.
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.tickers[name]; ok {
		close(entry.stopCh)
		delete(s.tickers, name)
	}
	if t, ok := s.delays[name]; ok {
		t.Stop()
		delete(s.delays, name)
	}
}

// Stop halts every ticker goroutine and cancels pending delays.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	for name, t := range s.delays {
		t.Stop()
		delete(s.delays, name)
	}
	s.mu.Unlock()

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
}

// ListTickers returns the names of registered ticker tasks.
func (s *Scheduler) ListTickers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.tickers))
	for name := range s.tickers {
		names = append(names, name)
	}
	return names
}
