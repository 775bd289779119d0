package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const queueSize = 64

type task struct {
	name     string
	periodic bool
	fn       func(ctx context.Context)
}

type job struct {
	name    string
	every   time.Duration
	delayed bool
	fn      func(ctx context.Context)
}

// Scheduler runs periodic jobs and one-shot callbacks on a single executor
// goroutine, so callbacks never run concurrently with each other.
type Scheduler struct {
	logger *slog.Logger
	tasks  chan task
	done   chan struct{}

	mu      sync.Mutex
	jobs    []job
	queued  map[string]bool
	timers  map[*time.Timer]struct{}
	running bool
	stopped bool
}

// New builds an idle scheduler.
func New(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		logger: logger.With("component", "scheduler"),
		tasks:  make(chan task, queueSize),
		done:   make(chan struct{}),
		queued: make(map[string]bool),
		timers: make(map[*time.Timer]struct{}),
	}
}

// Every registers fn to run every interval, starting immediately when Run
// starts. It must be called before Run.
func (s *Scheduler) Every(name string, interval time.Duration, fn func(ctx context.Context)) {
	s.register(job{name: name, every: interval, fn: fn})
}

// EveryDelayed is Every without the immediate first run: fn first fires one
// interval after Run starts.
func (s *Scheduler) EveryDelayed(name string, interval time.Duration, fn func(ctx context.Context)) {
	s.register(job{name: name, every: interval, delayed: true, fn: fn})
}

func (s *Scheduler) register(j job) {
	if j.every <= 0 {
		panic(fmt.Sprintf("scheduler: job %s needs a positive interval", j.name))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		panic("scheduler: Every called after Run")
	}
	s.jobs = append(s.jobs, j)
}

// After runs fn once after delay on the executor. Callbacks armed before Run
// wait for it; callbacks due after Run returns are dropped.
func (s *Scheduler) After(name string, delay time.Duration, fn func(ctx context.Context)) {
	if delay < 0 {
		delay = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		s.logger.Warn("deferred callback dropped, scheduler stopped", "task", name)
		return
	}
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, timer)
		s.mu.Unlock()
		s.enqueue(task{name: name, fn: fn})
	})
	s.timers[timer] = struct{}{}
}

// Run executes queued work until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already running")
	}
	s.running = true
	jobs := append([]job(nil), s.jobs...)
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, j := range jobs {
		if !j.delayed {
			s.tick(j)
		}
		wg.Add(1)
		go func(j job) {
			defer wg.Done()
			ticker := time.NewTicker(j.every)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					s.tick(j)
				}
			}
		}(j)
	}
	s.logger.Info("scheduler started", "jobs", len(jobs))

	defer func() {
		s.shutdown()
		wg.Wait()
		s.logger.Info("scheduler stopped")
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-s.tasks:
			if t.periodic {
				s.mu.Lock()
				delete(s.queued, t.name)
				s.mu.Unlock()
			}
			s.execute(ctx, t)
		}
	}
}

// tick queues a periodic job unless its previous tick is still waiting.
func (s *Scheduler) tick(j job) {
	s.mu.Lock()
	if s.queued[j.name] {
		s.mu.Unlock()
		s.logger.Debug("tick dropped, previous still queued", "job", j.name)
		return
	}
	s.queued[j.name] = true
	s.mu.Unlock()
	s.enqueue(task{name: j.name, periodic: true, fn: j.fn})
}

func (s *Scheduler) enqueue(t task) {
	select {
	case s.tasks <- t:
	case <-s.done:
	}
}

func (s *Scheduler) execute(ctx context.Context, t task) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduled task panicked", "task", t.name, "panic", fmt.Sprint(r))
		}
	}()
	t.fn(ctx)
}

func (s *Scheduler) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for timer := range s.timers {
		timer.Stop()
	}
	s.timers = map[*time.Timer]struct{}{}
	close(s.done)
}
