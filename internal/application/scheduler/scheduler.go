package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dmarrick/novaforge/internal/application/common"
	"github.com/dmarrick/novaforge/internal/domain/job"
	"github.com/dmarrick/novaforge/internal/domain/shared"
)

// SweeperInterval is the default interval at which the background sweeper
// checks for overdue jobs.
// With event-based deadline handling the sweeper is a safety net for timers
// lost to failed saves or clock drift, not the primary mechanism.
const SweeperInterval = 30 * time.Second

// completionTimeout bounds the store work done for a single completion
const completionTimeout = 10 * time.Second

// Scheduler owns the deadline timers for in-flight jobs. Deadlines are
// persisted with the job record; timers exist only as an optimization, so a
// restart recovers every in-flight job from the store (Recover) before the
// sweeper takes over as safety net. Zero CPU usage between events.
type Scheduler struct {
	jobs      job.Repository
	completer *Completer
	clock     shared.Clock
	logger    common.EngineLogger
	metrics   MetricsRecorder

	// recoveryLimiter paces the completion burst after a restart so a large
	// backlog does not hammer the store
	recoveryLimiter *rate.Limiter
	sweepInterval   time.Duration

	mu       sync.Mutex
	timers   map[string]*time.Timer
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewScheduler creates a scheduler. recoveryRate is the maximum number of
// overdue completions applied per second during startup recovery; a
// non-positive sweepInterval falls back to SweeperInterval.
func NewScheduler(
	jobs job.Repository,
	completer *Completer,
	clock shared.Clock,
	logger common.EngineLogger,
	metrics MetricsRecorder,
	recoveryRate float64,
	sweepInterval time.Duration,
) *Scheduler {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	if recoveryRate <= 0 {
		recoveryRate = 50
	}
	if sweepInterval <= 0 {
		sweepInterval = SweeperInterval
	}
	return &Scheduler{
		jobs:            jobs,
		completer:       completer,
		clock:           clock,
		logger:          logger,
		metrics:         metrics,
		recoveryLimiter: rate.NewLimiter(rate.Limit(recoveryRate), 1),
		sweepInterval:   sweepInterval,
		timers:          make(map[string]*time.Timer),
		stopCh:          make(chan struct{}),
	}
}

// Start runs recovery and then launches the background sweeper. A recovery
// failure is fatal: the engine must not come up having silently skipped
// in-flight jobs.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.Recover(ctx); err != nil {
		return fmt.Errorf("scheduler recovery failed: %w", err)
	}
	go s.runSweeper(ctx)
	return nil
}

// Stop cancels the sweeper and all registered timers. Safe to call more than
// once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}

// Schedule registers a deadline timer for an active job. An existing timer
// for the same job is replaced.
func (s *Scheduler) Schedule(jobID string, deadline time.Time) {
	delay := s.clock.Until(deadline)
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.timers[jobID]; ok {
		existing.Stop()
	}
	s.timers[jobID] = time.AfterFunc(delay, func() {
		s.handleDeadline(jobID)
	})
}

// Unschedule drops the timer for a job, if any. Called after cancellation;
// an already-fired timer is harmless because completion is idempotent.
func (s *Scheduler) Unschedule(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timer, ok := s.timers[jobID]; ok {
		timer.Stop()
		delete(s.timers, jobID)
	}
}

// Recover loads all previously active jobs: those whose deadline already
// passed are completed immediately in deadline order, the rest get their
// timers re-registered.
func (s *Scheduler) Recover(ctx context.Context) error {
	active, err := s.jobs.FindActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to load active jobs: %w", err)
	}

	now := s.clock.Now()
	recovered := 0
	for _, j := range active {
		deadline := j.Deadline()
		if deadline == nil {
			// Active without a deadline should be impossible; complete it
			// rather than leave it stuck
			s.log("WARN", "active job without deadline, completing now", j.ID())
		}

		if deadline == nil || !deadline.After(now) {
			if err := s.recoveryLimiter.Wait(ctx); err != nil {
				return fmt.Errorf("recovery interrupted: %w", err)
			}
			if err := s.completer.Complete(ctx, j.ID()); err != nil {
				return fmt.Errorf("failed to recover job %s: %w", j.ID(), err)
			}
			recovered++
			continue
		}

		s.Schedule(j.ID(), *deadline)
	}

	// A crash between a terminal transition and its claim release leaves
	// the slot held forever; recovery is the only place left to free it
	orphaned, err := s.completer.ReleaseOrphanedClaims(ctx)
	if err != nil {
		return fmt.Errorf("failed to release orphaned claims: %w", err)
	}

	s.metrics.RecordJobsRecovered(recovered)
	if recovered > 0 || len(active) > 0 || orphaned > 0 {
		s.log("INFO", fmt.Sprintf("recovery complete: %d overdue completed, %d timers re-registered, %d orphaned claims released",
			recovered, len(active)-recovered, orphaned), "")
	}
	return nil
}

func (s *Scheduler) handleDeadline(jobID string) {
	ctx, cancel := context.WithTimeout(context.Background(), completionTimeout)
	defer cancel()
	if s.logger != nil {
		ctx = common.WithLogger(ctx, s.logger)
	}

	if err := s.completer.Complete(ctx, jobID); err != nil {
		// Leave the job active; the sweeper retries overdue jobs
		s.log("WARN", fmt.Sprintf("deadline completion failed: %v", err), jobID)
	}

	s.mu.Lock()
	delete(s.timers, jobID)
	s.mu.Unlock()
}

// runSweeper periodically completes overdue active jobs that slipped through
// the timer path
func (s *Scheduler) runSweeper(ctx context.Context) {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), completionTimeout*3)
	defer cancel()
	if s.logger != nil {
		ctx = common.WithLogger(ctx, s.logger)
	}

	overdue, err := s.jobs.FindActiveDueBefore(ctx, s.clock.Now())
	if err != nil {
		s.log("WARN", fmt.Sprintf("sweep query failed: %v", err), "")
		return
	}

	for _, j := range overdue {
		if err := s.completer.Complete(ctx, j.ID()); err != nil {
			s.log("WARN", fmt.Sprintf("sweep completion failed: %v", err), j.ID())
		}
	}
}

func (s *Scheduler) log(level, message, jobID string) {
	if s.logger == nil {
		return
	}
	metadata := map[string]interface{}{}
	if jobID != "" {
		metadata["job_id"] = jobID
	}
	s.logger.Log(level, message, metadata)
}
