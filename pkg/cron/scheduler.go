package cron

import (
	"context"
	"fmt"
	"sync"
	"time"

	scheduler "github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// RunFunc is one scheduled forecast run.
type RunFunc func(ctx context.Context) error

// Status describes the last and next scheduled runs.
type Status struct {
	Schedule  string    `json:"schedule"`
	Running   bool      `json:"running"`
	NextRun   time.Time `json:"nextRun"`
	LastRun   time.Time `json:"lastRun,omitempty"`
	LastError string    `json:"lastError,omitempty"`
}

// Scheduler runs a RunFunc on a standard cron schedule. A run that is still
// going when the next one is due causes that one to be skipped.
type Scheduler struct {
	logger   log.FieldLogger
	schedule string
	cron     *scheduler.Cron
	entry    scheduler.EntryID

	mu      sync.Mutex
	ctx     context.Context
	running bool
	lastRun time.Time
	lastErr error
	run     RunFunc
}

func New(logger log.FieldLogger, schedule string, run RunFunc) (*Scheduler, error) {
	logger = logger.WithField("component", "scheduler")
	cronLogger := cronLogger{logger}
	s := &Scheduler{
		logger:   logger,
		schedule: schedule,
		run:      run,
		ctx:      context.Background(),
		cron: scheduler.New(
			scheduler.WithLogger(cronLogger),
			scheduler.WithChain(scheduler.Recover(cronLogger), scheduler.SkipIfStillRunning(cronLogger)),
		),
	}

	entry, err := s.cron.AddJob(schedule, runJob{s})
	if err != nil {
		return nil, fmt.Errorf("couldn't add forecast run to scheduler: %w", err)
	}
	s.entry = entry
	return s, nil
}

// Start begins scheduling in the background. Runs receive ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx = ctx
	s.running = true
	s.cron.Start()
	s.logger.Infof("scheduler started, next run at %s", s.cron.Entry(s.entry).Next)
}

// Stop stops scheduling and waits for a run in progress to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := Status{
		Schedule: s.schedule,
		Running:  s.running,
		NextRun:  s.cron.Entry(s.entry).Next,
		LastRun:  s.lastRun,
	}
	if s.lastErr != nil {
		status.LastError = s.lastErr.Error()
	}
	return status
}

// runJob must implement the Job interface.
var _ scheduler.Job = runJob{}

type runJob struct {
	s *Scheduler
}

func (j runJob) Run() {
	s := j.s
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	s.logger.Info("starting scheduled forecast run")
	started := time.Now()
	err := s.run(ctx)

	s.mu.Lock()
	s.lastRun = started
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		s.logger.WithError(err).Error("scheduled forecast run failed")
		return
	}
	s.logger.Infof("scheduled forecast run finished in %s", time.Since(started))
}

// cronLogger adapts a FieldLogger to the scheduler's logging interface.
type cronLogger struct {
	log.FieldLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.FieldLogger.WithFields(fields(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.FieldLogger.WithFields(fields(keysAndValues)).WithError(err).Error(msg)
}

func fields(keysAndValues []interface{}) log.Fields {
	f := log.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return f
}
