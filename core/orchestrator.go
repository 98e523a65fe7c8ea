package core

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Orchestrator struct {
	logger  *zap.Logger
	workers []Worker
	now     func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
	wg   sync.WaitGroup
}

func NewOrchestrator(logger *zap.Logger, workers []Worker) *Orchestrator {
	return &Orchestrator{logger: logger, workers: workers, now: time.Now}
}

// Start registers every worker with a fresh cron scheduler and starts it.
// Jobs run until Stop is called or ctx is cancelled.
func (o *Orchestrator) Start(ctx context.Context) (*cron.Cron, error) {
	cronLogger := cron.PrintfLogger(zap.NewStdLog(o.logger.Named("cron")))
	c := cron.New(cron.WithLogger(cronLogger), cron.WithChain(cron.Recover(cronLogger)))

	for _, worker := range o.workers {
		w := worker
		_, err := c.AddFunc(w.Schedule(), func() {
			o.Tick(ctx, w)
		})
		if err != nil {
			o.logger.Error("Error adding cron job", zap.String("worker", w.Name()), zap.Error(err))
			return nil, err
		}
		o.logger.Info("Worker scheduled", zap.String("worker", w.Name()), zap.String("schedule", w.Schedule()))
	}

	o.mu.Lock()
	o.cron = c
	o.mu.Unlock()

	c.Start()

	go func() {
		<-ctx.Done()
		o.Stop()
	}()

	return c, nil
}

// Tick runs w in the background when it reports ready at the current time.
func (o *Orchestrator) Tick(ctx context.Context, w Worker) bool {
	if ctx.Err() != nil || !w.Ready(o.now()) {
		return false
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		w.Execute(ctx)
	}()
	return true
}

// Stop halts the scheduler and blocks until running workers return.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	c := o.cron
	o.cron = nil
	o.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
	o.wg.Wait()
}
