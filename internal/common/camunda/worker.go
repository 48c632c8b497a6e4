package camunda

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"crime-case-workers/internal/common/config"
	"crime-case-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"
)

// WorkerPool tracks the job workers opened against one Zeebe client so they
// can be closed together on shutdown.
type WorkerPool struct {
	client   zbc.Client
	recorder JobRecorder
	logger   *zap.Logger
	mu       sync.Mutex
	workers  map[string]worker.JobWorker
}

// NewWorkerPool opens workers on client. recorder may be nil.
func NewWorkerPool(client zbc.Client, recorder JobRecorder, logger *zap.Logger) *WorkerPool {
	return &WorkerPool{
		client:   client,
		recorder: recorder,
		logger:   logger,
		workers: make(map[string]worker.JobWorker),
	}
}

// Start opens a job worker for taskType unless it is disabled in wcfg.
func (p *WorkerPool) Start(taskType string, wcfg config.WorkerConfig, handler worker.JobHandler) {
	if !wcfg.Enabled {
		p.logger.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	jw := p.client.NewJobWorker().
		JobType(taskType).
		Handler(Instrument(taskType, p.recorder, handler)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	p.mu.Lock()
	p.workers[taskType] = jw
	p.mu.Unlock()

	p.logger.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
}

func (p *WorkerPool) TaskTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	types := make([]string, 0, len(p.workers))
	for t := range p.workers {
		types = append(types, t)
	}
	return types
}

// Close stops every worker and waits for in-flight jobs to drain.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for taskType, jw := range p.workers {
		jw.Close()
		jw.AwaitClose()
		p.logger.Info("worker stopped", zap.String("taskType", taskType))
	}
	p.workers = make(map[string]worker.JobWorker)
}

// JobRecorder receives one outcome per handled job. *observability.Observability
// satisfies it.
type JobRecorder interface {
	RecordJobProcessed(ctx context.Context, status string)
	RecordJobDuration(ctx context.Context, duration time.Duration, status string)
}

// Job outcomes, taken from the last command the handler built.
const (
	JobStatusCompleted   = "completed"
	JobStatusFailed      = "failed"
	JobStatusErrorThrown = "error_thrown"
	JobStatusAbandoned   = "abandoned"
)

// Instrument wraps a job handler with the active-job gauge, the duration
// histogram and, when recorder is set, the per-outcome job metrics.
func Instrument(taskType string, recorder JobRecorder, handler worker.JobHandler) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		active := metrics.WorkerJobsActive.WithLabelValues(taskType)
		active.Inc()
		start := time.Now()
		tracked := &outcomeClient{JobClient: client, status: JobStatusAbandoned}
		defer func() {
			elapsed := time.Since(start)
			active.Dec()
			metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
			if recorder != nil {
				ctx := context.Background()
				recorder.RecordJobProcessed(ctx, tracked.status)
				recorder.RecordJobDuration(ctx, elapsed, tracked.status)
			}
		}()

		handler(tracked, job)
	}
}

// outcomeClient notes which terminal command a handler asked for.
type outcomeClient struct {
	worker.JobClient
	status string
}

func (c *outcomeClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	c.status = JobStatusCompleted
	return c.JobClient.NewCompleteJobCommand()
}

func (c *outcomeClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	c.status = JobStatusFailed
	return c.JobClient.NewFailJobCommand()
}

func (c *outcomeClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	c.status = JobStatusErrorThrown
	return c.JobClient.NewThrowErrorCommand()
}

// RetryWithBackoff calls operation until it succeeds, doubling the delay after
// each failure.
func RetryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(operationName+" failed, retrying...",
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// ConnectWithRetry opens a client and verifies it with check, retrying with
// backoff. A client that opened but failed check is closed before the next
// attempt.
func ConnectWithRetry[T io.Closer](open func() (T, error), check func(T) error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) (T, error) {
	var conn T
	err := RetryWithBackoff(func() error {
		c, err := open()
		if err != nil {
			return err
		}
		if err := check(c); err != nil {
			if cerr := c.Close(); cerr != nil {
				log.Warn(operationName+": close after failed check", zap.Error(cerr))
			}
			return err
		}
		conn = c
		return nil
	}, maxRetries, initialDelay, log, operationName)
	return conn, err
}
