package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/paper-summarizer/constants"
	"github.com/joseph-ayodele/paper-summarizer/internal/common"
	"github.com/joseph-ayodele/paper-summarizer/internal/pipeline"
)

type BatchQueue struct {
	runner    BatchRunner
	logger    *slog.Logger
	workers   int
	retention time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	sendMu sync.RWMutex
	mu     sync.Mutex
	closed bool
	states map[uuid.UUID]*State
}

type Option func(*BatchQueue)

func WithWorkers(n int) Option {
	return func(q *BatchQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

// WithRetention sets how long a finished batch stays visible to Get.
func WithRetention(d time.Duration) Option {
	return func(q *BatchQueue) {
		if d > 0 {
			q.retention = d
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *BatchQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func NewBatchQueue(runner BatchRunner, logger *slog.Logger, opts ...Option) *BatchQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &BatchQueue{
		runner:    runner,
		logger:    logger,
		workers:   1,
		retention: time.Hour,
		ch:        make(chan Job, 16),
		states:    make(map[uuid.UUID]*State),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *BatchQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("async.worker.started", "worker_id", workerID)
				for job := range q.ch {
					q.run(workerID, job)
				}
				q.logger.Info("async.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *BatchQueue) run(workerID int, job Job) {
	ctx := common.WithRequestID(context.Background(), job.RequestID)
	q.update(job.BatchID, func(s *State) {
		s.Status = constants.BatchRunning
		s.StartedAt = time.Now().UTC()
	})

	res, err := q.runner.RunBatch(ctx, job.Documents, pipeline.Options{
		Model:     job.Model,
		PageLimit: job.PageLimit,
		BatchID:   job.BatchID,
		OnProgress: func(p pipeline.Progress) {
			q.update(job.BatchID, func(s *State) { s.Done = p.Done })
		},
	})

	q.update(job.BatchID, func(s *State) {
		s.FinishedAt = time.Now().UTC()
		s.Status = constants.BatchFailed
		if res != nil {
			s.Status = res.Status
			s.Records = len(res.Records)
			s.Outcomes = res.Outcomes
		}
		if err != nil {
			s.Error = err.Error()
		}
	})

	if err != nil {
		q.logger.Error("async.batch.failed", "worker_id", workerID, "batch_id", job.BatchID, "kind", common.KindOf(err), "error", err)
		return
	}
	q.logger.Info("async.batch.done", "worker_id", workerID, "batch_id", job.BatchID, "records", len(res.Records))
}

// Enqueue registers the batch as QUEUED, assigning an ID when missing, and hands it
// to a worker. It blocks while the queue is full until ctx is done.
func (q *BatchQueue) Enqueue(ctx context.Context, job Job) (uuid.UUID, error) {
	// sendMu keeps Shutdown from closing the channel under a pending send.
	q.sendMu.RLock()
	defer q.sendMu.RUnlock()

	if job.BatchID == uuid.Nil {
		job.BatchID = uuid.New()
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now().UTC()
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		q.logger.Warn("async.enqueue.rejected", "batch_id", job.BatchID)
		return uuid.Nil, ErrQueueClosed
	}
	q.pruneLocked(time.Now())
	q.states[job.BatchID] = &State{
		BatchID:     job.BatchID,
		Status:      constants.BatchQueued,
		Documents:   len(job.Documents),
		SubmittedAt: job.SubmittedAt,
	}
	q.mu.Unlock()

	select {
	case q.ch <- job:
		q.logger.Info("async.enqueue.ok", "batch_id", job.BatchID, "documents", len(job.Documents))
		return job.BatchID, nil
	default:
	}

	q.logger.Warn("async.enqueue.backpressure", "batch_id", job.BatchID)
	select {
	case q.ch <- job:
		return job.BatchID, nil
	case <-ctx.Done():
		q.mu.Lock()
		delete(q.states, job.BatchID)
		q.mu.Unlock()
		return uuid.Nil, ctx.Err()
	}
}

// Get returns a copy of the batch state.
func (q *BatchQueue) Get(batchID uuid.UUID) (State, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pruneLocked(time.Now())
	s, ok := q.states[batchID]
	if !ok {
		return State{}, false
	}
	out := *s
	out.Outcomes = append([]pipeline.Outcome(nil), s.Outcomes...)
	return out, true
}

// pruneLocked drops finished batches older than the retention window. q.mu must be held.
func (q *BatchQueue) pruneLocked(now time.Time) {
	for id, s := range q.states {
		if !s.FinishedAt.IsZero() && now.Sub(s.FinishedAt) > q.retention {
			delete(q.states, id)
		}
	}
}

func (q *BatchQueue) update(batchID uuid.UUID, fn func(*State)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if s, ok := q.states[batchID]; ok {
		fn(s)
	}
}

// Shutdown stops accepting batches and waits for queued ones to finish or ctx to end.
func (q *BatchQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	q.sendMu.Lock()
	close(q.ch)
	q.sendMu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("async.shutdown.interrupted")
	case <-done:
		q.logger.Info("async.shutdown.drained")
	}
}
