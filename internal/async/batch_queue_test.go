package async

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/paper-summarizer/constants"
	"github.com/joseph-ayodele/paper-summarizer/internal/common"
	"github.com/joseph-ayodele/paper-summarizer/internal/entity"
	"github.com/joseph-ayodele/paper-summarizer/internal/pipeline"
)

type fakeRunner struct {
	release chan struct{}
}

func (f *fakeRunner) RunBatch(_ context.Context, docs []entity.Document, opts pipeline.Options) (*pipeline.BatchResult, error) {
	if f.release != nil {
		<-f.release
	}
	res := &pipeline.BatchResult{BatchID: opts.BatchID}
	for i, d := range docs {
		if opts.OnProgress != nil {
			opts.OnProgress(pipeline.Progress{Done: i + 1, Total: len(docs)})
		}
		if d.Filename == "bad.pdf" {
			res.Outcomes = append(res.Outcomes, pipeline.Outcome{Filename: d.Filename, Status: constants.DocumentSkipped})
			continue
		}
		res.Outcomes = append(res.Outcomes, pipeline.Outcome{Filename: d.Filename, Status: constants.DocumentPersisted})
		res.Records = append(res.Records, entity.MetadataRecord{Title: d.Filename})
	}
	if len(res.Records) == 0 {
		res.Status = constants.BatchEmpty
		return res, common.ErrNoMetadataExtracted
	}
	res.Status = constants.BatchCompleted
	return res, nil
}

func waitForStatus(t *testing.T, q *BatchQueue, id uuid.UUID, want constants.BatchStatus) State {
	t.Helper()
	var st State
	require.Eventually(t, func() bool {
		var ok bool
		st, ok = q.Get(id)
		return ok && st.Status == want
	}, 2*time.Second, 5*time.Millisecond)
	return st
}

func TestBatchQueueRunsJobs(t *testing.T) {
	q := NewBatchQueue(&fakeRunner{}, nil, WithWorkers(2), WithQueueSize(4))
	defer q.Shutdown(context.Background())

	id, err := q.Enqueue(context.Background(), Job{Documents: []entity.Document{{Filename: "a.pdf"}, {Filename: "bad.pdf"}}})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)

	st := waitForStatus(t, q, id, constants.BatchCompleted)
	assert.Equal(t, 2, st.Documents)
	assert.Equal(t, 2, st.Done)
	assert.Equal(t, 1, st.Records)
	assert.Len(t, st.Outcomes, 2)
	assert.Empty(t, st.Error)
	assert.False(t, st.FinishedAt.IsZero())
}

func TestBatchQueueRecordsEmptyBatch(t *testing.T) {
	q := NewBatchQueue(&fakeRunner{}, nil)
	defer q.Shutdown(context.Background())

	id, err := q.Enqueue(context.Background(), Job{BatchID: uuid.New(), Documents: []entity.Document{{Filename: "bad.pdf"}}})
	require.NoError(t, err)

	st := waitForStatus(t, q, id, constants.BatchEmpty)
	assert.Contains(t, st.Error, "no metadata")
}

func TestBatchQueueQueuedStateAndShutdown(t *testing.T) {
	r := &fakeRunner{release: make(chan struct{})}
	q := NewBatchQueue(r, nil, WithWorkers(1), WithQueueSize(1))

	first, err := q.Enqueue(context.Background(), Job{Documents: []entity.Document{{Filename: "a.pdf"}}})
	require.NoError(t, err)
	waitForStatus(t, q, first, constants.BatchRunning)

	second, err := q.Enqueue(context.Background(), Job{Documents: []entity.Document{{Filename: "b.pdf"}}})
	require.NoError(t, err)
	st, ok := q.Get(second)
	require.True(t, ok)
	assert.Equal(t, constants.BatchQueued, st.Status)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = q.Enqueue(ctx, Job{Documents: []entity.Document{{Filename: "c.pdf"}}})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(r.release)
	q.Shutdown(context.Background())
	waitForStatus(t, q, second, constants.BatchCompleted)

	_, err = q.Enqueue(context.Background(), Job{})
	assert.ErrorIs(t, err, ErrQueueClosed)

	_, ok = q.Get(uuid.New())
	assert.False(t, ok)
}

func TestBatchQueuePrunesFinishedStates(t *testing.T) {
	r := &fakeRunner{release: make(chan struct{})}
	q := NewBatchQueue(r, nil, WithRetention(time.Hour))
	defer q.Shutdown(context.Background())

	close(r.release)
	done, err := q.Enqueue(context.Background(), Job{Documents: []entity.Document{{Filename: "a.pdf"}}})
	require.NoError(t, err)
	st := waitForStatus(t, q, done, constants.BatchCompleted)

	pending := uuid.New()
	q.mu.Lock()
	q.states[pending] = &State{BatchID: pending, Status: constants.BatchQueued, SubmittedAt: st.SubmittedAt.Add(-48 * time.Hour)}
	q.pruneLocked(st.FinishedAt.Add(30 * time.Minute))
	_, kept := q.states[done]
	q.pruneLocked(st.FinishedAt.Add(2 * time.Hour))
	_, stillThere := q.states[done]
	_, pendingKept := q.states[pending]
	q.mu.Unlock()

	assert.True(t, kept)
	assert.False(t, stillThere)
	assert.True(t, pendingKept)
}

func TestBatchQueueGetForgetsExpiredBatch(t *testing.T) {
	q := NewBatchQueue(&fakeRunner{}, nil, WithRetention(30*time.Millisecond))
	defer q.Shutdown(context.Background())

	id, err := q.Enqueue(context.Background(), Job{Documents: []entity.Document{{Filename: "a.pdf"}}})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		st, ok := q.Get(id)
		return ok && !st.FinishedAt.IsZero()
	}, 2*time.Second, time.Millisecond)
	require.Eventually(t, func() bool {
		_, ok := q.Get(id)
		return !ok
	}, 2*time.Second, 5*time.Millisecond)
}
