package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DRSN-tech/onlinestore/internal/cfg"
	"github.com/DRSN-tech/onlinestore/internal/usecase"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)        {}
func (nopLogger) Infof(string, ...any)         {}
func (nopLogger) Warnf(string, ...any)         {}
func (nopLogger) Errorf(error, string, ...any) {}

type fakeOutboxRepo struct {
	mu         sync.Mutex
	pending    []*usecase.OutboxEvent
	processed  []int64
	returned   []int64
	staleAfter time.Duration
	fetchErr   error
}

func (r *fakeOutboxRepo) Create(_ context.Context, event *usecase.OutboxEvent) (*usecase.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, event)
	return event, nil
}

func (r *fakeOutboxRepo) GetAndMarkAsProcessing(_ context.Context, limit int, staleAfter time.Duration) ([]*usecase.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fetchErr != nil {
		return nil, r.fetchErr
	}
	r.staleAfter = staleAfter

	n := min(limit, len(r.pending))
	batch := r.pending[:n]
	r.pending = r.pending[n:]
	for _, ev := range batch {
		ev.Status = usecase.Processing
		ev.Attempts++
	}
	return batch, nil
}

func (r *fakeOutboxRepo) MarkAsProcessed(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processed = append(r.processed, id)
	return nil
}

func (r *fakeOutboxRepo) ReturnToPending(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.returned = append(r.returned, id)
	return nil
}

func (r *fakeOutboxRepo) processedIDs() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.processed...)
}

type fakeProducer struct {
	mu     sync.Mutex
	sent   []*usecase.WriteRawMessageReq
	failed map[int64]error
}

func (p *fakeProducer) WriteRawMessage(_ context.Context, req *usecase.WriteRawMessageReq) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.failed[req.ProductID]; err != nil {
		return err
	}
	p.sent = append(p.sent, req)
	return nil
}

func events(n int) []*usecase.OutboxEvent {
	out := make([]*usecase.OutboxEvent, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, &usecase.OutboxEvent{
			ID:        int64(i),
			EventID:   "ev",
			ProductID: int64(100 + i),
			Payload:   []byte(`{}`),
			Status:    usecase.Pending,
		})
	}
	return out
}

func newWorker(repo *fakeOutboxRepo, producer *fakeProducer, batch int) *OutboxWorker {
	return NewOutboxWorker(repo, nopLogger{}, producer, &cfg.OutboxCfg{
		BatchSize:    batch,
		PollInterval: 10 * time.Millisecond,
		StaleAfter:   time.Minute,
	}, "")
}

func TestProcessBatch_SendsAndMarks(t *testing.T) {
	repo := &fakeOutboxRepo{pending: events(3)}
	producer := &fakeProducer{}
	w := newWorker(repo, producer, 2)

	hasMore, err := w.processBatch(context.Background())
	require.NoError(t, err)
	assert.True(t, hasMore)
	assert.Equal(t, time.Minute, repo.staleAfter)

	hasMore, err = w.processBatch(context.Background())
	require.NoError(t, err)
	assert.False(t, hasMore)

	assert.Equal(t, []int64{1, 2, 3}, repo.processed)
	require.Len(t, producer.sent, 3)
	assert.Equal(t, int64(101), producer.sent[0].ProductID)
}

func TestProcessBatch_FailedEventReturnsToPending(t *testing.T) {
	repo := &fakeOutboxRepo{pending: events(2)}
	producer := &fakeProducer{failed: map[int64]error{102: errors.New("dial tcp: connection refused")}}
	w := newWorker(repo, producer, 10)

	hasMore, err := w.processBatch(context.Background())
	require.NoError(t, err)
	assert.False(t, hasMore)
	assert.Equal(t, []int64{1}, repo.processed)
	assert.Equal(t, []int64{2}, repo.returned)
}

func TestProcessBatch_WholeBatchFailedStops(t *testing.T) {
	repo := &fakeOutboxRepo{pending: events(2)}
	producer := &fakeProducer{failed: map[int64]error{
		101: errors.New("broker not available"),
		102: errors.New("broker not available"),
	}}
	w := newWorker(repo, producer, 2)

	hasMore, err := w.processBatch(context.Background())
	require.NoError(t, err)
	assert.False(t, hasMore)
	assert.Len(t, repo.returned, 2)
}

func TestProcessBatch_FetchError(t *testing.T) {
	repo := &fakeOutboxRepo{fetchErr: errors.New("db down")}
	w := newWorker(repo, &fakeProducer{}, 5)

	_, err := w.processBatch(context.Background())
	assert.Error(t, err)
}

func TestOutboxWorker_PollsWithoutListen(t *testing.T) {
	repo := &fakeOutboxRepo{}
	producer := &fakeProducer{}
	w := newWorker(repo, producer, 10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// Postgres недоступен: LISTEN не подключится, события подбираются опросом.
	w.dbConnStr = "host=127.0.0.1 port=1 connect_timeout=1"
	w.Start(ctx)

	_, _ = repo.Create(ctx, events(1)[0])

	assert.Eventually(t, func() bool {
		return len(repo.processedIDs()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	w.Stop()
}

// blockingConn ждёт уведомления, пока не отменят контекст.
type blockingConn struct {
	waiting chan struct{}
	once    sync.Once
	closed  chan struct{}
}

func (c *blockingConn) WaitForNotification(ctx context.Context) (*pgconn.Notification, error) {
	c.once.Do(func() { close(c.waiting) })
	<-ctx.Done()
	return nil, ctx.Err()
}

func (c *blockingConn) Close(context.Context) error {
	close(c.closed)
	return nil
}

func TestOutboxWorker_StopInterruptsNotificationWait(t *testing.T) {
	w := newWorker(&fakeOutboxRepo{}, &fakeProducer{}, 10)
	conn := &blockingConn{waiting: make(chan struct{}), closed: make(chan struct{})}
	w.dial = func(context.Context) (notificationConn, error) { return conn, nil }

	// Родительский контекст не отменяется, как bgCtx приложения до конца остановки.
	w.Start(context.Background())

	select {
	case <-conn.waiting:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not start waiting for notifications")
	}

	stopped := make(chan struct{})
	go func() {
		w.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on notification wait")
	}

	select {
	case <-conn.closed:
	default:
		t.Fatal("LISTEN connection was not closed")
	}
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, isRetryableError(errors.New("read: Connection Reset by peer")))
	assert.False(t, isRetryableError(errors.New("message too large")))
	assert.False(t, isRetryableError(nil))
}
