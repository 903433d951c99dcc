package kafka

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/onlinestore/internal/cfg"
	"github.com/DRSN-tech/onlinestore/internal/repository/pgdb"
	"github.com/DRSN-tech/onlinestore/internal/usecase"
	"github.com/DRSN-tech/onlinestore/pkg/e"
	"github.com/DRSN-tech/onlinestore/pkg/logger"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	notificationWait = 30 * time.Second
	reconnectDelay   = 2 * time.Second
)

// notificationConn соединение, подписанное на канал outbox.
type notificationConn interface {
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

// OutboxWorker переносит события товаров из outbox_events в Kafka.
// Будится уведомлением NOTIFY, а между уведомлениями опрашивает таблицу раз в PollInterval,
// чтобы подобрать зависшие в processing события.
type OutboxWorker struct {
	repo      usecase.OutboxRepository
	logger    logger.Logger
	producer  usecase.MessageProducer
	cfg       *cfg.OutboxCfg
	dbConnStr string
	dial      func(ctx context.Context) (notificationConn, error)
	wake      chan struct{}
	stop      chan struct{}
	// прерывает ожидание уведомления, не дожидаясь notificationWait
	cancelListen context.CancelFunc
	wg           sync.WaitGroup
}

func NewOutboxWorker(
	repo usecase.OutboxRepository,
	logger logger.Logger,
	producer usecase.MessageProducer,
	cfg *cfg.OutboxCfg,
	dbConnStr string,
) *OutboxWorker {
	w := &OutboxWorker{
		repo:      repo,
		logger:    logger,
		producer:  producer,
		cfg:       cfg,
		dbConnStr: dbConnStr,
		wake:      make(chan struct{}, 1),
		stop:      make(chan struct{}),
	}
	w.dial = w.dialListen
	return w
}

func (w *OutboxWorker) Start(ctx context.Context) {
	listenCtx, cancel := context.WithCancel(ctx)
	w.cancelListen = cancel

	w.wg.Add(2)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()

	go func() {
		defer w.wg.Done()
		w.listenOutboxNotifications(listenCtx)
	}()
}

// Stop дожидается текущей пачки, а ожидание NOTIFY прерывает сразу.
func (w *OutboxWorker) Stop() {
	close(w.stop)
	if w.cancelListen != nil {
		w.cancelListen()
	}
	w.wg.Wait()
}

func (w *OutboxWorker) run(ctx context.Context) {
	// Обрабатываем "остатки" при старте
	w.logger.Infof("draining pending outbox events on startup")
	w.drain(ctx)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Infof("outbox worker stopped by context cancellation")
			return
		case <-w.stop:
			w.logger.Infof("outbox worker stopped")
			return
		case <-ticker.C:
			w.drain(ctx)
		case <-w.wake:
			w.drain(ctx)
		}
	}
}

// notify будит run, не блокируясь, если пробуждение уже запланировано.
func (w *OutboxWorker) notify() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *OutboxWorker) drain(ctx context.Context) {
	for {
		hasMore, err := w.processBatch(ctx)
		if err != nil {
			w.logger.Warnf("outbox batch failed: %v", err)
			return
		}
		if !hasMore {
			return
		}
	}
}

func (w *OutboxWorker) dialListen(ctx context.Context) (notificationConn, error) {
	c, err := pgx.Connect(ctx, w.dbConnStr)
	if err != nil {
		return nil, e.Wrap("failed to connect for LISTEN", err)
	}

	if _, err := c.Exec(ctx, "LISTEN "+pgdb.OutboxChannel); err != nil {
		_ = c.Close(ctx)
		return nil, e.Wrap("failed to LISTEN", err)
	}
	return c, nil
}

func (w *OutboxWorker) listenOutboxNotifications(ctx context.Context) {
	var conn notificationConn

	connect := func() error {
		c, err := w.dial(ctx)
		if err != nil {
			return err
		}

		conn = c
		w.logger.Infof("subscribed to '%s' channel", pgdb.OutboxChannel)
		return nil
	}

	if err := connect(); err != nil {
		w.logger.Warnf("initial LISTEN connect failed, falling back to polling: %v", err)
		return
	}
	defer func() {
		if conn != nil {
			_ = conn.Close(context.Background())
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		default:
		}

		if conn == nil {
			if err := connect(); err != nil {
				w.logger.Warnf("reconnect failed: %v", err)
				if !w.sleep(ctx, reconnectDelay) {
					return
				}
			}
			continue
		}

		waitCtx, cancel := context.WithTimeout(ctx, notificationWait)
		notif, err := conn.WaitForNotification(waitCtx)
		cancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				continue
			}
			w.logger.Warnf("LISTEN connection lost: %v, reconnecting", err)
			_ = conn.Close(context.Background())
			conn = nil
			if !w.sleep(ctx, reconnectDelay) {
				return
			}
			continue
		}

		if notif != nil && notif.Channel == pgdb.OutboxChannel {
			w.logger.Debugf("received outbox notification")
			w.notify()
		}
	}
}

func (w *OutboxWorker) sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-w.stop:
		return false
	case <-t.C:
		return true
	}
}

// processBatch забирает пачку событий и отправляет их по одному.
// Неотправленные события возвращаются в pending. hasMore означает, что пачка была полной.
func (w *OutboxWorker) processBatch(ctx context.Context) (bool, error) {
	events, err := w.repo.GetAndMarkAsProcessing(ctx, w.cfg.BatchSize, w.cfg.StaleAfter)
	if err != nil {
		return false, err
	}

	if len(events) == 0 {
		return false, nil
	}

	failed := 0
	for _, event := range events {
		if err := w.processEvent(ctx, event); err != nil {
			failed++
			if isRetryableError(err) {
				w.logger.Warnf("outbox event %s (attempt %d): %v", event.EventID, event.Attempts, err)
			} else {
				w.logger.Errorf(err, "outbox event %s (attempt %d)", event.EventID, event.Attempts)
			}

			if err := w.repo.ReturnToPending(ctx, event.ID); err != nil {
				w.logger.Warnf("return to pending failed: %v", err)
			}
			continue
		}

		if err := w.repo.MarkAsProcessed(ctx, event.ID); err != nil {
			w.logger.Warnf("mark processed failed: %v", err)
		}
	}

	// Если вся пачка упала, брокер недоступен: ждём следующего тика.
	if failed == len(events) {
		return false, nil
	}

	return len(events) == w.cfg.BatchSize, nil
}

func (w *OutboxWorker) processEvent(ctx context.Context, event *usecase.OutboxEvent) error {
	return w.producer.WriteRawMessage(ctx, usecase.NewWriteRawMessageReq(event.ProductID, event.Payload))
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	retryablePhrases := []string{
		"connection refused",
		"i/o timeout",
		"network is unreachable",
		"broker not available",
		"connection reset",
		"broken pipe",
		"no such host",
	}
	for _, phrase := range retryablePhrases {
		if strings.Contains(errStr, phrase) {
			return true
		}
	}
	return false
}
