// Package closer закрывает ресурсы приложения в порядке, обратном открытию.
package closer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/onlinestore/pkg/logger"
)

const defaultForcedTimeout = 2 * time.Second

// Func - закрытие одного ресурса.
type Func func(ctx context.Context) error

type resource struct {
	name  string
	close Func
}

// Closer закрывает зарегистрированные ресурсы один раз, LIFO.
// Если ctx в Close истекает, оставшиеся ресурсы закрываются параллельно
// с собственным таймаутом forcedTimeout.
type Closer struct {
	mu            sync.Mutex
	once          sync.Once
	resources     []resource
	forcedTimeout time.Duration
	logger        logger.Logger
}

func NewCloser(forcedTimeout time.Duration, logger logger.Logger) *Closer {
	if forcedTimeout <= 0 {
		forcedTimeout = defaultForcedTimeout
	}

	return &Closer{
		forcedTimeout: forcedTimeout,
		logger:        logger,
	}
}

// Add регистрирует ресурс. name попадает в лог и в текст ошибки.
func (c *Closer) Add(name string, f Func) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resources = append(c.resources, resource{name: name, close: f})
}

// AddSimple регистрирует закрытие без контекста и без ошибки (пулы соединений и т.п.).
func (c *Closer) AddSimple(name string, f func()) {
	c.Add(name, func(context.Context) error {
		f()
		return nil
	})
}

// Close закрывает ресурсы. Повторные вызовы ничего не делают и возвращают nil.
func (c *Closer) Close(ctx context.Context) error {
	var err error
	c.once.Do(func() {
		c.mu.Lock()
		resources := c.resources
		c.mu.Unlock()

		left, failures := c.closeInOrder(ctx, resources)
		if left == 0 {
			if len(failures) > 0 {
				err = fmt.Errorf("shutdown finished with error(s):\n%s", strings.Join(failures, "\n"))
			}
			return
		}

		c.logger.Warnf("shutdown deadline reached, forcing %d resource(s)", left)
		failures = append(failures, c.forceClose(resources[:left])...)

		err = fmt.Errorf("shutdown interrupted after %d/%d resources:\n%s",
			len(resources)-left, len(resources), strings.Join(failures, "\n"))
	})

	return err
}

// closeInOrder возвращает число незакрытых ресурсов (с начала списка) и ошибки закрытия.
func (c *Closer) closeInOrder(ctx context.Context, resources []resource) (int, []string) {
	var failures []string
	for i := len(resources) - 1; i >= 0; i-- {
		res := resources[i]
		start := time.Now()
		done := make(chan error, 1)
		go func() { done <- res.close(ctx) }()

		select {
		case err := <-done:
			if err != nil {
				c.logger.Warnf("close %s: %v", res.name, err)
				failures = append(failures, fmt.Sprintf("[!] %s: %v", res.name, err))
				continue
			}
			c.logger.Debugf("closed %s in %s", res.name, time.Since(start))
		case <-ctx.Done():
			return i + 1, failures
		}
	}

	return 0, failures
}

func (c *Closer) forceClose(resources []resource) []string {
	ctx, cancel := context.WithTimeout(context.Background(), c.forcedTimeout)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures []string
	)
	for _, res := range resources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := res.close(ctx); err != nil {
				mu.Lock()
				failures = append(failures, fmt.Sprintf("[FORCED] %s: %v", res.name, err))
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return failures
}
