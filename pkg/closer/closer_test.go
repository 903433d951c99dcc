package closer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)        {}
func (nopLogger) Infof(string, ...any)         {}
func (nopLogger) Warnf(string, ...any)         {}
func (nopLogger) Errorf(error, string, ...any) {}

func TestCloser_ClosesInReverseOrder(t *testing.T) {
	c := NewCloser(0, nopLogger{})

	var (
		mu    sync.Mutex
		order []string
	)
	record := func(name string) Func {
		return func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		}
	}

	c.Add("postgres", record("postgres"))
	c.Add("redis", record("redis"))
	c.AddSimple("http", func() { _ = record("http")(context.Background()) })

	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, []string{"http", "redis", "postgres"}, order)
}

func TestCloser_CollectsErrors(t *testing.T) {
	c := NewCloser(0, nopLogger{})
	c.Add("mongo", func(context.Context) error { return errors.New("disconnect failed") })
	c.Add("kafka", func(context.Context) error { return nil })

	err := c.Close(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mongo: disconnect failed")
}

func TestCloser_ForcedCloseAfterTimeout(t *testing.T) {
	c := NewCloser(100*time.Millisecond, nopLogger{})

	var forced bool
	c.Add("slow-first", func(ctx context.Context) error {
		forced = true
		return nil
	})
	c.Add("stuck", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Close(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shutdown interrupted")
	assert.Contains(t, err.Error(), "[FORCED] stuck")
	assert.True(t, forced)
}

func TestCloser_CloseOnce(t *testing.T) {
	c := NewCloser(0, nopLogger{})

	calls := 0
	c.Add("once", func(context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, c.Close(context.Background()))
	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestCloser_ReportsProgressOnTimeout(t *testing.T) {
	c := NewCloser(50*time.Millisecond, nopLogger{})

	c.Add("first", func(context.Context) error { return nil })
	c.Add("stuck", func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})
	c.Add("last", func(context.Context) error { return nil })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Close(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 1/3 resources")
}
