// Package jitter считает задержки между повторами со случайной добавкой,
// чтобы повторяющие клиенты не просыпались одновременно.
package jitter

import (
	"context"
	"math/rand/v2"
	"time"
)

// DefaultJitter - добавка до 50% от задержки.
const DefaultJitter = 0.5

// Duration возвращает d плюс случайную добавку из [0, d*factor].
func Duration(d time.Duration, factor float64) time.Duration {
	if factor <= 0 || d <= 0 {
		return d
	}
	return d + time.Duration(rand.Float64()*factor*float64(d))
}

// Backoff - экспоненциальная задержка: Base, 2*Base, 4*Base... не больше Max.
type Backoff struct {
	Base   time.Duration
	Max    time.Duration
	Factor float64 // 0 отключает случайную добавку
}

// Delay возвращает задержку после неудачной попытки attempt (нумерация с нуля).
func (b Backoff) Delay(attempt int) time.Duration {
	d := b.Base
	for i := 0; i < attempt && d < b.Max; i++ {
		d *= 2
	}
	if b.Max > 0 && d > b.Max {
		d = b.Max
	}
	return Duration(d, b.Factor)
}

// Wait ждёт Delay(attempt). Отмена контекста прерывает ожидание.
func (b Backoff) Wait(ctx context.Context, attempt int) error {
	return Sleep(ctx, b.Delay(attempt))
}

// Sleep ждёт d или отмены контекста. Возвращает ошибку контекста, если ожидание прервано.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
