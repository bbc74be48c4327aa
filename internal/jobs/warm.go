package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-pricing/internal/cache"
	"github.com/noah-isme/toko-pricing/internal/lock"
	"github.com/noah-isme/toko-pricing/internal/obs"
)

// Warmer reloads one cached data set for a shop.
type Warmer interface {
	Warm(ctx context.Context, shopID uuid.UUID) error
}

// WarmHandler processes TypeWarmPricingCache tasks. A shop is warmed by at
// most one worker at a time; a task that finds the lock held is dropped.
type WarmHandler struct {
	Warmers map[string]Warmer
	Locker  lock.Locker
	LockTTL time.Duration
	Logger  zerolog.Logger
}

// ProcessTask implements asynq.Handler.
func (h WarmHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	shopID, err := ParseWarmPayload(t.Payload())
	if err != nil {
		obs.ObserveJob(t.Type(), "invalid")
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	log := h.Logger.With().Str("task", t.Type()).Str("shop_id", shopID.String()).Logger()

	err = h.Locker.TryWithLock(ctx, cache.KeyWarmLock(shopID.String()), h.LockTTL, func(ctx context.Context) error {
		var errs []error
		for name, w := range h.Warmers {
			start := time.Now()
			if err := w.Warm(ctx, shopID); err != nil {
				errs = append(errs, fmt.Errorf("warm %s: %w", name, err))
				continue
			}
			log.Debug().Str("cache", name).Dur("took", time.Since(start)).Msg("cache warmed")
		}
		return errors.Join(errs...)
	})
	switch {
	case errors.Is(err, lock.ErrNotAcquired):
		obs.ObserveJob(t.Type(), "skipped")
		log.Debug().Msg("warm already running")
		return nil
	case err != nil:
		obs.ObserveJob(t.Type(), "error")
		log.Warn().Err(err).Msg("cache warm failed")
		return err
	}
	obs.ObserveJob(t.Type(), "ok")
	return nil
}

// NewMux routes task types to their handlers.
func NewMux(warm WarmHandler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeWarmPricingCache, warm)
	return mux
}
