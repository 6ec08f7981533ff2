package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bsm/redislock"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/JonathanM-A/costmate/internal/metrics"
	"github.com/JonathanM-A/costmate/internal/repository"
)

const (
	orderNoPrefix  = "ORD-"
	orderNoLockKey = "lock:order_no"
	orderNoLockTTL = 5 * time.Second
)

// FormatOrderNo renders the human-readable order number for n.
func FormatOrderNo(n int) string { return fmt.Sprintf("%s%05d", orderNoPrefix, n) }

// NextOrderNo follows last, the number with the highest suffix. It starts
// at ORD-00001 when last is empty or unparsable.
func NextOrderNo(last string) string {
	n, err := strconv.Atoi(strings.TrimPrefix(last, orderNoPrefix))
	if err != nil || !strings.HasPrefix(last, orderNoPrefix) || n < 0 {
		return FormatOrderNo(1)
	}
	return FormatOrderNo(n + 1)
}

// OrderNumberer hands out sequential order numbers. The unique index on
// orders.order_no is the source of truth: a collision rolls the attempt back
// and retries with a fresh max+1. When a redis lock client is configured,
// instances also serialise on a shared lock so collisions stay rare.
type OrderNumberer struct {
	orders  repository.OrderRepository
	locker  *redislock.Client
	retries int
}

func NewOrderNumberer(orders repository.OrderRepository, locker *redislock.Client, retries int) *OrderNumberer {
	if retries < 1 {
		retries = 1
	}
	return &OrderNumberer{orders: orders, locker: locker, retries: retries}
}

// Assign opens a transaction, computes the next number and passes it to
// create. It returns the number that was committed.
func (n *OrderNumberer) Assign(ctx context.Context, db *gorm.DB, create func(tx *gorm.DB, orderNo string) error) (string, error) {
	release := n.lock(ctx)
	defer release()

	for attempt := 1; attempt <= n.retries; attempt++ {
		var orderNo string
		err := runTx(ctx, db, func(tx *gorm.DB) error {
			last, err := n.orders.LastOrderNoTx(tx)
			if err != nil {
				return err
			}
			orderNo = NextOrderNo(last)
			return create(tx, orderNo)
		})
		if err == nil {
			return orderNo, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", err
		}
		metrics.OrderNumberRetries.Inc()
		log.Debug().Str("order_no", orderNo).Int("attempt", attempt).Msg("order number taken, retrying")
	}
	return "", fmt.Errorf("%w: could not allocate an order number after %d attempts", ErrConflict, n.retries)
}

func (n *OrderNumberer) lock(ctx context.Context) func() {
	noop := func() {}
	if n.locker == nil {
		return noop
	}
	lock, err := n.locker.Obtain(ctx, orderNoLockKey, orderNoLockTTL, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), 40),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		log.Warn().Msg("could not obtain order number lock; relying on unique index")
		return noop
	}
	if err != nil {
		log.Warn().Err(err).Msg("order number lock unavailable; relying on unique index")
		return noop
	}
	return func() {
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			log.Warn().Err(err).Msg("failed to release order number lock")
		}
	}
}
