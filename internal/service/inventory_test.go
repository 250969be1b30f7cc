package service

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go-gin-order-service/internal/domain"
	"go-gin-order-service/internal/testutil"
)

func TestCheckAndReserve(t *testing.T) {
	t.Parallel()
	e := newEnv(t, nil)
	ctx := context.Background()
	testutil.CreateProduct(t, e.db, "p1", 1000, 5)

	require.NoError(t, e.guard.CheckAndReserve(ctx, nil, "p1", 3))
	assert.Equal(t, 2, testutil.Stock(t, e.db, "p1"))

	assert.ErrorIs(t, e.guard.CheckAndReserve(ctx, nil, "p1", 3), domain.ErrOutOfStock)
	assert.Equal(t, 2, testutil.Stock(t, e.db, "p1"))

	assert.ErrorIs(t, e.guard.CheckAndReserve(ctx, nil, "ghost", 1), domain.ErrNotFound)
	assert.ErrorIs(t, e.guard.CheckAndReserve(ctx, nil, "p1", 0), domain.ErrInvalidArgument)

	require.NoError(t, e.guard.CheckAndReserve(ctx, nil, "p1", 2))
	assert.Equal(t, 0, testutil.Stock(t, e.db, "p1"))
}

func TestCheckAndReserveRollsBackWithTx(t *testing.T) {
	t.Parallel()
	e := newEnv(t, nil)
	ctx := context.Background()
	testutil.CreateProduct(t, e.db, "p1", 1000, 5)
	testutil.CreateProduct(t, e.db, "p2", 1000, 1)

	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := e.guard.CheckAndReserve(ctx, tx, "p1", 5); err != nil {
			return err
		}
		return e.guard.CheckAndReserve(ctx, tx, "p2", 2)
	})
	assert.ErrorIs(t, err, domain.ErrOutOfStock)
	assert.Equal(t, 5, testutil.Stock(t, e.db, "p1"))
	assert.Equal(t, 1, testutil.Stock(t, e.db, "p2"))
}

func TestCheckAndReserveNeverOversells(t *testing.T) {
	t.Parallel()
	e := newEnv(t, nil)
	ctx := context.Background()
	testutil.CreateProduct(t, e.db, "p1", 1000, 10)

	var ok, rejected int32
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := e.guard.CheckAndReserve(ctx, nil, "p1", 1)
			if err == nil {
				atomic.AddInt32(&ok, 1)
				return
			}
			if assert.ErrorIs(t, err, domain.ErrOutOfStock) {
				atomic.AddInt32(&rejected, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(10), ok)
	assert.Equal(t, int32(15), rejected)
	assert.Equal(t, 0, testutil.Stock(t, e.db, "p1"))
}

func TestCheckAvailable(t *testing.T) {
	t.Parallel()
	e := newEnv(t, nil)
	ctx := context.Background()
	testutil.CreateProduct(t, e.db, "p1", 1000, 2)

	p, err := e.guard.CheckAvailable(ctx, nil, "p1", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), p.PriceCents)

	_, err = e.guard.CheckAvailable(ctx, nil, "p1", 0, 3)
	assert.ErrorIs(t, err, domain.ErrOutOfStock)
	_, err = e.guard.CheckAvailable(ctx, nil, "p1", 1, 1)
	require.NoError(t, err)
	_, err = e.guard.CheckAvailable(ctx, nil, "p1", 1, math.MaxInt)
	assert.ErrorIs(t, err, domain.ErrOutOfStock)
	_, err = e.guard.CheckAvailable(ctx, nil, "ghost", 0, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 2, testutil.Stock(t, e.db, "p1"), "checking never reserves")
}
