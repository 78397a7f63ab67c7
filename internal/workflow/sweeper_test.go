package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricksxxx/valorant-store-bot/internal/domain/accounts"
	"github.com/ricksxxx/valorant-store-bot/internal/domain/orders"
)

func TestSweeperCancelsStaleOrders(t *testing.T) {
	store := newMemStore()
	a := store.addAccount(accounts.Account{Title: "Stale", PriceRUB: 1000})
	svc := newTestService(store, &fakeNotifier{})

	o, err := svc.PlaceAccountOrder(context.Background(), 100, a.ID)
	require.NoError(t, err)
	store.mu.Lock()
	store.orders[o.ID].CreatedAt = time.Now().Add(-time.Hour)
	store.mu.Unlock()

	sw := NewSweeper(svc.log, svc, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// даже с отменённым контекстом первый проход выполняется
	sw.Run(ctx)

	got, err := store.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCancelled, got.Status)
}

func TestSweeperSurvivesCycleError(t *testing.T) {
	store := newMemStore()
	store.expireErr = errors.New("db down")
	svc := newTestService(store, &fakeNotifier{})

	sw := NewSweeper(svc.log, svc, 10*time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// несколько неудачных циклов подряд не должны ронять воркер
	sw.Run(ctx)
}
