package workflow

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ricksxxx/valorant-store-bot/internal/domain/accounts"
	"github.com/ricksxxx/valorant-store-bot/internal/domain/orders"
)

// memStore — память вместо Postgres, с теми же гарантиями: резерв
// аккаунта и смена статусов атомарны под мьютексом.
type memStore struct {
	mu       sync.Mutex
	accounts map[int64]*accounts.Account
	orders   map[int64]*orders.Order
	nextID   int64

	expireErr error
}

func newMemStore() *memStore {
	return &memStore{
		accounts: make(map[int64]*accounts.Account),
		orders:   make(map[int64]*orders.Order),
	}
}

func (m *memStore) addAccount(a accounts.Account) *accounts.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	a.ID = m.nextID
	m.accounts[a.ID] = &a
	return &a
}

func (m *memStore) CreateAccountOrder(_ context.Context, userID, accountID int64, ref string) (*orders.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[accountID]
	if !ok {
		return nil, accounts.ErrNotFound
	}
	if a.IsSold {
		return nil, accounts.ErrSold
	}
	a.IsSold = true

	m.nextID++
	o := &orders.Order{
		ID: m.nextID, Ref: ref, UserID: userID, Type: orders.TypeAccount,
		AccountID: &a.ID, AccountTitle: a.Title,
		Status: orders.StatusPending, AmountRUB: a.PriceRUB, CreatedAt: time.Now(),
	}
	m.orders[o.ID] = o
	cp := *o
	return &cp, nil
}

func (m *memStore) CreateBoostOrder(_ context.Context, userID int64, d orders.BoostDetails, amountRUB int64, ref string) (*orders.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	o := &orders.Order{
		ID: m.nextID, Ref: ref, UserID: userID, Type: orders.TypeBoost,
		Boost: d, Status: orders.StatusPending, AmountRUB: amountRUB, CreatedAt: time.Now(),
	}
	m.orders[o.ID] = o
	cp := *o
	return &cp, nil
}

func (m *memStore) GetByID(_ context.Context, id int64) (*orders.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, orders.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memStore) MarkPaid(_ context.Context, id int64) (*orders.Order, error) {
	return m.transition(id, orders.StatusPaid, orders.StatusPending)
}

func (m *memStore) Complete(_ context.Context, id int64) (*orders.Order, error) {
	return m.transition(id, orders.StatusCompleted, orders.StatusPending, orders.StatusPaid)
}

func (m *memStore) Cancel(_ context.Context, id int64) (*orders.Order, error) {
	o, err := m.transition(id, orders.StatusCancelled, orders.StatusPending, orders.StatusPaid)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if o.Type == orders.TypeAccount && o.AccountID != nil {
		if a, ok := m.accounts[*o.AccountID]; ok {
			a.IsSold = false
		}
	}
	return o, nil
}

func (m *memStore) transition(id int64, to orders.Status, from ...orders.Status) (*orders.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, orders.ErrNotFound
	}
	for _, st := range from {
		if o.Status == st {
			o.Status = to
			cp := *o
			return &cp, nil
		}
	}
	return nil, orders.ErrInvalidState
}

func (m *memStore) ExpireBefore(_ context.Context, cutoff time.Time) (int, []int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.expireErr != nil {
		return 0, nil, m.expireErr
	}

	var cancelled int
	var released []int64
	for _, o := range m.orders {
		if o.Status != orders.StatusPending || !o.CreatedAt.Before(cutoff) {
			continue
		}
		o.Status = orders.StatusCancelled
		cancelled++
		if o.AccountID != nil {
			if a, ok := m.accounts[*o.AccountID]; ok {
				a.IsSold = false
			}
			released = append(released, *o.AccountID)
		}
	}
	return cancelled, released, nil
}

// memAccounts отдаёт аккаунты из того же хранилища.
type memAccounts struct{ *memStore }

func (m memAccounts) GetByID(_ context.Context, id int64) (*accounts.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, accounts.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	delivered []int64
	failWith  error
}

func (f *fakeNotifier) DeliverCredentials(_ context.Context, chatID int64, _ *orders.Order, _ *accounts.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.delivered = append(f.delivered, chatID)
	return nil
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.delivered)
}

const adminID = int64(1042528261)

func newTestService(store *memStore, notify *fakeNotifier) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(log, store, memAccounts{store}, notify,
		[]int64{adminID}, 5000, 15*time.Minute)
}

func TestPlaceAccountOrder(t *testing.T) {
	store := newMemStore()
	a := store.addAccount(accounts.Account{Title: "Immortal EU", PriceRUB: 7500})
	svc := newTestService(store, &fakeNotifier{})

	o, err := svc.PlaceAccountOrder(context.Background(), 100, a.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPending, o.Status)
	assert.Equal(t, int64(7500), o.AmountRUB)
	assert.Equal(t, "Immortal EU", o.AccountTitle)
	assert.NotEmpty(t, o.Ref)

	// аккаунт зарезервирован, второй покупатель опоздал
	_, err = svc.PlaceAccountOrder(context.Background(), 200, a.ID)
	assert.ErrorIs(t, err, accounts.ErrSold)
}

func TestPlaceAccountOrder_Missing(t *testing.T) {
	svc := newTestService(newMemStore(), &fakeNotifier{})
	_, err := svc.PlaceAccountOrder(context.Background(), 100, 999)
	assert.ErrorIs(t, err, accounts.ErrNotFound)
}

func TestPlaceAccountOrder_ConcurrentBuyers(t *testing.T) {
	store := newMemStore()
	a := store.addAccount(accounts.Account{Title: "Radiant NA", PriceRUB: 20000})
	svc := newTestService(store, &fakeNotifier{})

	const buyers = 16
	var wg sync.WaitGroup
	results := make(chan error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			_, err := svc.PlaceAccountOrder(context.Background(), userID, a.ID)
			results <- err
		}(int64(i + 1))
	}
	wg.Wait()
	close(results)

	var won, sold int
	for err := range results {
		switch {
		case err == nil:
			won++
		case errors.Is(err, accounts.ErrSold):
			sold++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, buyers-1, sold)
}

func TestPlaceBoostOrder(t *testing.T) {
	svc := newTestService(newMemStore(), &fakeNotifier{})

	o, err := svc.PlaceBoostOrder(context.Background(), 100, orders.BoostDetails{
		FromRank: "Gold 2", ToRank: "Platinum 1", Region: "EU",
	})
	require.NoError(t, err)
	assert.Equal(t, orders.TypeBoost, o.Type)
	assert.Equal(t, int64(5000), o.AmountRUB)
	assert.Nil(t, o.AccountID)
}

func TestClaimPaid(t *testing.T) {
	store := newMemStore()
	a := store.addAccount(accounts.Account{Title: "Smurf", PriceRUB: 1500})
	svc := newTestService(store, &fakeNotifier{})

	o, err := svc.PlaceAccountOrder(context.Background(), 100, a.ID)
	require.NoError(t, err)

	// чужой заказ выглядит как несуществующий
	_, err = svc.ClaimPaid(context.Background(), 200, o.ID)
	assert.ErrorIs(t, err, orders.ErrNotFound)

	paid, err := svc.ClaimPaid(context.Background(), 100, o.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPaid, paid.Status)

	// повторное заявление ничего не меняет
	_, err = svc.ClaimPaid(context.Background(), 100, o.ID)
	assert.ErrorIs(t, err, orders.ErrInvalidState)
}

func TestConfirmPayment_Unauthorized(t *testing.T) {
	store := newMemStore()
	a := store.addAccount(accounts.Account{Title: "Smurf", PriceRUB: 1500})
	svc := newTestService(store, &fakeNotifier{})

	o, err := svc.PlaceAccountOrder(context.Background(), 100, a.ID)
	require.NoError(t, err)

	_, err = svc.ConfirmPayment(context.Background(), 777, o.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// заказ не тронут
	got, err := store.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPending, got.Status)
}

func TestConfirmPayment_DeliversCredentials(t *testing.T) {
	store := newMemStore()
	a := store.addAccount(accounts.Account{Title: "Immortal EU", PriceRUB: 7500, Login: "rickx"})
	notify := &fakeNotifier{}
	svc := newTestService(store, notify)

	o, err := svc.PlaceAccountOrder(context.Background(), 100, a.ID)
	require.NoError(t, err)

	done, err := svc.ConfirmPayment(context.Background(), adminID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCompleted, done.Status)
	assert.Equal(t, 1, notify.count())

	// повторное подтверждение: ошибка и никакой второй доставки
	_, err = svc.ConfirmPayment(context.Background(), adminID, o.ID)
	assert.ErrorIs(t, err, orders.ErrInvalidState)
	assert.Equal(t, 1, notify.count())
}

func TestConfirmPayment_DeliveryFailureKeepsOrderCompleted(t *testing.T) {
	store := newMemStore()
	a := store.addAccount(accounts.Account{Title: "Immortal EU", PriceRUB: 7500})
	notify := &fakeNotifier{failWith: errors.New("chat blocked")}
	svc := newTestService(store, notify)

	o, err := svc.PlaceAccountOrder(context.Background(), 100, a.ID)
	require.NoError(t, err)

	done, err := svc.ConfirmPayment(context.Background(), adminID, o.ID)
	var dErr *DeliveryError
	require.ErrorAs(t, err, &dErr)
	require.NotNil(t, done)
	assert.Equal(t, orders.StatusCompleted, done.Status)

	got, err := store.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCompleted, got.Status)
}

func TestConfirmPayment_AccountDeletedWhilePending(t *testing.T) {
	store := newMemStore()
	a := store.addAccount(accounts.Account{Title: "Smurf", PriceRUB: 1500})
	notify := &fakeNotifier{}
	svc := newTestService(store, notify)

	o, err := svc.PlaceAccountOrder(context.Background(), 100, a.ID)
	require.NoError(t, err)

	// админ удалил аккаунт, пока заказ ждал оплаты (FK обнуляет ссылку)
	store.mu.Lock()
	delete(store.accounts, a.ID)
	store.orders[o.ID].AccountID = nil
	store.mu.Unlock()

	done, err := svc.ConfirmPayment(context.Background(), adminID, o.ID)
	var dErr *DeliveryError
	require.ErrorAs(t, err, &dErr)
	require.NotNil(t, done)
	assert.Equal(t, orders.StatusCompleted, done.Status)
	assert.Equal(t, 0, notify.count())
}

func TestPlaceAccountOrder_AmountSurvivesPriceChange(t *testing.T) {
	store := newMemStore()
	a := store.addAccount(accounts.Account{Title: "Immortal EU", PriceRUB: 7500})
	svc := newTestService(store, &fakeNotifier{})

	o, err := svc.PlaceAccountOrder(context.Background(), 100, a.ID)
	require.NoError(t, err)
	require.Equal(t, int64(7500), o.AmountRUB)

	// цену аккаунта подняли уже после оформления заказа
	store.mu.Lock()
	store.accounts[a.ID].PriceRUB = 9999
	store.mu.Unlock()

	got, err := store.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7500), got.AmountRUB)
}

func TestConfirmPayment_BoostNeedsNoDelivery(t *testing.T) {
	store := newMemStore()
	notify := &fakeNotifier{failWith: errors.New("must not be called")}
	svc := newTestService(store, notify)

	o, err := svc.PlaceBoostOrder(context.Background(), 100, orders.BoostDetails{FromRank: "Iron 1", ToRank: "Bronze 3"})
	require.NoError(t, err)

	done, err := svc.ConfirmPayment(context.Background(), adminID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCompleted, done.Status)
}

func TestCancelOrder_ReleasesAccount(t *testing.T) {
	store := newMemStore()
	a := store.addAccount(accounts.Account{Title: "Smurf", PriceRUB: 1500})
	svc := newTestService(store, &fakeNotifier{})

	o, err := svc.PlaceAccountOrder(context.Background(), 100, a.ID)
	require.NoError(t, err)

	cancelled, err := svc.CancelOrder(context.Background(), adminID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCancelled, cancelled.Status)

	acc, err := memAccounts{store}.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.False(t, acc.IsSold)

	// отменённый заказ повторно не отменяется
	_, err = svc.CancelOrder(context.Background(), adminID, o.ID)
	assert.ErrorIs(t, err, orders.ErrInvalidState)
}

func TestSweepExpired(t *testing.T) {
	store := newMemStore()
	stale := store.addAccount(accounts.Account{Title: "Stale", PriceRUB: 1000})
	fresh := store.addAccount(accounts.Account{Title: "Fresh", PriceRUB: 1000})
	claimed := store.addAccount(accounts.Account{Title: "Claimed", PriceRUB: 1000})
	svc := newTestService(store, &fakeNotifier{})

	staleOrder, err := svc.PlaceAccountOrder(context.Background(), 100, stale.ID)
	require.NoError(t, err)
	freshOrder, err := svc.PlaceAccountOrder(context.Background(), 101, fresh.ID)
	require.NoError(t, err)
	claimedOrder, err := svc.PlaceAccountOrder(context.Background(), 102, claimed.ID)
	require.NoError(t, err)
	_, err = svc.ClaimPaid(context.Background(), 102, claimedOrder.ID)
	require.NoError(t, err)

	// состарим один заказ за границу окна ожидания
	store.mu.Lock()
	store.orders[staleOrder.ID].CreatedAt = time.Now().Add(-16 * time.Minute)
	store.mu.Unlock()

	n, err := svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := store.GetByID(context.Background(), staleOrder.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusCancelled, got.Status)

	// аккаунт просроченного заказа снова в продаже
	acc, err := memAccounts{store}.GetByID(context.Background(), stale.ID)
	require.NoError(t, err)
	assert.False(t, acc.IsSold)

	// свежий pending и заявленный paid не тронуты
	got, err = store.GetByID(context.Background(), freshOrder.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPending, got.Status)
	got, err = store.GetByID(context.Background(), claimedOrder.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusPaid, got.Status)
}
