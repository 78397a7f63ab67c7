package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ricksxxx/valorant-store-bot/internal/domain/accounts"
	"github.com/ricksxxx/valorant-store-bot/internal/domain/orders"
)

// ErrUnauthorized возвращается, когда операцию подтверждения или отмены
// пытается выполнить не-админ.
var ErrUnauthorized = errors.New("operation requires admin")

// DeliveryError сигнализирует о частичном успехе подтверждения:
// заказ уже переведён в completed, но отправить данные аккаунта
// покупателю не удалось. Заказ при этом не откатывается, данные
// нужно передать вручную.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("order completed, credentials delivery failed: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

type OrderStore interface {
	CreateAccountOrder(ctx context.Context, userID, accountID int64, ref string) (*orders.Order, error)
	CreateBoostOrder(ctx context.Context, userID int64, d orders.BoostDetails, amountRUB int64, ref string) (*orders.Order, error)
	GetByID(ctx context.Context, id int64) (*orders.Order, error)
	MarkPaid(ctx context.Context, id int64) (*orders.Order, error)
	Complete(ctx context.Context, id int64) (*orders.Order, error)
	Cancel(ctx context.Context, id int64) (*orders.Order, error)
	ExpireBefore(ctx context.Context, cutoff time.Time) (int, []int64, error)
}

type AccountStore interface {
	GetByID(ctx context.Context, id int64) (*accounts.Account, error)
}

// Notifier доставляет покупателю данные купленного аккаунта.
type Notifier interface {
	DeliverCredentials(ctx context.Context, chatID int64, o *orders.Order, a *accounts.Account) error
}

type Service struct {
	log      *slog.Logger
	orders   OrderStore
	accounts AccountStore
	notify   Notifier

	adminIDs       []int64
	boostAmountRUB int64
	graceWindow    time.Duration

	now func() time.Time
}

func New(log *slog.Logger, ordersRepo OrderStore, accountsRepo AccountStore, notify Notifier,
	adminIDs []int64, boostAmountRUB int64, graceWindow time.Duration) *Service {

	return &Service{
		log: log, orders: ordersRepo, accounts: accountsRepo, notify: notify,
		adminIDs: adminIDs, boostAmountRUB: boostAmountRUB, graceWindow: graceWindow,
		now: time.Now,
	}
}

func (s *Service) IsAdmin(tgID int64) bool {
	for _, id := range s.adminIDs {
		if id == tgID {
			return true
		}
	}
	return false
}

// PlaceAccountOrder создаёт заказ на аккаунт. Аккаунт резервируется
// в той же транзакции, конкурентный покупатель получит accounts.ErrSold.
func (s *Service) PlaceAccountOrder(ctx context.Context, userID, accountID int64) (*orders.Order, error) {
	o, err := s.orders.CreateAccountOrder(ctx, userID, accountID, uuid.NewString())
	if err != nil {
		return nil, err
	}
	ordersCreated.WithLabelValues(string(orders.TypeAccount)).Inc()
	s.log.Info("account order placed",
		"order_id", o.ID, "ref", o.Ref, "user_id", userID, "account_id", accountID)
	return o, nil
}

// PlaceBoostOrder создаёт заказ на буст с настроенной суммой.
func (s *Service) PlaceBoostOrder(ctx context.Context, userID int64, d orders.BoostDetails) (*orders.Order, error) {
	o, err := s.orders.CreateBoostOrder(ctx, userID, d, s.boostAmountRUB, uuid.NewString())
	if err != nil {
		return nil, err
	}
	ordersCreated.WithLabelValues(string(orders.TypeBoost)).Inc()
	s.log.Info("boost order placed",
		"order_id", o.ID, "ref", o.Ref, "user_id", userID, "from", d.FromRank, "to", d.ToRank)
	return o, nil
}

// ClaimPaid фиксирует заявление покупателя «я оплатил». Заказ должен
// принадлежать заявителю.
func (s *Service) ClaimPaid(ctx context.Context, userID, orderID int64) (*orders.Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, orders.ErrNotFound
	}
	return s.orders.MarkPaid(ctx, orderID)
}

// ConfirmPayment переводит заказ в completed и для заказов на аккаунт
// отправляет покупателю данные для входа. Если доставка не удалась,
// заказ остаётся completed, возвращается *DeliveryError.
func (s *Service) ConfirmPayment(ctx context.Context, adminID, orderID int64) (*orders.Order, error) {
	if !s.IsAdmin(adminID) {
		return nil, ErrUnauthorized
	}

	o, err := s.orders.Complete(ctx, orderID)
	if err != nil {
		return nil, err
	}
	ordersCompleted.Inc()
	s.log.Info("payment confirmed", "order_id", o.ID, "ref", o.Ref, "admin_id", adminID)

	if o.Type != orders.TypeAccount {
		return o, nil
	}
	if o.AccountID == nil {
		// аккаунт удалили, пока заказ ждал оплаты: выдавать нечего,
		// админ разбирается с покупателем вручную
		deliveryFailures.Inc()
		s.log.Error("credentials delivery impossible", "order_id", o.ID, "reason", "account deleted")
		return o, &DeliveryError{Err: errors.New("account deleted, nothing to deliver")}
	}

	a, err := s.accounts.GetByID(ctx, *o.AccountID)
	if err != nil {
		deliveryFailures.Inc()
		return o, &DeliveryError{Err: err}
	}
	if err := s.notify.DeliverCredentials(ctx, o.UserID, o, a); err != nil {
		deliveryFailures.Inc()
		s.log.Error("credentials delivery failed", "order_id", o.ID, "err", err)
		return o, &DeliveryError{Err: err}
	}
	return o, nil
}

// CancelOrder отменяет заказ по решению админа. Зарезервированный
// аккаунт возвращается в продажу.
func (s *Service) CancelOrder(ctx context.Context, adminID, orderID int64) (*orders.Order, error) {
	if !s.IsAdmin(adminID) {
		return nil, ErrUnauthorized
	}
	o, err := s.orders.Cancel(ctx, orderID)
	if err != nil {
		return nil, err
	}
	ordersCancelled.Inc()
	s.log.Info("order cancelled", "order_id", o.ID, "ref", o.Ref, "admin_id", adminID)
	return o, nil
}

// SweepExpired отменяет неоплаченные заказы, чей срок ожидания вышел.
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.graceWindow)
	cancelled, released, err := s.orders.ExpireBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if cancelled > 0 {
		ordersExpired.Add(float64(cancelled))
		s.log.Info("expired orders swept", "cancelled", cancelled, "released_accounts", len(released))
	}
	return cancelled, nil
}
