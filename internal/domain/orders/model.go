package orders

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrInvalidState возвращается при попытке перевести заказ из терминального
	// или неподходящего статуса. Операция при этом ничего не меняет.
	ErrInvalidState = errors.New("invalid order status transition")
)

type Type string

const (
	TypeAccount Type = "account"
	TypeBoost   Type = "boost"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Terminal сообщает, завершён ли жизненный цикл заказа.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo описывает допустимые переходы:
// pending -> paid|completed|cancelled, paid -> completed|cancelled.
// Из терминальных статусов переходов нет.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusPaid || next == StatusCompleted || next == StatusCancelled
	case StatusPaid:
		return next == StatusCompleted || next == StatusCancelled
	default:
		return false
	}
}

// BoostDetails — параметры заявки на буст.
type BoostDetails struct {
	FromRank string
	ToRank   string
	Region   string
	Wishes   string
}

type Order struct {
	ID     int64
	Ref    string // публичный номер заказа, показывается покупателю
	UserID int64
	Type   Type

	// Для заказов типа account: ссылка на аккаунт и снимок его названия.
	// Сумма и название фиксируются в момент создания и не пересчитываются
	// при последующих правках каталога.
	AccountID    *int64
	AccountTitle string

	Boost BoostDetails

	Status    Status
	AmountRUB int64
	CreatedAt time.Time
}
