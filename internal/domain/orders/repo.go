package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ricksxxx/valorant-store-bot/internal/domain/accounts"
)

const orderColumns = `id, ref, user_id, type, account_id, account_title,
		boost_from_rank, boost_to_rank, boost_region, boost_wishes,
		status, amount_rub, created_at`

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.Ref, &o.UserID, &o.Type, &o.AccountID, &o.AccountTitle,
		&o.Boost.FromRank, &o.Boost.ToRank, &o.Boost.Region, &o.Boost.Wishes,
		&o.Status, &o.AmountRUB, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateAccountOrder резервирует аккаунт и создаёт заказ одной транзакцией.
// Резерв — условный UPDATE по is_sold: из двух конкурентных покупателей
// строку получит ровно один, второй увидит ErrSold.
func (r *Repo) CreateAccountOrder(ctx context.Context, userID, accountID int64, ref string) (*Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var priceRUB int64
	var title string
	err = tx.QueryRow(ctx, `
		UPDATE accounts SET is_sold = TRUE
		WHERE id = $1 AND is_sold = FALSE
		RETURNING price_rub, title
	`, accountID).Scan(&priceRUB, &title)
	if errors.Is(err, pgx.ErrNoRows) {
		// Либо аккаунта нет, либо он уже зарезервирован.
		var exists bool
		if err2 := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)`, accountID).Scan(&exists); err2 != nil {
			return nil, err2
		}
		if exists {
			return nil, accounts.ErrSold
		}
		return nil, accounts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reserve account: %w", err)
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO orders (ref, user_id, type, account_id, account_title, amount_rub)
		VALUES ($1, $2, 'account', $3, $4, $5)
		RETURNING `+orderColumns,
		ref, userID, accountID, title, priceRUB)
	o, err := scanOrder(row)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return o, nil
}

func (r *Repo) CreateBoostOrder(ctx context.Context, userID int64, d BoostDetails, amountRUB int64, ref string) (*Order, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO orders (ref, user_id, type, boost_from_rank, boost_to_rank, boost_region, boost_wishes, amount_rub)
		VALUES ($1, $2, 'boost', $3, $4, $5, $6, $7)
		RETURNING `+orderColumns,
		ref, userID, d.FromRank, d.ToRank, d.Region, d.Wishes, amountRUB)
	o, err := scanOrder(row)
	if err != nil {
		return nil, fmt.Errorf("insert boost order: %w", err)
	}
	return o, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

// MarkPaid фиксирует заявление покупателя об оплате: pending -> paid.
// Оплаченные заказы свипер не трогает, решение остаётся за админом.
func (r *Repo) MarkPaid(ctx context.Context, id int64) (*Order, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE orders SET status = 'paid'
		WHERE id = $1 AND status = 'pending'
		RETURNING `+orderColumns, id)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.stateError(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Complete переводит заказ pending|paid -> completed условным UPDATE.
// Повторный вызов по тому же заказу ничего не меняет и даёт ErrInvalidState.
func (r *Repo) Complete(ctx context.Context, id int64) (*Order, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE orders SET status = 'completed'
		WHERE id = $1 AND status IN ('pending', 'paid')
		RETURNING `+orderColumns, id)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.stateError(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

// Cancel переводит заказ pending|paid -> cancelled и возвращает аккаунт
// в продажу, если заказ ссылался на аккаунт. Обе записи меняются одной
// транзакцией.
func (r *Repo) Cancel(ctx context.Context, id int64) (*Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		UPDATE orders SET status = 'cancelled'
		WHERE id = $1 AND status IN ('pending', 'paid')
		RETURNING `+orderColumns, id)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.stateError(ctx, id)
	}
	if err != nil {
		return nil, err
	}

	if o.Type == TypeAccount && o.AccountID != nil {
		if _, err := tx.Exec(ctx,
			`UPDATE accounts SET is_sold = FALSE WHERE id = $1`, *o.AccountID); err != nil {
			return nil, fmt.Errorf("release account: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return o, nil
}

func (r *Repo) stateError(ctx context.Context, id int64) error {
	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrInvalidState
	}
	return ErrNotFound
}

// ExpireBefore отменяет все pending-заказы старше cutoff и возвращает
// в продажу ровно те аккаунты, чьи заказы были отменены этим же запросом.
// Список id берётся из RETURNING, а не из повторной выборки по времени:
// перекрывающиеся циклы свипера не заденут чужие резервы.
func (r *Repo) ExpireBefore(ctx context.Context, cutoff time.Time) (int, []int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
		UPDATE orders SET status = 'cancelled'
		WHERE status = 'pending' AND created_at < $1
		RETURNING account_id`, cutoff)
	if err != nil {
		return 0, nil, fmt.Errorf("expire orders: %w", err)
	}

	var cancelled int
	var released []int64
	for rows.Next() {
		var accountID *int64
		if err := rows.Scan(&accountID); err != nil {
			rows.Close()
			return 0, nil, err
		}
		cancelled++
		if accountID != nil {
			released = append(released, *accountID)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, nil, err
	}

	if len(released) > 0 {
		if _, err := tx.Exec(ctx,
			`UPDATE accounts SET is_sold = FALSE WHERE id = ANY($1)`, released); err != nil {
			return 0, nil, fmt.Errorf("release accounts: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, nil, fmt.Errorf("commit: %w", err)
	}
	return cancelled, released, nil
}

func (r *Repo) ListByStatus(ctx context.Context, st Status, limit int) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2`, string(st), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

// ListFinishedByUser — заказы покупателя в статусах paid/completed («Мои заказы»).
func (r *Repo) ListFinishedByUser(ctx context.Context, userID int64, limit int) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = $1 AND status IN ('paid', 'completed')
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func collectOrders(rows pgx.Rows) ([]Order, error) {
	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

func (r *Repo) CountByStatus(ctx context.Context, st Status) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM orders WHERE status = $1`, string(st)).Scan(&n)
	return n, err
}

func (r *Repo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM orders`).Scan(&n)
	return n, err
}

func (r *Repo) CountFinishedByUser(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM orders WHERE user_id = $1 AND status IN ('paid', 'completed')`,
		userID).Scan(&n)
	return n, err
}

// DeleteAll используется только админским сбросом статистики.
func (r *Repo) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
