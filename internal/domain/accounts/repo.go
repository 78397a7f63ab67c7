package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("account not found")
	// ErrSold возвращается при попытке зарезервировать уже проданный аккаунт.
	ErrSold = errors.New("account already sold")
	// ErrDuplicateLogin возвращается, если аккаунт с таким логином уже есть в каталоге.
	ErrDuplicateLogin = errors.New("account with this login already exists")
)

// Filter — выборка аккаунтов для админ-панели.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterAvailable Filter = "available"
	FilterSold      Filter = "sold"
)

const accountColumns = `id, title, rank, description, price_rub, region, image_url,
		login, password, email, email_password, additional_info,
		is_sold, added_by, created_at`

type Repo struct{ pool *pgxpool.Pool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

func scanAccount(row pgx.Row) (*Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Title, &a.Rank, &a.Description, &a.PriceRUB, &a.Region, &a.ImageURL,
		&a.Login, &a.Password, &a.Email, &a.EmailPassword, &a.AdditionalInfo,
		&a.IsSold, &a.AddedBy, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repo) Create(ctx context.Context, d Draft) (*Account, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (title, rank, description, price_rub, region, image_url,
			login, password, email, email_password, additional_info, added_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING `+accountColumns,
		d.Title, d.Rank, d.Description, d.PriceRUB, string(d.Region), d.ImageURL,
		d.Login, d.Password, d.Email, d.EmailPassword, d.AdditionalInfo, d.AddedBy)

	a, err := scanAccount(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrDuplicateLogin
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return a, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Account, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	a, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetAvailable возвращает аккаунт, только если он существует и не продан.
func (r *Repo) GetAvailable(ctx context.Context, id int64) (*Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE id = $1 AND is_sold = FALSE`, id)
	a, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *Repo) ListAvailable(ctx context.Context, limit int) ([]Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE is_sold = FALSE
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAccounts(rows)
}

// List — постраничный список для админки с фильтром по статусу продажи.
func (r *Repo) List(ctx context.Context, f Filter, limit, offset int) ([]Account, int64, error) {
	cond := "TRUE"
	switch f {
	case FilterAvailable:
		cond = "is_sold = FALSE"
	case FilterSold:
		cond = "is_sold = TRUE"
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM accounts WHERE `+cond).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE `+cond+`
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list, err := collectAccounts(rows)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func collectAccounts(rows pgx.Rows) ([]Account, error) {
	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// Delete удаляет аккаунт безвозвратно. История заказов сохраняется:
// в заказе остаётся снимок названия и суммы, ссылка обнуляется по FK.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM accounts`).Scan(&n)
	return n, err
}

func (r *Repo) CountSold(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM accounts WHERE is_sold = TRUE`).Scan(&n)
	return n, err
}

// Revenue — суммарная выручка по проданным аккаунтам, в рублях.
func (r *Repo) Revenue(ctx context.Context) (int64, error) {
	var sum int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(sum(price_rub), 0) FROM accounts WHERE is_sold = TRUE`).Scan(&sum)
	return sum, err
}

func (r *Repo) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
