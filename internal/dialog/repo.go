package dialog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo хранит шаг активного диалога по chat_id. Состояние живёт в БД,
// а не в памяти процесса: рестарт бота не сбрасывает начатую форму.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{pool: pool} }

// Get возвращает текущий шаг диалога или nil, если диалог не начат.
func (r *Repo) Get(ctx context.Context, chatID int64) (Step, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx,
		`SELECT payload FROM dialog_states WHERE chat_id = $1`, chatID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return Decode(raw)
}

func (r *Repo) Set(ctx context.Context, chatID int64, s Step) error {
	raw, err := Encode(s)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO dialog_states (chat_id, state, payload, updated_at)
		VALUES ($1,$2,$3,now())
		ON CONFLICT (chat_id) DO UPDATE SET
		  state=$2, payload=$3, updated_at=now()
	`, chatID, string(s.Name()), raw)
	return err
}

func (r *Repo) Reset(ctx context.Context, chatID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM dialog_states WHERE chat_id = $1`, chatID)
	return err
}
