package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/quotables/quotes-api/internal/quotes/domain"
	"github.com/quotables/quotes-api/internal/quotes/store"
)

type tokensRepo struct {
	db dbtx
}

const tokenColumns = `id, jti, token_type, user_id, revoked, expires_at, created_at`

func (r *tokensRepo) scanToken(row interface{ Scan(dest ...any) error }) (domain.TokenRecord, error) {
	var (
		t         domain.TokenRecord
		expiresAt sql.NullTime
	)
	err := row.Scan(&t.ID, &t.JTI, &t.TokenType, &t.UserID, &t.Revoked, &expiresAt, &t.CreatedAt)
	if err != nil {
		return domain.TokenRecord{}, mapErr(err)
	}
	t.ExpiresAt = mapNullTimePtr(expiresAt)
	return t, nil
}

func (r *tokensRepo) CreateTokenRecord(ctx context.Context, t domain.TokenRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO token_records (id, jti, token_type, user_id, revoked, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.JTI, t.TokenType, t.UserID, t.Revoked, mapOptionalTime(t.ExpiresAt), t.CreatedAt.UTC(),
	)
	return mapErr(err)
}

func (r *tokensRepo) GetTokenRecordByJTI(ctx context.Context, jti string) (domain.TokenRecord, error) {
	return r.scanToken(r.db.QueryRowContext(ctx,
		`SELECT `+tokenColumns+` FROM token_records WHERE jti = ?`, jti))
}

func (r *tokensRepo) RevokeTokenRecord(ctx context.Context, jti string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE token_records SET revoked = 1 WHERE jti = ?`, jti)
	if err != nil {
		return mapErr(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *tokensRepo) ListTokenRecordsByUser(ctx context.Context, userID string, page domain.PageRequest) ([]domain.TokenRecord, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM token_records WHERE user_id = ?`, userID).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tokenColumns+` FROM token_records
		 WHERE user_id = ? ORDER BY created_at, id LIMIT ? OFFSET ?`,
		userID, page.Size, page.Offset(),
	)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	defer rows.Close()

	var records []domain.TokenRecord
	for rows.Next() {
		t, err := r.scanToken(rows)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, t)
	}
	return records, total, mapErr(rows.Err())
}

func (r *tokensRepo) DeleteExpiredTokenRecords(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM token_records WHERE expires_at IS NOT NULL AND expires_at <= ?`,
		now.UTC(),
	)
	if err != nil {
		return 0, mapErr(err)
	}
	return res.RowsAffected()
}
