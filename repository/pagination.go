package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"storefront/apperrors"
	"storefront/db"
)

func newID() string {
	return uuid.NewString()
}

// now is replaced in tests to get strictly increasing timestamps.
var now = func() string {
	return time.Now().UTC().Format(db.TimeLayout)
}

// cursorClause returns a WHERE fragment that starts a newest-first
// (created_at DESC, id DESC) listing at the cursor row, inclusive.
// table is a constant table name, alias the alias used in the query.
func cursorClause(ctx context.Context, q db.Querier, table, alias, cursor string) (string, []any, error) {
	var createdAt string
	err := q.QueryRowContext(ctx, fmt.Sprintf("SELECT created_at FROM %s WHERE id = ?", table), cursor).Scan(&createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, apperrors.InvalidField("cursor", "unknown cursor")
		}
		return "", nil, fmt.Errorf("failed to resolve cursor: %w", err)
	}
	clause := fmt.Sprintf("(%[1]s.created_at < ? OR (%[1]s.created_at = ? AND %[1]s.id <= ?))", alias)
	return clause, []any{createdAt, createdAt, cursor}, nil
}

// trimPage drops the look-ahead row fetched past limit and returns the
// id of that row as the next cursor.
func trimPage[T any](rows []T, limit int, id func(T) string) ([]T, string) {
	if len(rows) <= limit {
		return rows, ""
	}
	next := id(rows[limit])
	return rows[:limit], next
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
