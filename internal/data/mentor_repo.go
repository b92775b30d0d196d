package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/syaquiii/innoventum-sub001/internal/data/pgxutil"
	"github.com/syaquiii/innoventum-sub001/internal/domain/model"
	apperrors "github.com/syaquiii/innoventum-sub001/internal/errors"
)

// MentorRepo provides read access to mentor listings.
type MentorRepo struct {
	DB *sql.DB
}

// NewMentorRepo creates a new MentorRepo.
func NewMentorRepo(db *sql.DB) *MentorRepo {
	return &MentorRepo{DB: db}
}

// List retrieves mentors with pagination.
func (r *MentorRepo) List(ctx context.Context, limit, offset int) ([]*model.Mentor, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var rowsOut []model.Mentor
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT id, name, expertise, avatar_url, created_at
			FROM mentors ORDER BY name LIMIT $1 OFFSET $2`,
			limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Mentor])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list mentors: %w", apperrors.MapDBError(err))
	}

	res := make([]*model.Mentor, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}
