package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/syaquiii/innoventum-sub001/internal/data/pgxutil"
	"github.com/syaquiii/innoventum-sub001/internal/domain/model"
	apperrors "github.com/syaquiii/innoventum-sub001/internal/errors"
)

const threadColumns = `t.id, t.author_id, u.name AS author_name, t.title, t.body, t.created_at`

// ThreadRepo provides database operations for forum threads.
type ThreadRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewThreadRepo creates a new ThreadRepo.
func NewThreadRepo(db *sql.DB) *ThreadRepo {
	return &ThreadRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// Create inserts a new thread authored by the given user.
func (r *ThreadRepo) Create(
	ctx context.Context,
	authorID int64,
	req *model.CreateThreadRequest,
) (*model.Thread, error) {
	if req == nil {
		return nil, errors.New("create thread request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.Thread
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			WITH inserted AS (
				INSERT INTO threads (author_id, title, body, created_at)
				VALUES ($1, $2, $3, $4)
				RETURNING id, author_id, title, body, created_at
			)
			SELECT inserted.id, inserted.author_id, u.name AS author_name,
			       inserted.title, inserted.body, inserted.created_at
			FROM inserted JOIN users u ON u.id = inserted.author_id`,
			authorID,
			strings.TrimSpace(req.Title),
			req.Body,
			r.timeProvider.Now().UTC(),
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Thread])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// List retrieves threads newest-first with pagination.
func (r *ThreadRepo) List(ctx context.Context, limit, offset int) ([]*model.Thread, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var rowsOut []model.Thread
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+threadColumns+`
			FROM threads t JOIN users u ON u.id = t.author_id
			ORDER BY t.created_at DESC LIMIT $1 OFFSET $2`,
			limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Thread])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", apperrors.MapDBError(err))
	}

	res := make([]*model.Thread, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}
