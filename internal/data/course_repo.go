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

const courseColumns = `id, title, slug, description, mentor_id, published, created_at, updated_at`

// CourseRepo provides database operations for courses.
type CourseRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewCourseRepo creates a new CourseRepo.
func NewCourseRepo(db *sql.DB) *CourseRepo {
	return &CourseRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// Create inserts a new course.
func (r *CourseRepo) Create(ctx context.Context, req *model.CreateCourseRequest) (*model.Course, error) {
	if req == nil {
		return nil, errors.New("create course request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out model.Course
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			INSERT INTO courses (title, slug, description, mentor_id, published, created_at)
			VALUES ($1, $2, $3, $4, false, $5)
			RETURNING `+courseColumns,
			strings.TrimSpace(req.Title),
			strings.TrimSpace(req.Slug),
			req.Description,
			req.MentorID,
			r.timeProvider.Now().UTC(),
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Course])
		return err
	}); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return &out, nil
}

// GetBySlug retrieves a published course by slug.
func (r *CourseRepo) GetBySlug(ctx context.Context, slug string) (*model.Course, error) {
	var out model.Course
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+courseColumns+` FROM courses WHERE slug = $1`, slug)
		if err != nil {
			return err
		}
		defer rows.Close()
		out, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Course])
		return err
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFoundf("Course %q not found", slug)
		}
		return nil, fmt.Errorf("failed to get course: %w", apperrors.MapDBError(err))
	}
	return &out, nil
}

// List retrieves published courses with pagination.
func (r *CourseRepo) List(ctx context.Context, limit, offset int) ([]*model.Course, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var rowsOut []model.Course
	if err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx,
			`SELECT `+courseColumns+` FROM courses WHERE published ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
			limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()
		rowsOut, err = pgx.CollectRows(rows, pgx.RowToStructByName[model.Course])
		return err
	}); err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", apperrors.MapDBError(err))
	}

	res := make([]*model.Course, len(rowsOut))
	for i := range rowsOut {
		res[i] = &rowsOut[i]
	}
	return res, nil
}
