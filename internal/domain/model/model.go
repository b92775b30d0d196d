package model

// Package model contains the business entities surrounding the auth core.
// Handlers for these are thin: validate, call a repo, shape JSON.

import (
	"strings"
	"time"

	apperrors "github.com/syaquiii/innoventum-sub001/internal/errors"
)

// Course is a published course on the platform.
type Course struct {
	ID          int64      `json:"id" db:"id"`
	Title       string     `json:"title" db:"title"`
	Slug        string     `json:"slug" db:"slug"`
	Description string     `json:"description" db:"description"`
	MentorID    *int64     `json:"mentor_id,omitempty" db:"mentor_id"`
	Published   bool       `json:"published" db:"published"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// CreateCourseRequest carries the fields for creating a course.
type CreateCourseRequest struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	MentorID    *int64 `json:"mentor_id,omitempty"`
}

// Validate checks the request fields.
func (r *CreateCourseRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return apperrors.ValidationField("title", "Title is required.")
	}
	if strings.TrimSpace(r.Slug) == "" {
		return apperrors.ValidationField("slug", "Slug is required.")
	}
	return nil
}

// Mentor is a listed mentor profile.
type Mentor struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Expertise string    `json:"expertise" db:"expertise"`
	AvatarURL *string   `json:"avatar_url,omitempty" db:"avatar_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Thread is a forum thread.
type Thread struct {
	ID         int64     `json:"id" db:"id"`
	AuthorID   int64     `json:"author_id" db:"author_id"`
	AuthorName string    `json:"author_name" db:"author_name"`
	Title      string    `json:"title" db:"title"`
	Body       string    `json:"body" db:"body"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// CreateThreadRequest carries the fields for opening a thread. The author is
// taken from the session, never from the payload.
type CreateThreadRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Validate checks the request fields.
func (r *CreateThreadRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return apperrors.ValidationField("title", "Title is required.")
	}
	if strings.TrimSpace(r.Body) == "" {
		return apperrors.ValidationField("body", "Body is required.")
	}
	return nil
}
