package service

// Thin orchestration over the collaborator repos. These services exist so
// handlers depend on narrow interfaces rather than concrete repos.

import (
	"context"

	"github.com/syaquiii/innoventum-sub001/internal/domain/model"
)

// CourseRepository is the data boundary for courses.
type CourseRepository interface {
	Create(ctx context.Context, req *model.CreateCourseRequest) (*model.Course, error)
	GetBySlug(ctx context.Context, slug string) (*model.Course, error)
	List(ctx context.Context, limit, offset int) ([]*model.Course, error)
}

// ThreadRepository is the data boundary for forum threads.
type ThreadRepository interface {
	Create(ctx context.Context, authorID int64, req *model.CreateThreadRequest) (*model.Thread, error)
	List(ctx context.Context, limit, offset int) ([]*model.Thread, error)
}

// MentorRepository is the data boundary for mentor listings.
type MentorRepository interface {
	List(ctx context.Context, limit, offset int) ([]*model.Mentor, error)
}

// CatalogService exposes the course/mentor/forum surface.
type CatalogService struct {
	courses CourseRepository
	threads ThreadRepository
	mentors MentorRepository
}

// CatalogServiceOptions groups dependencies for CatalogService.
type CatalogServiceOptions struct {
	Courses CourseRepository
	Threads ThreadRepository
	Mentors MentorRepository
}

// NewCatalogService constructs a new CatalogService.
func NewCatalogService(opts CatalogServiceOptions) *CatalogService {
	return &CatalogService{courses: opts.Courses, threads: opts.Threads, mentors: opts.Mentors}
}

// ListCourses returns published courses.
func (s *CatalogService) ListCourses(ctx context.Context, limit, offset int) ([]*model.Course, error) {
	return s.courses.List(ctx, limit, offset)
}

// GetCourse returns a course by slug.
func (s *CatalogService) GetCourse(ctx context.Context, slug string) (*model.Course, error) {
	return s.courses.GetBySlug(ctx, slug)
}

// CreateCourse creates a course (admin surface).
func (s *CatalogService) CreateCourse(
	ctx context.Context,
	req *model.CreateCourseRequest,
) (*model.Course, error) {
	return s.courses.Create(ctx, req)
}

// ListThreads returns forum threads newest-first.
func (s *CatalogService) ListThreads(ctx context.Context, limit, offset int) ([]*model.Thread, error) {
	return s.threads.List(ctx, limit, offset)
}

// CreateThread opens a thread for the authenticated author.
func (s *CatalogService) CreateThread(
	ctx context.Context,
	authorID int64,
	req *model.CreateThreadRequest,
) (*model.Thread, error) {
	return s.threads.Create(ctx, authorID, req)
}

// ListMentors returns the mentor directory.
func (s *CatalogService) ListMentors(ctx context.Context, limit, offset int) ([]*model.Mentor, error) {
	return s.mentors.List(ctx, limit, offset)
}
