package httpx

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/syaquiii/innoventum-sub001/internal/domain/model"
	apperrors "github.com/syaquiii/innoventum-sub001/internal/errors"
	"github.com/syaquiii/innoventum-sub001/internal/service"
)

const (
	maxCatalogListLimit = 100 // Maximum number of rows that can be requested in one call
)

// CatalogHandlers provides HTTP handlers for the course/mentor/forum surface.
type CatalogHandlers struct {
	Svc *service.CatalogService
}

// ListCourses handles HTTP requests to list published courses with pagination.
func (h *CatalogHandlers) ListCourses(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, 20, maxCatalogListLimit)

	courses, err := h.Svc.ListCourses(r.Context(), limit, offset)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "list_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"courses": courses,
		"limit":   limit,
		"offset":  offset,
	})
}

// GetCourse handles HTTP requests to fetch a course by slug.
func (h *CatalogHandlers) GetCourse(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("course slug is required")},
		)
		return
	}

	course, err := h.Svc.GetCourse(r.Context(), slug)
	if err != nil {
		if apperrors.IsNotFound(err) {
			WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "course_not_found", Err: err})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "get_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, course)
}

// CreateCourse handles HTTP requests to create a course. Admin only; role
// enforcement lives in the route registration.
func (h *CatalogHandlers) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCourseRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
		return
	}

	course, err := h.Svc.CreateCourse(r.Context(), &req)
	if err != nil {
		switch {
		case apperrors.IsConflict(err):
			WriteError(w, ErrorParams{Code: http.StatusConflict, ErrCode: "slug_conflict", Err: err})
		case apperrors.IsForeignKey(err):
			WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "unknown_mentor", Err: err})
		default:
			WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "create_failed", Err: err})
		}
		return
	}

	WriteJSON(w, http.StatusCreated, course)
}

// ListThreads handles HTTP requests to list forum threads, newest first.
func (h *CatalogHandlers) ListThreads(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, 20, maxCatalogListLimit)

	threads, err := h.Svc.ListThreads(r.Context(), limit, offset)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "list_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"threads": threads,
		"limit":   limit,
		"offset":  offset,
	})
}

// CreateThread handles HTTP requests to open a thread. The author comes from
// the session claims, never the payload.
func (h *CatalogHandlers) CreateThread(w http.ResponseWriter, r *http.Request) {
	claims, ok := GetClaimsFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}
	authorID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	var req model.CreateThreadRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
		return
	}

	thread, err := h.Svc.CreateThread(r.Context(), authorID, &req)
	if err != nil {
		if apperrors.IsForeignKey(err) {
			WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "unknown_author", Err: err})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "create_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusCreated, thread)
}

// ListMentors handles HTTP requests to list the mentor directory.
func (h *CatalogHandlers) ListMentors(w http.ResponseWriter, r *http.Request) {
	limit, offset := ParseLimitOffset(r, 20, maxCatalogListLimit)

	mentors, err := h.Svc.ListMentors(r.Context(), limit, offset)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "list_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"mentors": mentors,
		"limit":   limit,
		"offset":  offset,
	})
}
