// Package chi is the HTTP surface of the catalog API: route wiring, query
// parameter validation, role gating and domain-error translation.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cinedex-cloud/cinedex/internal/domain"
	domcat "github.com/cinedex-cloud/cinedex/internal/domain/category"
	domcontrib "github.com/cinedex-cloud/cinedex/internal/domain/contributor"
	"github.com/cinedex-cloud/cinedex/internal/domain/search"
	domwork "github.com/cinedex-cloud/cinedex/internal/domain/work"
)

// WorkService is the work use case consumed by the transport.
type WorkService interface {
	GetByID(ctx context.Context, id string) (domwork.Work, error)
	List(ctx context.Context, p search.Params) ([]domwork.Preview, error)
	Search(ctx context.Context, p search.Params) ([]domwork.Preview, error)
}

// CategoryService is the category use case consumed by the transport.
type CategoryService interface {
	GetByID(ctx context.Context, id string) (domcat.Category, error)
	List(ctx context.Context, p search.Params) ([]domcat.Category, error)
	Popularity(ctx context.Context, id string) (int64, error)
}

// ContributorService is the contributor use case consumed by the transport.
type ContributorService interface {
	GetByID(ctx context.Context, id string) (domcontrib.Contributor, error)
	Search(ctx context.Context, p search.Params) ([]domcontrib.Contributor, error)
}

// Gate authorizes a caller for an endpoint's permitted roles.
type Gate interface {
	Allow(ctx context.Context, token string, roles []string) error
}

// Server exposes the catalog query API.
type Server struct {
	works        WorkService
	categories   CategoryService
	contributors ContributorService
	gate         Gate
	paging       pageDefaults
	logger       *zap.Logger
}

// NewServer creates the HTTP API server.
func NewServer(
	works WorkService,
	categories CategoryService,
	contributors ContributorService,
	gate Gate,
	defaultPageSize, maxPageSize int,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		works:        works,
		categories:   categories,
		contributors: contributors,
		gate:         gate,
		paging:       pageDefaults{Size: defaultPageSize, MaxSize: maxPageSize},
		logger:       logger,
	}
}

// Mount attaches the v1 API routes to the router.
func (s *Server) Mount(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/works", func(r chi.Router) {
			r.Get("/", s.listWorks)
			r.Get("/search", s.searchWorks)
			r.With(s.requireRoles("user")).Get("/{id}", s.getWork)
		})
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.listCategories)
			r.With(s.requireRoles("user")).Get("/{id}", s.getCategory)
		})
		r.Route("/contributors", func(r chi.Router) {
			r.Get("/search", s.searchContributors)
			r.With(s.requireRoles("user")).Get("/{id}", s.getContributor)
		})
	})
}

// requireRoles consults the gate before the handler runs. Role sets
// containing the guest role are skipped inside the gate itself.
func (s *Server) requireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := s.gate.Allow(r.Context(), bearerToken(r), roles); err != nil {
				s.handleError(w, err, "request")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return header[len(prefix):]
}

// --- works ---

func (s *Server) getWork(w http.ResponseWriter, r *http.Request) {
	item, err := s.works.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleError(w, err, "work")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) listWorks(w http.ResponseWriter, r *http.Request) {
	p, err := parseListParams(r, s.paging)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := s.works.List(r.Context(), p)
	if err != nil {
		s.handleError(w, err, "work")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) searchWorks(w http.ResponseWriter, r *http.Request) {
	p, err := parseListParams(r, s.paging)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := s.works.Search(r.Context(), p)
	if err != nil {
		s.handleError(w, err, "work")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// --- categories ---

// categoryResponse augments the stored category with its derived
// popularity aggregate.
type categoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Popularity  int64  `json:"popularity"`
}

func (s *Server) getCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	item, err := s.categories.GetByID(r.Context(), id)
	if err != nil {
		s.handleError(w, err, "category")
		return
	}
	popularity, err := s.categories.Popularity(r.Context(), id)
	if err != nil {
		s.handleError(w, err, "category")
		return
	}

	writeJSON(w, http.StatusOK, categoryResponse{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Popularity:  popularity,
	})
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	p, err := parseListParams(r, s.paging)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := s.categories.List(r.Context(), p)
	if err != nil {
		s.handleError(w, err, "category")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// --- contributors ---

func (s *Server) getContributor(w http.ResponseWriter, r *http.Request) {
	item, err := s.contributors.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleError(w, err, "contributor")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) searchContributors(w http.ResponseWriter, r *http.Request) {
	p, err := parseListParams(r, s.paging)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	items, err := s.contributors.Search(r.Context(), p)
	if err != nil {
		s.handleError(w, err, "contributor")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// --- error translation ---

// handleError maps the domain taxonomy to HTTP statuses. The entity name
// shows up in not-found bodies ("work not found").
func (s *Server) handleError(w http.ResponseWriter, err error, entity string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeDetail(w, http.StatusNotFound, entity+" not found")
	case errors.Is(err, domain.ErrMalformedQuery):
		writeDetail(w, http.StatusBadRequest, "malformed query")
	case errors.Is(err, domain.ErrAuthenticationRequired):
		writeDetail(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, domain.ErrForbidden):
		writeDetail(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, domain.ErrServiceUnavailable):
		writeDetail(w, http.StatusBadGateway, "service unavailable")
	default:
		s.logger.Error("unhandled error", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "internal error")
	}
}

type detailResponse struct {
	Detail string `json:"detail"`
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, detailResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
