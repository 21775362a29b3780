package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/conorfennell/dailycards/internal/catalog"
	"github.com/conorfennell/dailycards/internal/config"
	"github.com/conorfennell/dailycards/internal/deck"
	"github.com/conorfennell/dailycards/internal/domain"
	"github.com/conorfennell/dailycards/internal/progress"
	"github.com/conorfennell/dailycards/internal/stats"
)

const maxBodyBytes = 1 << 20

var validate = validator.New()

// Server holds the dependencies for the HTTP server.
type Server struct {
	catalog  catalog.Loader
	tracker  *progress.Tracker
	selector deck.Selector
	deck     config.DeckConfig
	static   string
	now      func() time.Time
	router   chi.Router
}

// Option customizes a Server.
type Option func(*Server)

// WithClock replaces time.Now as the source of "today".
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithStaticDir serves files from dir for every non-API path.
func WithStaticDir(dir string) Option {
	return func(s *Server) { s.static = dir }
}

// NewServer creates and configures a new server.
func NewServer(loader catalog.Loader, tracker *progress.Tracker, deckCfg config.DeckConfig, opts ...Option) *Server {
	s := &Server{
		catalog:  loader,
		tracker:  tracker,
		selector: deck.Selector{
			TargetFallback: deckCfg.TargetFallback,
			NativeFallback: deckCfg.NativeFallback,
		},
		deck:     deckCfg,
		now:      time.Now,
		router:   chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(trace)
	s.router.Use(middleware.Recoverer)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/meta", s.handleGetMeta())
		r.Get("/cards", s.handleGetCards())
		r.Post("/progress/mark", s.handlePostMark())
		r.Post("/progress/reset", s.handlePostReset())
		r.Get("/progress/{profileID}", s.handleGetStats())

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, r, http.StatusNotFound, "Not found")
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
		})
	})

	if s.static != "" {
		s.router.Handle("/*", http.FileServer(http.Dir(s.static)))
	}
}

// today is the server's current UTC calendar date.
func (s *Server) today() time.Time {
	return s.now().UTC()
}

type metaResponse struct {
	Languages  []string              `json:"languages"`
	Categories []domain.CategoryInfo `json:"categories"`
}

// handleGetMeta lists the offered languages and the card categories.
func (s *Server) handleGetMeta() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, metaResponse{
			Languages:  s.deck.Languages,
			Categories: domain.Categories,
		})
	}
}

// handleGetCards returns the profile's deck for the requested day.
func (s *Server) handleGetCards() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		req := deck.Request{
			ProfileID:  valueOr(q.Get("profileId"), s.deck.Profile),
			Date:       valueOr(q.Get("date"), domain.DateKey(s.today())),
			Native:     valueOr(q.Get("native"), s.deck.Native),
			Target:     valueOr(q.Get("target"), s.deck.Target),
			Category:   valueOr(q.Get("category"), domain.AllCategories),
			UndoneOnly: q.Get("undoneOnly") == "true",
		}
		if err := validate.Var(req.Date, "datetime="+domain.DateLayout); err != nil {
			respondError(w, r, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}

		cards, err := s.catalog.LoadCatalog(r.Context())
		if err != nil {
			respondServerError(w, r, "Failed to load cards", err)
			return
		}
		profile, err := s.tracker.Profile(r.Context(), req.ProfileID)
		if err != nil {
			respondServerError(w, r, "Failed to load progress", err)
			return
		}

		respondJSON(w, http.StatusOK, s.selector.Select(cards, profile, req))
	}
}

type markRequest struct {
	ProfileID string        `json:"profileId" validate:"required"`
	Date      string        `json:"date" validate:"required,datetime=2006-01-02"`
	CardID    string        `json:"cardId" validate:"required"`
	Status    domain.Status `json:"status" validate:"required,oneof=learned difficult"`
}

type resetRequest struct {
	ProfileID string `json:"profileId" validate:"required"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

// handlePostMark records a learned or difficult mark.
func (s *Server) handlePostMark() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req markRequest
		if err := decodeAndValidate(w, r, &req); err != nil {
			respondError(w, r, http.StatusBadRequest, "Invalid payload")
			return
		}

		if err := s.tracker.Mark(r.Context(), req.ProfileID, req.Date, req.CardID, req.Status); err != nil {
			if errors.Is(err, progress.ErrUnknownStatus) {
				respondError(w, r, http.StatusBadRequest, "Invalid payload")
				return
			}
			respondServerError(w, r, "Failed to save progress", err)
			return
		}
		respondJSON(w, http.StatusOK, okResponse{OK: true})
	}
}

// handlePostReset clears one profile's progress.
func (s *Server) handlePostReset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resetRequest
		if err := decodeAndValidate(w, r, &req); err != nil {
			respondError(w, r, http.StatusBadRequest, "profileId required")
			return
		}

		if err := s.tracker.Reset(r.Context(), req.ProfileID); err != nil {
			respondServerError(w, r, "Failed to reset progress", err)
			return
		}
		respondJSON(w, http.StatusOK, okResponse{OK: true})
	}
}

// handleGetStats returns the profile's statistics for today, or for the
// day given in the date query parameter.
func (s *Server) handleGetStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profileID := chi.URLParam(r, "profileID")

		today := s.today()
		if raw := r.URL.Query().Get("date"); raw != "" {
			parsed, err := time.Parse(domain.DateLayout, raw)
			if err != nil {
				respondError(w, r, http.StatusBadRequest, "date must be YYYY-MM-DD")
				return
			}
			today = parsed
		}

		profile, err := s.tracker.Profile(r.Context(), profileID)
		if err != nil {
			respondServerError(w, r, "Failed to load progress", err)
			return
		}
		cards, err := s.catalog.LoadCatalog(r.Context())
		if err != nil {
			respondServerError(w, r, "Failed to load cards", err)
			return
		}

		respondJSON(w, http.StatusOK, stats.Compute(profile, len(cards), today))
	}
}

// decodeAndValidate reads a JSON body into v and validates it. An empty
// body decodes as an empty object.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return validate.Struct(v)
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
