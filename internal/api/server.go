// Package api exposes the read-only HTTP interface over stored draw
// records.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/drawfeed/drawfeed/internal/draw"
	"github.com/drawfeed/drawfeed/internal/metrics"
)

// sectionsPerDay is the number of draws the publisher runs per day; the
// latest-day view is always padded to this length.
const sectionsPerDay = 8

var datePathRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Store is the read surface the API serves from.
type Store interface {
	Latest(ctx context.Context) (*draw.StoredRecord, error)
	ByDate(ctx context.Context, date string) ([]draw.StoredRecord, error)
	Past(ctx context.Context, days int) ([]draw.StoredRecord, error)
	RowCount(ctx context.Context) (int64, error)
}

// Scraper triggers a scrape pass on demand, used when /api/latest finds an
// empty store.
type Scraper interface {
	Run(ctx context.Context) (draw.RunReport, error)
}

// Server wires HTTP handlers to the store.
type Server struct {
	router  chi.Router
	store   Store
	scraper Scraper
	clock   draw.Clock
	logger  *zap.Logger
}

// NewServer constructs a Server with middleware and routes. scraper may be
// nil to disable scrape-on-miss.
func NewServer(store Store, scraper Scraper, clock draw.Clock, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		store:   store,
		scraper: scraper,
		clock:   clock,
		logger:  logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(metrics.Middleware)
	r.Use(s.logRequests)

	r.Get("/healthz", s.healthz)
	r.Get("/debug/db", s.debugDB)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/latest", s.latest)
		r.Get("/latest-day", s.latestDay)
		r.Get("/past", s.past)
		r.Get("/by-date", s.byDate)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) debugDB(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.RowCount(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "row count failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": rows})
}

func (s *Server) latest(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Latest(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	if rec == nil && s.scraper != nil {
		// Empty store: try to seed it with a live scrape before
		// answering, mirroring a cold-start deployment.
		if _, err := s.scraper.Run(r.Context()); err != nil {
			s.logger.Warn("scrape-on-miss failed", zap.Error(err))
		}
		if rec, err = s.store.Latest(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, "query failed")
			return
		}
	}
	if rec == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, toDTO(*rec))
}

type daySection struct {
	Number int    `json:"number"`
	Field1 string `json:"field1"`
	Field2 string `json:"field2"`
	Time   string `json:"time"`
}

func (s *Server) latestDay(w http.ResponseWriter, r *http.Request) {
	today := s.clock.Now().Format("2006-01-02")
	records, err := s.store.ByDate(r.Context(), today)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	sections := make([]daySection, 0, sectionsPerDay)
	for i := 0; i < sectionsPerDay; i++ {
		section := daySection{Number: i + 1, Field1: "-", Field2: "-", Time: "-"}
		if i < len(records) {
			rec := records[i]
			if rec.DrawTime != "" {
				section.Time = rec.DrawTime
			}
			section.Field1, section.Field2 = splitResult(rec.ResultText)
		}
		sections = append(sections, section)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"date":          today,
		"dateFormatted": s.clock.Now().Format("Monday, 02 January 2006"),
		"sections":      sections,
	})
}

func (s *Server) past(w http.ResponseWriter, r *http.Request) {
	days := 60
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 365 {
			writeError(w, http.StatusBadRequest, "days must be between 1 and 365")
			return
		}
		days = parsed
	}
	records, err := s.store.Past(r.Context(), days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, toDTOs(records))
}

func (s *Server) byDate(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if !datePathRe.MatchString(date) {
		writeError(w, http.StatusBadRequest, "date must look like 2026-02-10")
		return
	}
	records, err := s.store.ByDate(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, toDTOs(records))
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request served",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

// recordDTO is the public projection of a stored record; the origin URL
// stays internal.
type recordDTO struct {
	ID         int64  `json:"id"`
	DrawDate   string `json:"draw_date"`
	DrawTime   string `json:"draw_time,omitempty"`
	ResultText string `json:"result_text"`
	Signature  string `json:"signature"`
	CreatedAt  int64  `json:"created_at"`
}

func toDTO(rec draw.StoredRecord) recordDTO {
	return recordDTO{
		ID:         rec.ID,
		DrawDate:   rec.DrawDate,
		DrawTime:   rec.DrawTime,
		ResultText: rec.ResultText,
		Signature:  rec.Signature,
		CreatedAt:  rec.CreatedAt,
	}
}

func toDTOs(records []draw.StoredRecord) []recordDTO {
	out := make([]recordDTO, 0, len(records))
	for _, rec := range records {
		out = append(out, toDTO(rec))
	}
	return out
}

func splitResult(result string) (string, string) {
	parts := strings.SplitN(result, "-", 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return strings.TrimSpace(result), "-"
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
