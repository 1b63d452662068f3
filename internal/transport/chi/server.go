// Package chi exposes the cached catalog, recommendations and sync controls
// over a JSON HTTP API.
package chi

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/careerdex/internal/domain"
	"github.com/kailas-cloud/careerdex/internal/domain/catalog"
	"github.com/kailas-cloud/careerdex/internal/domain/match"
	"github.com/kailas-cloud/careerdex/internal/domain/profile"
	domrefresh "github.com/kailas-cloud/careerdex/internal/domain/refresh"
	logpkg "github.com/kailas-cloud/careerdex/internal/logger"
	"github.com/kailas-cloud/careerdex/internal/metrics"
	healthuc "github.com/kailas-cloud/careerdex/internal/usecase/health"
	"github.com/kailas-cloud/careerdex/internal/usecase/recommend"
)

const maxBodyBytes = 1 << 20

// Server handles the HTTP API.
type Server struct {
	collections   CollectionReader
	recommender   Recommender
	syncer        Syncer
	users         UserStore
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	collections CollectionReader,
	recommender Recommender,
	syncer Syncer,
	users UserStore,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	return &Server{
		collections:   collections,
		recommender:   recommender,
		syncer:        syncer,
		users:         users,
		health:        health,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Router returns the chi router with middleware and every route mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(s.logger))
	r.Use(metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Get("/status", s.SyncStatus)

	r.Get("/collections/{name}", s.GetCollection)
	r.Post("/recommendations/{kind}", s.Recommend)

	r.Post("/sync", s.Sync)
	r.Post("/sync/{name}/written", s.CollectionWritten)

	r.Get("/users/{id}", s.GetUser)
	r.Put("/users/{id}", s.PutUser)
	return r
}

// GetCollection handles GET /collections/{name}. The snapshot is written as
// stored; X-Cache-Tier names the tier that served it.
func (s *Server) GetCollection(w http.ResponseWriter, r *http.Request) {
	name := catalog.CollectionName(chi.URLParam(r, "name"))
	if !name.IsValid() {
		writeError(w, http.StatusNotFound, CodeUnknownCollection, "unknown collection: "+string(name))
		return
	}

	read, err := s.collections.Get(r.Context(), name)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache-Tier", string(read.Tier))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(read.Data)
}

// RecommendRequest is the body of POST /recommendations/{kind}.
// Profile wins over UserID when both are set.
type RecommendRequest struct {
	Profile map[string]float64 `json:"profile,omitempty"`
	UserID  string             `json:"userId,omitempty"`
}

// RecommendResponse lists scored entries, best first unless the profile is empty.
type RecommendResponse struct {
	Kind  match.Kind                 `json:"kind"`
	Items []recommend.Recommendation `json:"items"`
}

// Recommend handles POST /recommendations/{kind}.
func (s *Server) Recommend(w http.ResponseWriter, r *http.Request) {
	kind, err := match.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusNotFound, CodeNotFound, err.Error())
		return
	}

	var req RecommendRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	p := profile.Profile(req.Profile)
	if len(p) == 0 && req.UserID != "" {
		p, err = s.recommender.ProfileFor(r.Context(), req.UserID)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}
	}

	items, err := s.recommender.Recommend(r.Context(), kind, p)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RecommendResponse{Kind: kind, Items: items})
}

// SyncRequest is the optional body of POST /sync.
type SyncRequest struct {
	Collections []string `json:"collections,omitempty"`
}

// Sync handles POST /sync. Failures are reported per collection, never as an error status.
func (s *Server) Sync(w http.ResponseWriter, r *http.Request) {
	var req SyncRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	names := make([]catalog.CollectionName, 0, len(req.Collections))
	for _, raw := range req.Collections {
		name, err := catalog.ParseCollectionName(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeUnknownCollection, err.Error())
			return
		}
		names = append(names, name)
	}

	ctx := logpkg.With(r.Context(), zap.Strings("collections", req.Collections))
	report := s.syncer.Refresh(ctx, names...)
	logpkg.FromContext(ctx).Info("Manual sync finished",
		zap.Bool("skipped", report.Skipped),
		zap.Int("failed", len(report.Failed())),
	)
	writeJSON(w, http.StatusOK, reportToDTO(report))
}

// CollectionWritten handles POST /sync/{name}/written: bump the remote
// version and refresh the collection after an external write.
func (s *Server) CollectionWritten(w http.ResponseWriter, r *http.Request) {
	name, err := catalog.ParseCollectionName(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, http.StatusNotFound, CodeUnknownCollection, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, reportToDTO(s.syncer.AfterWrite(r.Context(), name)))
}

// StatusResponse backs an offline/syncing indicator.
type StatusResponse struct {
	Online      bool       `json:"online"`
	Syncing     bool       `json:"syncing"`
	LastRefresh *time.Time `json:"lastRefresh,omitempty"`
	LastReport  *ReportDTO `json:"lastReport,omitempty"`
}

// SyncStatus handles GET /status.
func (s *Server) SyncStatus(w http.ResponseWriter, _ *http.Request) {
	st := s.syncer.Status()
	resp := StatusResponse{Online: st.Online, Syncing: st.Syncing}
	if !st.LastRefresh.IsZero() {
		t := st.LastRefresh
		resp.LastRefresh = &t
	}
	if st.LastReport != nil {
		dto := reportToDTO(*st.LastReport)
		resp.LastReport = &dto
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetUser handles GET /users/{id}. Unknown users get an empty record.
func (s *Server) GetUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// PutUser handles PUT /users/{id}. The path id wins over the body.
func (s *Server) PutUser(w http.ResponseWriter, r *http.Request) {
	var u profile.UserData
	if err := decodeBody(r, &u); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	u.UserID = chi.URLParam(r, "id")
	if u.Coins < 0 {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "coins must be non-negative")
		return
	}
	u.Normalize()

	if err := s.users.Put(r.Context(), u); err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status healthuc.Status                 `json:"status"`
	Checks map[string]healthuc.CheckResult `json:"checks"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{Status: report.Status, Checks: report.Checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// OutcomeDTO is one collection result in a sync report.
type OutcomeDTO struct {
	Collection string  `json:"collection"`
	Status     string  `json:"status"`
	Records    int     `json:"records"`
	DurationMs float64 `json:"durationMs"`
	Error      string  `json:"error,omitempty"`
}

// ReportDTO is the wire form of a sync report.
type ReportDTO struct {
	Trigger    string       `json:"trigger"`
	StartedAt  time.Time    `json:"startedAt"`
	FinishedAt time.Time    `json:"finishedAt"`
	Skipped    bool         `json:"skipped"`
	OK         bool         `json:"ok"`
	Outcomes   []OutcomeDTO `json:"outcomes"`
}

func reportToDTO(r domrefresh.Report) ReportDTO {
	dto := ReportDTO{
		Trigger:    string(r.Trigger),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Skipped:    r.Skipped,
		OK:         r.OK(),
		Outcomes:   make([]OutcomeDTO, 0, len(r.Outcomes)),
	}
	for _, o := range r.Outcomes {
		item := OutcomeDTO{
			Collection: string(o.Collection()),
			Status:     string(o.Status()),
			Records:    o.Records(),
			DurationMs: float64(o.Duration().Microseconds()) / 1000,
		}
		if o.Err() != nil {
			item.Error = outcomeMessage(o.Err())
		}
		dto.Outcomes = append(dto.Outcomes, item)
	}
	return dto
}

// outcomeMessage keeps sentinel causes readable without leaking backend details.
func outcomeMessage(err error) string {
	msg := safeDomainMessage(err)
	if msg == "internal error" {
		for _, s := range []error{domain.ErrAggregation, domain.ErrMalformedSnapshot} {
			if errors.Is(err, s) {
				return s.Error()
			}
		}
		return "refresh failed"
	}
	return msg
}

// decodeBody decodes an optional JSON body. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}
