// Package server exposes the dashboard loads as a JSON HTTP API.
//
// Routes:
//
//	GET /api/vacancies   one filtered listing page
//	GET /api/statistics  aggregated statistics over a sample of pages
//	GET /api/provinces   province list for the filter selectors
//	GET /health          liveness
//	GET /metrics         prometheus metrics
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/spigell/maganghub/internal/dashboard"
	"github.com/spigell/maganghub/internal/maganghub"
)

// MaxStatisticsPages bounds how many pages a single statistics request may sample.
const MaxStatisticsPages = 50

// MaxPageSize caps limit and page_size; the portal offers 20, 50 or 100 per page.
const MaxPageSize = 100

// Loader is implemented by *dashboard.Service.
type Loader interface {
	Listing(ctx context.Context, req dashboard.ListingRequest) (*dashboard.Listing, error)
	Statistics(ctx context.Context, req dashboard.StatisticsRequest) (*dashboard.Report, error)
	Provinces(ctx context.Context) []maganghub.Province
}

type Handler struct {
	loader Loader
	logger *zap.Logger
}

func NewHandler(loader Loader, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{loader: loader, logger: logger}
}

// RegisterRoutes mounts all routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/vacancies", h.handleVacancies)
	mux.HandleFunc("GET /api/statistics", h.handleStatistics)
	mux.HandleFunc("GET /api/provinces", h.handleProvinces)
	mux.HandleFunc("GET /health", healthHandler)
	mux.Handle("GET /metrics", promhttp.Handler())
}

// New returns an http.Server serving the API on addr.
func New(addr string, loader Loader, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	NewHandler(loader, logger).RegisterRoutes(mux)

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		// statistics loads page through the upstream API
		WriteTimeout: 2 * time.Minute,
	}
}

func (h *Handler) handleVacancies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, err := intParam(q, "page")
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	limit, err := intParam(q, "limit")
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if limit > MaxPageSize {
		jsonError(w, fmt.Sprintf("limit must not exceed %d", MaxPageSize), http.StatusBadRequest)
		return
	}

	req := dashboard.ListingRequest{
		Page: page,
		Filter: maganghub.PageFilter{
			Province:       q.Get("province"),
			Keyword:        q.Get("keyword"),
			OrderBy:        q.Get("order_by"),
			OrderDirection: q.Get("order_direction"),
			Limit:          limit,
			Opportunity:    q.Get("opportunity"),
		},
	}

	listing, err := h.loader.Listing(r.Context(), req)
	if err != nil {
		h.loadError(w, err)
		return
	}

	jsonOK(w, listing)
}

func (h *Handler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	pages, err := intParam(q, "pages")
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if pages > MaxStatisticsPages {
		jsonError(w, fmt.Sprintf("pages must not exceed %d", MaxStatisticsPages), http.StatusBadRequest)
		return
	}
	pageSize, err := intParam(q, "page_size")
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if pageSize > MaxPageSize {
		jsonError(w, fmt.Sprintf("page_size must not exceed %d", MaxPageSize), http.StatusBadRequest)
		return
	}

	report, err := h.loader.Statistics(r.Context(), dashboard.StatisticsRequest{
		Province: q.Get("province"),
		Pages:    pages,
		PageSize: pageSize,
	})
	if err != nil {
		h.loadError(w, err)
		return
	}

	jsonOK(w, report)
}

func (h *Handler) handleProvinces(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, h.loader.Provinces(r.Context()))
}

func (h *Handler) loadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, dashboard.ErrInvalidFilter):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, dashboard.ErrLoadFailed):
		jsonError(w, dashboard.ErrLoadFailed.Error(), http.StatusBadGateway)
	default:
		h.logger.Error("unexpected load error", zap.Error(err))
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

func intParam(q url.Values, name string) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return v, nil
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	jsonOK(w, map[string]string{"status": "ok"})
}

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
