// Package api exposes the analytics engine over HTTP: CSV imports, the
// dashboard aggregate, time series, period comparisons, breakdowns,
// audience analysis, and snapshot persistence.
package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/pkom79/email-metrics-cloud-sub001/internal/config"
	"github.com/pkom79/email-metrics-cloud-sub001/internal/engine"
	"github.com/pkom79/email-metrics-cloud-sub001/internal/repository/postgres"
	"github.com/pkom79/email-metrics-cloud-sub001/internal/storage"
)

// Handlers contains all HTTP handlers and the in-memory session state.
// The dataset is replaced wholesale on import or snapshot restore; reads
// take the lock briefly to grab the current pointer.
type Handlers struct {
	mu      sync.RWMutex
	dataset *engine.Dataset

	store     *storage.Storage
	cache     *Cache
	importLog *postgres.ImportRepo

	engineCfg   config.EngineConfig
	audienceCfg config.AudienceConfig

	startTime time.Time
}

// NewHandlers creates a Handlers instance with an empty dataset.
func NewHandlers(store *storage.Storage, cfg *config.Config) *Handlers {
	return &Handlers{
		dataset:     engine.NewDataset(nil, nil, nil),
		store:       store,
		engineCfg:   cfg.Engine,
		audienceCfg: cfg.Audience,
		startTime:   time.Now(),
	}
}

// SetCache attaches the optional Redis response cache.
func (h *Handlers) SetCache(c *Cache) { h.cache = c }

// SetImportLog attaches the optional Postgres import log.
func (h *Handlers) SetImportLog(repo *postgres.ImportRepo) { h.importLog = repo }

// Dataset returns the current session dataset.
func (h *Handlers) Dataset() *engine.Dataset {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dataset
}

// ReplaceDataset swaps in a new session dataset and invalidates cached
// query responses.
func (h *Handlers) ReplaceDataset(r *http.Request, d *engine.Dataset) {
	h.mu.Lock()
	h.dataset = d
	h.mu.Unlock()
	if h.cache != nil {
		h.cache.Invalidate(r.Context())
	}
}

// HealthCheck reports liveness and the loaded record counts.
//
//	GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	d := h.Dataset()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"uptime":      time.Since(h.startTime).Round(time.Second).String(),
		"campaigns":   len(d.Campaigns()),
		"flows":       len(d.Flows()),
		"subscribers": len(d.Subscribers()),
	})
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondCached serves a query endpoint through the response cache when
// one is attached. The build function runs only on a miss.
func (h *Handlers) respondCached(w http.ResponseWriter, r *http.Request, build func() (interface{}, error)) {
	var key string
	if h.cache != nil {
		key = h.cache.Key(r.Context(), r.URL.RequestURI())
		if body, ok := h.cache.Get(r.Context(), key); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "hit")
			w.WriteHeader(http.StatusOK)
			w.Write(body)
			return
		}
	}

	data, err := build()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	body, err := json.Marshal(data)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "encode response")
		return
	}
	if h.cache != nil {
		h.cache.Set(r.Context(), key, body)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// Query parameter helpers

// scopeFromQuery reads channel/flow filters. Unknown channels fall back to
// "all" rather than erroring; the dashboard sends them straight from UI
// state.
func scopeFromQuery(r *http.Request) engine.Scope {
	scope := engine.Scope{Channel: engine.FilterAll}
	switch r.URL.Query().Get("channel") {
	case "campaigns":
		scope.Channel = engine.FilterCampaigns
	case "flows":
		scope.Channel = engine.FilterFlows
		scope.FlowName = r.URL.Query().Get("flow")
	}
	return scope
}

// rangeFromQuery resolves the query window: an explicit from/to pair wins
// over a preset, and the preset defaults to 30d.
func rangeFromQuery(r *http.Request, d *engine.Dataset, scope engine.Scope) (engine.DateRange, error) {
	q := r.URL.Query()
	if from, to := q.Get("from"), q.Get("to"); from != "" || to != "" {
		return engine.ParseCustomRange(from, to)
	}
	preset := q.Get("range")
	if preset == "" {
		preset = "30d"
	}
	return d.ResolveRange(scope, preset)
}

// pickGranularity applies the configured cutoffs, falling back to the
// engine defaults when unset.
func (h *Handlers) pickGranularity(spanDays int) engine.Granularity {
	daily, weekly := h.engineCfg.DailyMaxDays, h.engineCfg.WeeklyMaxDays
	if daily <= 0 || weekly <= daily {
		return engine.PickGranularity(spanDays)
	}
	switch {
	case spanDays <= daily:
		return engine.GranularityDaily
	case spanDays <= weekly:
		return engine.GranularityWeekly
	default:
		return engine.GranularityMonthly
	}
}

func metricFromQuery(r *http.Request, fallback engine.MetricKey) (engine.MetricKey, error) {
	raw := r.URL.Query().Get("metric")
	if raw == "" {
		return fallback, nil
	}
	return engine.ParseMetricKey(raw)
}
