package api

import (
	"encoding/json"
	"net/http"

	"github.com/pkom79/email-metrics-cloud-sub001/internal/audience"
	"github.com/pkom79/email-metrics-cloud-sub001/internal/engine"
	"github.com/pkom79/email-metrics-cloud-sub001/internal/stats"
)

// HandleDeadWeight runs the dead-weight audience analysis: the union of
// never-active stale profiles and long-dormant subscribers, priced against
// the subscription tier table.
//
//	GET /api/audience/dead-weight
func (h *Handlers) HandleDeadWeight(w http.ResponseWriter, r *http.Request) {
	h.respondCached(w, r, func() (interface{}, error) {
		d := h.Dataset()
		policy := audience.SegmentPolicy{
			StaleProfileDays: h.audienceCfg.StaleProfileDays,
			DormantDays:      h.audienceCfg.DormantDays,
		}
		if policy.StaleProfileDays <= 0 || policy.DormantDays <= 0 {
			policy = audience.DefaultSegmentPolicy()
		}
		anchor := d.ReferenceDate(engine.ScopeAll)
		return audience.AnalyzeDeadWeight(d.Subscribers(), anchor, policy, audience.DefaultPricingTiers), nil
	})
}

// HandleHighValue reports revenue concentration among high-CLV buyers.
//
//	GET /api/audience/high-value
func (h *Handlers) HandleHighValue(w http.ResponseWriter, r *http.Request) {
	h.respondCached(w, r, func() (interface{}, error) {
		return audience.AnalyzeHighValue(h.Dataset().Subscribers()), nil
	})
}

// significanceRequest carries two proportions to test. Alpha defaults
// to 0.05.
type significanceRequest struct {
	A     stats.Proportion `json:"a"`
	B     stats.Proportion `json:"b"`
	Alpha float64          `json:"alpha"`
}

// HandleSignificance runs a two-proportion z-test, typically on open or
// click counts from two campaigns or two periods.
//
//	POST /api/significance
func (h *Handlers) HandleSignificance(w http.ResponseWriter, r *http.Request) {
	var req significanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.A.Success < 0 || req.B.Success < 0 || req.A.Success > req.A.Total || req.B.Success > req.B.Total {
		respondError(w, http.StatusBadRequest, "successes must be between 0 and total")
		return
	}
	alpha := req.Alpha
	if alpha <= 0 || alpha >= 1 {
		alpha = 0.05
	}

	result := stats.TwoProportionZTest(req.A, req.B)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"z":           result.Z,
		"p":           result.P,
		"alpha":       alpha,
		"significant": result.Significant(alpha),
	})
}
