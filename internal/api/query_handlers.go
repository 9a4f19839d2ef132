package api

import (
	"fmt"
	"net/http"

	"github.com/pkom79/email-metrics-cloud-sub001/internal/engine"
)

// HandleDashboard returns the aggregate totals and derived metrics for the
// scoped records in the requested window, plus per-metric comparisons
// against the previous period.
//
//	GET /api/dashboard?channel=all&range=30d
func (h *Handlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	h.respondCached(w, r, func() (interface{}, error) {
		d := h.Dataset()
		scope := scopeFromQuery(r)
		rng, err := rangeFromQuery(r, d, scope)
		if err != nil {
			return nil, err
		}

		records := engine.RecordsInRange(d.Records(scope), rng.From, rng.To)
		totals, derived := engine.AggregateAndDerive(records)

		comparisons := make(map[engine.MetricKey]engine.Comparison)
		if !rng.AllTime {
			for _, key := range engine.AllMetricKeys() {
				cmp, err := d.CompareCustom(key,
					rng.From.Format("2006-01-02"), rng.To.Format("2006-01-02"))
				if err != nil {
					continue
				}
				comparisons[key] = cmp
			}
		}

		return map[string]interface{}{
			"range":        rng,
			"scope":        scope,
			"record_count": len(records),
			"totals":       totals,
			"derived":      derived,
			"comparisons":  comparisons,
		}, nil
	})
}

// HandleSeries returns a bucketed time series for one metric. Granularity
// is auto-selected from the span unless overridden.
//
//	GET /api/series?metric=revenue&channel=all&range=90d&granularity=weekly
func (h *Handlers) HandleSeries(w http.ResponseWriter, r *http.Request) {
	h.respondCached(w, r, func() (interface{}, error) {
		d := h.Dataset()
		scope := scopeFromQuery(r)
		rng, err := rangeFromQuery(r, d, scope)
		if err != nil {
			return nil, err
		}
		key, err := metricFromQuery(r, engine.MetricRevenue)
		if err != nil {
			return nil, err
		}

		granularity := h.pickGranularity(rng.Days)
		if raw := r.URL.Query().Get("granularity"); raw != "" {
			g, ok := engine.ParseGranularity(raw)
			if !ok {
				return nil, fmt.Errorf("unknown granularity %q", raw)
			}
			granularity = g
		}

		points := engine.BuildSeries(d.Records(scope), key, rng.From, rng.To, granularity)
		return map[string]interface{}{
			"metric":      key,
			"granularity": granularity,
			"range":       rng,
			"points":      points,
		}, nil
	})
}

// HandleCompare compares one metric between the requested window and the
// preceding window of equal length.
//
//	GET /api/compare?metric=open_rate&range=30d
//	GET /api/compare?metric=open_rate&from=2024-03-01&to=2024-03-10
func (h *Handlers) HandleCompare(w http.ResponseWriter, r *http.Request) {
	h.respondCached(w, r, func() (interface{}, error) {
		d := h.Dataset()
		key, err := metricFromQuery(r, engine.MetricRevenue)
		if err != nil {
			return nil, err
		}

		q := r.URL.Query()
		if from, to := q.Get("from"), q.Get("to"); from != "" || to != "" {
			return d.CompareCustom(key, from, to)
		}
		preset := q.Get("range")
		if preset == "" {
			preset = "30d"
		}
		return d.ComparePreset(key, scopeFromQuery(r), preset)
	})
}

// HandleDayOfWeek breaks a metric down by send weekday, Sunday first.
//
//	GET /api/breakdown/day-of-week?metric=open_rate&channel=campaigns&range=90d
func (h *Handlers) HandleDayOfWeek(w http.ResponseWriter, r *http.Request) {
	h.respondCached(w, r, func() (interface{}, error) {
		records, key, err := h.breakdownInput(r)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"metric": key,
			"days":   engine.ByDayOfWeek(records, key),
		}, nil
	})
}

// HandleHourOfDay breaks a metric down by send hour, best hours first.
//
//	GET /api/breakdown/hour-of-day?metric=click_rate&range=90d
func (h *Handlers) HandleHourOfDay(w http.ResponseWriter, r *http.Request) {
	h.respondCached(w, r, func() (interface{}, error) {
		records, key, err := h.breakdownInput(r)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"metric": key,
			"hours":  engine.ByHourOfDay(records, key),
		}, nil
	})
}

func (h *Handlers) breakdownInput(r *http.Request) ([]engine.SendRecord, engine.MetricKey, error) {
	d := h.Dataset()
	scope := scopeFromQuery(r)
	rng, err := rangeFromQuery(r, d, scope)
	if err != nil {
		return nil, "", err
	}
	key, err := metricFromQuery(r, engine.MetricOpenRate)
	if err != nil {
		return nil, "", err
	}
	return engine.RecordsInRange(d.Records(scope), rng.From, rng.To), key, nil
}
