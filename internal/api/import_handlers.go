package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/pkom79/email-metrics-cloud-sub001/internal/engine"
	"github.com/pkom79/email-metrics-cloud-sub001/internal/ingest"
	"github.com/pkom79/email-metrics-cloud-sub001/internal/pkg/logger"
)

// 512 MB covers the largest exports we have seen in the wild.
const maxImportBytes = 512 << 20

// importBody returns the CSV stream for an import request. Multipart
// uploads use the "file" field; anything else is treated as a raw CSV body.
func importBody(r *http.Request) (io.ReadCloser, string, error) {
	ct := r.Header.Get("Content-Type")
	if len(ct) >= 19 && ct[:19] == "multipart/form-data" {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return nil, "", err
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", err
		}
		return file, header.Filename, nil
	}
	return http.MaxBytesReader(nil, r.Body, maxImportBytes), "", nil
}

// HandleImportCampaigns ingests a campaign export and replaces the
// session's campaign records.
//
//	POST /api/import/campaigns
func (h *Handlers) HandleImportCampaigns(w http.ResponseWriter, r *http.Request) {
	body, filename, err := importBody(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer body.Close()

	records, stats, err := ingest.ReadCampaigns(body)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	d := h.Dataset()
	h.ReplaceDataset(r, engine.NewDataset(records, d.Flows(), d.Subscribers()))
	h.logImport(r, "campaigns", filename, stats)
	respondJSON(w, http.StatusOK, stats)
}

// HandleImportFlows ingests a flow-message export.
//
//	POST /api/import/flows
func (h *Handlers) HandleImportFlows(w http.ResponseWriter, r *http.Request) {
	body, filename, err := importBody(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer body.Close()

	records, stats, err := ingest.ReadFlows(body)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	d := h.Dataset()
	h.ReplaceDataset(r, engine.NewDataset(d.Campaigns(), records, d.Subscribers()))
	h.logImport(r, "flows", filename, stats)
	respondJSON(w, http.StatusOK, stats)
}

// HandleImportSubscribers ingests an audience export.
//
//	POST /api/import/subscribers
func (h *Handlers) HandleImportSubscribers(w http.ResponseWriter, r *http.Request) {
	body, filename, err := importBody(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer body.Close()

	subs, stats, err := ingest.ReadSubscribers(body)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	d := h.Dataset()
	h.ReplaceDataset(r, engine.NewDataset(d.Campaigns(), d.Flows(), subs))
	h.logImport(r, "subscribers", filename, stats)
	respondJSON(w, http.StatusOK, stats)
}

// logImport records the import in Postgres when the log is configured.
// A logging failure never fails the import.
func (h *Handlers) logImport(r *http.Request, kind, filename string, stats ingest.ImportStats) {
	logger.Info("import complete",
		"kind", kind,
		"rows_read", stats.RowsRead,
		"imported", stats.Imported,
		"skipped", stats.SkippedRows,
		"missing_date", stats.MissingDate,
	)
	if h.importLog == nil {
		return
	}
	if _, err := h.importLog.Record(r.Context(), kind, filename, stats); err != nil {
		logger.Warn("import log write failed", "kind", kind, "error", err.Error())
	}
}

// HandleListImports returns the recent import history.
//
//	GET /api/imports?limit=50
func (h *Handlers) HandleListImports(w http.ResponseWriter, r *http.Request) {
	if h.importLog == nil {
		respondError(w, http.StatusServiceUnavailable, "import log not configured")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := h.importLog.List(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"imports": records})
}
