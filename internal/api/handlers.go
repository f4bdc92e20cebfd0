package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"ai-inclusion-checker/internal/ioformats"
	"ai-inclusion-checker/internal/models"
	"ai-inclusion-checker/internal/scan"
	"ai-inclusion-checker/internal/store"
)

// EstimatedScanSeconds is reported to clients when a scan is queued.
const EstimatedScanSeconds = 12

type requestResponse struct {
	RequestID            string        `json:"request_id"`
	ScanToken            string        `json:"scan_token"`
	Status               models.Status `json:"status"`
	EstimatedTimeSeconds int           `json:"estimated_time_seconds"`
}

type statusResponse struct {
	RequestID                 string              `json:"request_id"`
	Status                    models.Status       `json:"status"`
	Error                     string              `json:"error,omitempty"`
	Progress                  []scan.ProgressStep `json:"progress"`
	EstimatedRemainingSeconds int                 `json:"estimated_remaining_seconds"`
}

type failedResponse struct {
	Status models.Status `json:"status"`
	Error  string        `json:"error"`
}

// POST /api/scan/request
func (h *Handler) request(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeScanRequest(w, r)
	if !ok {
		return
	}
	rec, err := h.svc.Start(r.Context(), req)
	if err != nil {
		h.writeSubmitError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requestResponse{
		RequestID:            rec.RequestID,
		ScanToken:            rec.ScanToken,
		Status:               rec.Status,
		EstimatedTimeSeconds: EstimatedScanSeconds,
	})
}

// GET /api/scan/status?scan_token=
func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{
		RequestID:                 rec.RequestID,
		Status:                    rec.Status,
		Error:                     rec.Error,
		Progress:                  scan.Progress(rec.Status),
		EstimatedRemainingSeconds: scan.EstimatedRemainingSeconds(rec.Status),
	})
}

// GET /api/scan/result?scan_token=
func (h *Handler) result(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.lookup(w, r)
	if !ok {
		return
	}
	switch rec.Status {
	case models.StatusComplete:
		writeJSON(w, http.StatusOK, rec.Public())
	case models.StatusFailed:
		writeJSON(w, http.StatusUnprocessableEntity, failedResponse{Status: rec.Status, Error: rec.Error})
	default:
		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"status":  rec.Status,
			"message": "Scan still in progress",
		})
	}
}

// POST /api/scan runs the scan inline, bounded by the service sync timeout.
func (h *Handler) runSync(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeScanRequest(w, r)
	if !ok {
		return
	}
	rec, err := h.svc.RunSync(r.Context(), req)
	if err != nil {
		h.writeSubmitError(w, err)
		return
	}
	if rec.Status == models.StatusFailed {
		writeJSON(w, http.StatusUnprocessableEntity, failedResponse{Status: rec.Status, Error: rec.Error})
		return
	}
	writeJSON(w, http.StatusOK, rec.Public())
}

// POST /api/scan/batch (multipart file=...) -> NDJSON stream, one line per
// request in completion order.
func (h *Handler) batch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("multipart parse error"))
		return
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file part 'file' required"))
		return
	}
	defer f.Close()

	format := ioformats.FormatFor(hdr.Filename)
	if format == "" {
		format = ioformats.FormatNDJSON
	}
	defaults := models.ScanRequest{
		Scope:    models.Scope(r.FormValue("scope")),
		Audience: models.Audience(r.FormValue("audience")),
		City:     r.FormValue("city"),
	}
	reqs, err := ioformats.DecodeRequests(f, format, defaults)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if len(reqs) > h.opts.MaxBatch {
		writeJSON(w, http.StatusBadRequest, errorBody("too many scan requests in one batch"))
		return
	}

	// the stream outlives the server write timeout; each scan is bounded by
	// the sync timeout instead
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		h.logger.Warn("failed to clear write deadline", map[string]interface{}{"error": err})
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	var (
		mu     sync.Mutex
		broken bool
	)

	sem := make(chan struct{}, h.opts.BatchConcurrency)
	var wg sync.WaitGroup
	for _, req := range reqs {
		sem <- struct{}{} // acquire
		wg.Add(1)
		go func() {
			defer func() { <-sem; wg.Done() }()
			rec, err := h.svc.RunSync(r.Context(), req)
			line := ioformats.LineFor(req.Domain, rec, err)

			mu.Lock()
			defer mu.Unlock()
			if broken {
				return
			}
			err = enc.Encode(line)
			if err == nil {
				err = rc.Flush()
			}
			if err != nil && !errors.Is(err, http.ErrNotSupported) {
				broken = true
				h.logger.Warn("batch stream write failed", map[string]interface{}{"error": err, "domain": req.Domain})
			}
		}()
	}
	wg.Wait()
}

func decodeScanRequest(w http.ResponseWriter, r *http.Request) (models.ScanRequest, bool) {
	var req models.ScanRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid payload"))
		return req, false
	}
	return req, true
}

func (h *Handler) writeSubmitError(w http.ResponseWriter, err error) {
	if errors.Is(err, scan.ErrInvalidRequest) {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	h.logger.Error("failed to create scan", map[string]interface{}{"error": err})
	writeJSON(w, http.StatusInternalServerError, errorBody("failed to create scan request"))
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (models.ScanRecord, bool) {
	token := r.URL.Query().Get("scan_token")
	if token == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("scan_token is required"))
		return models.ScanRecord{}, false
	}
	rec, err := h.svc.Get(r.Context(), token)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody("scan not found"))
		return rec, false
	}
	if err != nil {
		h.logger.Error("failed to load scan", map[string]interface{}{"error": err, "scanToken": token})
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to load scan"))
		return rec, false
	}
	return rec, true
}
