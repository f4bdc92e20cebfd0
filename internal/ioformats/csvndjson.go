package ioformats

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ai-inclusion-checker/internal/models"
)

const (
	FormatCSV    = "csv"
	FormatNDJSON = "ndjson"
)

// FormatFor picks the reader for a file name. Unknown extensions return "".
func FormatFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV
	case ".ndjson", ".jsonl":
		return FormatNDJSON
	}
	return ""
}

// ReadRequests reads scan requests from a CSV (header with "domain" or
// "url", optional scope/audience/city/session_id) or NDJSON file. Fields a
// row leaves empty are taken from defaults.
func ReadRequests(path string, defaults models.ScanRequest) ([]models.ScanRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	format := FormatFor(path)
	if format != "" {
		return DecodeRequests(f, format, defaults)
	}

	// try csv then ndjson
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	if reqs, err := readCSV(strings.NewReader(string(data)), defaults); err == nil && len(reqs) > 0 {
		return reqs, nil
	}
	return readNDJSON(strings.NewReader(string(data)), defaults)
}

func DecodeRequests(r io.Reader, format string, defaults models.ScanRequest) ([]models.ScanRequest, error) {
	switch format {
	case FormatCSV:
		return readCSV(r, defaults)
	case FormatNDJSON:
		return readNDJSON(r, defaults)
	}
	return nil, fmt.Errorf("unsupported input format %q", format)
}

func readCSV(r io.Reader, defaults models.ScanRequest) ([]models.ScanRequest, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("empty csv")
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	domainCol, ok := cols["domain"]
	if !ok {
		if domainCol, ok = cols["url"]; !ok {
			return nil, errors.New("csv must contain a 'domain' or 'url' header column")
		}
	}
	cell := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var out []models.ScanRequest
	for _, row := range rows[1:] {
		if domainCol >= len(row) || strings.TrimSpace(row[domainCol]) == "" {
			continue
		}
		out = append(out, withDefaults(models.ScanRequest{
			Domain:    strings.TrimSpace(row[domainCol]),
			Scope:     models.Scope(strings.ToLower(cell(row, "scope"))),
			Audience:  models.Audience(strings.ToLower(cell(row, "audience"))),
			City:      cell(row, "city"),
			SessionID: cell(row, "session_id"),
		}, defaults))
	}
	return out, nil
}

func readNDJSON(r io.Reader, defaults models.ScanRequest) ([]models.ScanRequest, error) {
	var out []models.ScanRequest
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		// allow a bare domain or a request object; "url" is accepted for "domain"
		if strings.HasPrefix(line, "{") {
			var obj struct {
				models.ScanRequest
				URL string `json:"url"`
			}
			if err := json.Unmarshal([]byte(line), &obj); err != nil {
				return nil, fmt.Errorf("line %q: %w", line, err)
			}
			req := obj.ScanRequest
			if req.Domain == "" {
				req.Domain = obj.URL
			}
			if req.Domain != "" {
				out = append(out, withDefaults(req, defaults))
			}
			continue
		}
		out = append(out, withDefaults(models.ScanRequest{Domain: line}, defaults))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errors.New("no scan requests found in ndjson")
	}
	return out, nil
}

func withDefaults(r, d models.ScanRequest) models.ScanRequest {
	if r.Scope == "" {
		r.Scope = d.Scope
	}
	if r.Audience == "" {
		r.Audience = d.Audience
	}
	if r.City == "" {
		r.City = d.City
	}
	if r.SessionID == "" {
		r.SessionID = d.SessionID
	}
	return r
}

// WriteNDJSON writes any JSON-marshalable items as NDJSON to w.
func WriteNDJSON[T any](w io.Writer, items []T) error {
	enc := json.NewEncoder(w)
	for _, it := range items {
		if err := enc.Encode(it); err != nil {
			return err
		}
	}
	return nil
}

// Line is one NDJSON record of a batch run: either a public result or the
// error message for the domain.
type Line struct {
	Domain string             `json:"domain"`
	Result *models.ScanResult `json:"result,omitempty"`
	Error  string             `json:"error,omitempty"`
}

// LineFor projects a finished scan. A failed record reports its stored
// message rather than a result.
func LineFor(domain string, rec models.ScanRecord, err error) Line {
	switch {
	case err != nil:
		return Line{Domain: domain, Error: err.Error()}
	case rec.Status == models.StatusFailed:
		return Line{Domain: rec.Domain, Error: rec.Error}
	}
	res := rec.Public()
	return Line{Domain: rec.Domain, Result: &res}
}
