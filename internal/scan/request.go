package scan

import (
	"fmt"
	"net"
	"regexp"
	"strings"

	"golang.org/x/net/idna"

	"ai-inclusion-checker/internal/models"
)

var schemeRe = regexp.MustCompile(`(?i)^https?://`)

// NormalizeDomain strips scheme, path and trailing slashes and converts an
// internationalized host to its ASCII form. A port is kept.
func NormalizeDomain(raw string) (string, error) {
	d := strings.TrimSpace(raw)
	d = schemeRe.ReplaceAllString(d, "")
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	d = strings.ToLower(strings.TrimRight(d, "/"))
	if d == "" {
		return "", fmt.Errorf("%w: domain is required", ErrInvalidRequest)
	}

	host, port := d, ""
	if h, p, err := net.SplitHostPort(d); err == nil {
		host, port = h, p
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("%w: domain %q: %v", ErrInvalidRequest, raw, err)
	}
	if port != "" {
		return net.JoinHostPort(ascii, port), nil
	}
	return ascii, nil
}

// NormalizeRequest validates enums and the domain, and requires a city for
// local scope.
func NormalizeRequest(req models.ScanRequest) (models.ScanRequest, error) {
	domain, err := NormalizeDomain(req.Domain)
	if err != nil {
		return req, err
	}
	req.Domain = domain

	switch req.Scope {
	case models.ScopeLocal, models.ScopeNational:
	default:
		return req, fmt.Errorf("%w: scope must be local or national", ErrInvalidRequest)
	}
	switch req.Audience {
	case models.AudienceConsumers, models.AudienceBusinesses, models.AudienceNiche:
	default:
		return req, fmt.Errorf("%w: invalid audience", ErrInvalidRequest)
	}

	req.City = strings.TrimSpace(req.City)
	if req.Scope == models.ScopeLocal && req.City == "" {
		return req, fmt.Errorf("%w: city is required for local scope", ErrInvalidRequest)
	}
	req.SessionID = strings.TrimSpace(req.SessionID)
	return req, nil
}
