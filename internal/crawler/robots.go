package crawler

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"strings"
)

// CheckRobots fetches baseURL/robots.txt and reports whether the whole site
// may be crawled. Any failure to read the file counts as allowed.
func (h *HTTPClient) CheckRobots(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, h.robotsTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/robots.txt", nil)
	if err != nil {
		return true
	}
	req.Header.Set("User-Agent", h.userAgent)
	resp, err := h.client.Do(req)
	if err != nil {
		return true
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return true
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return true
	}
	return !RobotsBlocksSite(string(body), RobotsAgent)
}

// RobotsBlocksSite reports whether a group addressed to "*" or agent carries
// "Disallow: /" or an empty "Disallow:" directive.
func RobotsBlocksSite(body, agent string) bool {
	agent = strings.ToLower(agent)
	matched := false
	inAgentRun := false

	sc := bufio.NewScanner(strings.NewReader(body))
	for sc.Scan() {
		line := sc.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		line = strings.ToLower(strings.TrimSpace(line))
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "user-agent":
			// consecutive user-agent lines share one group
			hit := value == "*" || value == agent
			if inAgentRun {
				matched = matched || hit
			} else {
				matched = hit
			}
			inAgentRun = true
		case "disallow":
			inAgentRun = false
			if matched && (value == "/" || value == "") {
				return true
			}
		default:
			inAgentRun = false
		}
	}
	return false
}
