package crawler

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const maxInternalLinks = 10

var assetExtRe = regexp.MustCompile(`(?i)\.(pdf|jpg|jpeg|png|gif|svg|webp|ico|css|js|xml|json|zip)$`)

// NormalizeURL turns a bare domain into an absolute URL without a trailing slash.
func NormalizeURL(input string) string {
	u := strings.TrimSpace(input)
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = "https://" + u
	}
	return strings.TrimSuffix(u, "/")
}

// ExtractInternalLinks returns same-origin document links found in html,
// resolved against baseURL with query strings dropped. Fragment links and
// asset URLs are skipped. At most 10 links are returned, in document order.
func ExtractInternalLinks(html, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	seen := map[string]struct{}{}
	var out []string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if href == "" || strings.Contains(href, "#") {
			return true
		}
		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != base.Scheme || !strings.EqualFold(abs.Host, base.Host) {
			return true
		}
		abs.RawQuery = ""
		abs.Fragment = ""
		if assetExtRe.MatchString(abs.Path) {
			return true
		}
		link := abs.String()
		if _, ok := seen[link]; ok {
			return true
		}
		seen[link] = struct{}{}
		out = append(out, link)
		return len(out) < maxInternalLinks
	})
	return out
}
