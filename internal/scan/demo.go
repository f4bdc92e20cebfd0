package scan

import (
	"fmt"
	"strings"
	"unicode"

	"ai-inclusion-checker/internal/models"
)

const demoHomepage = `<!DOCTYPE html>
<html>
<head>
  <title>%[1]s - Professional Services</title>
  <meta name="description" content="%[1]s provides professional services to businesses and consumers.">
</head>
<body>
  <h1>%[1]s: Professional Solutions for Modern Businesses</h1>
  <p>Welcome to %[1]s. We help businesses grow and succeed with our comprehensive range of services.</p>
  <p>Our team of experts is dedicated to delivering results that matter to your bottom line.</p>
  <nav>
    <a href="/about">About</a>
    <a href="/services">Services</a>
    <a href="/pricing">Pricing</a>
  </nav>
</body>
</html>`

const demoServices = `<!DOCTYPE html>
<html>
<head><title>Our Services - %[1]s</title></head>
<body>
  <h1>Our Services</h1>
  <p>We offer a range of professional services tailored to your needs.</p>
  <h2>Core Solutions</h2>
  <p>Our core solutions help businesses automate and streamline their operations.</p>
  <h2>Consulting</h2>
  <p>Expert consulting services for strategy, implementation, and growth.</p>
  <h2>Support</h2>
  <p>Dedicated support to ensure your success at every stage.</p>
</body>
</html>`

// DemoPages synthesizes a homepage and a services page from the domain
// name alone. The output is deterministic per domain.
func DemoPages(domain string) (models.FetchedPage, []models.FetchedPage) {
	name := DisplayName(domain)
	base := "https://" + domain
	homepage := models.FetchedPage{
		URL:         base,
		HTML:        fmt.Sprintf(demoHomepage, name),
		ContentType: "text/html; charset=utf-8",
		Status:      200,
	}
	services := models.FetchedPage{
		URL:         base + "/services",
		HTML:        fmt.Sprintf(demoServices, name),
		ContentType: "text/html; charset=utf-8",
		Status:      200,
	}
	return homepage, []models.FetchedPage{services}
}

// DisplayName turns "acme-widgets.com" into "Acme widgets".
func DisplayName(domain string) string {
	label := strings.SplitN(domain, ".", 2)[0]
	label = strings.ReplaceAll(label, "-", " ")
	r := []rune(label)
	if len(r) == 0 {
		return ""
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
