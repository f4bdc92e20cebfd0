package classifier

import "ai-inclusion-checker/internal/models"

var personas = map[string]models.Persona{
	"SaaS": {
		Title: "Product Manager / Operations Lead", Goal: "Streamline workflows and reduce operational friction",
		PainPoints: []string{"tool fragmentation", "lack of visibility", "manual processes"},
	},
	"AI/ML tools": {
		Title: "Innovation Lead / Product Manager", Goal: "Reduce decision ambiguity and document decision rationale",
		PainPoints: []string{"lack of reproducible rationale", "fragmented team decisions"},
	},
	"marketing agency": {
		Title: "Marketing Director / CMO", Goal: "Maximize ROI on marketing spend and prove attribution",
		PainPoints: []string{"rising ad costs", "attribution complexity", "agency trust"},
	},
	"real estate": {
		Title: "Home Buyer / Seller", Goal: "Find the right property or sell quickly at best price",
		PainPoints: []string{"market uncertainty", "agent trust", "process complexity"},
	},
	"restaurant / food service": {
		Title: "Local Customer", Goal: "Find a great meal nearby quickly and easily",
		PainPoints: []string{"too many options", "reliability concerns", "parking/convenience"},
	},
	"bakery": {
		Title: "Local Customer", Goal: "Find fresh, quality baked goods nearby",
		PainPoints: []string{"freshness concerns", "limited hours", "finding the right specialty items"},
	},
	"dental / medical practice": {
		Title: "Patient / Caregiver", Goal: "Find trusted care nearby, book quickly",
		PainPoints: []string{"insurance complexity", "wait times", "trust"},
	},
	"healthcare provider": {
		Title: "Patient / Caregiver", Goal: "Get reliable medical care without long waits",
		PainPoints: []string{"finding available providers", "insurance coverage", "appointment availability"},
	},
	"legal services": {
		Title: "Individual or Business Owner", Goal: "Get expert legal help without overpaying",
		PainPoints: []string{"high costs", "complexity", "finding trustworthy counsel"},
	},
	"home services": {
		Title: "Homeowner", Goal: "Fix the problem fast with a reliable pro",
		PainPoints: []string{"finding reliable contractors", "pricing uncertainty", "scheduling"},
	},
	"fitness / wellness": {
		Title: "Health-Conscious Consumer", Goal: "Find quality fitness or wellness services nearby",
		PainPoints: []string{"membership costs", "schedule flexibility", "finding the right fit"},
	},
	"accounting / tax": {
		Title: "Small Business Owner / Individual", Goal: "Minimize tax burden and stay compliant",
		PainPoints: []string{"regulatory complexity", "finding trustworthy accountants", "cost"},
	},
	"automotive": {
		Title: "Vehicle Owner", Goal: "Keep their car running reliably at fair prices",
		PainPoints: []string{"finding honest mechanics", "unexpected costs", "wait times"},
	},
}

var genericPersonas = map[models.Audience]models.Persona{
	models.AudienceBusinesses: {
		Title: "Business Owner / Decision Maker", Goal: "Find a dependable vendor that solves the problem at a fair cost",
		PainPoints: []string{"too many options", "lack of trust signals", "unclear pricing"},
	},
	models.AudienceConsumers: {
		Title: "Consumer / Buyer", Goal: "Find the best solution for their specific need quickly",
		PainPoints: []string{"too many options", "lack of trust signals", "unclear pricing"},
	},
	models.AudienceNiche: {
		Title: "Specialist Practitioner", Goal: "Find a provider that understands their specialized requirements",
		PainPoints: []string{"generic offerings", "lack of domain expertise", "unclear pricing"},
	},
}

// PersonaFor returns the canned persona of a known category, or the generic
// persona for the audience.
func PersonaFor(category string, audience models.Audience) models.Persona {
	p, ok := personas[category]
	if !ok {
		p, ok = genericPersonas[audience]
		if !ok {
			p = genericPersonas[models.AudienceConsumers]
		}
	}
	p.PainPoints = append([]string(nil), p.PainPoints...)
	return p
}
