package scan

import "ai-inclusion-checker/internal/models"

const (
	StepPending  = "pending"
	StepRunning  = "running"
	StepComplete = "complete"
)

type ProgressStep struct {
	Step   string `json:"step"`
	Status string `json:"status"`
}

// Progress derives the coarse fetching/analysis/scoring steps from a record
// status.
func Progress(status models.Status) []ProgressStep {
	fetching := StepRunning
	if status != models.StatusQueued {
		fetching = StepComplete
	}

	analysis := StepPending
	switch status {
	case models.StatusRunning:
		analysis = StepRunning
	case models.StatusComplete, models.StatusFailed:
		analysis = StepComplete
	}

	scoring := StepPending
	if status == models.StatusComplete {
		scoring = StepComplete
	}

	return []ProgressStep{
		{Step: "fetching", Status: fetching},
		{Step: "analysis", Status: analysis},
		{Step: "scoring", Status: scoring},
	}
}

func EstimatedRemainingSeconds(status models.Status) int {
	if status.Terminal() {
		return 0
	}
	return 5
}
