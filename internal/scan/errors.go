package scan

import (
	"context"
	"errors"

	"ai-inclusion-checker/internal/crawler"
)

var (
	ErrInvalidRequest = errors.New("invalid scan request")
	ErrNoContent      = errors.New("no parsable content")
)

// Messages stored on failed records. Raw error detail is logged, never
// returned to callers.
const (
	MsgRobotsBlocked = "This site blocked crawlers via robots.txt. We cannot analyze it."
	MsgNoContent     = "Could not parse any content from this site."
	MsgTimeout       = "The scan took too long to complete. Please try again."
	MsgInternal      = "An internal error occurred. Please try again."
)

func UserMessage(err error) string {
	switch {
	case errors.Is(err, crawler.ErrRobotsBlocked):
		return MsgRobotsBlocked
	case errors.Is(err, ErrNoContent):
		return MsgNoContent
	case errors.Is(err, context.DeadlineExceeded):
		return MsgTimeout
	default:
		return MsgInternal
	}
}
