package ports

import (
	"context"

	"github.com/sitegauge/sitegauge/internal/core/domain"
)

// VerdictClient asks a vision-capable model to judge a page screenshot.
type VerdictClient interface {
	// Classify sends the prompt together with the screenshot, passed as a
	// data URL, and returns the model's raw text answer.
	Classify(ctx context.Context, prompt string, imageDataURL string) (string, error)
}

// Classifier is the core operation exposed to the HTTP layer.
type Classifier interface {
	// ClassifyURL renders and classifies a URL. With refresh set the
	// stored verdict is ignored and the page is re-rendered.
	ClassifyURL(ctx context.Context, rawURL string, refresh bool) (domain.Classification, error)

	// Recent returns the most recently captured classifications,
	// newest first.
	Recent(ctx context.Context, limit int) ([]domain.Classification, error)
}
