package service

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/pkg/errors"

	"github.com/sitegauge/sitegauge/internal/core/domain"
	"github.com/sitegauge/sitegauge/internal/core/ports"
	"github.com/sitegauge/sitegauge/internal/logger"
)

// classifyPrompt instructs the model to answer with exactly one of the
// three verdict labels. Overlay text matters: registrar lock screens
// render on top of otherwise empty pages and must count as parked.
const classifyPrompt = `Please tell me if this webpage is a generic parked landing page, a live website with a real business, a nonactive domain. Some websites may have certain graphics on it blocking you from using the website because the website owner has locked down the account, this would be generic parked landing page, make sure you analyze the text of any popups or overlays to determine if the site is parked or is a live website. Please only give me a single answer such as:

generic parked landing page
live website
nonactive domain
`

// Classifier implements ports.Classifier by chaining the browser, the
// vision model and the verdict store.
type Classifier struct {
	browser ports.Screenshotter
	model   ports.VerdictClient
	store   ports.VerdictStore
	ttl     time.Duration

	now func() time.Time
}

func NewClassifier(browser ports.Screenshotter, model ports.VerdictClient, store ports.VerdictStore, ttl time.Duration) *Classifier {
	return &Classifier{
		browser: browser,
		model:   model,
		store:   store,
		ttl:     ttl,
		now:     time.Now,
	}
}

// ClassifyURL renders rawURL headlessly, screenshots it and asks the
// model for a verdict. A fresh stored verdict short-circuits the whole
// pipeline unless refresh is set. Store failures never fail the request;
// the caller still gets a verdict.
func (s *Classifier) ClassifyURL(ctx context.Context, rawURL string, refresh bool) (domain.Classification, error) {
	url := domain.NormalizeURL(rawURL)
	key := domain.CacheKey(url)

	if !refresh {
		if cached, err := s.store.Get(ctx, key); err == nil {
			if cached.Fresh(s.ttl, s.now()) {
				logger.Debugf("verdict cache hit for %s", url)
				return *cached, nil
			}
		} else if !errors.Is(err, ports.ErrVerdictNotFound) {
			logger.Warnf("verdict store lookup failed for %s: %v", url, err)
		}
	}

	png, err := s.browser.Capture(ctx, url)
	if err != nil {
		return domain.Classification{}, errors.Wrapf(err, "failed to screenshot %s", url)
	}

	imageDataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)

	answer, err := s.model.Classify(ctx, classifyPrompt, imageDataURL)
	if err != nil {
		return domain.Classification{}, errors.Wrapf(err, "failed to classify %s", url)
	}

	verdict, err := domain.ParseVerdict(answer)
	if err != nil {
		return domain.Classification{}, err
	}

	result := domain.Classification{
		URL:        url,
		Verdict:    verdict,
		RawAnswer:  answer,
		CapturedAt: s.now(),
	}

	if err := s.store.Put(ctx, key, result); err != nil {
		logger.Warnf("failed to store verdict for %s: %v", url, err)
	}

	return result, nil
}

// Recent lists the most recently captured classifications, newest first.
func (s *Classifier) Recent(ctx context.Context, limit int) ([]domain.Classification, error) {
	return s.store.Recent(ctx, limit)
}
