package domain

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Verdict is the outcome of classifying a rendered webpage.
type Verdict string

const (
	// VerdictParked marks generic parked landing pages, including live pages
	// hidden behind registrar lock overlays.
	VerdictParked Verdict = "generic parked landing page"
	// VerdictLive marks websites with a real business behind them.
	VerdictLive Verdict = "live website"
	// VerdictNonactive marks domains that do not serve a site at all.
	VerdictNonactive Verdict = "nonactive domain"
)

var ErrUnknownVerdict = errors.New("model answer does not match any known verdict")

// ParseVerdict maps a raw model answer onto one of the three verdicts.
// The model is instructed to answer with a single label, but answers
// sometimes arrive wrapped in extra prose, so matching is by substring.
func ParseVerdict(answer string) (Verdict, error) {
	normalized := strings.ToLower(strings.TrimSpace(answer))

	for _, v := range []Verdict{VerdictParked, VerdictLive, VerdictNonactive} {
		if strings.Contains(normalized, string(v)) {
			return v, nil
		}
	}

	return "", errors.Wrapf(ErrUnknownVerdict, "%q", answer)
}

// Classification is a single classified URL as stored and returned by the API.
type Classification struct {
	URL        string    `json:"url"`
	Verdict    Verdict   `json:"classification"`
	RawAnswer  string    `json:"raw_answer,omitempty"`
	CapturedAt time.Time `json:"captured_at"`
}

// Fresh reports whether the classification is recent enough to serve
// from the store instead of re-rendering the page.
func (c Classification) Fresh(ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(c.CapturedAt) < ttl
}
