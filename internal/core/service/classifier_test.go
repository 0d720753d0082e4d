package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitegauge/sitegauge/internal/core/domain"
	"github.com/sitegauge/sitegauge/internal/core/ports"
)

type fakeBrowser struct {
	captures int
	png      []byte
	err      error
}

func (f *fakeBrowser) Capture(_ context.Context, _ string) ([]byte, error) {
	f.captures++
	return f.png, f.err
}

type fakeModel struct {
	calls       int
	lastPrompt  string
	lastDataURL string
	answer      string
	err         error
}

func (f *fakeModel) Classify(_ context.Context, prompt, imageDataURL string) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	f.lastDataURL = imageDataURL
	return f.answer, f.err
}

type fakeStore struct {
	data   map[string]domain.Classification
	getErr error
	putErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]domain.Classification{}}
}

func (f *fakeStore) Get(_ context.Context, key string) (*domain.Classification, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	c, ok := f.data[key]
	if !ok {
		return nil, ports.ErrVerdictNotFound
	}
	return &c, nil
}

func (f *fakeStore) Put(_ context.Context, key string, c domain.Classification) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.data[key] = c
	return nil
}

func (f *fakeStore) Recent(_ context.Context, limit int) ([]domain.Classification, error) {
	var out []domain.Classification
	for _, c := range f.data {
		out = append(out, c)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newTestClassifier(browser *fakeBrowser, model *fakeModel, store *fakeStore, ttl time.Duration) *Classifier {
	c := NewClassifier(browser, model, store, ttl)
	c.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return c
}

func TestClassifyURL(t *testing.T) {
	ctx := context.Background()

	t.Run("renders and classifies a URL", func(t *testing.T) {
		browser := &fakeBrowser{png: []byte("fake-png")}
		model := &fakeModel{answer: "live website"}
		store := newFakeStore()
		c := newTestClassifier(browser, model, store, time.Hour)

		result, err := c.ClassifyURL(ctx, "example.com", false)
		require.NoError(t, err)

		assert.Equal(t, "http://example.com", result.URL)
		assert.Equal(t, domain.VerdictLive, result.Verdict)
		assert.Equal(t, "live website", result.RawAnswer)
		assert.Equal(t, 1, browser.captures)
		assert.Equal(t, 1, model.calls)
	})

	t.Run("sends the screenshot as a png data url", func(t *testing.T) {
		browser := &fakeBrowser{png: []byte{0x89, 'P', 'N', 'G'}}
		model := &fakeModel{answer: "live website"}
		c := newTestClassifier(browser, model, newFakeStore(), time.Hour)

		_, err := c.ClassifyURL(ctx, "example.com", false)
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(model.lastDataURL, "data:image/png;base64,"))
		assert.Contains(t, model.lastPrompt, "generic parked landing page")
	})

	t.Run("serves fresh verdicts from the store", func(t *testing.T) {
		browser := &fakeBrowser{png: []byte("fake-png")}
		model := &fakeModel{answer: "live website"}
		store := newFakeStore()
		c := newTestClassifier(browser, model, store, time.Hour)

		first, err := c.ClassifyURL(ctx, "example.com", false)
		require.NoError(t, err)

		second, err := c.ClassifyURL(ctx, "example.com", false)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, browser.captures, "second lookup must not re-render")
		assert.Equal(t, 1, model.calls)
	})

	t.Run("refresh bypasses the store", func(t *testing.T) {
		browser := &fakeBrowser{png: []byte("fake-png")}
		model := &fakeModel{answer: "live website"}
		store := newFakeStore()
		c := newTestClassifier(browser, model, store, time.Hour)

		_, err := c.ClassifyURL(ctx, "example.com", false)
		require.NoError(t, err)

		_, err = c.ClassifyURL(ctx, "example.com", true)
		require.NoError(t, err)

		assert.Equal(t, 2, browser.captures)
	})

	t.Run("expired verdicts are reclassified", func(t *testing.T) {
		browser := &fakeBrowser{png: []byte("fake-png")}
		model := &fakeModel{answer: "nonactive domain"}
		store := newFakeStore()
		c := newTestClassifier(browser, model, store, time.Hour)

		stale := domain.Classification{
			URL:        "http://example.com",
			Verdict:    domain.VerdictLive,
			CapturedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		}
		store.data[domain.CacheKey("http://example.com")] = stale

		result, err := c.ClassifyURL(ctx, "example.com", false)
		require.NoError(t, err)

		assert.Equal(t, domain.VerdictNonactive, result.Verdict)
		assert.Equal(t, 1, browser.captures)
	})

	t.Run("store lookup failure does not fail the request", func(t *testing.T) {
		browser := &fakeBrowser{png: []byte("fake-png")}
		model := &fakeModel{answer: "live website"}
		store := newFakeStore()
		store.getErr = errors.New("disk on fire")
		c := newTestClassifier(browser, model, store, time.Hour)

		result, err := c.ClassifyURL(ctx, "example.com", false)
		require.NoError(t, err)
		assert.Equal(t, domain.VerdictLive, result.Verdict)
	})

	t.Run("store write failure does not fail the request", func(t *testing.T) {
		browser := &fakeBrowser{png: []byte("fake-png")}
		model := &fakeModel{answer: "live website"}
		store := newFakeStore()
		store.putErr = errors.New("disk full")
		c := newTestClassifier(browser, model, store, time.Hour)

		_, err := c.ClassifyURL(ctx, "example.com", false)
		require.NoError(t, err)
	})

	t.Run("capture failure is reported", func(t *testing.T) {
		browser := &fakeBrowser{err: errors.New("browser crashed")}
		model := &fakeModel{answer: "live website"}
		c := newTestClassifier(browser, model, newFakeStore(), time.Hour)

		_, err := c.ClassifyURL(ctx, "example.com", false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to screenshot")
		assert.Equal(t, 0, model.calls)
	})

	t.Run("model failure is reported", func(t *testing.T) {
		browser := &fakeBrowser{png: []byte("fake-png")}
		model := &fakeModel{err: errors.New("rate limited")}
		c := newTestClassifier(browser, model, newFakeStore(), time.Hour)

		_, err := c.ClassifyURL(ctx, "example.com", false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to classify")
	})

	t.Run("unparseable answer is an error", func(t *testing.T) {
		browser := &fakeBrowser{png: []byte("fake-png")}
		model := &fakeModel{answer: "it depends"}
		store := newFakeStore()
		c := newTestClassifier(browser, model, store, time.Hour)

		_, err := c.ClassifyURL(ctx, "example.com", false)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrUnknownVerdict))
		assert.Empty(t, store.data, "unparseable answers must not be cached")
	})
}
