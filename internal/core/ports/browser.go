package ports

import "context"

// Screenshotter renders a URL in a headless browser and captures it.
// This interface allows us to switch between Chromium drivers (or a
// remote rendering farm) without changing the classification logic.
type Screenshotter interface {
	// Capture navigates to url and returns a PNG screenshot of the
	// loaded page.
	Capture(ctx context.Context, url string) ([]byte, error)
}
