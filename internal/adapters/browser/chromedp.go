package browser

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/pkg/errors"
)

// Adapter implements ports.Screenshotter by driving headless Chromium
// over the DevTools protocol.
type Adapter struct {
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	navTimeout  time.Duration
}

// NewAdapter starts a shared browser process allocator. execPath points
// at the Chromium binary; empty means chromedp's lookup order. Each
// Capture gets its own browser context, so concurrent requests render
// in isolated tabs.
func NewAdapter(execPath string, navTimeout time.Duration) (*Adapter, error) {
	if navTimeout <= 0 {
		return nil, errors.New("navigation timeout must be positive")
	}

	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	// Containers run the browser as root without a user namespace.
	opts = append(opts, chromedp.NoSandbox)
	if execPath != "" {
		opts = append(opts, chromedp.ExecPath(execPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Adapter{
		allocCtx:    allocCtx,
		cancelAlloc: cancel,
		navTimeout:  navTimeout,
	}, nil
}

// Capture navigates to url and returns a PNG screenshot of the viewport.
func (a *Adapter) Capture(ctx context.Context, url string) ([]byte, error) {
	tabCtx, cancelTab := chromedp.NewContext(a.allocCtx)
	defer cancelTab()

	runCtx, cancelRun := context.WithTimeout(tabCtx, a.navTimeout)
	defer cancelRun()

	// The tab context derives from the allocator, not the request, so
	// propagate caller cancellation by hand.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			cancelRun()
		case <-stop:
		}
	}()

	var png []byte
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.CaptureScreenshot(&png),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), "capture canceled")
		}
		return nil, errors.Wrapf(err, "failed to render %s", url)
	}

	return png, nil
}

// Close shuts the browser allocator down.
func (a *Adapter) Close() error {
	a.cancelAlloc()
	return nil
}
