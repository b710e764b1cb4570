package render

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// ChromeRenderer drives headless Chrome to turn the print page into
// print-ready artifacts.
type ChromeRenderer struct {
	execPath string
	logger   *zap.Logger
}

// NewChromeRenderer resolves the browser binary once. An explicit path
// wins; otherwise common install locations are probed and chromedp is
// left to auto-detect as the last resort.
func NewChromeRenderer(execPath string, logger *zap.Logger) *ChromeRenderer {
	if execPath == "" {
		execPath = detectChromePath()
	}
	return &ChromeRenderer{execPath: execPath, logger: logger}
}

func detectChromePath() string {
	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func (r *ChromeRenderer) newContext(ctx context.Context) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox, // required in containers
	)
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	return browserCtx, func() {
		browserCancel()
		allocCancel()
	}
}

// waitAssets blocks until web fonts and images on the page have settled,
// so tags are not captured half-painted.
var waitAssets = chromedp.Evaluate(`
	(function() {
		return Promise.all([
			document.fonts.ready,
			Promise.all(Array.from(document.querySelectorAll('img')).map(img => {
				return new Promise((resolve) => {
					if (img.complete) { resolve(); return; }
					const t = setTimeout(() => resolve(), 5000);
					img.onload = () => { clearTimeout(t); resolve(); };
					img.onerror = () => { clearTimeout(t); resolve(); };
				});
			}))
		]);
	})();
`, nil)

// GeneratePDF prints the given URL to an A4 PDF.
func (r *ChromeRenderer) GeneratePDF(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	browserCtx, browserCancel := r.newContext(ctx)
	defer browserCancel()

	r.logger.Info("Generating PDF", zap.String("url", url))

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(794, 1123), // A4 at 96 DPI
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		waitAssets,
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).   // 210mm
				WithPaperHeight(11.69). // 297mm
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("print to pdf: %w", err)
	}
	return pdf, nil
}

// GeneratePNG captures the given URL as a full-page screenshot.
func (r *ChromeRenderer) GeneratePNG(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	browserCtx, browserCancel := r.newContext(ctx)
	defer browserCancel()

	r.logger.Info("Generating PNG", zap.String("url", url))

	var png []byte
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(794, 1123),
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		waitAssets,
		chromedp.FullScreenshot(&png, 100),
	)
	if err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	return png, nil
}
