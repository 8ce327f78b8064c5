// Package chrome drives headless Chrome through the DevTools protocol. One
// session owns one browser instance for the duration of one export request;
// instances are never shared or pooled.
package chrome

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"pdfexport/internal/config"
	"pdfexport/internal/infra/logging"
	"pdfexport/internal/layout"
)

// Engine renders composed documents to PDF bytes.
type Engine struct {
	cfg config.PDFConfig
}

// NewEngine returns an Engine using the given PDF configuration.
func NewEngine(cfg config.PDFConfig) *Engine {
	return &Engine{cfg: cfg}
}

// session wraps one browser instance and everything needed to tear it down.
type session struct {
	ctx        context.Context
	cancels    []context.CancelFunc
	profileDir string
	closed     bool
}

// Render launches a browser, loads the composed document, captures it as PDF
// with the resolved layout and releases the browser again. Release runs on
// every exit path; a failure during release is logged and never overrides
// the render outcome.
func (e *Engine) Render(ctx context.Context, doc string, d layout.Descriptor) ([]byte, error) {
	sess, err := e.acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("launch render engine: %w", err)
	}
	defer func() {
		if cerr := sess.close(); cerr != nil {
			logging.Warn("Error closing browser", "error", cerr.Error())
		}
	}()

	pdfBuf, err := e.capture(sess.ctx, doc, d)
	if err != nil {
		return nil, err
	}
	return pdfBuf, nil
}

// acquire creates the allocator and browser context with the stabilization
// flags needed in minimal container environments. Chrome itself starts
// lazily on the first action.
func (e *Engine) acquire(ctx context.Context) (*session, error) {
	profileDir, err := os.MkdirTemp("", "chromedata-*")
	if err != nil {
		return nil, fmt.Errorf("cannot create temp profile dir: %w", err)
	}

	allocatorOptions := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserDataDir(profileDir),
		// Force software rendering and avoid Vulkan/ANGLE issues in minimal container environments.
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-gpu-compositing", true),
		chromedp.Flag("disable-features", "Vulkan,UseSkiaRenderer"),
		chromedp.Flag("use-gl", "swiftshader"),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-timer-throttling", true),
	)
	if e.cfg.ChromePath != "" {
		allocatorOptions = append(allocatorOptions, chromedp.ExecPath(e.cfg.ChromePath))
	}
	if e.cfg.ChromeNoSandbox {
		allocatorOptions = append(allocatorOptions,
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-setuid-sandbox", true),
		)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocatorOptions...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	timeout := time.Duration(e.cfg.TimeoutSecs) * time.Second
	runCtx, runCancel := context.WithTimeout(browserCtx, timeout)

	return &session{
		ctx:        runCtx,
		cancels:    []context.CancelFunc{runCancel, browserCancel, allocCancel},
		profileDir: profileDir,
	}, nil
}

// close shuts the browser down and removes the temp profile. Safe to call
// more than once.
func (s *session) close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	err := chromedp.Cancel(s.ctx)
	for _, cancel := range s.cancels {
		cancel()
	}
	if rmErr := os.RemoveAll(s.profileDir); rmErr != nil && err == nil {
		err = rmErr
	}
	return err
}

// capture loads the document into the tab and requests the PDF.
func (e *Engine) capture(ctx context.Context, doc string, d layout.Descriptor) ([]byte, error) {
	settle := time.Duration(e.cfg.SettleMS) * time.Millisecond
	top, right, bottom, left := d.MarginInches()

	var pdfBuf []byte
	actions := []chromedp.Action{
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frame, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frame.Frame.ID, doc).Do(ctx)
		}),
		chromedp.WaitReady("body", chromedp.ByQuery),
		// Heuristic settle interval for fonts and scripted layout. There is
		// no deterministic content-ready signal here.
		chromedp.Sleep(settle),
		chromedp.ActionFunc(func(ctx context.Context) error {
			params := page.PrintToPDF().
				WithPrintBackground(d.PrintBackground).
				WithLandscape(d.Landscape).
				WithPaperWidth(d.Paper.Width).
				WithPaperHeight(d.Paper.Height).
				WithMarginTop(top).
				WithMarginRight(right).
				WithMarginBottom(bottom).
				WithMarginLeft(left)
			if d.DisplayHeaderFooter {
				params = params.
					WithDisplayHeaderFooter(true).
					WithHeaderTemplate(d.HeaderTemplate).
					WithFooterTemplate(d.FooterTemplate)
			}
			var err error
			pdfBuf, _, err = params.Do(ctx)
			return err
		}),
	}

	if err := chromedp.Run(ctx, actions...); err != nil {
		return nil, err
	}
	return pdfBuf, nil
}

// IsSessionInterrupted reports whether err looks like the browser session
// went away underneath us rather than a plain render failure.
func IsSessionInterrupted(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "target closed") ||
		strings.Contains(msg, "browser closed") ||
		strings.Contains(msg, "websocket: close")
}
