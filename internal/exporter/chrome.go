package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"museumreport/internal/config"
)

const pointsPerInch = 72.0

// ChromeRenderer prints HTML to PDF with headless Chrome
type ChromeRenderer struct {
	execPath string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewChromeRenderer creates a renderer. An empty execPath lets chromedp find
// the browser; a zero timeout means config.DefaultRenderTimeout.
func NewChromeRenderer(execPath string, timeout time.Duration, logger *slog.Logger) *ChromeRenderer {
	if timeout <= 0 {
		timeout = config.DefaultRenderTimeout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ChromeRenderer{execPath: execPath, timeout: timeout, logger: logger}
}

// RenderPDF loads html into a blank page and prints it
func (r *ChromeRenderer) RenderPDF(ctx context.Context, html []byte, size PageSize) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Flag("headless", true))
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancelRun := context.WithTimeout(browserCtx, r.timeout)
	defer cancelRun()

	var pdf []byte
	err := chromedp.Run(runCtx,
		r.timedAction("Navigate", chromedp.Navigate("about:blank")),
		r.timedAction("SetContent", chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		})),
		r.timedAction("PrintToPDF", chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(size.Width / pointsPerInch).
				WithPaperHeight(size.Height / pointsPerInch).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		})),
	)
	if err != nil {
		return nil, fmt.Errorf("chrome: %w", err)
	}
	return pdf, nil
}

func (r *ChromeRenderer) timedAction(name string, act chromedp.Action) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		start := time.Now()
		err := act.Do(ctx)
		r.logger.Debug("chrome action",
			slog.String("action", name),
			slog.Duration("duration", time.Since(start)),
			slog.Bool("ok", err == nil))
		return err
	})
}
