package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
)

// ErrSelectorTimeout is returned when the awaited selector never became visible
var ErrSelectorTimeout = errors.New("browser: timed out waiting for selector")

// Session is one acquired tab. It is not safe for concurrent use.
type Session struct {
	pool   *Pool
	tab    *tab
	once   sync.Once
	broken bool
}

// Release hands the tab back to the pool. Calling it more than once is a no-op.
func (s *Session) Release() {
	s.once.Do(func() {
		s.pool.give(s.tab, s.broken)
	})
}

// Render navigates to url, waits for selector to become visible and returns
// the outer HTML of the document.
func (s *Session) Render(ctx context.Context, url, selector string) (string, error) {
	cfg := s.pool.cfg

	runCtx, cancel := context.WithCancel(s.tab.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if len(s.pool.userAgents) > 0 {
		if err := chromedp.Run(runCtx, emulation.SetUserAgentOverride(s.pool.randomUserAgent())); err != nil {
			s.markIfDead()
			return "", fmt.Errorf("failed to set user agent: %w", err)
		}
	}

	navCtx, navCancel := context.WithTimeout(runCtx, cfg.PageLoadTimeout)
	err := chromedp.Run(navCtx, chromedp.Navigate(url))
	navCancel()
	if err != nil {
		s.markIfDead()
		return "", fmt.Errorf("failed to load %s: %w", url, err)
	}

	waitCtx, waitCancel := context.WithTimeout(runCtx, cfg.WaitTimeout)
	err = chromedp.Run(waitCtx, chromedp.WaitVisible(selector, chromedp.ByQuery))
	waitCancel()
	if err != nil {
		s.markIfDead()
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return "", ErrSelectorTimeout
		}
		return "", fmt.Errorf("failed waiting for %q: %w", selector, err)
	}

	var htmlContent string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &htmlContent, chromedp.ByQuery)); err != nil {
		s.markIfDead()
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return htmlContent, nil
}

func (s *Session) markIfDead() {
	if s.tab.ctx.Err() != nil {
		s.broken = true
	}
}
