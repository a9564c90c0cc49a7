// Package browser provides browser automation functionality
package browser

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"contactscraper/config"
)

// ErrPoolClosed is returned by Acquire after Close
var ErrPoolClosed = errors.New("browser: pool closed")

const resetTimeout = 3 * time.Second

type tab struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// Pool manages a bounded set of reusable browser contexts. They share one exec
// allocator (flags, user agent), but each context runs its own browser process.
type Pool struct {
	cfg        config.BrowserConfig
	userAgents []string
	log        logrus.FieldLogger

	sem  *semaphore.Weighted
	idle chan *tab

	mu          sync.Mutex
	allocCtx    context.Context
	allocCancel context.CancelFunc
	closed      bool

	// overridable in tests
	start func(allocCtx context.Context) (*tab, error)
	reset func(*tab) error
}

// New creates a browser pool that hands out at most size tabs at a time.
// Browser processes are started lazily, one per pooled context.
func New(cfg config.BrowserConfig, size int, userAgents []string, log logrus.FieldLogger) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		cfg:        cfg,
		userAgents: userAgents,
		log:        log,
		sem:        semaphore.NewWeighted(int64(size)),
		idle:       make(chan *tab, size),
		start:      startTab,
		reset:      resetTab,
	}
}

func (pool *Pool) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", pool.cfg.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.WindowSize(pool.cfg.WindowWidth, pool.cfg.WindowHeight),
	)
	if len(pool.userAgents) > 0 {
		opts = append(opts, chromedp.UserAgent(pool.randomUserAgent()))
	}
	if pool.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(pool.cfg.ExecPath))
	}
	return opts
}

// Acquire takes a tab from the pool, starting one if none is idle. It blocks
// until a slot is free or ctx is done. The caller must Release the session.
func (pool *Pool) Acquire(ctx context.Context) (*Session, error) {
	if err := pool.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	pool.mu.Lock()
	if pool.closed {
		pool.mu.Unlock()
		pool.sem.Release(1)
		return nil, ErrPoolClosed
	}
	if pool.allocCtx == nil {
		pool.allocCtx, pool.allocCancel = chromedp.NewExecAllocator(context.Background(), pool.allocatorOptions()...)
		pool.log.WithField("headless", pool.cfg.Headless).Info("browser allocator started")
	}
	allocCtx := pool.allocCtx
	pool.mu.Unlock()

	select {
	case t := <-pool.idle:
		return &Session{pool: pool, tab: t}, nil
	default:
	}

	t, err := pool.start(allocCtx)
	if err != nil {
		pool.sem.Release(1)
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	return &Session{pool: pool, tab: t}, nil
}

// With runs fn with an acquired session and releases it on every exit path,
// panics included.
func (pool *Pool) With(ctx context.Context, fn func(*Session) error) error {
	s, err := pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer s.Release()
	defer func() {
		if r := recover(); r != nil {
			s.broken = true
			panic(r)
		}
	}()
	return fn(s)
}

// Render loads url in a pooled tab, waits for selector and returns the page HTML
func (pool *Pool) Render(ctx context.Context, url, selector string) (string, error) {
	var html string
	err := pool.With(ctx, func(s *Session) error {
		var err error
		html, err = s.Render(ctx, url, selector)
		return err
	})
	return html, err
}

// give returns a healthy tab to the idle set or closes it
func (pool *Pool) give(t *tab, broken bool) {
	defer pool.sem.Release(1)

	if !broken && t.ctx.Err() == nil {
		if err := pool.reset(t); err == nil {
			pool.mu.Lock()
			closed := pool.closed
			pool.mu.Unlock()
			if !closed {
				select {
				case pool.idle <- t:
					return
				default:
				}
			}
		}
	}
	t.cancel()
}

// Close shuts down all idle tabs and the browser process.
// Sessions still in use are closed when released.
func (pool *Pool) Close() {
	pool.mu.Lock()
	defer pool.mu.Unlock()

	if pool.closed {
		return
	}
	pool.closed = true

	for len(pool.idle) > 0 {
		t := <-pool.idle
		t.cancel()
	}

	if pool.allocCancel != nil {
		pool.allocCancel()
	}
	pool.log.Info("browser pool shut down")
}

func (pool *Pool) randomUserAgent() string {
	return pool.userAgents[rand.IntN(len(pool.userAgents))]
}

func startTab(allocCtx context.Context) (*tab, error) {
	ctx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	// the first Run launches this context's browser process
	if err := chromedp.Run(ctx, chromedp.Navigate("about:blank")); err != nil {
		cancel()
		return nil, err
	}
	return &tab{ctx: ctx, cancel: cancel}, nil
}

func resetTab(t *tab) error {
	ctx, cancel := context.WithTimeout(t.ctx, resetTimeout)
	defer cancel()

	return chromedp.Run(ctx,
		network.ClearBrowserCookies(),
		chromedp.Navigate("about:blank"),
	)
}
