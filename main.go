package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"contactscraper/api"
	"contactscraper/browser"
	"contactscraper/cache"
	"contactscraper/config"
	"contactscraper/discover"
	"contactscraper/extract"
	"contactscraper/fetcher"
	"contactscraper/logging"
	"contactscraper/resolver"
	"contactscraper/scraper"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_FILE"), "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := cache.New(ctx, cfg.Cache)
	// page bodies are cached in redis only
	var pageStore cache.Store
	switch {
	case err != nil:
		log.WithError(err).Warn("cache unavailable, falling back to memory")
		store = cache.NewMemoryStore(cfg.Cache.TTL, cfg.Cache.CleanupInterval)
	case cfg.Cache.CachesPages():
		pageStore = store
	}
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}

	pool := browser.New(cfg.Browser, cfg.Workers, cfg.Fetch.UserAgents, log)
	defer pool.Close()

	svc, err := newService(cfg, store, pageStore, pool, log)
	if err != nil {
		log.WithError(err).Fatal("failed to build pipeline")
	}

	// company names on the command line run one batch instead of serving
	if names := flag.Args(); len(names) > 0 {
		runBatch(ctx, svc, names)
		return
	}

	serve(ctx, cfg.Server, svc, log)
}

func newService(cfg config.Config, store, pageStore cache.Store, pool *browser.Pool, log logrus.FieldLogger) (*scraper.Service, error) {
	var opts []fetcher.Option
	if pageStore != nil {
		opts = append(opts, fetcher.WithCache(pageStore, cfg.Cache.PageTTL))
	}
	pages := fetcher.New(cfg.Fetch, log, opts...)

	finder, err := discover.New(cfg.Discover, pages, log)
	if err != nil {
		return nil, err
	}

	return scraper.NewService(
		resolver.New(cfg, pool, pages, store, log),
		extract.New(pages, finder, nil, log),
		cfg.Workers,
		log,
	), nil
}

// runBatch writes one JSON line per company to stdout as results complete
func runBatch(ctx context.Context, svc *scraper.Service, names []string) {
	enc := json.NewEncoder(os.Stdout)
	svc.ProcessAll(ctx, names, func(result scraper.CompanyResult) {
		enc.Encode(result)
	})
}

func serve(ctx context.Context, cfg config.ServerConfig, svc *scraper.Service, log logrus.FieldLogger) {
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     api.NewRouter(svc, log),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Server is running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
		return
	}
	log.Info("Server stopped")
}
