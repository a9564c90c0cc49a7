package scraper

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"contactscraper/extract"
	"contactscraper/utils"
)

// Resolver finds a company's website. An empty result with a nil error
// means no website was found.
type Resolver interface {
	Resolve(ctx context.Context, companyName string) (string, error)
}

// Extractor reads contact details off a website
type Extractor interface {
	Extract(ctx context.Context, siteURL string) extract.ContactInfo
}

// Service handles company processing
type Service struct {
	resolver  Resolver
	extractor Extractor
	workers   int
	log       logrus.FieldLogger
}

// NewService creates a new company processing service. workers bounds ProcessAll.
func NewService(resolver Resolver, extractor Extractor, workers int, log logrus.FieldLogger) *Service {
	return &Service{
		resolver:  resolver,
		extractor: extractor,
		workers:   max(workers, 1),
		log:       log,
	}
}

// Process resolves companyName's website and extracts its contact details.
// It never panics: every failure is reported through the result status.
func (s *Service) Process(ctx context.Context, companyName string) (result CompanyResult) {
	name := utils.CleanText(companyName)
	log := s.log.WithFields(logrus.Fields{
		"run_id":  uuid.NewString(),
		"company": name,
	})

	result = CompanyResult{CompanyName: name, Status: StatusSuccess}

	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", fmt.Sprint(r)).Error("company processing panicked")
			result.Status = StatusError
		}
	}()

	log.Info("processing company")

	website, err := s.resolver.Resolve(ctx, name)
	if err != nil {
		log.WithError(err).Error("website lookup failed")
		result.Status = StatusError
		return result
	}
	if website == "" {
		result.Status = StatusNoWebsite
		log.Info("no website found")
		return result
	}
	result.Website = website

	info := s.extractor.Extract(ctx, website)
	if info.Website != "" {
		result.Website = info.Website
	}
	result.Email = info.Email
	result.Phone = info.Phone

	log.WithFields(logrus.Fields{
		"website": result.Website,
		"email":   result.Email,
		"phone":   result.Phone,
	}).Info("company processed")
	return result
}

// ProcessBytes is Process for raw input. Input that is not valid UTF-8 is
// rejected with StatusEncodingError and a quoted rendition of the bytes.
func (s *Service) ProcessBytes(ctx context.Context, raw []byte) CompanyResult {
	if !utf8.Valid(raw) {
		s.log.WithField("company", strconv.Quote(string(raw))).Error("company name is not valid UTF-8")
		return CompanyResult{
			CompanyName: strconv.Quote(string(raw)),
			Status:      StatusEncodingError,
		}
	}
	return s.Process(ctx, string(raw))
}

// ProcessAll processes names concurrently, at most workers at a time. The
// results keep the input order. onResult, when set, sees each result as it
// completes; calls are serialized.
func (s *Service) ProcessAll(ctx context.Context, names []string, onResult func(CompanyResult)) []CompanyResult {
	results := make([]CompanyResult, len(names))

	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	g.SetLimit(s.workers)

	for i, name := range names {
		g.Go(func() error {
			result := s.Process(ctx, name)
			results[i] = result

			if onResult != nil {
				mu.Lock()
				onResult(result)
				mu.Unlock()
			}
			return nil
		})
	}

	// workers never fail; Process folds errors into the result
	_ = g.Wait()

	s.log.WithField("companies", len(names)).Info("batch processed")
	return results
}
