package extract

import (
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// Strategy is one way of reading contact details off a parsed page
type Strategy interface {
	// Name identifies the strategy in logs
	Name() string

	// Apply fills the missing fields of info from doc. It never overwrites.
	Apply(doc *goquery.Document, info *ContactInfo)
}

// Registry holds the strategies in the order they run
type Registry struct {
	strategies []Strategy
	mu         sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		strategies: make([]Strategy, 0),
	}
}

// NewDefaultRegistry returns visible text, metadata, microdata and script
// strategies, in that order
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Visible{})
	r.Register(Metadata{})
	r.Register(Microdata{})
	r.Register(Script{})
	return r
}

// Register appends a strategy
func (r *Registry) Register(strategy Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies = append(r.strategies, strategy)
}

// Strategies returns the registered strategies in run order
func (r *Registry) Strategies() []Strategy {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Strategy, len(r.strategies))
	copy(out, r.strategies)
	return out
}

// Apply runs every strategy against doc until info is complete
func (r *Registry) Apply(doc *goquery.Document, info *ContactInfo) {
	for _, strategy := range r.Strategies() {
		if info.Complete() {
			return
		}
		strategy.Apply(doc, info)
	}
}
