package provider

import "errors"

// ErrNoProvider is returned when no source can supply a provider.
var ErrNoProvider = errors.New("no wallet provider found")

// Source detects one kind of provider. Detect returns nil when the source is
// absent in the current environment.
type Source interface {
	Name() string
	Detect() Provider
}

// Resolver picks the authoritative provider for the current moment.
//
// The order is re-evaluated on every call and nothing is cached here: the
// widget can move between "embedded in a frame host" and "standalone", and
// the host endpoint may appear only after the process has started.
type Resolver struct {
	sources []Source
}

// NewResolver creates a Resolver from an ordered list of sources.
func NewResolver(sources ...Source) *Resolver {
	return &Resolver{sources: sources}
}

// Resolve returns the first provider any source detects, in priority order.
func (r *Resolver) Resolve() (Provider, error) {
	for _, s := range r.sources {
		if p := s.Detect(); p != nil {
			return p, nil
		}
	}
	return nil, ErrNoProvider
}

// Names returns the names of all sources (for display).
func (r *Resolver) Names() []string {
	names := make([]string, len(r.sources))
	for i, s := range r.sources {
		names[i] = s.Name()
	}
	return names
}
