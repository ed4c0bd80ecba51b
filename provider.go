package youtubuddy

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/hashicorp/go-multierror"

	"github.com/alanbriolat/youtubuddy/generic"
)

var (
	ErrDuplicateProvider = errors.New("duplicate provider name")
	ErrInvalidProvider   = errors.New("invalid provider")
	ErrNoMatch           = errors.New("no provider matched the input")
	ErrUnknownProvider   = errors.New("unknown provider")
)

var (
	PriorityHighest int16 = math.MinInt16
	PriorityDefault int16 = 0
	PriorityLowest  int16 = math.MaxInt16
)

// A Source is a URL that a Provider has recognised but not yet looked up.
type Source interface {
	// URL should return the canonical URL for this source. It is assumed that the Provider.Match that created the
	// Source would successfully match this canonical URL.
	URL() string
	// Resolve contacts the remote service to fetch metadata and choose a stream, without downloading media.
	Resolve(ctx context.Context) (ResolvedSource, error)
}

// A ResolvedSource knows its Metadata and which stream it will download.
type ResolvedSource interface {
	Metadata() Metadata
	// Download saves the chosen stream through d. If filename is set it is used as the base name, otherwise the
	// provider picks one from the metadata; either way the provider appends the container extension. Returns the
	// path that was written.
	Download(d Download, filename generic.Option[string]) (string, error)
}

type MatchFunc = func(string) (Source, error)

// A Provider matches any URL it knows how to handle, giving a Source that can be resolved.
type Provider struct {
	Name  string
	Match MatchFunc
	// Priority of the matcher, lower (including negative) means matching earlier.
	Priority int16
}

func (p Provider) WithPriority(priority int16) Provider {
	p.Priority = priority
	return p
}

// A Match is the result of a Provider successfully matching a URL.
type Match struct {
	ProviderName string
	Source       Source
}

// A ProviderRegistry is a collection of Provider instances which can be used to try to match URLs.
type ProviderRegistry struct {
	providers   []*Provider
	providerMap map[string]*Provider
}

// Add registers a Provider with the ProviderRegistry. Provider.Name and Provider.Match must be set, and
// Provider.Name must be unique within the ProviderRegistry.
func (r *ProviderRegistry) Add(p Provider) error {
	if r.providerMap == nil {
		r.providerMap = make(map[string]*Provider)
	}
	if p.Name == "" || p.Match == nil {
		return ErrInvalidProvider
	}
	if _, ok := r.providerMap[p.Name]; ok {
		return fmt.Errorf("%w: %v", ErrDuplicateProvider, p.Name)
	}
	r.providerMap[p.Name] = &p
	r.providers = append(r.providers, &p)
	r.sortByPriority()
	return nil
}

// List returns the names of registered providers in priority order.
func (r *ProviderRegistry) List() []string {
	names := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		names = append(names, p.Name)
	}
	return names
}

// Match a string against each Provider in priority order. If none match, the error wraps ErrNoMatch and includes the
// reason each provider gave.
func (r *ProviderRegistry) Match(s string) (*Match, error) {
	var result *multierror.Error
	for _, p := range r.providers {
		source, err := p.Match(s)
		if err == nil && source != nil {
			return &Match{ProviderName: p.Name, Source: source}, nil
		}
		if err == nil {
			err = ErrNoMatch
		}
		result = multierror.Append(result, multierror.Prefix(err, fmt.Sprintf("[%v]", p.Name)))
	}
	if result == nil {
		return nil, ErrNoMatch
	}
	return nil, fmt.Errorf("%w: %v", ErrNoMatch, result.ErrorOrNil())
}

// MatchWith will attempt to match a string against a specific provider.
func (r *ProviderRegistry) MatchWith(name string, s string) (*Match, error) {
	p, ok := r.providerMap[name]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownProvider, name)
	}
	source, err := p.Match(s)
	if err != nil {
		return nil, fmt.Errorf("%w: [%v] %v", ErrNoMatch, name, err)
	} else if source == nil {
		return nil, ErrNoMatch
	}
	return &Match{ProviderName: p.Name, Source: source}, nil
}

// MustAdd wraps Add but panics if there is an error.
func (r *ProviderRegistry) MustAdd(p Provider) {
	generic.Unwrap_(r.Add(p))
}

// SetPriority adjust the priority of a named Provider.
func (r *ProviderRegistry) SetPriority(name string, priority int16) error {
	if p, ok := r.providerMap[name]; ok {
		p.Priority = priority
		r.sortByPriority()
		return nil
	} else {
		return ErrUnknownProvider
	}
}

func (r *ProviderRegistry) sortByPriority() {
	sort.SliceStable(r.providers, func(i, j int) bool {
		return r.providers[i].Priority < r.providers[j].Priority
	})
}

var DefaultProviderRegistry ProviderRegistry
