package youtubuddy

import (
	"context"
	"errors"
	"strings"
	"testing"

	assert_ "github.com/stretchr/testify/assert"

	"github.com/alanbriolat/youtubuddy/generic"
)

type fakeSource struct {
	url      string
	metadata Metadata
	content  string
	err      error
}

func (s *fakeSource) URL() string {
	return s.url
}

func (s *fakeSource) Resolve(ctx context.Context) (ResolvedSource, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s, nil
}

func (s *fakeSource) Metadata() Metadata {
	return s.metadata
}

func (s *fakeSource) Download(d Download, filename generic.Option[string]) (string, error) {
	name := filename.UnwrapOr(s.metadata.Title) + ".mp4"
	d.AddExpectedBytes(len(s.content))
	return d.SaveStream(name, strings.NewReader(s.content))
}

func prefixMatcher(prefix string, source *fakeSource) MatchFunc {
	return func(s string) (Source, error) {
		if !strings.HasPrefix(s, prefix) {
			return nil, errors.New("wrong prefix")
		}
		source.url = s
		return source, nil
	}
}

func TestProviderRegistry(t *testing.T) {
	assert := assert_.New(t)
	var r ProviderRegistry

	assert.ErrorIs(r.Add(Provider{Name: "a"}), ErrInvalidProvider)
	assert.Nil(r.Add(Provider{Name: "any", Match: prefixMatcher("", &fakeSource{}), Priority: PriorityLowest}))
	assert.Nil(r.Add(Provider{Name: "a", Match: prefixMatcher("a:", &fakeSource{})}))
	assert.Nil(r.Add(Provider{Name: "b", Match: prefixMatcher("b:", &fakeSource{}), Priority: -1}))
	assert.ErrorIs(r.Add(Provider{Name: "a", Match: prefixMatcher("a:", &fakeSource{})}), ErrDuplicateProvider)
	assert.Equal([]string{"b", "a", "any"}, r.List())

	m, err := r.Match("a:video")
	assert.Nil(err)
	assert.Equal("a", m.ProviderName)
	assert.Equal("a:video", m.Source.URL())

	m, err = r.Match("c:video")
	assert.Nil(err)
	assert.Equal("any", m.ProviderName)

	assert.Nil(r.SetPriority("any", PriorityHighest))
	assert.Equal([]string{"any", "b", "a"}, r.List())
	// Equal priorities keep their existing order
	assert.Nil(r.SetPriority("a", -1))
	assert.Equal([]string{"any", "b", "a"}, r.List())
	assert.ErrorIs(r.SetPriority("missing", 0), ErrUnknownProvider)

	m, err = r.MatchWith("b", "b:video")
	assert.Nil(err)
	assert.Equal("b", m.ProviderName)
	_, err = r.MatchWith("b", "a:video")
	assert.ErrorIs(err, ErrNoMatch)
	_, err = r.MatchWith("missing", "a:video")
	assert.ErrorIs(err, ErrUnknownProvider)
}

func TestProviderRegistryNoMatch(t *testing.T) {
	assert := assert_.New(t)
	var r ProviderRegistry

	_, err := r.Match("anything")
	assert.ErrorIs(err, ErrNoMatch)

	r.MustAdd(Provider{Name: "a", Match: prefixMatcher("a:", &fakeSource{})})
	r.MustAdd(Provider{Name: "b", Match: prefixMatcher("b:", &fakeSource{})})
	_, err = r.Match("c:video")
	assert.ErrorIs(err, ErrNoMatch)
	// Every provider's reason is included
	assert.Contains(err.Error(), "[a] wrong prefix")
	assert.Contains(err.Error(), "[b] wrong prefix")

	assert.Panics(func() { r.MustAdd(Provider{Name: "a", Match: prefixMatcher("a:", &fakeSource{})}) })
}
