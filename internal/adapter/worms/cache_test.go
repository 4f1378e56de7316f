package worms_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/dwc-align/internal/adapter/worms"
	"github.com/couchcryptid/dwc-align/internal/domain"
	"github.com/couchcryptid/dwc-align/internal/observability"
)

type stubResolver struct {
	matches map[string]domain.TaxonMatch
	err     error
	calls   [][]string
}

func (s *stubResolver) Resolve(_ context.Context, names []string) (map[string]domain.TaxonMatch, error) {
	s.calls = append(s.calls, append([]string(nil), names...))
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[string]domain.TaxonMatch, len(names))
	for _, n := range names {
		if m, ok := s.matches[n]; ok {
			out[n] = m
		}
	}
	return out, nil
}

func coralMatch() domain.TaxonMatch {
	return domain.TaxonMatch{
		ScientificName: "Acropora cervicornis",
		AcceptedName:   "Acropora cervicornis",
		AphiaID:        206989,
		Kingdom:        "Animalia",
		Rank:           "Species",
	}
}

func TestCachedResolver_HitSkipsInner(t *testing.T) {
	inner := &stubResolver{matches: map[string]domain.TaxonMatch{"Acropora cervicornis": coralMatch()}}
	cached := worms.NewCachedResolver(inner, 10, observability.NewMetricsForTesting())
	ctx := context.Background()

	first, err := cached.Resolve(ctx, []string{"Acropora cervicornis"})
	require.NoError(t, err)
	require.Len(t, inner.calls, 1)

	second, err := cached.Resolve(ctx, []string{"Acropora cervicornis"})
	require.NoError(t, err)
	assert.Len(t, inner.calls, 1, "second lookup should be served from cache")
	assert.Equal(t, first, second)
}

func TestCachedResolver_PartialHit(t *testing.T) {
	inner := &stubResolver{matches: map[string]domain.TaxonMatch{
		"Acropora cervicornis": coralMatch(),
		"Madracis auretenra":   {ScientificName: "Madracis auretenra", AphiaID: 430664},
	}}
	cached := worms.NewCachedResolver(inner, 10, observability.NewMetricsForTesting())
	ctx := context.Background()

	_, err := cached.Resolve(ctx, []string{"Acropora cervicornis"})
	require.NoError(t, err)

	matches, err := cached.Resolve(ctx, []string{"Acropora cervicornis", "Madracis auretenra"})
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	// Only the miss went to the inner resolver.
	require.Len(t, inner.calls, 2)
	assert.Equal(t, []string{"Madracis auretenra"}, inner.calls[1])
}

func TestCachedResolver_UnmatchedNotCached(t *testing.T) {
	inner := &stubResolver{matches: map[string]domain.TaxonMatch{}}
	cached := worms.NewCachedResolver(inner, 10, observability.NewMetricsForTesting())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		matches, err := cached.Resolve(ctx, []string{"Nonesuch speciosa"})
		require.NoError(t, err)
		assert.Empty(t, matches)
	}

	// The unknown name hits the inner resolver every time.
	assert.Len(t, inner.calls, 2)
}

func TestCachedResolver_Eviction(t *testing.T) {
	inner := &stubResolver{matches: map[string]domain.TaxonMatch{
		"a": {AphiaID: 1}, "b": {AphiaID: 2}, "c": {AphiaID: 3},
	}}
	cached := worms.NewCachedResolver(inner, 2, observability.NewMetricsForTesting())
	ctx := context.Background()

	for _, n := range []string{"a", "b", "c"} {
		_, err := cached.Resolve(ctx, []string{n})
		require.NoError(t, err)
	}

	// "a" was evicted when "c" came in; "c" is still resident.
	_, err := cached.Resolve(ctx, []string{"a"})
	require.NoError(t, err)
	_, err = cached.Resolve(ctx, []string{"c"})
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"a"}, {"b"}, {"c"}, {"a"}}, inner.calls)
}

func TestCachedResolver_InnerError(t *testing.T) {
	inner := &stubResolver{err: errors.New("timeout")}
	cached := worms.NewCachedResolver(inner, 10, observability.NewMetricsForTesting())

	_, err := cached.Resolve(context.Background(), []string{"Acropora cervicornis"})

	require.Error(t, err)
}
