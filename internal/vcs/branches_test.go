package vcs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource is a branchSource with fixed answers.
type stubSource struct {
	containing map[string][]string
	current    string
	err        error
}

func (s *stubSource) branchesContaining(_ context.Context, hash string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.containing[hash], nil
}

func (s *stubSource) checkoutBranch(_ context.Context) (string, error) {
	return s.current, nil
}

func TestResolve_CachedAnswerWins(t *testing.T) {
	cache := NewBranchCache()
	cache.Set("aaa", "release")

	// The source would answer differently; the cache must win without a query.
	source := &stubSource{err: errors.New("source must not be queried")}
	r := NewBranchResolver(cache, noChooser(t), source)

	branch, err := r.Resolve(context.Background(), "aaa")
	require.NoError(t, err)
	assert.Equal(t, "release", branch)
}

func TestResolve_ZeroCandidatesFallsBackUncached(t *testing.T) {
	cache := NewBranchCache()
	source := &stubSource{containing: map[string][]string{}, current: "master"}
	r := NewBranchResolver(cache, noChooser(t), source)

	branch, err := r.Resolve(context.Background(), "aaa")
	require.NoError(t, err)
	assert.Equal(t, "master", branch)

	// Unpushed commits are a transient state: nothing is cached for them.
	_, cached := cache.Get("aaa")
	assert.False(t, cached)
}

func TestResolve_SingleCandidateCaches(t *testing.T) {
	cache := NewBranchCache()
	source := &stubSource{containing: map[string][]string{"aaa": {"stable"}}}
	r := NewBranchResolver(cache, noChooser(t), source)

	branch, err := r.Resolve(context.Background(), "aaa")
	require.NoError(t, err)
	assert.Equal(t, "stable", branch)

	cached, ok := cache.Get("aaa")
	assert.True(t, ok)
	assert.Equal(t, "stable", cached)
}

func TestResolve_MultipleCandidatesPromptAndCache(t *testing.T) {
	cache := NewBranchCache()
	source := &stubSource{containing: map[string][]string{"aaa": {"master", "stable"}}}

	var prompted []string
	chooser := ChooserFunc(func(candidates []string) (string, error) {
		prompted = candidates
		return "stable", nil
	})
	r := NewBranchResolver(cache, chooser, source)

	branch, err := r.Resolve(context.Background(), "aaa")
	require.NoError(t, err)
	assert.Equal(t, "stable", branch)
	assert.Equal(t, []string{"master", "stable"}, prompted)

	// The choice sticks: the second call must not prompt again.
	r = NewBranchResolver(cache, noChooser(t), source)
	branch, err = r.Resolve(context.Background(), "aaa")
	require.NoError(t, err)
	assert.Equal(t, "stable", branch)
}

func TestResolveForLog_MultipleCandidatesJoinWithoutPrompt(t *testing.T) {
	cache := NewBranchCache()
	source := &stubSource{containing: map[string][]string{"aaa": {"master", "stable"}}}
	r := NewBranchResolver(cache, noChooser(t), source)

	branch, err := r.ResolveForLog(context.Background(), "aaa")
	require.NoError(t, err)
	assert.Equal(t, "master|stable", branch)

	// Ambiguity is rendered, not decided: nothing is cached.
	_, cached := cache.Get("aaa")
	assert.False(t, cached)
}

func TestResolveForLog_ExplicitOverrideWins(t *testing.T) {
	cache := NewBranchCache()
	cache.Set("aaa", "master")
	source := &stubSource{containing: map[string][]string{"aaa": {"master", "stable"}}}
	r := NewBranchResolver(cache, noChooser(t), source)

	branch, err := r.ResolveForLog(context.Background(), "aaa")
	require.NoError(t, err)
	assert.Equal(t, "master", branch)
}

func TestResolve_NilChooserErrorsOnAmbiguity(t *testing.T) {
	cache := NewBranchCache()
	source := &stubSource{
		containing: map[string][]string{
			"aaa": {"master", "stable"},
			"bbb": {"stable"},
		},
	}
	r := NewBranchResolver(cache, nil, source)

	_, err := r.Resolve(context.Background(), "aaa")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no chooser is configured")

	// Unambiguous lookups and list rendering still work without a chooser.
	branch, err := r.Resolve(context.Background(), "bbb")
	require.NoError(t, err)
	assert.Equal(t, "stable", branch)

	joined, err := r.ResolveForLog(context.Background(), "aaa")
	require.NoError(t, err)
	assert.Equal(t, "master|stable", joined)
}

func TestCachedOr(t *testing.T) {
	cache := NewBranchCache()
	r := NewBranchResolver(cache, noChooser(t), &stubSource{})

	assert.Equal(t, "default", r.cachedOr("aaa", "default"))

	cache.Set("aaa", "stable")
	assert.Equal(t, "stable", r.cachedOr("aaa", "default"))
}

func TestBranchCache_SetOverwrites(t *testing.T) {
	cache := NewBranchCache()
	cache.Set("aaa", "master")
	cache.Set("aaa", "stable")

	branch, ok := cache.Get("aaa")
	require.True(t, ok)
	assert.Equal(t, "stable", branch)
}
