package vcs

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// BranchCache maps commit hashes to resolved branch names for one deployment
// run. Once set, an entry is authoritative for the remainder of the run: a
// cached answer is never re-derived, even if a fresh query would now be
// ambiguous. Set allows the caller to overwrite an entry to correct a prior
// choice, and that override wins over any future automatic resolution.
//
// The cache is owned by one adapter instance and touched only from the
// single sequential deployment flow, so it carries no lock. Two checkouts get
// two caches; they never share state.
type BranchCache struct {
	entries map[string]string
}

// NewBranchCache returns an empty cache.
func NewBranchCache() *BranchCache {
	return &BranchCache{entries: make(map[string]string)}
}

// Get returns the cached branch for hash, if any.
func (c *BranchCache) Get(hash string) (string, bool) {
	branch, ok := c.entries[hash]
	return branch, ok
}

// Set stores branch for hash, overwriting any previous entry.
func (c *BranchCache) Set(hash, branch string) {
	c.entries[hash] = branch
}

// Chooser is the operator-choice collaborator: given an ordered candidate
// list it returns the chosen entry. The call blocks the deployment flow until
// an answer arrives; there is no timeout and no default. Cancelling is the
// caller's responsibility (interrupt the run).
type Chooser interface {
	Choose(candidates []string) (string, error)
}

// ChooserFunc adapts a function to the Chooser interface.
type ChooserFunc func(candidates []string) (string, error)

func (f ChooserFunc) Choose(candidates []string) (string, error) {
	return f(candidates)
}

// branchSource is the variant-specific half of branch resolution.
type branchSource interface {
	// branchesContaining lists the branches the commit is reachable from,
	// sorted and deduplicated. An unknown commit yields an empty list.
	branchesContaining(ctx context.Context, hash string) ([]string, error)
	// checkoutBranch names the checkout's current branch, "" when detached.
	checkoutBranch(ctx context.Context) (string, error)
}

// BranchResolver maps commit hashes to their owning branch name, caching
// answers and deferring to the operator when a commit is reachable from more
// than one branch.
type BranchResolver struct {
	cache   *BranchCache
	chooser Chooser
	source  branchSource
}

// NewBranchResolver wires a resolver to its cache, chooser and VCS source.
// A nil chooser rejects ambiguous commits with an error instead of blocking.
func NewBranchResolver(cache *BranchCache, chooser Chooser, source branchSource) *BranchResolver {
	if chooser == nil {
		chooser = ChooserFunc(func(candidates []string) (string, error) {
			return "", fmt.Errorf("commit is reachable from %s and no chooser is configured",
				strings.Join(candidates, ", "))
		})
	}
	return &BranchResolver{cache: cache, chooser: chooser, source: source}
}

// Cache exposes the resolver's cache for explicit operator correction.
func (r *BranchResolver) Cache() *BranchCache {
	return r.cache
}

// Resolve returns the branch owning hash. A cached answer wins
// unconditionally. Exactly one containing branch is cached and returned; zero
// containing branches yields the checkout's current branch uncached (a
// transient local state); several block on the operator's choice, which is
// then cached.
func (r *BranchResolver) Resolve(ctx context.Context, hash string) (string, error) {
	if branch, ok := r.cache.Get(hash); ok {
		return branch, nil
	}

	candidates, err := r.source.branchesContaining(ctx, hash)
	if err != nil {
		return "", err
	}

	switch len(candidates) {
	case 0:
		return r.source.checkoutBranch(ctx)
	case 1:
		r.cache.Set(hash, candidates[0])
		return candidates[0], nil
	}

	chosen, err := r.chooser.Choose(candidates)
	if err != nil {
		return "", err
	}
	r.cache.Set(hash, chosen)
	return chosen, nil
}

// ResolveForLog names the branch for a commit rendered in a deployment plan.
// A cached (or operator-corrected) answer wins; otherwise every containing
// branch is relevant in range context and they are rendered sorted and
// '|'-joined. List rendering never prompts: a range may cross branches on
// every line, and blocking per line would be unusable.
func (r *BranchResolver) ResolveForLog(ctx context.Context, hash string) (string, error) {
	if branch, ok := r.cache.Get(hash); ok {
		return branch, nil
	}

	candidates, err := r.source.branchesContaining(ctx, hash)
	if err != nil {
		return "", err
	}

	switch len(candidates) {
	case 0:
		return r.source.checkoutBranch(ctx)
	case 1:
		r.cache.Set(hash, candidates[0])
		return candidates[0], nil
	}
	return strings.Join(candidates, "|"), nil
}

// cachedOr returns the cached branch for hash, falling back to the given
// value. Used by the mercurial variant, where the log itself carries the
// branch metadata but a cached operator correction must still win.
func (r *BranchResolver) cachedOr(hash, fallback string) string {
	if branch, ok := r.cache.Get(hash); ok {
		return branch
	}
	return fallback
}

// sortedUnique sorts and deduplicates a candidate list in place.
func sortedUnique(names []string) []string {
	sort.Strings(names)
	out := names[:0]
	var prev string
	for i, n := range names {
		if i == 0 || n != prev {
			out = append(out, n)
		}
		prev = n
	}
	return out
}
