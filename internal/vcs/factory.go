package vcs

import (
	"fmt"

	"github.com/okarlsson/sledge/internal/runner"
)

// Options carries the collaborators an adapter variant is built from.
type Options struct {
	// Runner is the command channel to the host holding the checkout.
	Runner runner.Runner
	// CodeDir is the checkout's directory on that host.
	CodeDir string
	// RepoURL is the remote to clone from; may be empty for existing
	// checkouts.
	RepoURL string
	// Chooser answers branch disambiguation questions. A nil Chooser turns
	// ambiguous branch lookups into errors instead of prompting.
	Chooser Chooser
	// Cache holds branch resolutions across calls; a fresh cache is created
	// when nil. Two adapter instances must not share one cache unless they
	// point at the same checkout.
	Cache *BranchCache
}

// New returns the adapter variant for the given VCS type tag.
func New(vcsType string, opts Options) (Adapter, error) {
	switch vcsType {
	case "git":
		return NewGit(opts), nil
	case "hg", "mercurial":
		return NewMercurial(opts), nil
	default:
		return nil, fmt.Errorf("unsupported vcs type %q (supported: git, hg)", vcsType)
	}
}
