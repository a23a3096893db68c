// Package vcs implements the deployment adapter for git and mercurial
// checkouts. Both variants sit behind one Adapter contract; everything that
// differs between the two systems (ref semantics, revset syntax, ancestry
// queries, branch resolution) stays inside the variant that needs it.
//
// All commands reach the checkout through a runner.Runner, so the same
// adapter drives a checkout over ssh or on the local machine.
package vcs

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/okarlsson/sledge/internal/models"
	"github.com/okarlsson/sledge/internal/runner"
)

// Adapter is the uniform contract over a git or mercurial checkout.
// Implementations never mutate the checkout except in Clone and Update.
type Adapter interface {
	// Type returns the adapter's VCS tag ("git" or "hg").
	Type() string
	// Version reflects the checkout's current commit without mutating it.
	Version(ctx context.Context) (models.CommitRecord, error)
	// Branch resolves the branch owning commitHash, or the checkout's
	// current commit when commitHash is empty. Returns "" for a detached or
	// anonymous state it cannot name.
	Branch(ctx context.Context, commitHash string) (string, error)
	// RepoURL returns the configured remote URL, or "" when no remote is
	// configured. It never fails on an unconfigured remote.
	RepoURL(ctx context.Context) (string, error)
	// Clone performs the first-time checkout into an empty target directory
	// at the given branch, or the VCS default when branch is empty.
	Clone(ctx context.Context, branch string) error
	// Update converges the checkout to revision (hash, branch or tag). An
	// empty revision advances the currently checked-out branch to its
	// remote tip. The revision is re-validated on every call.
	Update(ctx context.Context, revision string) error
	// DeploymentList plans the update to revision without applying it.
	DeploymentList(ctx context.Context, revision string) (*models.DeploymentPlan, error)
	// ChangedFiles lists "<STATUS> <path>" lines for the revset, keeping
	// only lines matching at least one of the filter patterns when filters
	// is non-empty.
	ChangedFiles(ctx context.Context, revset string, filters []string) ([]string, error)
	// NormalizeBranch strips VCS-specific detached-checkout descriptions,
	// returning "" for those and any other name unchanged.
	NormalizeBranch(name string) string
}

// InvalidRevisionError reports an operator-supplied revision that is
// malformed, disallowed, or unknown to the remote repository. It is fatal:
// callers abort the run rather than falling back.
type InvalidRevisionError struct {
	Revision string
	Reason   string
}

func (e *InvalidRevisionError) Error() string {
	return fmt.Sprintf("invalid revision %q: %s", e.Revision, e.Reason)
}

// PreconditionError reports a checkout precondition violation, e.g. cloning
// into a non-empty directory. Fatal, like InvalidRevisionError.
type PreconditionError struct {
	Op     string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// checkout is the shared plumbing both variants build on: the command
// channel, the target directory and the configured remote URL.
type checkout struct {
	runner  runner.Runner
	codeDir string
	repoURL string
}

// run executes command inside the code directory. A non-zero exit is fatal.
func (c *checkout) run(ctx context.Context, command string) (string, error) {
	res, err := c.runner.Run(ctx, "cd "+shellQuote(c.codeDir)+" && "+command, runner.Opts{})
	if err != nil {
		return "", err
	}
	return res.Output, nil
}

// tryRun executes command inside the code directory with warn-only
// semantics: a non-zero exit returns ok == false instead of an error.
func (c *checkout) tryRun(ctx context.Context, command string) (out string, ok bool, err error) {
	res, err := c.runner.Run(ctx, "cd "+shellQuote(c.codeDir)+" && "+command, runner.Opts{WarnOnly: true})
	if err != nil {
		return "", false, err
	}
	return res.Output, res.Succeeded, nil
}

// runBare executes command without entering the code directory. Used for
// clone, where the directory does not exist yet.
func (c *checkout) runBare(ctx context.Context, command string) (string, error) {
	res, err := c.runner.Run(ctx, command, runner.Opts{})
	if err != nil {
		return "", err
	}
	return res.Output, nil
}

// ensureEmptyTarget fails when the code directory exists and is non-empty.
func (c *checkout) ensureEmptyTarget(ctx context.Context) error {
	probe := "[ ! -e " + shellQuote(c.codeDir) + " ] || [ -z \"$(ls -A " + shellQuote(c.codeDir) + ")\" ]"
	res, err := c.runner.Run(ctx, probe, runner.Opts{WarnOnly: true})
	if err != nil {
		return err
	}
	if !res.Succeeded {
		return &PreconditionError{Op: "clone", Reason: fmt.Sprintf("target directory %s is not empty", c.codeDir)}
	}
	return nil
}

// detachedDescriptions are the markers a VCS embeds in a "branch name" when
// the checkout points at a commit rather than a named branch.
var detachedDescriptions = []string{"detached at ", "detached from "}

// NormalizeBranch returns "" for a detached-checkout description and any
// other name unchanged.
func NormalizeBranch(name string) string {
	for _, marker := range detachedDescriptions {
		if strings.Contains(name, marker) {
			return ""
		}
	}
	return name
}

// filterLines keeps the lines matching at least one of the patterns.
// With no patterns every line is kept. A malformed pattern is invalid input.
func filterLines(lines []string, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return lines, nil
	}
	regexps := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid filter pattern %q: %w", p, err)
		}
		regexps = append(regexps, re)
	}

	var kept []string
	for _, line := range lines {
		for _, re := range regexps {
			if re.MatchString(line) {
				kept = append(kept, line)
				break
			}
		}
	}
	return kept, nil
}

// shellQuote quotes a string for safe use in shell commands. Every command
// construction site routes operator input and commit content through here;
// nothing untrusted is ever substituted into a format template.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}
