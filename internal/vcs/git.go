package vcs

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/okarlsson/sledge/internal/models"
)

// gitLogFormat asks git for hash, author-with-email and subject joined by the
// unit separator. Fixed constant; commit content is only ever parsed out.
const gitLogFormat = "--format='%H%x1f%an <%ae>%x1f%s'"

const gitLogFields = 3

// remoteQualifiedPattern matches revision strings that already carry a
// remote-tracking prefix. Those are ambiguous between local and remote
// branches and are rejected as invalid input, never silently resolved.
var remoteQualifiedPattern = regexp.MustCompile(`^(remotes/)?origin/`)

// hashPattern matches plausible (possibly abbreviated) commit hashes.
var hashPattern = regexp.MustCompile(`^[0-9a-f]{4,40}$`)

// Git drives a git checkout. Branches are refs that may be ambiguous across
// the local and remote namespaces, so branch lookups go through ref
// containment and may need operator disambiguation.
type Git struct {
	co       *checkout
	resolver *BranchResolver
}

// NewGit creates the git variant of the adapter.
func NewGit(opts Options) *Git {
	g := &Git{
		co: &checkout{runner: opts.Runner, codeDir: opts.CodeDir, repoURL: opts.RepoURL},
	}
	cache := opts.Cache
	if cache == nil {
		cache = NewBranchCache()
	}
	g.resolver = NewBranchResolver(cache, opts.Chooser, g)
	return g
}

func (g *Git) Type() string { return "git" }

// Resolver exposes the branch resolver, e.g. for operator cache correction.
func (g *Git) Resolver() *BranchResolver { return g.resolver }

func (g *Git) NormalizeBranch(name string) string { return NormalizeBranch(name) }

func (g *Git) Version(ctx context.Context) (models.CommitRecord, error) {
	out, err := g.co.run(ctx, "git log -1 "+gitLogFormat)
	if err != nil {
		return models.CommitRecord{}, err
	}
	fields, err := splitLogLine(out, gitLogFields)
	if err != nil {
		return models.CommitRecord{}, err
	}
	rec := models.CommitRecord{Hash: fields[0], Author: fields[1], Message: fields[2]}

	branch, err := g.Branch(ctx, "")
	if err != nil {
		return models.CommitRecord{}, err
	}
	rec.Branch = branch
	return rec, nil
}

func (g *Git) Branch(ctx context.Context, commitHash string) (string, error) {
	if commitHash == "" {
		return g.currentBranch(ctx)
	}
	return g.resolver.Resolve(ctx, commitHash)
}

// currentBranch names the branch the checkout is on. A detached checkout has
// no branch ref, so the current commit is resolved by containment instead.
func (g *Git) currentBranch(ctx context.Context) (string, error) {
	out, err := g.co.run(ctx, "git branch --show-current")
	if err != nil {
		return "", err
	}
	if branch := g.NormalizeBranch(strings.TrimSpace(out)); branch != "" {
		return branch, nil
	}

	head, err := g.head(ctx)
	if err != nil {
		return "", err
	}
	return g.resolver.Resolve(ctx, head)
}

// checkoutBranch implements branchSource: the raw current branch, "" when
// detached, without falling back to containment resolution.
func (g *Git) checkoutBranch(ctx context.Context) (string, error) {
	out, err := g.co.run(ctx, "git branch --show-current")
	if err != nil {
		return "", err
	}
	return g.NormalizeBranch(strings.TrimSpace(out)), nil
}

// branchesContaining implements branchSource over the remote-tracking
// namespace, which reflects what was actually pushed.
func (g *Git) branchesContaining(ctx context.Context, hash string) ([]string, error) {
	out, ok, err := g.co.tryRun(ctx, "git branch --remotes --contains "+shellQuote(hash))
	if err != nil {
		return nil, err
	}
	if !ok {
		// Unknown commit: no branches contain it.
		return nil, nil
	}

	var names []string
	for _, line := range strings.Split(out, "\n") {
		name := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "* "))
		if name == "" || strings.Contains(name, "->") {
			continue
		}
		name = g.NormalizeBranch(strings.TrimPrefix(name, "origin/"))
		if name != "" {
			names = append(names, name)
		}
	}
	return sortedUnique(names), nil
}

func (g *Git) head(ctx context.Context) (string, error) {
	out, err := g.co.run(ctx, "git rev-parse HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (g *Git) RepoURL(ctx context.Context) (string, error) {
	out, ok, err := g.co.tryRun(ctx, "git config --get remote.origin.url")
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return strings.TrimSpace(out), nil
}

func (g *Git) Clone(ctx context.Context, branch string) error {
	if g.co.repoURL == "" {
		return &PreconditionError{Op: "clone", Reason: "no repository URL configured"}
	}
	if err := g.co.ensureEmptyTarget(ctx); err != nil {
		return err
	}

	command := "git clone"
	if branch != "" {
		command += " --branch " + shellQuote(branch)
	}
	command += " " + shellQuote(g.co.repoURL) + " " + shellQuote(g.co.codeDir)
	_, err := g.co.runBare(ctx, command)
	return err
}

// validateRevision checks an operator-supplied revision against the remote's
// state at call time. Branch and tag names must appear in ls-remote output; a
// hash must name a commit object after a fetch. Anything else is fatal.
func (g *Git) validateRevision(ctx context.Context, revision string) (models.RevisionSpec, error) {
	if strings.TrimSpace(revision) == "" {
		return models.RevisionSpec{}, &InvalidRevisionError{Revision: revision, Reason: "revision is empty"}
	}
	if remoteQualifiedPattern.MatchString(revision) {
		return models.RevisionSpec{}, &InvalidRevisionError{
			Revision: revision,
			Reason:   "remote-qualified revisions are ambiguous, name the branch without the remote prefix",
		}
	}

	out, err := g.co.run(ctx, "git ls-remote --heads --tags origin")
	if err != nil {
		return models.RevisionSpec{}, err
	}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		ref := strings.TrimSuffix(fields[1], "^{}")
		if ref == "refs/heads/"+revision {
			return models.RevisionSpec{Raw: revision, Kind: models.RevisionBranch}, nil
		}
		if ref == "refs/tags/"+revision {
			return models.RevisionSpec{Raw: revision, Kind: models.RevisionTag}, nil
		}
	}

	if hashPattern.MatchString(revision) {
		if err := g.fetch(ctx); err != nil {
			return models.RevisionSpec{}, err
		}
		_, ok, err := g.co.tryRun(ctx, "git cat-file -e "+shellQuote(revision+"^{commit}"))
		if err != nil {
			return models.RevisionSpec{}, err
		}
		if ok {
			return models.RevisionSpec{Raw: revision, Kind: models.RevisionHash}, nil
		}
	}

	return models.RevisionSpec{}, &InvalidRevisionError{
		Revision: revision,
		Reason:   "no matching branch, tag or commit in origin",
	}
}

func (g *Git) fetch(ctx context.Context) error {
	_, err := g.co.run(ctx, "git fetch origin")
	return err
}

// targetSpec validates the revision, or defaults to the currently checked-out
// branch when the revision is empty.
func (g *Git) targetSpec(ctx context.Context, revision string) (models.RevisionSpec, error) {
	if revision == "" {
		branch, err := g.currentBranch(ctx)
		if err != nil {
			return models.RevisionSpec{}, err
		}
		if branch == "" {
			return models.RevisionSpec{}, &InvalidRevisionError{Reason: "checkout is detached and no revision was given"}
		}
		revision = branch
	}
	return g.validateRevision(ctx, revision)
}

// targetRef is the ref actually deployed for a validated revision: branches
// deploy their remote-tracking tip, tags and hashes deploy themselves.
func (g *Git) targetRef(spec models.RevisionSpec) string {
	if spec.Kind == models.RevisionBranch {
		return "origin/" + spec.Raw
	}
	return spec.Raw
}

func (g *Git) resolveHash(ctx context.Context, ref string) (string, error) {
	out, err := g.co.run(ctx, "git rev-parse "+shellQuote(ref))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (g *Git) Update(ctx context.Context, revision string) error {
	spec, err := g.targetSpec(ctx, revision)
	if err != nil {
		return err
	}
	if err := g.fetch(ctx); err != nil {
		return err
	}

	if _, err := g.co.run(ctx, "git checkout "+shellQuote(spec.Raw)); err != nil {
		return err
	}
	if spec.Kind == models.RevisionBranch {
		// Fast-forward only: a diverged local branch is a precondition
		// violation, not something to merge through.
		if _, err := g.co.run(ctx, "git merge --ff-only "+shellQuote("origin/"+spec.Raw)); err != nil {
			return err
		}
	}
	return nil
}

func (g *Git) DeploymentList(ctx context.Context, revision string) (*models.DeploymentPlan, error) {
	spec, err := g.targetSpec(ctx, revision)
	if err != nil {
		return nil, err
	}
	if err := g.fetch(ctx); err != nil {
		return nil, err
	}

	current, err := g.head(ctx)
	if err != nil {
		return nil, err
	}
	ref := g.targetRef(spec)
	target, err := g.resolveHash(ctx, ref)
	if err != nil {
		return nil, err
	}
	if current == target {
		return models.NoOpPlan(), nil
	}

	mergeBase, _, err := g.co.tryRun(ctx, "git merge-base "+shellQuote(current)+" "+shellQuote(target))
	if err != nil {
		return nil, err
	}
	direction := ClassifyDirection(current, target, strings.TrimSpace(mergeBase))

	var revset, logCmd string
	if direction == models.DirectionBackward {
		revset = ref + ".." + current
		logCmd = "git log " + gitLogFormat + " " + shellQuote(revset)
	} else {
		revset = current + ".." + ref
		logCmd = "git log --reverse " + gitLogFormat + " " + shellQuote(revset)
	}

	out, err := g.co.run(ctx, logCmd)
	if err != nil {
		return nil, err
	}
	records, err := splitLogLines(out, gitLogFields)
	if err != nil {
		return nil, err
	}

	entries := make([]models.CommitRecord, 0, len(records))
	for _, fields := range records {
		rec := models.CommitRecord{Hash: fields[0], Author: fields[1], Message: fields[2]}
		branch, err := g.resolver.ResolveForLog(ctx, rec.Hash)
		if err != nil {
			return nil, err
		}
		rec.Branch = branch
		entries = append(entries, rec)
	}

	return NewPlan(revset, direction, entries), nil
}

func (g *Git) ChangedFiles(ctx context.Context, revset string, filters []string) ([]string, error) {
	out, err := g.co.run(ctx, "git diff --name-status "+shellQuote(revset))
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entry, err := parseGitNameStatus(line)
		if err != nil {
			return nil, err
		}
		lines = append(lines, entry.String())
	}
	return filterLines(lines, filters)
}

// parseGitNameStatus parses one --name-status line. Renames and copies carry
// two paths, rendered "old -> new" under their status letter.
func parseGitNameStatus(line string) (models.ChangeEntry, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 2 || fields[0] == "" {
		return models.ChangeEntry{}, fmt.Errorf("malformed name-status line: %q", line)
	}
	status := models.ChangeStatus(fields[0][:1])
	path := fields[1]
	if (status == models.StatusRenamed || status == "C") && len(fields) >= 3 {
		path = fields[1] + " -> " + fields[2]
	}
	return models.ChangeEntry{Status: status, Path: path}, nil
}
