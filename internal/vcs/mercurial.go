package vcs

import (
	"context"
	"fmt"
	"strings"

	"github.com/okarlsson/sledge/internal/models"
)

// hgLogTemplate mirrors gitLogFormat for mercurial, with the branch included:
// unlike git, every mercurial commit carries exactly one branch name as
// metadata, so the log itself answers the branch question. Mercurial
// unescapes the \x1f sequences itself; commit content never enters the
// template.
const hgLogTemplate = `--template '{node}\x1f{branch}\x1f{author}\x1f{desc|firstline}\n'`

const hgLogFields = 4

// Mercurial drives a mercurial checkout. Branches are commit metadata, so
// branch lookups are plain log queries and never need disambiguation.
type Mercurial struct {
	co       *checkout
	resolver *BranchResolver
}

// NewMercurial creates the mercurial variant of the adapter.
func NewMercurial(opts Options) *Mercurial {
	m := &Mercurial{
		co: &checkout{runner: opts.Runner, codeDir: opts.CodeDir, repoURL: opts.RepoURL},
	}
	cache := opts.Cache
	if cache == nil {
		cache = NewBranchCache()
	}
	m.resolver = NewBranchResolver(cache, opts.Chooser, m)
	return m
}

func (m *Mercurial) Type() string { return "hg" }

// Resolver exposes the branch resolver, e.g. for operator cache correction.
func (m *Mercurial) Resolver() *BranchResolver { return m.resolver }

func (m *Mercurial) NormalizeBranch(name string) string { return NormalizeBranch(name) }

func (m *Mercurial) Version(ctx context.Context) (models.CommitRecord, error) {
	out, err := m.co.run(ctx, "hg log -r . "+hgLogTemplate)
	if err != nil {
		return models.CommitRecord{}, err
	}
	fields, err := splitLogLine(out, hgLogFields)
	if err != nil {
		return models.CommitRecord{}, err
	}
	return models.CommitRecord{
		Hash:    fields[0],
		Branch:  m.resolver.cachedOr(fields[0], fields[1]),
		Author:  fields[2],
		Message: fields[3],
	}, nil
}

func (m *Mercurial) Branch(ctx context.Context, commitHash string) (string, error) {
	if commitHash == "" {
		return m.checkoutBranch(ctx)
	}
	return m.resolver.Resolve(ctx, commitHash)
}

// checkoutBranch implements branchSource: the working directory's branch.
func (m *Mercurial) checkoutBranch(ctx context.Context) (string, error) {
	out, err := m.co.run(ctx, "hg branch")
	if err != nil {
		return "", err
	}
	return m.NormalizeBranch(strings.TrimSpace(out)), nil
}

// branchesContaining implements branchSource. A mercurial commit belongs to
// exactly the one branch recorded in its metadata.
func (m *Mercurial) branchesContaining(ctx context.Context, hash string) ([]string, error) {
	out, ok, err := m.co.tryRun(ctx, "hg log -r "+shellQuote(hash)+" --template '{branch}'")
	if err != nil {
		return nil, err
	}
	branch := strings.TrimSpace(out)
	if !ok || branch == "" {
		return nil, nil
	}
	return []string{branch}, nil
}

func (m *Mercurial) RepoURL(ctx context.Context) (string, error) {
	out, ok, err := m.co.tryRun(ctx, "hg paths default")
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}
	return strings.TrimSpace(out), nil
}

func (m *Mercurial) Clone(ctx context.Context, branch string) error {
	if m.co.repoURL == "" {
		return &PreconditionError{Op: "clone", Reason: "no repository URL configured"}
	}
	if err := m.co.ensureEmptyTarget(ctx); err != nil {
		return err
	}

	command := "hg clone"
	if branch != "" {
		command += " --branch " + shellQuote(branch)
	}
	command += " " + shellQuote(m.co.repoURL) + " " + shellQuote(m.co.codeDir)
	_, err := m.co.runBare(ctx, command)
	return err
}

// validateRevision pulls from the default remote and then requires the
// revision to name something: validation reflects the remote's state at call
// time, not a stale local view.
func (m *Mercurial) validateRevision(ctx context.Context, revision string) (models.RevisionSpec, error) {
	if strings.TrimSpace(revision) == "" {
		return models.RevisionSpec{}, &InvalidRevisionError{Revision: revision, Reason: "revision is empty"}
	}

	if err := m.pull(ctx); err != nil {
		return models.RevisionSpec{}, err
	}

	out, ok, err := m.co.tryRun(ctx, "hg log -r "+shellQuote(revision)+" -l 1 --template '{node}'")
	if err != nil {
		return models.RevisionSpec{}, err
	}
	if !ok || strings.TrimSpace(out) == "" {
		return models.RevisionSpec{}, &InvalidRevisionError{
			Revision: revision,
			Reason:   "no matching branch, tag or commit in the default remote",
		}
	}

	kind, err := m.classify(ctx, revision)
	if err != nil {
		return models.RevisionSpec{}, err
	}
	return models.RevisionSpec{Raw: revision, Kind: kind}, nil
}

func (m *Mercurial) classify(ctx context.Context, revision string) (models.RevisionKind, error) {
	branches, err := m.co.run(ctx, `hg branches --template '{branch}\n'`)
	if err != nil {
		return "", err
	}
	for _, b := range strings.Split(branches, "\n") {
		if strings.TrimSpace(b) == revision {
			return models.RevisionBranch, nil
		}
	}

	tags, err := m.co.run(ctx, `hg tags --template '{tag}\n'`)
	if err != nil {
		return "", err
	}
	for _, t := range strings.Split(tags, "\n") {
		if strings.TrimSpace(t) == revision {
			return models.RevisionTag, nil
		}
	}
	return models.RevisionHash, nil
}

func (m *Mercurial) pull(ctx context.Context) error {
	_, err := m.co.run(ctx, "hg pull")
	return err
}

func (m *Mercurial) head(ctx context.Context) (string, error) {
	out, err := m.co.run(ctx, "hg log -r . --template '{node}'")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (m *Mercurial) targetSpec(ctx context.Context, revision string) (models.RevisionSpec, error) {
	if revision == "" {
		branch, err := m.checkoutBranch(ctx)
		if err != nil {
			return models.RevisionSpec{}, err
		}
		revision = branch
	}
	return m.validateRevision(ctx, revision)
}

func (m *Mercurial) resolveHash(ctx context.Context, revision string) (string, error) {
	out, err := m.co.run(ctx, "hg log -r "+shellQuote(revision)+" -l 1 --template '{node}'")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (m *Mercurial) Update(ctx context.Context, revision string) error {
	spec, err := m.targetSpec(ctx, revision)
	if err != nil {
		return err
	}
	// validateRevision pulled already; update refuses to cross uncommitted
	// local changes, which is exactly the fatal precondition we want.
	_, err = m.co.run(ctx, "hg update --rev "+shellQuote(spec.Raw))
	return err
}

func (m *Mercurial) DeploymentList(ctx context.Context, revision string) (*models.DeploymentPlan, error) {
	spec, err := m.targetSpec(ctx, revision)
	if err != nil {
		return nil, err
	}

	current, err := m.head(ctx)
	if err != nil {
		return nil, err
	}
	target, err := m.resolveHash(ctx, spec.Raw)
	if err != nil {
		return nil, err
	}
	if current == target {
		return models.NoOpPlan(), nil
	}

	ancestorExpr := fmt.Sprintf("ancestor(%s, %s)", current, target)
	mergeBase, err := m.co.run(ctx, "hg log -r "+shellQuote(ancestorExpr)+" --template '{node}'")
	if err != nil {
		return nil, err
	}
	direction := ClassifyDirection(current, target, strings.TrimSpace(mergeBase))

	// The DAG range operator plays the role git's two-dot range does; the
	// recorded revset keeps the operator's spelling of the target so it can
	// be replayed, while the executed expression pins exact hashes and
	// drops the already-deployed endpoint.
	var revset, logExpr string
	if direction == models.DirectionBackward {
		revset = spec.Raw + "::" + current
		logExpr = fmt.Sprintf("reverse((%s::%s) - %s)", target, current, target)
	} else {
		revset = current + "::" + spec.Raw
		logExpr = fmt.Sprintf("(%s::%s) - %s", current, target, current)
	}

	out, err := m.co.run(ctx, "hg log -r "+shellQuote(logExpr)+" "+hgLogTemplate)
	if err != nil {
		return nil, err
	}
	records, err := splitLogLines(out, hgLogFields)
	if err != nil {
		return nil, err
	}

	entries := make([]models.CommitRecord, 0, len(records))
	for _, fields := range records {
		entries = append(entries, models.CommitRecord{
			Hash:    fields[0],
			Branch:  m.resolver.cachedOr(fields[0], fields[1]),
			Author:  fields[2],
			Message: fields[3],
		})
	}

	return NewPlan(revset, direction, entries), nil
}

func (m *Mercurial) ChangedFiles(ctx context.Context, revset string, filters []string) ([]string, error) {
	from, to, ok := strings.Cut(revset, "::")
	if !ok {
		return nil, &InvalidRevisionError{Revision: revset, Reason: "not a mercurial range expression"}
	}

	out, err := m.co.run(ctx, "hg status --rev "+shellQuote(from)+" --rev "+shellQuote(to))
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entry, keep := parseHgStatus(line)
		if keep {
			lines = append(lines, entry.String())
		}
	}
	return filterLines(lines, filters)
}

// parseHgStatus parses one status line. Mercurial reports removals as R,
// which is normalized to D so both variants share one status alphabet.
func parseHgStatus(line string) (models.ChangeEntry, bool) {
	code, path, ok := strings.Cut(line, " ")
	if !ok || code == "" {
		return models.ChangeEntry{}, false
	}
	switch models.ChangeStatus(code) {
	case models.StatusAdded, models.StatusModified:
		return models.ChangeEntry{Status: models.ChangeStatus(code), Path: path}, true
	case models.StatusRenamed: // hg "removed"
		return models.ChangeEntry{Status: models.StatusDeleted, Path: path}, true
	default:
		return models.ChangeEntry{}, false
	}
}
