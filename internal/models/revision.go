package models

// RevisionKind classifies what an operator-supplied revision string named
// once it has been checked against the remote repository.
type RevisionKind string

const (
	RevisionBranch RevisionKind = "branch"
	RevisionTag    RevisionKind = "tag"
	RevisionHash   RevisionKind = "hash"
)

// RevisionSpec is a validated operator-supplied revision. It is only ever
// produced by a revision validator; raw operator input must never reach a
// remote command without passing through validation first.
type RevisionSpec struct {
	Raw  string
	Kind RevisionKind
}
