package models

// ChangeStatus is the single-letter status of a changed file within a revset.
type ChangeStatus string

const (
	StatusAdded    ChangeStatus = "A"
	StatusModified ChangeStatus = "M"
	StatusDeleted  ChangeStatus = "D"
	StatusRenamed  ChangeStatus = "R"
)

// ChangeEntry is one changed file within a revset, independent of any commit.
type ChangeEntry struct {
	Status ChangeStatus `json:"status"`
	Path   string       `json:"path"`
}

// String renders the changed-file line format: "<letter> <path>".
func (c ChangeEntry) String() string {
	return string(c.Status) + " " + c.Path
}
