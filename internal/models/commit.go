package models

// CommitRecord represents one commit read from the VCS log.
// Hash is the canonical identifier; Branch is resolved lazily and may be
// empty until a branch resolver has run. Author carries "Name <email>".
type CommitRecord struct {
	Hash    string `json:"hash"`
	Branch  string `json:"branch,omitempty"`
	Author  string `json:"author"`
	Message string `json:"message"`
}

// ShortHash returns a shortened commit hash (first 7 characters)
func (c *CommitRecord) ShortHash() string {
	if len(c.Hash) > 7 {
		return c.Hash[:7]
	}
	return c.Hash
}
