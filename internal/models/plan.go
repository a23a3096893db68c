package models

// Direction classifies a deployment plan relative to the current checkout.
type Direction string

const (
	DirectionForward  Direction = "forward"
	DirectionBackward Direction = "backward"
	DirectionNone     Direction = "none"
)

// NoOpMessage is the message carried by the single no-op plan outcome.
const NoOpMessage = "Already at target revision"

// DeploymentPlan describes what an update to the target revision would apply.
// Revset is the VCS-native range expression used to reproduce the query.
// Forward plans list entries oldest-first (apply order), backward plans
// newest-first (undo order). Message is set only for the no-op plan, which
// carries no revset and no entries.
type DeploymentPlan struct {
	Revset    string         `json:"revset,omitempty"`
	Direction Direction      `json:"direction"`
	Entries   []CommitRecord `json:"entries,omitempty"`
	Message   string         `json:"message,omitempty"`
}

// NoOpPlan returns the plan for "current revision == target revision".
func NoOpPlan() *DeploymentPlan {
	return &DeploymentPlan{Direction: DirectionNone, Message: NoOpMessage}
}

// IsNoOp returns true when the plan requires no action.
func (p *DeploymentPlan) IsNoOp() bool {
	return p.Direction == DirectionNone
}

// Lines renders the entries in the wire format other tooling may parse:
// "<hash> <branch> <author-with-email> <message>", one line per commit.
func (p *DeploymentPlan) Lines() []string {
	lines := make([]string, 0, len(p.Entries))
	for _, e := range p.Entries {
		lines = append(lines, e.Hash+" "+e.Branch+" "+e.Author+" "+e.Message)
	}
	return lines
}

// AsMap renders the plan as the mapping callers consume: a "message" key for
// the no-op outcome, otherwise "revset" plus "forwards" or "backwards" keyed
// by direction.
func (p *DeploymentPlan) AsMap() map[string]interface{} {
	if p.IsNoOp() {
		return map[string]interface{}{"message": p.Message}
	}
	key := "forwards"
	if p.Direction == DirectionBackward {
		key = "backwards"
	}
	return map[string]interface{}{
		"revset": p.Revset,
		key:      p.Lines(),
	}
}
