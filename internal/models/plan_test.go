package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoOpPlan(t *testing.T) {
	plan := NoOpPlan()
	assert.True(t, plan.IsNoOp())
	assert.Equal(t, map[string]interface{}{"message": "Already at target revision"}, plan.AsMap())
}

func TestPlanLines_WireFormat(t *testing.T) {
	plan := &DeploymentPlan{
		Revset:    "1111..origin/master",
		Direction: DirectionForward,
		Entries: []CommitRecord{
			{Hash: "aaa1", Branch: "master", Author: "Jane Doe <jane@example.com>", Message: "Add the migration"},
			{Hash: "bbb2", Branch: "master|stable", Author: "Ole Karlsson <ole@example.com>", Message: "Release prep"},
		},
	}

	assert.Equal(t, []string{
		"aaa1 master Jane Doe <jane@example.com> Add the migration",
		"bbb2 master|stable Ole Karlsson <ole@example.com> Release prep",
	}, plan.Lines())
}

func TestPlanAsMap_DirectionKeys(t *testing.T) {
	forward := &DeploymentPlan{Revset: "a..b", Direction: DirectionForward}
	assert.Contains(t, forward.AsMap(), "forwards")
	assert.Equal(t, "a..b", forward.AsMap()["revset"])

	backward := &DeploymentPlan{Revset: "b..a", Direction: DirectionBackward}
	assert.Contains(t, backward.AsMap(), "backwards")
	assert.NotContains(t, backward.AsMap(), "forwards")
}

func TestCommitRecord_ShortHash(t *testing.T) {
	c := CommitRecord{Hash: "1a2b3c4d5e6f7890"}
	assert.Equal(t, "1a2b3c4", c.ShortHash())

	short := CommitRecord{Hash: "1a2b"}
	assert.Equal(t, "1a2b", short.ShortHash())
}

func TestChangeEntry_String(t *testing.T) {
	assert.Equal(t, "M app/db.py", ChangeEntry{Status: StatusModified, Path: "app/db.py"}.String())
	assert.Equal(t, "R old.py -> new.py", ChangeEntry{Status: StatusRenamed, Path: "old.py -> new.py"}.String())
}
