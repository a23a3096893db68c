package vcs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/okarlsson/sledge/internal/models"
)

func TestClassifyDirection(t *testing.T) {
	tests := []struct {
		name      string
		current   string
		target    string
		mergeBase string
		want      models.Direction
	}{
		{"same commit", "aaa", "aaa", "aaa", models.DirectionNone},
		{"target descends from current", "aaa", "bbb", "aaa", models.DirectionForward},
		{"target is ancestor of current", "aaa", "bbb", "bbb", models.DirectionBackward},
		{"divergent histories", "aaa", "bbb", "ccc", models.DirectionForward},
		{"no common ancestor", "aaa", "bbb", "", models.DirectionForward},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyDirection(tt.current, tt.target, tt.mergeBase))
		})
	}
}

func TestNewPlan_NoneCollapsesToNoOp(t *testing.T) {
	plan := NewPlan("aaa..bbb", models.DirectionNone, nil)
	assert.True(t, plan.IsNoOp())
	assert.Equal(t, models.NoOpMessage, plan.Message)
	assert.Empty(t, plan.Revset)
}

func TestNewPlan_CarriesEntries(t *testing.T) {
	entries := []models.CommitRecord{{Hash: "aaa"}, {Hash: "bbb"}}
	plan := NewPlan("aaa..bbb", models.DirectionForward, entries)
	assert.False(t, plan.IsNoOp())
	assert.Equal(t, "aaa..bbb", plan.Revset)
	assert.Equal(t, entries, plan.Entries)
}
