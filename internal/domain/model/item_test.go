package model_test

import (
	"testing"
	"time"

	"github.com/ericfisherdev/pulldeck/internal/domain/model"
	"github.com/stretchr/testify/assert"
)

func TestWithCommentThreads_RecomputesCounts(t *testing.T) {
	item := model.PullRequestItem{ID: "PR_1", UnresolvedThreads: 9, ThreadsTotal: 9}

	hydrated := item.WithCommentThreads([]model.CommentThread{
		{ID: "t1", Resolved: true},
		{ID: "t2", Resolved: false},
		{ID: "t3", Resolved: false},
	})

	assert.Equal(t, 3, hydrated.ThreadsTotal)
	assert.Equal(t, 2, hydrated.UnresolvedThreads)
	// Original is untouched.
	assert.Equal(t, 9, item.ThreadsTotal)
	assert.Empty(t, item.CommentThreads)
}

func TestWithChecks_LeavesOtherGroupsAlone(t *testing.T) {
	item := model.PullRequestItem{
		ID:             "PR_1",
		CommentThreads: []model.CommentThread{{ID: "t1"}},
	}

	hydrated := item.WithChecks([]model.Check{{ID: "CI|build"}})

	assert.Len(t, hydrated.Checks, 1)
	assert.Len(t, hydrated.CommentThreads, 1)
}

func TestSortItems(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []model.PullRequestItem{
		{ID: "a", CreatedAt: base, UpdatedAt: base.Add(1 * time.Hour)},
		{ID: "b", CreatedAt: base.Add(2 * time.Hour), UpdatedAt: base.Add(3 * time.Hour)},
		{ID: "c", CreatedAt: base.Add(1 * time.Hour), UpdatedAt: base.Add(2 * time.Hour)},
	}

	model.SortItems(items, model.SortUpdatedDesc)
	assert.Equal(t, "b", items[0].ID)
	assert.Equal(t, "c", items[1].ID)
	assert.Equal(t, "a", items[2].ID)

	model.SortItems(items, model.SortCreatedAsc)
	assert.Equal(t, "a", items[0].ID)

	// Ties keep input order under a stable sort.
	tied := []model.PullRequestItem{
		{ID: "x", UpdatedAt: base},
		{ID: "y", UpdatedAt: base},
	}
	model.SortItems(tied, model.SortUpdatedDesc)
	assert.Equal(t, "x", tied[0].ID)
	assert.Equal(t, "y", tied[1].ID)
}

func TestCostAssessment_Classify(t *testing.T) {
	thresholds := model.DefaultCostThresholds()

	none := model.CostAssessment{
		Remaining: 4000, Limit: 5000,
		PerTab: []model.TabCost{{Cost: 5}, {Cost: 10}},
	}
	assert.Equal(t, model.CostWarningNone, none.Classify(thresholds))

	moderate := model.CostAssessment{
		Remaining: 4000, Limit: 5000,
		PerTab: []model.TabCost{{Cost: 30}},
	}
	assert.Equal(t, model.CostWarningModerate, moderate.Classify(thresholds))

	highSingle := model.CostAssessment{
		Remaining: 4000, Limit: 5000,
		PerTab: []model.TabCost{{Cost: 50}},
	}
	assert.Equal(t, model.CostWarningHigh, highSingle.Classify(thresholds))

	lowBudget := model.CostAssessment{
		Remaining: 400, Limit: 5000,
		PerTab: []model.TabCost{{Cost: 1}},
	}
	assert.Equal(t, model.CostWarningHigh, lowBudget.Classify(thresholds))

	// A failed tab contributes no cost and does not raise the level.
	withFailure := model.CostAssessment{
		Remaining: 4000, Limit: 5000,
		PerTab: []model.TabCost{{Cost: 5}, {Cost: 100, Err: "tab exploded"}},
	}
	assert.Equal(t, model.CostWarningNone, withFailure.Classify(thresholds))
}

func TestSnapshotClone(t *testing.T) {
	snap := model.Snapshot{
		UpdatedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		ByTabID: map[string][]model.PullRequestItem{
			"tab1": {{ID: "a"}},
		},
	}

	clone := snap.Clone()
	clone.ByTabID["tab1"][0].ID = "mutated"
	clone.ByTabID["tab2"] = []model.PullRequestItem{{ID: "b"}}

	assert.Equal(t, "a", snap.ByTabID["tab1"][0].ID)
	assert.NotContains(t, snap.ByTabID, "tab2")
}
