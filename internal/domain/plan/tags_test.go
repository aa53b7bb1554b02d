package plan

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func names(tags []*Tag) []string {
	return lo.Map(tags, func(t *Tag, _ int) string { return t.TagName })
}

func TestReconcileTags(t *testing.T) {
	tests := []struct {
		name       string
		existing   []*Tag
		requested  []*Tag
		wantKeep   []string
		wantAdd    []string
		wantRemove []string
	}{
		{
			name:      "empty plan gets every requested tag",
			requested: []*Tag{{TagName: "test_tag1"}, {TagName: "test_tag2"}},
			wantAdd:   []string{"test_tag1", "test_tag2"},
		},
		{
			name:       "replacement drops tags that are not requested",
			existing:   []*Tag{{ID: "1", TagName: "test_tag1"}, {ID: "2", TagName: "test_tag2"}},
			requested:  []*Tag{{TagName: "test_tag3"}},
			wantAdd:    []string{"test_tag3"},
			wantRemove: []string{"test_tag1", "test_tag2"},
		},
		{
			name:      "case only difference keeps the existing casing",
			existing:  []*Tag{{ID: "1", TagName: "test_tag1"}, {ID: "2", TagName: "test_tag2"}},
			requested: []*Tag{{TagName: "Test_tag1"}, {TagName: "test_tag2"}},
			wantKeep:  []string{"test_tag1", "test_tag2"},
		},
		{
			name:      "duplicates within request keep the first occurrence",
			requested: []*Tag{{TagName: "Alpha", TagColor: "red"}, {TagName: "alpha", TagColor: "blue"}, {TagName: "  "}},
			wantAdd:   []string{"Alpha"},
		},
		{
			name:       "empty request clears every tag",
			existing:   []*Tag{{ID: "1", TagName: "a"}},
			requested:  []*Tag{},
			wantRemove: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff := ReconcileTags(tt.existing, tt.requested)
			assert.ElementsMatch(t, tt.wantKeep, names(diff.Keep))
			assert.ElementsMatch(t, tt.wantAdd, names(diff.Add))
			assert.ElementsMatch(t, tt.wantRemove, names(diff.Remove))
		})
	}
}

func TestReconcileTagsKeepsFirstColor(t *testing.T) {
	diff := ReconcileTags(nil, []*Tag{
		{TagName: "Alpha", TagColor: "red", TagHex: "#ff0000"},
		{TagName: "ALPHA", TagColor: "blue", TagHex: "#0000ff"},
	})
	if assert.Len(t, diff.Add, 1) {
		assert.Equal(t, "red", diff.Add[0].TagColor)
		assert.Equal(t, "#ff0000", diff.Add[0].TagHex)
	}
}

func TestDedupeTags(t *testing.T) {
	out := DedupeTags([]*Tag{{TagName: "x"}, {TagName: "X"}, {TagName: "y"}})
	assert.Equal(t, []string{"x", "y"}, names(out))
}
