package content

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZanzyTHEbar/election-affinity/internal/affinity"
)

func TestStore_EmbeddedDefaults(t *testing.T) {
	d, err := NewStore("").Load()
	require.NoError(t, err)

	counts := d.Counts()
	assert.Greater(t, counts.Questions, 0)
	assert.Greater(t, counts.Parties, 0)
	assert.Greater(t, counts.Candidates, 0)
	assert.Greater(t, counts.Timeline, 0)
	assert.Greater(t, counts.Lessons, 0)

	// every axis has at least one champion so a short quiz still covers it
	champions := affinity.AxisChampions(d.Questions)
	assert.Len(t, champions, len(affinity.Axes))

	for _, c := range d.Candidates {
		_, ok := d.PartyBySlug(c.PartySlug)
		assert.True(t, ok, "candidate %s references unknown party %s", c.ID, c.PartySlug)
	}
}

func TestStore_EmbeddedPartiesSpanAxes(t *testing.T) {
	d, err := NewStore("").Load()
	require.NoError(t, err)

	h := affinity.DefaultHeuristic()
	var econLeft, econRight, green bool
	for _, p := range d.Parties {
		v := h.PartyVector(p)
		econLeft = econLeft || v.Econ < 0
		econRight = econRight || v.Econ > 0
		green = green || v.Env > 0
	}
	assert.True(t, econLeft)
	assert.True(t, econRight)
	assert.True(t, green)
}

func TestStore_DataDirOverride(t *testing.T) {
	dir := t.TempDir()
	questions := `[
		{"id": "only", "text": "Only question", "axis": {"econ": 1}}
	]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, questionsFile), []byte(questions), 0o644))

	d, err := NewStore(dir).Load()
	require.NoError(t, err)

	require.Len(t, d.Questions, 1)
	assert.Equal(t, "only", d.Questions[0].ID)

	// files missing from the directory come from the embedded defaults
	embedded, err := NewStore("").Load()
	require.NoError(t, err)
	assert.Equal(t, len(embedded.Parties), len(d.Parties))
}

func TestStore_Errors(t *testing.T) {
	tests := []struct {
		name      string
		questions string
		wantErr   error
	}{
		{
			name:      "malformed json",
			questions: `[{"id": "a",`,
		},
		{
			name:      "empty bank",
			questions: `[]`,
			wantErr:   affinity.ErrEmptyQuestionBank,
		},
		{
			name:      "duplicate ids",
			questions: `[{"id": "a", "text": "A"}, {"id": "a", "text": "B"}]`,
			wantErr:   ErrInvalidContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, questionsFile), []byte(tt.questions), 0o644))

			_, err := NewStore(dir).Load()
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
		})
	}
}
