package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCorpusSortsAndGroups(t *testing.T) {
	corpus, err := NewCorpus([]Record{
		{ID: "3", Name: "john smith"},
		{ID: "1", Name: "jane doe"},
		{ID: "2", Name: "john smith"},
		{ID: "4", Name: ""},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"jane doe", "john smith"}, corpus.Names())
	assert.Equal(t, 2, corpus.Len())
	assert.Equal(t, 3, corpus.Size())
	assert.NoError(t, corpus.Validate())

	recs := corpus.Records("john smith")
	require.Len(t, recs, 2)
	assert.Equal(t, "3", recs[0].ID, "load order is kept within a name")
	assert.Equal(t, KindReference, recs[0].Kind)

	assert.True(t, corpus.Has("jane doe"))
	assert.False(t, corpus.Has(""))
}

func TestNewCorpusRejectsEmpty(t *testing.T) {
	_, err := NewCorpus([]Record{{ID: "1"}})
	assert.ErrorIs(t, err, ErrEmptyCorpus)
}

func TestValidateDetectsUnsortedNames(t *testing.T) {
	corpus := &Corpus{names: []string{"b", "a"}}
	assert.ErrorIs(t, corpus.Validate(), ErrUnsortedCorpus)
}
