package indexer

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imsgstats/imsgstats/internal/model"
)

func sampleMessages() []*model.Message {
	day := func(d int) time.Time { return time.Date(2023, 5, d, 12, 0, 0, 0, time.UTC) }
	return []*model.Message{
		{ID: 1, Text: "pizza tonight?", Time: day(1), Person: "Alex Smith", Direction: model.Sent},
		{ID: 2, Text: "yes pizza sounds great", Time: day(2), Person: "Alex Smith", Direction: model.Received},
		{ID: 3, Text: "pizza again", Time: day(20), Person: "Bea Cruz", Direction: model.Received},
		{ID: 4, Text: "running late", Time: day(21), Person: "Bea Cruz", Direction: model.Sent},
	}
}

func openIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Open(filepath.Join(t.TempDir(), "index.bleve"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	require.NoError(t, idx.IndexMessages(sampleMessages()))
	return idx
}

func TestSearch(t *testing.T) {
	idx := openIndex(t)

	count, err := idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), count)

	hits, total, err := idx.Search(&model.SearchRequest{Query: "pizza"})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, hits, 3)
	for _, h := range hits {
		assert.Contains(t, h.Message.Text, "pizza")
		assert.Contains(t, h.Snippet, "\x1b[43m")
	}

	hits, total, err = idx.Search(&model.SearchRequest{Query: "pizza", Person: "alex", Direction: "Received"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, hits, 1)
	assert.Equal(t, int64(2), hits[0].Message.ID)
	assert.Equal(t, model.Received, hits[0].Message.Direction)
	assert.Equal(t, "Alex Smith", hits[0].Message.Person)

	_, total, err = idx.Search(&model.SearchRequest{
		Query: "pizza",
		Start: time.Date(2023, 5, 10, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2023, 5, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	hits, total, err = idx.Search(&model.SearchRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, hits)
}

func TestMetadata(t *testing.T) {
	idx := openIndex(t)

	ok, err := idx.EnsureVersion()
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = idx.EnsureVersion()
	require.NoError(t, err)
	assert.True(t, ok)

	assert.False(t, idx.FingerprintMatches("abc"))
	ok, err = idx.EnsureFingerprint("abc")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, idx.FingerprintMatches("abc"))

	now := time.Unix(1700000000, 0)
	require.NoError(t, idx.UpdateLastBuilt(now))
	assert.True(t, now.Equal(idx.LastBuilt()))

	require.NoError(t, idx.Reset())
	assert.Empty(t, idx.Fingerprint())
	count, err := idx.DocCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestClampPage(t *testing.T) {
	l, o := ClampPage(0, -3)
	assert.Equal(t, DefaultLimit, l)
	assert.Equal(t, 0, o)
	l, _ = ClampPage(5000, 0)
	assert.Equal(t, MaxLimit, l)
}
