package links

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imsgstats/imsgstats/internal/model"
	"github.com/imsgstats/imsgstats/internal/textstats"
)

func TestSentLinksAndFilters(t *testing.T) {
	msgs := []*model.Message{
		{Text: "https://open.spotify.com/track/abc", Direction: model.Sent},
		{Text: "watch https://youtu.be/xyz", Direction: model.Sent},
		{Text: "https://www.youtube.com/watch?v=1", Direction: model.Received},
		{Text: "no link", Direction: model.Sent},
	}

	sent := SentLinks(msgs)
	require.Len(t, sent, 2)
	assert.Len(t, Sent(msgs), 3)
	assert.Equal(t, []string{"https://open.spotify.com/track/abc"}, SpotifyTexts(sent))
	assert.Equal(t, []string{"watch https://youtu.be/xyz"}, YouTubeTexts(sent))
}

func TestBaseURL(t *testing.T) {
	reactions := textstats.ReactionWords

	res := BaseURL("look https://WWW.Example.com/a?b=c", reactions)
	require.True(t, res.IsOk())
	assert.Equal(t, "example.com", res.Value)

	res = BaseURL(`Loved “https://example.com”`, reactions)
	require.True(t, res.IsOk())
	assert.Equal(t, "", res.Value)

	res = BaseURL("http in prose only", reactions)
	assert.False(t, res.IsOk())
	assert.Equal(t, "no url", res.Reason)

	res = BaseURL("http://%zz/bad", reactions)
	assert.False(t, res.IsOk())
	assert.NotEmpty(t, res.Reason)
}

func TestDomainCounts(t *testing.T) {
	texts := []string{
		"https://b.com/1",
		"https://www.a.com/1",
		"https://a.com/2",
		"https://b.com/2",
		"https://c.com",
		"Liked “https://a.com/3”",
		"Liked “https://a.com/4”",
		"http broken",
	}
	counts, skipped := DomainCounts(texts, textstats.ReactionWords)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, []model.DomainCount{{BaseURL: "b.com", Count: 2}, {BaseURL: "a.com", Count: 2}}, counts)
}

func TestSpotifyTrackID(t *testing.T) {
	cases := map[string]string{
		"https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC?si=x": "4uLU6hMCjMI75M1A2tKUQC",
		"listen https://open.spotify.com/intl-de/track/abc123 !":     "abc123",
	}
	for in, want := range cases {
		id, ok := SpotifyTrackID(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, id, in)
	}
	for _, in := range []string{
		"https://open.spotify.com/playlist/xyz",
		"https://example.com/track/abc",
		"no link",
	} {
		_, ok := SpotifyTrackID(in)
		assert.False(t, ok, in)
	}
}

func TestYouTubeVideoID(t *testing.T) {
	cases := map[string]string{
		"https://youtu.be/dQw4w9WgXcQ":                   "dQw4w9WgXcQ",
		"https://www.youtube.com/watch?v=abc&t=10":       "abc",
		"haha https://youtube.com/shorts/short1?feature": "short1",
	}
	for in, want := range cases {
		id, ok := YouTubeVideoID(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, id, in)
	}
	for _, in := range []string{
		"https://www.youtube.com/channel/UC123",
		"https://www.youtube.com/@someone",
		"https://www.youtube.com/playlist?list=1",
		"https://www.youtube.com/watch",
	} {
		_, ok := YouTubeVideoID(in)
		assert.False(t, ok, in)
	}
}

func TestUnique(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Unique([]string{"a", "b", "a"}))
}
