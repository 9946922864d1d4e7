package links

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/imsgstats/imsgstats/internal/model"
)

var urlPattern = regexp.MustCompile(`https?://[^\s<>"]+`)

// SentLinks returns the sent messages whose text contains "http".
func SentLinks(msgs []*model.Message) []*model.Message {
	out := make([]*model.Message, 0)
	for _, m := range msgs {
		if m.Direction == model.Sent && strings.Contains(m.Text, "http") {
			out = append(out, m)
		}
	}
	return out
}

// Sent keeps the messages sent by the owner.
func Sent(msgs []*model.Message) []*model.Message {
	out := make([]*model.Message, 0)
	for _, m := range msgs {
		if m.Direction == model.Sent {
			out = append(out, m)
		}
	}
	return out
}

// Filter returns the texts of msgs containing any of needles.
func Filter(msgs []*model.Message, needles ...string) []string {
	texts := make([]string, 0)
	for _, m := range msgs {
		for _, n := range needles {
			if strings.Contains(m.Text, n) {
				texts = append(texts, m.Text)
				break
			}
		}
	}
	return texts
}

func SpotifyTexts(msgs []*model.Message) []string {
	return Filter(msgs, "open.spotify.com")
}

func YouTubeTexts(msgs []*model.Message) []string {
	return Filter(msgs, "youtu.be", "youtube.com")
}

// FirstURL returns the first http(s) URL in text.
func FirstURL(text string) (string, bool) {
	u := urlPattern.FindString(text)
	return u, u != ""
}

// BaseURL returns the host of the first link in text, lower-cased and without "www.".
// Texts mentioning a reaction word are reactions to a link and map to "".
func BaseURL(text string, reactionWords []string) model.Result[string] {
	lower := strings.ToLower(text)
	for _, w := range reactionWords {
		if strings.Contains(lower, w) {
			return model.Ok("")
		}
	}
	raw, ok := FirstURL(text)
	if !ok {
		return model.Skipped[string]("no url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return model.Skipped[string](err.Error())
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return model.Skipped[string]("no host in " + raw)
	}
	return model.Ok(strings.TrimPrefix(host, "www."))
}

// DomainCounts counts the base URLs of texts. Empty domains and domains seen only
// once are dropped; the rest are ordered by count, ties by first occurrence.
func DomainCounts(texts []string, reactionWords []string) ([]model.DomainCount, int) {
	index := make(map[string]int)
	counts := make([]model.DomainCount, 0)
	skipped := 0
	for _, text := range texts {
		res := BaseURL(text, reactionWords)
		if !res.IsOk() {
			skipped++
			continue
		}
		if i, ok := index[res.Value]; ok {
			counts[i].Count++
			continue
		}
		index[res.Value] = len(counts)
		counts = append(counts, model.DomainCount{BaseURL: res.Value, Count: 1})
	}

	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	out := counts[:0]
	for _, c := range counts {
		if c.BaseURL == "" || c.Count <= 1 {
			continue
		}
		out = append(out, c)
	}
	return out, skipped
}

// SpotifyTrackID extracts {id} from an open.spotify.com/track/{id} link.
func SpotifyTrackID(link string) (string, bool) {
	raw, ok := FirstURL(link)
	if !ok {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil || !strings.EqualFold(u.Hostname(), "open.spotify.com") {
		return "", false
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	// Localized links look like /intl-de/track/{id}.
	if len(parts) > 0 && strings.HasPrefix(parts[0], "intl-") {
		parts = parts[1:]
	}
	if len(parts) < 2 || parts[0] != "track" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// YouTubeVideoID extracts the video id of youtu.be, /shorts/ and /watch links.
// Channel and handle pages have none.
func YouTubeVideoID(link string) (string, bool) {
	raw, ok := FirstURL(link)
	if !ok {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	path := u.Path
	if strings.Contains(path, "channel") || strings.Contains(path, "@") {
		return "", false
	}

	switch strings.ToLower(u.Hostname()) {
	case "youtu.be":
		id := strings.Trim(path, "/")
		return id, id != ""
	case "youtube.com", "www.youtube.com", "m.youtube.com":
		if strings.HasPrefix(path, "/shorts/") {
			parts := strings.Split(path, "/")
			if len(parts) > 2 && parts[2] != "" {
				return parts[2], true
			}
			return "", false
		}
		if path == "/watch" {
			id := u.Query().Get("v")
			return id, id != ""
		}
	}
	return "", false
}

// Unique returns texts without repeats, keeping first occurrences.
func Unique(texts []string) []string {
	seen := make(map[string]bool, len(texts))
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
