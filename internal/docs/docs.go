// Package docs embeds the user-facing help topics shown by `timeline docs`
// and the TUI help overlay.
package docs

import (
	"embed"
	"io/fs"
	"path"
	"slices"
	"strings"
)

//go:embed content/*.md
var contentFS embed.FS

// DefaultTopic is what the TUI opens on "?".
const DefaultTopic = "gestures"

func Topics() []string {
	paths, err := fs.Glob(contentFS, "content/*.md")
	if err != nil {
		return nil
	}
	topics := make([]string, 0, len(paths))
	for _, p := range paths {
		if name := strings.TrimSuffix(path.Base(p), ".md"); name != "" {
			topics = append(topics, name)
		}
	}
	slices.Sort(topics)
	return topics
}

// Get returns the markdown of topic. Lookup is case-insensitive.
func Get(topic string) (string, bool) {
	topic = strings.ToLower(strings.TrimSpace(topic))
	if topic == "" || strings.ContainsAny(topic, `/\`) {
		return "", false
	}
	b, err := contentFS.ReadFile(path.Join("content", topic+".md"))
	if err != nil {
		return "", false
	}
	return string(b), true
}

// Title is the first level-one heading of topic, or the topic name.
func Title(topic string) string {
	body, ok := Get(topic)
	if !ok {
		return topic
	}
	for _, line := range strings.Split(body, "\n") {
		if h, ok := strings.CutPrefix(strings.TrimSpace(line), "# "); ok {
			return strings.TrimSpace(h)
		}
	}
	return topic
}
