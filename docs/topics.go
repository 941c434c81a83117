// Package docs embeds the user documentation topics shown by the topic
// command.
package docs

import (
	"embed"
	"sort"
	"strings"
)

//go:embed *.md
var topics embed.FS

// Topics lists the available topic names, sorted.
func Topics() []string {
	entries, err := topics.ReadDir(".")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".md"))
	}
	sort.Strings(names)
	return names
}

// Get returns the markdown body of a topic.
func Get(name string) (string, bool) {
	b, err := topics.ReadFile(name + ".md")
	if err != nil {
		return "", false
	}
	return string(b), true
}
