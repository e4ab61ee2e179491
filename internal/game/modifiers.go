package game

import (
	"regexp"
	"strings"
)

// The game appends modifier tags to the song title it sends, e.g.
// "Cool Song [as-steamsync][ironmode]". Modifiers change the
// leaderboard a ride counts toward, so they have to be split off the
// title before song lookup.
var modifierPattern = regexp.MustCompile(`\[([^\[\]]+)\]`)

// ParseFromTitle extracts the modifier tags from a client-sent title.
// Returns nil when the title carries none.
func ParseFromTitle(title string) []string {
	matches := modifierPattern.FindAllStringSubmatch(title, -1)
	if len(matches) == 0 {
		return nil
	}
	mods := make([]string, 0, len(matches))
	for _, m := range matches {
		tag := strings.ToLower(strings.TrimSpace(m[1]))
		if tag != "" {
			mods = append(mods, tag)
		}
	}
	if len(mods) == 0 {
		return nil
	}
	return mods
}

// RemoveFromTitle strips modifier tags and collapses the leftover
// whitespace, yielding the canonical title stored with the song.
func RemoveFromTitle(title string) string {
	cleaned := modifierPattern.ReplaceAllString(title, "")
	return strings.Join(strings.Fields(cleaned), " ")
}
