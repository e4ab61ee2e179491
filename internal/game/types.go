package game

import (
	"fmt"
	"strconv"
	"strings"
)

// League is the skill bracket a ride was played in. Every song has an
// independent leaderboard per league.
type League int16

const (
	LeagueCasual League = 0
	LeaguePro    League = 1
	LeagueElite  League = 2
)

var AllLeagues = [3]League{LeagueCasual, LeaguePro, LeagueElite}

func (l League) Valid() bool {
	return l >= LeagueCasual && l <= LeagueElite
}

func (l League) String() string {
	switch l {
	case LeagueCasual:
		return "Casual"
	case LeaguePro:
		return "Pro"
	case LeagueElite:
		return "Elite"
	default:
		return fmt.Sprintf("League(%d)", int16(l))
	}
}

// Character is the vehicle a ride was played with.
type Character int16

const (
	CharacterPointman       Character = 0
	CharacterDoubleVision   Character = 1
	CharacterVegas          Character = 2
	CharacterPusher         Character = 3
	CharacterEraser         Character = 4
	CharacterMono           Character = 5
	CharacterPointmanElite  Character = 6
	CharacterDoubleVisionPro Character = 7
	CharacterPusherElite    Character = 8
	CharacterNinjaMono      Character = 9
)

// Leaderboard is the scoretype attribute of the GetRides response.
type Leaderboard int16

const (
	LeaderboardGlobal Leaderboard = 0
	LeaderboardFriend Leaderboard = 1
	LeaderboardNearby Leaderboard = 2
)

// SplitXSeparated parses the game's "12x34x56" packed integer lists
// (track shape and similar payload fields).
func SplitXSeparated(s string) ([]int32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, "x")
	out := make([]int32, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.ParseInt(p, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("parse x-separated element %q: %w", p, err)
		}
		out = append(out, int32(n))
	}
	return out, nil
}

// SplitCommaSeparated parses the game's comma-packed integer lists
// (the xstats payload field).
func SplitCommaSeparated(s string) ([]int32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int32, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("parse comma-separated element %q: %w", p, err)
		}
		out = append(out, int32(n))
	}
	return out, nil
}

// SplitFeats splits the game's ", "-joined feat list.
func SplitFeats(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ", ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
