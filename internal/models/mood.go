package models

import (
	"fmt"
	"strings"
)

// Mood is the tone preset a suggestion is generated under.
type Mood string

const (
	MoodFunny      Mood = "Funny"
	MoodRomantic   Mood = "Romantic"
	MoodMysterious Mood = "Mysterious"
	MoodSexy       Mood = "Sexy"
)

// DefaultMood is preselected when the user has not picked one.
const DefaultMood = MoodFunny

// Moods returns all moods in display order.
func Moods() []Mood {
	return []Mood{MoodFunny, MoodRomantic, MoodMysterious, MoodSexy}
}

// Valid reports whether m is one of the known moods.
func (m Mood) Valid() bool {
	switch m {
	case MoodFunny, MoodRomantic, MoodMysterious, MoodSexy:
		return true
	}
	return false
}

// ParseMood resolves a mood name case-insensitively.
func ParseMood(s string) (Mood, error) {
	for _, m := range Moods() {
		if strings.EqualFold(strings.TrimSpace(s), string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mood %q (want one of Funny, Romantic, Mysterious, Sexy)", s)
}

// Role identifies who wrote a context message.
type Role string

const (
	RoleUser      Role = "user"
	RoleOther     Role = "other"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleOther, RoleAssistant:
		return true
	}
	return false
}

// ParseRole resolves a role name or one of the transcript aliases
// ("me", "them", "her", "him", "ai", "bot").
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", "me", "i":
		return RoleUser, nil
	case "other", "them", "her", "him", "match":
		return RoleOther, nil
	case "assistant", "ai", "bot":
		return RoleAssistant, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}
