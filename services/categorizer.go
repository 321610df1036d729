package services

import (
	"sort"
	"strings"
)

// errorCategory pairs a category name with its keyword list. Slice order
// is the declaration order used to break ties between equal match counts.
type errorCategory struct {
	Name     string
	Keywords []string
}

var errorCategories = []errorCategory{
	{"Positioning", []string{
		"position", "pos", "behind", "front", "flank", "backline", "frontline",
		"out of position", "bad position", "too far", "too close", "exposed",
		"overextended", "split push", "peel", "protect", "distance", "range",
	}},
	{"Rotation", []string{
		"rotation", "rot", "rotate", "rotating", "slow rot", "fast rot",
		"wrong rotation", "missed rot", "rot timing", "zerg rot", "group rot",
		"skill", "combo", "sequence", "order", "priority",
	}},
	{"Target Priority", []string{
		"target", "priority", "tp", "focus", "focus fire", "wrong target",
		"squishy", "tank", "healer", "dps", "kill priority", "cc target",
		"peel", "dive", "engage",
	}},
	{"Ability Usage", []string{
		"ability", "skill", "cooldown", "cd", "cc", "stun", "root", "slow",
		"heal", "shield", "damage", "ult", "ultimate", "wasted cd", "saved cd",
		"interrupt", "break", "purge",
	}},
	{"Map Awareness", []string{
		"map", "awareness", "vision", "ward", "scout", "enemy", "missing",
		"mia", "gank", "ambush", "bush", "fog", "minimap", "tracking",
		"objective", "capture", "defend",
	}},
	{"Communication", []string{
		"comms", "ping", "call", "voice", "chat", "mute", "no comms",
		"bad call", "wrong ping", "spam", "silent", "coordination",
		"collab", "teamwork", "voice",
	}},
	{"Mechanics", []string{
		"mechanic", "dodge", "block", "parry", "interrupt", "cc break",
		"animation cancel", "kiting", "juking", "movement", "pathing",
		"timer", "press", "reaction", "input",
	}},
	{"Build/Itemization", []string{
		"build", "items", "gear", "enchants", "food", "potion", "wrong build",
		"bad item", "respec", "talents", "mastery", "offspec", "gear",
		"weapon", "armor", "artifact",
	}},
	{"Teamfighting", []string{
		"teamfight", "tf", "engage", "disengage", "peel", "dive", "front",
		"back", "split", "group", "coordination", "follow up", "chain cc",
		"positioning", "formation", "group",
	}},
	{"Objective Play", []string{
		"objective", "obj", "capture", "hold", "push", "defend", "turret",
		"keep", "farm", "gather", "resources", "boss", "mob", "camp",
		"crystal", "castle", "avalon", "league",
	}},
}

// Categorize maps free-text error descriptions into the fixed taxonomy.
// It lowercases the input, sums substring occurrences of each category's
// keywords, drops zero-match categories, sorts by match count descending
// with declaration order as the tiebreak, and returns at most three
// category names. Deterministic and stateless.
func Categorize(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	lower := strings.ToLower(text)

	type scored struct {
		name  string
		score int
		order int
	}
	var matches []scored
	for i, cat := range errorCategories {
		score := 0
		for _, kw := range cat.Keywords {
			score += strings.Count(lower, kw)
		}
		if score > 0 {
			matches = append(matches, scored{cat.Name, score, i})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].order < matches[j].order
	})

	if len(matches) > 3 {
		matches = matches[:3]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.name
	}
	return out
}

// AllCategories enumerates the taxonomy in declaration order, for
// selection UIs and for validating pre-picked category lists.
func AllCategories() []string {
	out := make([]string, len(errorCategories))
	for i, cat := range errorCategories {
		out[i] = cat.Name
	}
	return out
}

// IsKnownCategory reports whether name is part of the taxonomy.
func IsKnownCategory(name string) bool {
	for _, cat := range errorCategories {
		if cat.Name == name {
			return true
		}
	}
	return false
}
