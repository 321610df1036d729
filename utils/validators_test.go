package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateReplayURL(t *testing.T) {
	valid := []string{
		"https://albiononline.com/en/replay/123e4567-e89b-12d3-a456-426614174000",
		"https://albiononline.com/replay/abc123",
		"http://www.albiononline.com/de/replay/deadbeef",
		"HTTPS://ALBIONONLINE.COM/REPLAY/ABC123",
	}
	for _, url := range valid {
		assert.Empty(t, ValidateReplayURL(url), "expected %q to be accepted", url)
	}

	invalid := []string{
		"",
		"   ",
		"albiononline.com/replay/abc",
		"ftp://albiononline.com/replay/abc",
		"https://example.com/replay/abc",
		"https://albiononline.com/en/profile/someone",
	}
	for _, url := range invalid {
		assert.NotEmpty(t, ValidateReplayURL(url), "expected %q to be rejected", url)
	}
}

func TestExtractReplayID(t *testing.T) {
	assert.Equal(t, "123e4567-e89b-12d3-a456-426614174000",
		ExtractReplayID("https://albiononline.com/en/replay/123e4567-e89b-12d3-a456-426614174000"))
	assert.Equal(t, "abc123", ExtractReplayID("https://albiononline.com/replay/abc123"))
	assert.Empty(t, ExtractReplayID("https://example.com/replay/abc"))
}

func TestNormalizeRole(t *testing.T) {
	cases := map[string]string{
		"D-Tank":      "D-Tank",
		"dtank":       "D-Tank",
		"dark tank":   "D-Tank",
		"ETANK":       "E-Tank",
		"light tank":  "E-Tank",
		"  healer  ":  "Healer",
		"heal":        "Healer",
		"supp":        "Support",
		"damage":      "DPS",
		"dps":         "DPS",
		"bm":          "Battlemount",
		"mount":       "Battlemount",
		"":            "",
		"jungler":     "",
		"tank":        "", // ambiguous between both tank roles
		"d tank":      "",
	}
	for input, want := range cases {
		assert.Equal(t, want, NormalizeRole(input), "input %q", input)
	}
}

func TestAllRoles(t *testing.T) {
	roles := AllRoles()
	assert.Equal(t, []string{"D-Tank", "E-Tank", "Healer", "Support", "DPS", "Battlemount"}, roles)
}

func TestRoleSuggestions(t *testing.T) {
	assert.Equal(t, []string{"D-Tank", "E-Tank"}, RoleSuggestions("tank"))
	assert.Equal(t, []string{"D-Tank", "E-Tank"}, RoleSuggestions("TANK"))
	assert.Empty(t, RoleSuggestions("jungler"))
	assert.LessOrEqual(t, len(RoleSuggestions("")), 5)
}

func TestHashInviteCode(t *testing.T) {
	a := HashInviteCode("join-black-order")
	b := HashInviteCode("join-black-order")
	assert.Equal(t, a, b, "hashing is deterministic")
	assert.Len(t, a, 64)
	assert.NotEqual(t, a, HashInviteCode("join-black-order2"))
	assert.NotContains(t, a, "join", "plaintext never survives into the hash")
}
