package soul

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBondDelta(t *testing.T) {
	t.Parallel()

	type deltaTestCase struct {
		name    string
		message string
		bond    float64
		want    float64
	}

	testGroups := map[string][]deltaTestCase{
		"Keyword Bonuses": {
			{name: "plain message", message: "ok", bond: 1, want: 0.1},
			{name: "emotional keyword", message: "you look beautiful", bond: 1, want: 0.3},
			{name: "emotional keywords count once", message: "love love miss care", bond: 1, want: 0.3},
			{name: "personal keyword", message: "my family", bond: 1, want: 0.25},
			{name: "both categories", message: "I love my family", bond: 1, want: 0.45},
			{name: "case insensitive", message: "I LOVE my FAMILY", bond: 1, want: 0.45},
		},
		"Length Bonuses": {
			{name: "exactly 100 chars", message: strings.Repeat("x", 100), bond: 1, want: 0.1},
			{name: "101 chars", message: strings.Repeat("x", 101), bond: 1, want: 0.2},
			{name: "exactly 200 chars", message: strings.Repeat("x", 200), bond: 1, want: 0.2},
			{name: "201 chars takes only the top tier", message: strings.Repeat("x", 201), bond: 1, want: 0.3},
			{name: "multibyte counted as characters", message: strings.Repeat("é", 101), bond: 1, want: 0.2},
		},
		"Diminishing Returns": {
			{name: "below five", message: "ok", bond: 4.99, want: 0.1},
			{name: "at five", message: "ok", bond: 5, want: 0.07},
			{name: "at seven", message: "ok", bond: 7, want: 0.05},
			{name: "at nine", message: "I love my family", bond: 9, want: 0.23},
		},
	}

	for groupName, testCases := range testGroups {
		t.Run(groupName, func(t *testing.T) {
			t.Parallel()
			for _, tc := range testCases {
				t.Run(tc.name, func(t *testing.T) {
					t.Parallel()
					assert.InDelta(t, tc.want, BondDelta(tc.message, tc.bond), 1e-9)
				})
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	t.Run("love and work message below five", func(t *testing.T) {
		t.Parallel()
		msg := "I love you and miss you so much, it's been a rough week at work"
		bond, state := Update(msg, "aww", 3, Curious)
		// 0.1 base + 0.2 emotional + 0.15 personal, no length bonus, no damping
		assert.InDelta(t, 3.45, bond, 1e-9)
		assert.Equal(t, Romantic, state)
	})

	t.Run("short message at high bond", func(t *testing.T) {
		t.Parallel()
		bond, state := Update("ok", "sure", 9, Devoted)
		assert.InDelta(t, 9.05, bond, 1e-9)
		assert.Equal(t, Curious, state)
	})

	t.Run("never exceeds ten", func(t *testing.T) {
		t.Parallel()
		bond, _ := Update(strings.Repeat("love family ", 30), "", 9.99, Curious)
		assert.Equal(t, MaxBond, bond)
	})

	t.Run("stays within current and ten", func(t *testing.T) {
		t.Parallel()
		messages := []string{"", "ok", "I feel sad", strings.Repeat("dream ", 50)}
		for bond := 1.0; bond <= 10; bond += 0.37 {
			for _, m := range messages {
				got, _ := Update(m, "", bond, Curious)
				assert.GreaterOrEqual(t, got, bond)
				assert.LessOrEqual(t, got, MaxBond)
			}
		}
	})
}

func TestNextEmotionalState(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		message string
		current EmotionalState
		want    EmotionalState
	}{
		{name: "sad wins over everything", message: "sad but I love you", current: Curious, want: Caring},
		{name: "bad day phrase", message: "had a bad day", current: Curious, want: Caring},
		{name: "joyful before romantic", message: "so happy, I adore you", current: Curious, want: Joyful},
		{name: "romantic before supportive", message: "miss you, work is hard", current: Curious, want: Romantic},
		{name: "seductive", message: "I want you", current: Curious, want: Seductive},
		{name: "supportive", message: "so tired today", current: Curious, want: Supportive},
		{name: "playful", message: "tell me a joke", current: Curious, want: Playful},
		{name: "progression curious", message: "ok", current: Curious, want: Interested},
		{name: "progression interested", message: "ok", current: Interested, want: Affectionate},
		{name: "progression affectionate", message: "ok", current: Affectionate, want: Passionate},
		{name: "progression passionate", message: "ok", current: Passionate, want: Devoted},
		{name: "devoted starts over", message: "ok", current: Devoted, want: Curious},
		{name: "off-progression state resets", message: "ok", current: Romantic, want: Curious},
		{name: "unknown state resets", message: "ok", current: "grumpy", want: Curious},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, NextEmotionalState(tc.message, tc.current))
		})
	}
}

func TestRuleTableFirstMatchWins(t *testing.T) {
	t.Parallel()

	table := RuleTable[string]{
		{Keywords: []string{"b"}, Result: "first"},
		{Keywords: []string{"a", "b"}, Result: "second"},
	}

	got, ok := table.Match("AB")
	assert.True(t, ok)
	assert.Equal(t, "first", got)

	_, ok = table.Match("zzz")
	assert.False(t, ok)
}
