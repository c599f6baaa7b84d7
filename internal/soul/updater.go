package soul

import (
	"strings"
	"unicode/utf8"
)

// Bond increment weights.
const (
	baseBondDelta      = 0.1
	emotionalBondBonus = 0.2
	personalBondBonus  = 0.15
	longMessageBonus   = 0.1
	essayMessageBonus  = 0.2

	longMessageChars  = 100
	essayMessageChars = 200

	highBondThreshold = 7.0
	highBondFactor    = 0.5
	midBondThreshold  = 5.0
	midBondFactor     = 0.7
)

// Update computes the soul state after one turn. aiResponse is accepted so the
// signature covers the whole turn, but only the user's text moves the state.
func Update(userMessage, aiResponse string, currentBond float64, current EmotionalState) (float64, EmotionalState) {
	delta := BondDelta(userMessage, currentBond)
	next := round2(currentBond + delta)
	if next > MaxBond {
		next = MaxBond
	}
	if next < currentBond {
		next = currentBond
	}
	return next, NextEmotionalState(userMessage, current)
}

// BondDelta returns the bond increase earned by a message.
//
// Length bonuses are tiered and exclusive: a message over 200 characters earns
// only the 0.2 bonus, one over 100 only the 0.1 bonus. Diminishing returns are
// keyed on the bond before the increase.
func BondDelta(userMessage string, currentBond float64) float64 {
	delta := baseBondDelta
	lower := strings.ToLower(userMessage)

	if containsAny(lower, emotionalBondKeywords) {
		delta += emotionalBondBonus
	}
	if containsAny(lower, personalBondKeywords) {
		delta += personalBondBonus
	}

	switch n := utf8.RuneCountInString(userMessage); {
	case n > essayMessageChars:
		delta += essayMessageBonus
	case n > longMessageChars:
		delta += longMessageBonus
	}

	switch {
	case currentBond >= highBondThreshold:
		delta *= highBondFactor
	case currentBond >= midBondThreshold:
		delta *= midBondFactor
	}

	return round2(delta)
}

// NextEmotionalState picks the mood for the next turn. Keyword categories win
// in priority order; otherwise the mood drifts one step along the progression,
// and states outside the progression reset to curious.
func NextEmotionalState(userMessage string, current EmotionalState) EmotionalState {
	if st, ok := EmotionRules.Match(userMessage); ok {
		return st
	}
	if next, ok := emotionProgression[current]; ok {
		return next
	}
	return Curious
}
