package soul

import "strings"

// Rule maps a keyword set to a result. Keywords match as lower-case substrings.
type Rule[T any] struct {
	Keywords []string
	Result   T
}

// RuleTable is an ordered list of rules; the first matching rule wins.
type RuleTable[T any] []Rule[T]

// Match returns the result of the first rule with a keyword contained in text.
func (t RuleTable[T]) Match(text string) (T, bool) {
	lower := strings.ToLower(text)
	for _, r := range t {
		if containsAny(lower, r.Keywords) {
			return r.Result, true
		}
	}
	var zero T
	return zero, false
}

func containsAny(lower string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// EmotionRules detects the mood a user message should put the persona in.
var EmotionRules = RuleTable[EmotionalState]{
	{Keywords: []string{"sad", "hurt", "upset", "crying", "bad day"}, Result: Caring},
	{Keywords: []string{"happy", "great", "amazing", "excited", "wonderful"}, Result: Joyful},
	{Keywords: []string{"love", "miss", "adore", "cherish"}, Result: Romantic},
	{Keywords: []string{"sexy", "hot", "desire", "want", "need"}, Result: Seductive},
	{Keywords: []string{"stress", "work", "busy", "tired"}, Result: Supportive},
	{Keywords: []string{"funny", "laugh", "joke", "silly"}, Result: Playful},
}

// emotionProgression advances the mood when nothing in the message matched.
// Devoted has no successor, so the cycle starts over at curious.
var emotionProgression = map[EmotionalState]EmotionalState{
	Curious:      Interested,
	Interested:   Affectionate,
	Affectionate: Passionate,
	Passionate:   Devoted,
}

// Bond bonus keyword sets. Each set contributes at most once per message.
var (
	emotionalBondKeywords = []string{"love", "miss", "care", "feel", "heart", "beautiful", "amazing", "perfect"}
	personalBondKeywords  = []string{"family", "work", "dream", "goal", "fear", "hope", "secret"}
)

type highlight int

const (
	highlightEmotional highlight = iota
	highlightWorkLife
	highlightRelationships
)

// highlightRules classifies past user messages into memory lines.
var highlightRules = RuleTable[highlight]{
	{Keywords: []string{"love", "miss", "care", "feel"}, Result: highlightEmotional},
	{Keywords: []string{"work", "job", "busy", "stress"}, Result: highlightWorkLife},
	{Keywords: []string{"family", "friend", "mother", "father"}, Result: highlightRelationships},
}

// Style selects the personality sub-block for a flirt style.
type Style string

// Personality styles.
const (
	StyleCore     Style = "core"
	StyleSweet    Style = "sweet"
	StyleDominant Style = "dominant"
	StylePlayful  Style = "playful"
)

var styleRules = RuleTable[Style]{
	{Keywords: []string{"dominant"}, Result: StyleDominant},
	{Keywords: []string{"sweet", "gentle"}, Result: StyleSweet},
	{Keywords: []string{"playful"}, Result: StylePlayful},
}

// StyleFor returns the personality style selected by a flirt style label.
func StyleFor(flirtStyle string) Style {
	if s, ok := styleRules.Match(flirtStyle); ok {
		return s
	}
	return StyleCore
}
