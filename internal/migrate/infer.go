package migrate

import (
	"strings"

	"github.com/HendryAvila/storycodex/internal/codex"
)

// Heuristics that fill enhanced profile fields from the free-text fields
// of a legacy character.

var arcKeywords = []struct {
	arc   codex.ArcType
	words []string
}{
	{codex.ArcRedemption, []string{"redeem", "redemption", "redeemed"}},
	{codex.ArcTransformation, []string{"grows", "matures", "evolves", "transforms"}},
	{codex.ArcFall, []string{"falls", "descends", "corrupts"}},
	{codex.ArcComingOfAge, []string{"teen", "youth", "coming of age", "adolescent"}},
	{codex.ArcEducation, []string{"learns", "discovers", "understanding"}},
	{codex.ArcTesting, []string{"tests", "challenged", "trial"}},
}

var emotionKeywords = []struct {
	emotion codex.EmotionType
	words   []string
}{
	{codex.EmotionFear, []string{"fear", "afraid", "terrified", "anxiety", "worried"}},
	{codex.EmotionGrief, []string{"grief", "loss", "mourning", "death"}},
	{codex.EmotionHope, []string{"hope", "optimistic", "faith", "believe"}},
	{codex.EmotionDetermination, []string{"determined", "resolute", "unwavering", "driven"}},
	{codex.EmotionAnger, []string{"anger", "rage", "fury", "vengeance"}},
	{codex.EmotionGuilt, []string{"guilt", "shame", "regret", "blame"}},
	{codex.EmotionLove, []string{"love", "affection", "care", "devotion"}},
	{codex.EmotionLoneliness, []string{"lonely", "isolated", "alone"}},
}

var positiveTraits = []string{
	"Resilient",
	"Resourceful",
	"Brave",
	"Loyal",
	"Intelligent",
	"Compassionate",
	"Clever",
	"Hopeful",
	"Determined",
}

const maxDominantEmotions = 4

// Enrich infers arc type, dominant emotions and psychology for a freshly
// migrated character.
func Enrich(ch *codex.Character) {
	ch.ArcType = InferArcType(ch.CharacterArc)
	ch.DominantEmotions = InferDominantEmotions(ch)
	fears, desires, flaws, strengths := extractPsychology(ch)
	ch.Psychology.Fears = fears
	ch.Psychology.Desires = desires
	ch.Psychology.Flaws = flaws
	ch.Psychology.Strengths = strengths
}

// InferArcType guesses the arc archetype from an arc description.
// Transformation is the fallback.
func InferArcType(description string) codex.ArcType {
	lower := strings.ToLower(description)
	for _, k := range arcKeywords {
		if containsAny(lower, k.words) {
			return k.arc
		}
	}
	return codex.ArcTransformation
}

// InferDominantEmotions scans conflicts, motivations and arc for emotion
// keywords, returning at most four emotions.
func InferDominantEmotions(ch *codex.Character) []codex.EmotionType {
	text := strings.ToLower(strings.Join([]string{
		ch.InternalConflicts,
		ch.ExternalConflicts,
		ch.Motivations,
		ch.CharacterArc,
	}, " "))

	var out []codex.EmotionType
	for _, k := range emotionKeywords {
		if len(out) == maxDominantEmotions {
			break
		}
		if containsAny(text, k.words) {
			out = append(out, k.emotion)
		}
	}
	return out
}

func extractPsychology(ch *codex.Character) (fears, desires, flaws, strengths []string) {
	internal := ch.InternalConflicts
	lowerInternal := strings.ToLower(internal)

	if _, after, ok := strings.Cut(internal, "struggles with"); ok {
		flaw, _, _ := strings.Cut(after, ",")
		if flaw = strings.TrimSpace(flaw); flaw != "" {
			flaws = append(flaws, flaw)
		}
	}
	if strings.Contains(lowerInternal, "fear") {
		fears = append(fears, internal)
	}

	lowerMotivations := strings.ToLower(ch.Motivations)
	if strings.Contains(lowerMotivations, "desire") || strings.Contains(lowerMotivations, "want") {
		desires = append(desires, ch.Motivations)
	}

	lowerTraits := strings.ToLower(ch.PersonalityTraits)
	for _, trait := range positiveTraits {
		if strings.Contains(lowerTraits, strings.ToLower(trait)) {
			strengths = append(strengths, trait)
		}
	}
	return fears, desires, flaws, strengths
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
