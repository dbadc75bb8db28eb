// Package codex holds the temporal knowledge base for one book project.
//
// A Codex is the aggregate root: characters, chapters and their scenes,
// callbacks, facts and memories, plus the global symbol/location/item
// registries. Every query is resolved against a chapter (and optionally
// a scene) so callers can ask what the story world looked like at that
// point in the manuscript.
//
// The package follows the same layout as the rest of the repo:
// - types.go: closed enumerations and their validators
// - entities.go: the entity records
// - codex.go: the aggregate and its mutations
// - temporal.go: point-in-time queries
// - callback.go: the callback lifecycle state machine
// - check.go: soft-reference validation
// - store.go: JSON persistence
package codex

import (
	"fmt"
	"strings"
)

// --- Emotion enum ---

// EmotionType is a core emotion used for character tracking.
type EmotionType string

const (
	EmotionJoy           EmotionType = "joy"
	EmotionSadness       EmotionType = "sadness"
	EmotionAnger         EmotionType = "anger"
	EmotionFear          EmotionType = "fear"
	EmotionSurprise      EmotionType = "surprise"
	EmotionDisgust       EmotionType = "disgust"
	EmotionTrust         EmotionType = "trust"
	EmotionAnticipation  EmotionType = "anticipation"
	EmotionHope          EmotionType = "hope"
	EmotionDespair       EmotionType = "despair"
	EmotionLove          EmotionType = "love"
	EmotionGrief         EmotionType = "grief"
	EmotionGuilt         EmotionType = "guilt"
	EmotionShame         EmotionType = "shame"
	EmotionPride         EmotionType = "pride"
	EmotionAnxiety       EmotionType = "anxiety"
	EmotionPeace         EmotionType = "peace"
	EmotionDetermination EmotionType = "determination"
	EmotionConfusion     EmotionType = "confusion"
	EmotionLoneliness    EmotionType = "loneliness"
)

var validEmotions = map[EmotionType]bool{
	EmotionJoy:           true,
	EmotionSadness:       true,
	EmotionAnger:         true,
	EmotionFear:          true,
	EmotionSurprise:      true,
	EmotionDisgust:       true,
	EmotionTrust:         true,
	EmotionAnticipation:  true,
	EmotionHope:          true,
	EmotionDespair:       true,
	EmotionLove:          true,
	EmotionGrief:         true,
	EmotionGuilt:         true,
	EmotionShame:         true,
	EmotionPride:         true,
	EmotionAnxiety:       true,
	EmotionPeace:         true,
	EmotionDetermination: true,
	EmotionConfusion:     true,
	EmotionLoneliness:    true,
}

// ValidateEmotion returns an error if the emotion is not recognized.
func ValidateEmotion(e EmotionType) error {
	if !validEmotions[e] {
		return fmt.Errorf("%w: unknown emotion %q", ErrInvalid, e)
	}
	return nil
}

// --- Relationship type enum ---

// RelationshipType categorizes a directional relationship.
type RelationshipType string

const (
	RelFamily       RelationshipType = "family"
	RelFriend       RelationshipType = "friend"
	RelRival        RelationshipType = "rival"
	RelEnemy        RelationshipType = "enemy"
	RelMentor       RelationshipType = "mentor"
	RelStudent      RelationshipType = "student"
	RelRomantic     RelationshipType = "romantic"
	RelAlly         RelationshipType = "ally"
	RelAcquaintance RelationshipType = "acquaintance"
	RelComplicated  RelationshipType = "complicated"
)

var validRelationshipTypes = map[RelationshipType]bool{
	RelFamily:       true,
	RelFriend:       true,
	RelRival:        true,
	RelEnemy:        true,
	RelMentor:       true,
	RelStudent:      true,
	RelRomantic:     true,
	RelAlly:         true,
	RelAcquaintance: true,
	RelComplicated:  true,
}

// ValidateRelationshipType returns an error if the type is not recognized.
func ValidateRelationshipType(t RelationshipType) error {
	if !validRelationshipTypes[t] {
		return fmt.Errorf("%w: unknown relationship type %q", ErrInvalid, t)
	}
	return nil
}

// --- Scene type enum ---

// SceneType is the narrative function of a scene.
type SceneType string

const (
	SceneAction        SceneType = "action"
	SceneDialogue      SceneType = "dialogue"
	SceneReflection    SceneType = "reflection"
	SceneFlashback     SceneType = "flashback"
	SceneDiscovery     SceneType = "discovery"
	SceneConfrontation SceneType = "confrontation"
	SceneEscape        SceneType = "escape"
	SceneReunion       SceneType = "reunion"
	SceneRevelation    SceneType = "revelation"
	SceneTransition    SceneType = "transition"
)

var validSceneTypes = map[SceneType]bool{
	SceneAction:        true,
	SceneDialogue:      true,
	SceneReflection:    true,
	SceneFlashback:     true,
	SceneDiscovery:     true,
	SceneConfrontation: true,
	SceneEscape:        true,
	SceneReunion:       true,
	SceneRevelation:    true,
	SceneTransition:    true,
}

// ValidateSceneType returns an error if the scene type is not recognized.
func ValidateSceneType(t SceneType) error {
	if !validSceneTypes[t] {
		return fmt.Errorf("%w: unknown scene type %q", ErrInvalid, t)
	}
	return nil
}

// --- Arc type enum ---

// ArcType is a character arc archetype.
type ArcType string

const (
	ArcComingOfAge     ArcType = "coming_of_age"
	ArcRedemption      ArcType = "redemption"
	ArcFall            ArcType = "fall"
	ArcTransformation  ArcType = "transformation"
	ArcFlat            ArcType = "flat" // character stays the same, the world changes
	ArcDisillusionment ArcType = "disillusionment"
	ArcEducation       ArcType = "education"
	ArcTesting         ArcType = "testing"
)

var validArcTypes = map[ArcType]bool{
	ArcComingOfAge:     true,
	ArcRedemption:      true,
	ArcFall:            true,
	ArcTransformation:  true,
	ArcFlat:            true,
	ArcDisillusionment: true,
	ArcEducation:       true,
	ArcTesting:         true,
}

// ValidateArcType returns an error if the arc type is not recognized.
func ValidateArcType(t ArcType) error {
	if !validArcTypes[t] {
		return fmt.Errorf("%w: unknown arc type %q", ErrInvalid, t)
	}
	return nil
}

// --- Callback status enum ---

// CallbackStatus tracks a callback through its lifecycle.
type CallbackStatus string

const (
	StatusPlanted    CallbackStatus = "planted"
	StatusReferenced CallbackStatus = "referenced"
	StatusPaidOff    CallbackStatus = "paid_off"
	StatusAbandoned  CallbackStatus = "abandoned"
)

var validStatuses = map[CallbackStatus]bool{
	StatusPlanted:    true,
	StatusReferenced: true,
	StatusPaidOff:    true,
	StatusAbandoned:  true,
}

// ValidateStatus returns an error if the status is not recognized.
func ValidateStatus(s CallbackStatus) error {
	if !validStatuses[s] {
		return fmt.Errorf("%w: invalid callback status %q: must be one of: planted, referenced, paid_off, abandoned", ErrInvalid, s)
	}
	return nil
}

// IsPending reports whether the callback still awaits a payoff.
func (s CallbackStatus) IsPending() bool {
	return s == StatusPlanted || s == StatusReferenced
}

// --- Importance enum ---

// Importance is the ordinal weight of a callback: low < medium < high < critical.
type Importance string

const (
	ImportanceLow      Importance = "low"
	ImportanceMedium   Importance = "medium"
	ImportanceHigh     Importance = "high"
	ImportanceCritical Importance = "critical"
)

var importanceRank = map[Importance]int{
	ImportanceLow:      1,
	ImportanceMedium:   2,
	ImportanceHigh:     3,
	ImportanceCritical: 4,
}

// ValidateImportance returns an error if the importance tier is not recognized.
func ValidateImportance(i Importance) error {
	if _, ok := importanceRank[i]; !ok {
		return fmt.Errorf("%w: invalid importance %q: must be one of: low, medium, high, critical", ErrInvalid, i)
	}
	return nil
}

// Rank returns the ordinal position of the tier, 0 for unknown values.
func (i Importance) Rank() int {
	return importanceRank[i]
}

// ParseImportance normalizes free text ("High", " critical ") into a tier.
// Unknown input maps to medium, the default tier for new callbacks.
func ParseImportance(s string) Importance {
	i := Importance(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := importanceRank[i]; ok {
		return i
	}
	return ImportanceMedium
}

// --- Draft status enum ---

// DraftStatus tracks how polished a scene is.
type DraftStatus string

const (
	DraftRough   DraftStatus = "draft"
	DraftRevised DraftStatus = "revised"
	DraftFinal   DraftStatus = "final"
)

var validDraftStatuses = map[DraftStatus]bool{
	DraftRough:   true,
	DraftRevised: true,
	DraftFinal:   true,
}

// ValidateDraftStatus returns an error if the draft status is not recognized.
func ValidateDraftStatus(s DraftStatus) error {
	if !validDraftStatuses[s] {
		return fmt.Errorf("%w: invalid draft status %q: must be one of: draft, revised, final", ErrInvalid, s)
	}
	return nil
}
