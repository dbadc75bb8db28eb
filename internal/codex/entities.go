package codex

import (
	"encoding/json"
	"fmt"
)

// --- Emotion & psychology ---

// EmotionState is a character's emotional state at one moment.
type EmotionState struct {
	Emotion    EmotionType `json:"emotion" validate:"emotion"`
	Intensity  float64     `json:"intensity" validate:"gte=0,lte=1"`
	Trigger    string      `json:"trigger,omitempty"`
	Expression string      `json:"expression,omitempty"` // how it manifests: physical, verbal, ...
}

// EmotionalMoment is an emotionally significant beat for a character,
// stamped with the chapter and scene where it happens.
type EmotionalMoment struct {
	Chapter      int            `json:"chapter" validate:"gte=1"`
	Scene        int            `json:"scene" validate:"gte=0"`
	Emotions     []EmotionState `json:"emotions" validate:"dive"`
	Context      string         `json:"context,omitempty"`
	Significance string         `json:"significance,omitempty"`
}

// Psychology is the deep profile of a character. Every list is an
// unordered set of free text.
type Psychology struct {
	CoreValues []string `json:"core_values"`
	Fears      []string `json:"fears"`
	Desires    []string `json:"desires"`
	Secrets    []string `json:"secrets"`
	Beliefs    []string `json:"beliefs"`
	Flaws      []string `json:"flaws"`
	Strengths  []string `json:"strengths"`
	Triggers   []string `json:"triggers"`
}

// Voice captures how a character speaks and thinks.
type Voice struct {
	SpeechPatterns         string   `json:"speech_patterns,omitempty"`
	VocabularyLevel        string   `json:"vocabulary_level,omitempty"` // simple, average, sophisticated, technical
	Catchphrases           []string `json:"catchphrases"`
	VerbalTics             []string `json:"verbal_tics"`
	AccentNotes            string   `json:"accent_notes,omitempty"`
	InternalMonologueStyle string   `json:"internal_monologue_style,omitempty"`
}

// --- Relationships ---

// RelationshipState is a snapshot of a relationship at a chapter.
type RelationshipState struct {
	Chapter     int     `json:"chapter" validate:"gte=1"`
	Trust       float64 `json:"trust_level" validate:"gte=0,lte=1"`
	Affection   float64 `json:"affection_level" validate:"gte=0,lte=1"`
	Conflict    float64 `json:"conflict_level" validate:"gte=0,lte=1"`
	Description string  `json:"description,omitempty"`
}

// Relationship is a directional record from the owning character to Target.
// The record itself is always current; only Evolution is temporal.
type Relationship struct {
	Target      string              `json:"target_character" validate:"required"`
	Type        RelationshipType    `json:"relationship_type" validate:"omitempty,relationship_type"`
	Description string              `json:"description,omitempty"`
	History     string              `json:"history,omitempty"`
	Dynamics    string              `json:"dynamics,omitempty"`
	Evolution   []RelationshipState `json:"evolution" validate:"dive"`
}

// --- Memory, callback, fact ---

// Memory is a significant memory held by a character.
type Memory struct {
	ID                   string      `json:"id"`
	Owner                string      `json:"owner" validate:"required"`
	Content              string      `json:"content" validate:"required"`
	EmotionalWeight      EmotionType `json:"emotional_weight" validate:"omitempty,emotion"`
	IntroducedChapter    int         `json:"chapter_introduced" validate:"gte=0"`
	ReferencedChapters   []int       `json:"chapters_referenced"`
	AssociatedCharacters []string    `json:"associated_characters"`
	IsTrauma             bool        `json:"is_trauma"`
	IsPositive           bool        `json:"is_positive"`
}

// Callback is a narrative promise ("Chekhov's gun") that should be paid off.
type Callback struct {
	ID                 string         `json:"id"`
	Name               string         `json:"name" validate:"required"`
	SetupChapter       int            `json:"setup_chapter" validate:"gte=1"`
	SetupScene         int            `json:"setup_scene" validate:"gte=0"`
	SetupDescription   string         `json:"setup_description" validate:"required"`
	PayoffChapter      *int           `json:"payoff_chapter,omitempty"`
	PayoffScene        *int           `json:"payoff_scene,omitempty"`
	PayoffDescription  string         `json:"payoff_description,omitempty"`
	ReferencedChapters []int          `json:"chapters_referenced"`
	Status             CallbackStatus `json:"status" validate:"callback_status"`
	Importance         Importance     `json:"importance" validate:"importance"`
	Notes              string         `json:"notes,omitempty"`
}

// Fact is an assertion about the story world that must stay consistent
// once established. Facts are append-only.
type Fact struct {
	ID                 string `json:"id"`
	Fact               string `json:"fact" validate:"required"`
	Category           string `json:"category"` // character, world, tech, history, ...
	EstablishedChapter int    `json:"chapter_established" validate:"gte=1"`
	EstablishedScene   int    `json:"scene_established" validate:"gte=0"`
	ReferencedChapters []int  `json:"chapters_referenced"`
	Source             string `json:"source,omitempty"`
	Verified           bool   `json:"verified"`
	Notes              string `json:"notes,omitempty"`
}

// --- Character ---

// ArcMilestone is a turning point in a character's arc.
type ArcMilestone struct {
	Chapter     int    `json:"chapter" validate:"gte=1"`
	Scene       int    `json:"scene" validate:"gte=0"`
	Description string `json:"description" validate:"required"`
	GrowthArea  string `json:"growth_area,omitempty"`
	BeforeState string `json:"before_state,omitempty"`
	AfterState  string `json:"after_state,omitempty"`
	Catalyst    string `json:"catalyst,omitempty"`
}

// SceneRef locates a scene. It is persisted as a [chapter, scene] pair.
type SceneRef struct {
	Chapter int
	Scene   int
}

// MarshalJSON encodes the ref as a two-element array.
func (r SceneRef) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{r.Chapter, r.Scene})
}

// UnmarshalJSON decodes a [chapter, scene] pair.
func (r *SceneRef) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("scene ref: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("scene ref: want [chapter, scene], got %d elements", len(pair))
	}
	r.Chapter, r.Scene = pair[0], pair[1]
	return nil
}

// Character is the enhanced profile of a single character.
type Character struct {
	// Identity
	Name           string         `json:"name" validate:"required"`
	FullName       string         `json:"full_name,omitempty"`
	Aliases        []string       `json:"aliases"`
	AgeAtStart     string         `json:"age_at_story_start,omitempty"`
	AgeProgression map[int]string `json:"age_progression"` // chapter -> age, for time jumps

	// Appearance
	PhysicalDescription    string   `json:"physical_description"`
	DistinguishingFeatures []string `json:"distinguishing_features"`
	ClothingStyle          string   `json:"clothing_style,omitempty"`
	PhysicalMannerisms     []string `json:"physical_mannerisms"`

	// Role
	Role       string `json:"role,omitempty"`
	Faction    string `json:"faction,omitempty"`
	Occupation string `json:"occupation,omitempty"`

	// Personality
	PersonalityTraits string  `json:"personality_traits,omitempty"`
	Background        string  `json:"background,omitempty"`
	Motivations       string  `json:"motivations,omitempty"`
	InternalConflicts string  `json:"internal_conflicts,omitempty"`
	ExternalConflicts string  `json:"external_conflicts,omitempty"`
	CharacterArc      string  `json:"character_arc"`
	ArcType           ArcType `json:"arc_type" validate:"omitempty,arc_type"`

	Psychology Psychology `json:"psychology"`
	Voice      Voice      `json:"voice"`

	Relationships    map[string]Relationship `json:"relationships" validate:"dive"`
	EmotionalJourney []EmotionalMoment       `json:"emotional_journey" validate:"dive"`
	DominantEmotions []EmotionType           `json:"dominant_emotions" validate:"dive,emotion"`
	Memories         []Memory                `json:"memories" validate:"dive"`
	ArcMilestones    []ArcMilestone          `json:"arc_milestones" validate:"dive"`
	ScenesAppeared   []SceneRef              `json:"scenes_appeared"`
	POVScenes        []SceneRef              `json:"pov_scenes"`

	// Status
	IsAlive         bool     `json:"is_alive"`
	DeathChapter    *int     `json:"death_chapter,omitempty" validate:"omitempty,gte=1"`
	CurrentLocation string   `json:"current_location,omitempty"`
	Inventory       []string `json:"inventory"`
}

// NewCharacter returns a living character with empty enhanced fields.
func NewCharacter(name string) *Character {
	return &Character{
		Name:          name,
		ArcType:       ArcTransformation,
		IsAlive:       true,
		Relationships: map[string]Relationship{},
	}
}

// AliveAt reports whether the character is alive at the given chapter:
// true iff no death chapter is set or the death chapter is later.
func (c *Character) AliveAt(chapter int) bool {
	return c.DeathChapter == nil || *c.DeathChapter > chapter
}

// --- Scene & chapter ---

// SensoryDetails is the sensory palette of a scene.
type SensoryDetails struct {
	Sight      string `json:"sight,omitempty"`
	Sound      string `json:"sound,omitempty"`
	Smell      string `json:"smell,omitempty"`
	Touch      string `json:"touch,omitempty"`
	Taste      string `json:"taste,omitempty"`
	Atmosphere string `json:"atmosphere,omitempty"`
}

// Scene is one scene of a chapter. Scene numbers are unique within
// their chapter.
type Scene struct {
	ID            string   `json:"scene_id"`
	Chapter       int      `json:"chapter" validate:"gte=1"`
	Number        int      `json:"scene_number" validate:"gte=1"`
	Title         string   `json:"title,omitempty"`
	Summary       string   `json:"summary,omitempty"`
	Characters    []string `json:"characters"`
	Setting       string   `json:"setting,omitempty"`
	Goal          string   `json:"goal,omitempty"`
	EmotionalBeat string   `json:"emotional_beat"`

	Location       string         `json:"location,omitempty"`
	TimeOfDay      string         `json:"time_of_day,omitempty"`
	Weather        string         `json:"weather,omitempty"`
	SensoryDetails SensoryDetails `json:"sensory_details"`

	POVCharacter      string                    `json:"pov_character,omitempty"`
	CharacterEmotions map[string][]EmotionState `json:"character_emotions" validate:"dive,dive"`
	CharacterGoals    map[string]string         `json:"character_goals"`

	Type     SceneType `json:"scene_type" validate:"omitempty,scene_type"`
	Conflict string    `json:"conflict,omitempty"`
	Stakes   string    `json:"stakes,omitempty"`
	Outcome  string    `json:"outcome,omitempty"`
	Tension  float64   `json:"tension_level" validate:"gte=0,lte=1"`

	ItemsMentioned      []string `json:"items_mentioned"`
	FactsEstablished    []string `json:"facts_established"`
	FactsReferenced     []string `json:"facts_referenced"`
	CallbacksPlanted    []string `json:"callbacks_planted"`
	CallbacksReferenced []string `json:"callbacks_referenced"`
	CallbacksResolved   []string `json:"callbacks_resolved"`

	Themes  []string `json:"themes_present"`
	Symbols []string `json:"symbols_used"`
	Motifs  []string `json:"motifs"`

	LeadsTo        string   `json:"leads_to,omitempty"`
	FollowsFrom    string   `json:"follows_from,omitempty"`
	ParallelScenes []string `json:"parallel_scenes"`

	WordCount   int         `json:"word_count"`
	DraftStatus DraftStatus `json:"draft_status" validate:"omitempty,draft_status"`
	Notes       string      `json:"notes,omitempty"`
}

// SceneID returns the canonical id for a scene: "ch3_sc2".
func SceneID(chapter, scene int) string {
	return fmt.Sprintf("ch%d_sc%d", chapter, scene)
}

// Chapter owns an ordered sequence of scenes (by scene number).
type Chapter struct {
	Number  int     `json:"chapter_number" validate:"gte=1"`
	Title   string  `json:"title"`
	Summary string  `json:"summary,omitempty"`
	Scenes  []Scene `json:"scenes" validate:"dive"`

	Act         string `json:"act,omitempty"`          // "Act I", "Act II", ...
	ArcPosition string `json:"arc_position,omitempty"` // inciting incident, midpoint, climax, ...

	POVCharacters       []string `json:"pov_characters"`
	CharactersAppearing []string `json:"characters_appearing"`
	CharacterFocus      string   `json:"character_focus,omitempty"`

	PrimaryTheme    string   `json:"primary_theme,omitempty"`
	SecondaryThemes []string `json:"secondary_themes"`
	TensionArc      string   `json:"tension_arc,omitempty"`
	EmotionalArc    string   `json:"emotional_arc,omitempty"`

	StoryDate string `json:"story_date,omitempty"`
	TimeSpan  string `json:"time_span,omitempty"`

	WordCount   int `json:"word_count"`
	DraftNumber int `json:"draft_number"`
}

// Scene returns the scene with the given number.
func (ch *Chapter) Scene(number int) (*Scene, bool) {
	for i := range ch.Scenes {
		if ch.Scenes[i].Number == number {
			return &ch.Scenes[i], true
		}
	}
	return nil, false
}
