package codex

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// CurrentVersion is stamped on newly created codices.
const CurrentVersion = "1.0"

// Sentinel errors. Callers match them with errors.Is.
var (
	ErrInvalid           = errors.New("invalid codex entry")
	ErrMalformed         = errors.New("malformed codex")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid callback transition")
	ErrFactRewrite       = errors.New("established fact cannot be rewritten")
)

// TimelineEvent is one entry of the in-world chronology.
type TimelineEvent struct {
	Chapter   int    `json:"chapter" validate:"gte=1"`
	StoryDate string `json:"story_date,omitempty"`
	Event     string `json:"event" validate:"required"`
}

// Location is a registered place in the story world.
type Location struct {
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description,omitempty"`
	FirstChapter int    `json:"first_chapter" validate:"gte=0"`
	Notes        string `json:"notes,omitempty"`
}

// Item is a registered object in the story world.
type Item struct {
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description,omitempty"`
	Owner        string `json:"owner,omitempty"`
	FirstChapter int    `json:"first_chapter" validate:"gte=0"`
	Significance string `json:"significance,omitempty"`
}

// Codex is the aggregate root of a project's story knowledge.
// It is not safe for concurrent mutation; callers own a single writer.
type Codex struct {
	ProjectName string `json:"project_name"`
	Version     string `json:"version"`
	LastUpdated string `json:"last_updated"`

	Characters map[string]*Character `json:"characters" validate:"dive"`
	Chapters   map[int]*Chapter      `json:"chapters" validate:"dive"`
	Callbacks  map[string]*Callback  `json:"callbacks" validate:"dive"`
	Facts      map[string]*Fact      `json:"facts" validate:"dive"`
	Memories   map[string]*Memory    `json:"memories" validate:"dive"`

	GlobalThemes     []string            `json:"global_themes"`
	RecurringSymbols map[string]string   `json:"recurring_symbols"`
	RecurringMotifs  []string            `json:"recurring_motifs"`
	StoryTimeline    []TimelineEvent     `json:"story_timeline" validate:"dive"`
	Locations        map[string]Location `json:"locations" validate:"dive"`
	Items            map[string]Item     `json:"items" validate:"dive"`

	// Sequence counters for synthesized callback and fact ids.
	CallbackSeq int `json:"callback_seq"`
	FactSeq     int `json:"fact_seq"`
}

// New returns an empty codex for the named project.
func New(projectName string) *Codex {
	cx := &Codex{
		ProjectName: projectName,
		Version:     CurrentVersion,
	}
	cx.normalize()
	return cx
}

// normalize replaces nil maps so mutations never hit a nil map.
func (cx *Codex) normalize() {
	if cx.Characters == nil {
		cx.Characters = map[string]*Character{}
	}
	if cx.Chapters == nil {
		cx.Chapters = map[int]*Chapter{}
	}
	if cx.Callbacks == nil {
		cx.Callbacks = map[string]*Callback{}
	}
	if cx.Facts == nil {
		cx.Facts = map[string]*Fact{}
	}
	if cx.Memories == nil {
		cx.Memories = map[string]*Memory{}
	}
	if cx.RecurringSymbols == nil {
		cx.RecurringSymbols = map[string]string{}
	}
	if cx.Locations == nil {
		cx.Locations = map[string]Location{}
	}
	if cx.Items == nil {
		cx.Items = map[string]Item{}
	}
	for _, ch := range cx.Characters {
		if ch != nil && ch.Relationships == nil {
			ch.Relationships = map[string]Relationship{}
		}
	}
}

// Validate checks every entity against its field constraints.
func (cx *Codex) Validate() error {
	return validateStruct(cx)
}

// --- Characters ---

// AddCharacter inserts or replaces a character keyed by name.
func (cx *Codex) AddCharacter(ch *Character) error {
	if ch == nil {
		return fmt.Errorf("%w: nil character", ErrInvalid)
	}
	if ch.Relationships == nil {
		ch.Relationships = map[string]Relationship{}
	}
	if err := validateStruct(ch); err != nil {
		return fmt.Errorf("character %q: %w", ch.Name, err)
	}
	ch.IsAlive = ch.DeathChapter == nil
	cx.Characters[ch.Name] = ch
	return nil
}

// Character returns the named character.
func (cx *Codex) Character(name string) (*Character, bool) {
	ch, ok := cx.Characters[name]
	return ch, ok && ch != nil
}

func (cx *Codex) mustCharacter(name string) (*Character, error) {
	ch, ok := cx.Character(name)
	if !ok {
		return nil, fmt.Errorf("character %q: %w", name, ErrNotFound)
	}
	return ch, nil
}

// CharacterNames returns every character name in sorted order.
func (cx *Codex) CharacterNames() []string {
	names := make([]string, 0, len(cx.Characters))
	for name := range cx.Characters {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// AddEmotionalMoment records a moment in the character's journey,
// keeping the journey ordered by chapter.
func (cx *Codex) AddEmotionalMoment(name string, m EmotionalMoment) error {
	ch, err := cx.mustCharacter(name)
	if err != nil {
		return err
	}
	if err := validateStruct(m); err != nil {
		return fmt.Errorf("emotional moment for %q: %w", name, err)
	}
	ch.EmotionalJourney = insertByChapter(ch.EmotionalJourney, m, func(e EmotionalMoment) int { return e.Chapter })
	return nil
}

// SetRelationship inserts or replaces the relationship from one character
// to another. Existing evolution history is kept when r carries none.
func (cx *Codex) SetRelationship(from string, r Relationship) error {
	ch, err := cx.mustCharacter(from)
	if err != nil {
		return err
	}
	if err := validateStruct(r); err != nil {
		return fmt.Errorf("relationship %s -> %s: %w", from, r.Target, err)
	}
	if prev, ok := ch.Relationships[r.Target]; ok && len(r.Evolution) == 0 {
		r.Evolution = prev.Evolution
	}
	ch.Relationships[r.Target] = r
	return nil
}

// AddRelationshipState appends a snapshot to the relationship from one
// character to another, creating the relationship record if needed.
func (cx *Codex) AddRelationshipState(from, to string, s RelationshipState) error {
	ch, err := cx.mustCharacter(from)
	if err != nil {
		return err
	}
	if err := validateStruct(s); err != nil {
		return fmt.Errorf("relationship state %s -> %s: %w", from, to, err)
	}
	r, ok := ch.Relationships[to]
	if !ok {
		r = Relationship{Target: to}
	}
	r.Evolution = insertByChapter(r.Evolution, s, func(e RelationshipState) int { return e.Chapter })
	ch.Relationships[to] = r
	return nil
}

// AddArcMilestone records a turning point, ordered by chapter.
func (cx *Codex) AddArcMilestone(name string, m ArcMilestone) error {
	ch, err := cx.mustCharacter(name)
	if err != nil {
		return err
	}
	if err := validateStruct(m); err != nil {
		return fmt.Errorf("arc milestone for %q: %w", name, err)
	}
	ch.ArcMilestones = insertByChapter(ch.ArcMilestones, m, func(e ArcMilestone) int { return e.Chapter })
	return nil
}

// RecordAppearance notes that the character appears in a scene.
// Repeated calls for the same scene are no-ops.
func (cx *Codex) RecordAppearance(name string, chapter, scene int, pov bool) error {
	ch, err := cx.mustCharacter(name)
	if err != nil {
		return err
	}
	if chapter < 1 || scene < 1 {
		return fmt.Errorf("%w: appearance of %q at chapter %d scene %d", ErrInvalid, name, chapter, scene)
	}
	ref := SceneRef{Chapter: chapter, Scene: scene}
	if !slices.Contains(ch.ScenesAppeared, ref) {
		ch.ScenesAppeared = append(ch.ScenesAppeared, ref)
	}
	if pov && !slices.Contains(ch.POVScenes, ref) {
		ch.POVScenes = append(ch.POVScenes, ref)
	}
	return nil
}

// MarkDead sets the chapter in which the character dies.
func (cx *Codex) MarkDead(name string, chapter int) error {
	ch, err := cx.mustCharacter(name)
	if err != nil {
		return err
	}
	if chapter < 1 {
		return fmt.Errorf("%w: death chapter %d for %q", ErrInvalid, chapter, name)
	}
	ch.DeathChapter = &chapter
	ch.IsAlive = false
	return nil
}

// --- Chapters & scenes ---

// AddChapter inserts or replaces a chapter. Scenes are ordered by number
// and stamped with the chapter number and their canonical id.
func (cx *Codex) AddChapter(ch *Chapter) error {
	if ch == nil {
		return fmt.Errorf("%w: nil chapter", ErrInvalid)
	}
	seen := make(map[int]bool, len(ch.Scenes))
	for i := range ch.Scenes {
		sc := &ch.Scenes[i]
		if sc.Chapter == 0 {
			sc.Chapter = ch.Number
		}
		if sc.Chapter != ch.Number {
			return fmt.Errorf("%w: scene %d belongs to chapter %d, not %d", ErrInvalid, sc.Number, sc.Chapter, ch.Number)
		}
		if seen[sc.Number] {
			return fmt.Errorf("%w: duplicate scene number %d in chapter %d", ErrInvalid, sc.Number, ch.Number)
		}
		seen[sc.Number] = true
		sc.ID = SceneID(sc.Chapter, sc.Number)
	}
	if err := validateStruct(ch); err != nil {
		return fmt.Errorf("chapter %d: %w", ch.Number, err)
	}
	slices.SortStableFunc(ch.Scenes, func(a, b Scene) int { return a.Number - b.Number })
	cx.Chapters[ch.Number] = ch
	return nil
}

// AddScene inserts a scene in scene-number order, replacing any scene with
// the same number. The chapter is created when missing.
func (cx *Codex) AddScene(sc Scene) error {
	sc.ID = SceneID(sc.Chapter, sc.Number)
	if err := validateStruct(sc); err != nil {
		return fmt.Errorf("scene %s: %w", sc.ID, err)
	}
	ch, ok := cx.Chapters[sc.Chapter]
	if !ok || ch == nil {
		ch = &Chapter{Number: sc.Chapter}
		cx.Chapters[sc.Chapter] = ch
	}
	i, found := slices.BinarySearchFunc(ch.Scenes, sc.Number, func(s Scene, n int) int { return s.Number - n })
	if found {
		ch.Scenes[i] = sc
		return nil
	}
	ch.Scenes = slices.Insert(ch.Scenes, i, sc)
	return nil
}

// Scene returns the scene at the given chapter and scene number.
func (cx *Codex) Scene(chapter, scene int) (*Scene, bool) {
	ch, ok := cx.Chapters[chapter]
	if !ok || ch == nil {
		return nil, false
	}
	return ch.Scene(scene)
}

// ChapterNumbers returns the recorded chapter numbers in ascending order.
func (cx *Codex) ChapterNumbers() []int {
	nums := make([]int, 0, len(cx.Chapters))
	for n := range cx.Chapters {
		nums = append(nums, n)
	}
	slices.Sort(nums)
	return nums
}

// Scenes returns every scene in manuscript order.
func (cx *Codex) Scenes() []Scene {
	var out []Scene
	for _, n := range cx.ChapterNumbers() {
		if ch := cx.Chapters[n]; ch != nil {
			out = append(out, ch.Scenes...)
		}
	}
	return out
}

// --- Memories ---

// AddMemory stores a memory, assigning a random id when none is set.
// When the owner is a known character the memory is also attached to
// their profile. It returns the memory id.
func (cx *Codex) AddMemory(m Memory) (string, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if err := validateStruct(m); err != nil {
		return "", fmt.Errorf("memory %s: %w", m.ID, err)
	}
	cx.Memories[m.ID] = &m
	if ch, ok := cx.Character(m.Owner); ok {
		i := slices.IndexFunc(ch.Memories, func(e Memory) bool { return e.ID == m.ID })
		if i >= 0 {
			ch.Memories[i] = m
		} else {
			ch.Memories = append(ch.Memories, m)
		}
	}
	return m.ID, nil
}

// --- Callbacks & facts ---

// AddCallback inserts or replaces a callback keyed by id. Without an id
// one is synthesized as cb_<setupChapter>_<n>; synthesized ids never
// collide with existing entries. It returns the callback id.
func (cx *Codex) AddCallback(cb Callback) (string, error) {
	if cb.Status == "" {
		cb.Status = StatusPlanted
	}
	if cb.Importance == "" {
		cb.Importance = ImportanceMedium
	}
	if err := validateStruct(cb); err != nil {
		return "", fmt.Errorf("callback %q: %w", cb.Name, err)
	}
	if cb.ID == "" {
		cb.ID, cx.CallbackSeq = nextID("cb", cb.SetupChapter, cx.CallbackSeq, len(cx.Callbacks), func(id string) bool {
			_, taken := cx.Callbacks[id]
			return taken
		})
	}
	cx.Callbacks[cb.ID] = &cb
	return cb.ID, nil
}

// Callback returns the callback with the given id.
func (cx *Codex) Callback(id string) (*Callback, bool) {
	cb, ok := cx.Callbacks[id]
	return cb, ok && cb != nil
}

// AddFact records an established fact. Without an id one is synthesized
// as fact_<chapter>_<n>. Re-adding an existing id is accepted only when
// the fact text is unchanged. It returns the fact id.
func (cx *Codex) AddFact(f Fact) (string, error) {
	if err := validateStruct(f); err != nil {
		return "", fmt.Errorf("fact: %w", err)
	}
	if f.ID == "" {
		f.ID, cx.FactSeq = nextID("fact", f.EstablishedChapter, cx.FactSeq, len(cx.Facts), func(id string) bool {
			_, taken := cx.Facts[id]
			return taken
		})
	} else if prev, ok := cx.Facts[f.ID]; ok && prev != nil && prev.Fact != f.Fact {
		return "", fmt.Errorf("fact %s: %w", f.ID, ErrFactRewrite)
	}
	cx.Facts[f.ID] = &f
	return f.ID, nil
}

// Fact returns the fact with the given id.
func (cx *Codex) Fact(id string) (*Fact, bool) {
	f, ok := cx.Facts[id]
	return f, ok && f != nil
}

// nextID synthesizes "<prefix>_<chapter>_<n>". The counter starts at the
// registry size so ids line up with data created before counters existed,
// and skips ids already taken. It returns the id and the advanced counter.
func nextID(prefix string, chapter, seq, size int, taken func(string) bool) (string, int) {
	n := max(seq, size)
	for {
		id := fmt.Sprintf("%s_%d_%d", prefix, chapter, n)
		n++
		if !taken(id) {
			return id, n
		}
	}
}

// --- Registries ---

// AddTheme appends a global theme unless already present.
func (cx *Codex) AddTheme(theme string) {
	if theme != "" && !slices.Contains(cx.GlobalThemes, theme) {
		cx.GlobalThemes = append(cx.GlobalThemes, theme)
	}
}

// SetSymbol registers a recurring symbol and its meaning.
func (cx *Codex) SetSymbol(symbol, meaning string) error {
	if symbol == "" {
		return fmt.Errorf("%w: empty symbol", ErrInvalid)
	}
	cx.RecurringSymbols[symbol] = meaning
	return nil
}

// SetLocation inserts or replaces a location keyed by name.
func (cx *Codex) SetLocation(l Location) error {
	if err := validateStruct(l); err != nil {
		return fmt.Errorf("location %q: %w", l.Name, err)
	}
	cx.Locations[l.Name] = l
	return nil
}

// SetItem inserts or replaces an item keyed by name.
func (cx *Codex) SetItem(it Item) error {
	if err := validateStruct(it); err != nil {
		return fmt.Errorf("item %q: %w", it.Name, err)
	}
	cx.Items[it.Name] = it
	return nil
}

// AddTimelineEvent appends an event, keeping the timeline ordered by chapter.
func (cx *Codex) AddTimelineEvent(e TimelineEvent) error {
	if err := validateStruct(e); err != nil {
		return fmt.Errorf("timeline event: %w", err)
	}
	cx.StoryTimeline = insertByChapter(cx.StoryTimeline, e, func(t TimelineEvent) int { return t.Chapter })
	return nil
}

// insertByChapter inserts item after every entry whose chapter is <= its
// own, so equal chapters keep insertion order.
func insertByChapter[T any](list []T, item T, chapter func(T) int) []T {
	c := chapter(item)
	i := len(list)
	for i > 0 && chapter(list[i-1]) > c {
		i--
	}
	return slices.Insert(list, i, item)
}
