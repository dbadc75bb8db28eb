package codex

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func init() {
	// Freeze time for deterministic tests.
	timeNow = func() time.Time {
		return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	}
}

// --- Helpers ---

func intPtr(n int) *int { return &n }

func testCallback(name string, setup int, imp Importance) Callback {
	return Callback{
		Name:             name,
		SetupChapter:     setup,
		SetupDescription: name + " is introduced",
		Importance:       imp,
	}
}

// testCodex builds a small two-chapter project used across tests.
func testCodex(t *testing.T) *Codex {
	t.Helper()
	cx := New("Ashfall")

	mira := NewCharacter("Mira")
	mira.CharacterArc = "From fugitive to leader"
	mira.Psychology.Fears = []string{"being abandoned"}
	mira.CurrentLocation = "the dam"
	mira.Inventory = []string{"compass"}
	for _, ch := range []*Character{mira, NewCharacter("Jonah"), NewCharacter("Caleb")} {
		if err := cx.AddCharacter(ch); err != nil {
			t.Fatalf("AddCharacter(%s): %v", ch.Name, err)
		}
	}

	scenes := []Scene{
		{Chapter: 1, Number: 1, Characters: []string{"Mira", "Jonah"}, EmotionalBeat: "dread"},
		{Chapter: 1, Number: 2, Characters: []string{"Mira"}, EmotionalBeat: "resolve"},
		{Chapter: 2, Number: 1, Characters: []string{"Mira", "Jonah", "Stranger"}},
	}
	for _, s := range scenes {
		if err := cx.AddScene(s); err != nil {
			t.Fatalf("AddScene(%d, %d): %v", s.Chapter, s.Number, err)
		}
	}
	cx.Chapters[2].Title = "The Flood"
	cx.Chapters[2].Act = "Act I"
	return cx
}

// --- Characters ---

func TestAddCharacter_RequiresName(t *testing.T) {
	cx := New("p")
	err := cx.AddCharacter(NewCharacter(""))
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("AddCharacter(\"\") error = %v, want ErrInvalid", err)
	}
}

func TestAddCharacter_RejectsBadArcType(t *testing.T) {
	cx := New("p")
	ch := NewCharacter("Mira")
	ch.ArcType = "sideways"
	if err := cx.AddCharacter(ch); !errors.Is(err, ErrInvalid) {
		t.Errorf("AddCharacter error = %v, want ErrInvalid", err)
	}
}

func TestAddEmotionalMoment_KeepsChapterOrder(t *testing.T) {
	cx := testCodex(t)
	for _, chapter := range []int{5, 2, 9, 2} {
		m := EmotionalMoment{
			Chapter:  chapter,
			Emotions: []EmotionState{{Emotion: EmotionFear, Intensity: 0.5}},
			Context:  fmt.Sprintf("ch%d", chapter),
		}
		if err := cx.AddEmotionalMoment("Mira", m); err != nil {
			t.Fatalf("AddEmotionalMoment: %v", err)
		}
	}

	got := cx.Characters["Mira"].EmotionalJourney
	want := []int{2, 2, 5, 9}
	if len(got) != len(want) {
		t.Fatalf("journey length = %d, want %d", len(got), len(want))
	}
	for i, m := range got {
		if m.Chapter != want[i] {
			t.Errorf("journey[%d].Chapter = %d, want %d", i, m.Chapter, want[i])
		}
	}
}

func TestAddEmotionalMoment_UnknownCharacter(t *testing.T) {
	cx := testCodex(t)
	err := cx.AddEmotionalMoment("Nobody", EmotionalMoment{Chapter: 1})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestAddEmotionalMoment_RejectsIntensityOutOfRange(t *testing.T) {
	cx := testCodex(t)
	m := EmotionalMoment{Chapter: 1, Emotions: []EmotionState{{Emotion: EmotionJoy, Intensity: 1.5}}}
	if err := cx.AddEmotionalMoment("Mira", m); !errors.Is(err, ErrInvalid) {
		t.Errorf("error = %v, want ErrInvalid", err)
	}
}

func TestAddRelationshipState_CreatesRecord(t *testing.T) {
	cx := testCodex(t)
	if err := cx.AddRelationshipState("Mira", "Jonah", RelationshipState{Chapter: 3, Trust: 0.2}); err != nil {
		t.Fatalf("AddRelationshipState: %v", err)
	}
	if err := cx.AddRelationshipState("Mira", "Jonah", RelationshipState{Chapter: 1, Trust: 0.8}); err != nil {
		t.Fatalf("AddRelationshipState: %v", err)
	}

	r, ok := cx.Characters["Mira"].Relationships["Jonah"]
	if !ok {
		t.Fatal("relationship Mira -> Jonah not created")
	}
	if len(r.Evolution) != 2 || r.Evolution[0].Chapter != 1 {
		t.Errorf("evolution = %+v, want chapter 1 first", r.Evolution)
	}
}

func TestSetRelationship_KeepsEvolution(t *testing.T) {
	cx := testCodex(t)
	_ = cx.AddRelationshipState("Mira", "Jonah", RelationshipState{Chapter: 1, Trust: 0.5})

	err := cx.SetRelationship("Mira", Relationship{Target: "Jonah", Type: RelFriend, Dynamics: "wary"})
	if err != nil {
		t.Fatalf("SetRelationship: %v", err)
	}
	r := cx.Characters["Mira"].Relationships["Jonah"]
	if r.Type != RelFriend || len(r.Evolution) != 1 {
		t.Errorf("relationship = %+v, want friend with 1 state", r)
	}
}

func TestRecordAppearance_Idempotent(t *testing.T) {
	cx := testCodex(t)
	for range 3 {
		if err := cx.RecordAppearance("Jonah", 2, 1, true); err != nil {
			t.Fatalf("RecordAppearance: %v", err)
		}
	}
	ch := cx.Characters["Jonah"]
	if len(ch.ScenesAppeared) != 1 || len(ch.POVScenes) != 1 {
		t.Errorf("appeared = %v, pov = %v, want one each", ch.ScenesAppeared, ch.POVScenes)
	}
}

func TestMarkDead(t *testing.T) {
	cx := testCodex(t)
	if err := cx.MarkDead("Jonah", 4); err != nil {
		t.Fatalf("MarkDead: %v", err)
	}
	ch := cx.Characters["Jonah"]
	if ch.DeathChapter == nil || *ch.DeathChapter != 4 || ch.IsAlive {
		t.Errorf("Jonah death = %v alive = %v, want 4 false", ch.DeathChapter, ch.IsAlive)
	}
	if err := cx.MarkDead("Jonah", 0); !errors.Is(err, ErrInvalid) {
		t.Errorf("MarkDead(0) error = %v, want ErrInvalid", err)
	}
}

// --- Scenes ---

func TestAddScene_OrdersAndReplaces(t *testing.T) {
	cx := New("p")
	for _, n := range []int{3, 1, 2} {
		if err := cx.AddScene(Scene{Chapter: 1, Number: n, Title: fmt.Sprintf("v1-%d", n)}); err != nil {
			t.Fatalf("AddScene: %v", err)
		}
	}
	if err := cx.AddScene(Scene{Chapter: 1, Number: 2, Title: "v2"}); err != nil {
		t.Fatalf("AddScene: %v", err)
	}

	scenes := cx.Chapters[1].Scenes
	if len(scenes) != 3 {
		t.Fatalf("scene count = %d, want 3", len(scenes))
	}
	for i, s := range scenes {
		if s.Number != i+1 {
			t.Errorf("scenes[%d].Number = %d, want %d", i, s.Number, i+1)
		}
	}
	if scenes[1].Title != "v2" {
		t.Errorf("scene 2 title = %q, want v2", scenes[1].Title)
	}
	if scenes[0].ID != "ch1_sc1" {
		t.Errorf("scene id = %q, want ch1_sc1", scenes[0].ID)
	}
}

func TestAddChapter_RejectsDuplicateScenes(t *testing.T) {
	cx := New("p")
	ch := &Chapter{Number: 1, Scenes: []Scene{{Number: 1}, {Number: 1}}}
	if err := cx.AddChapter(ch); !errors.Is(err, ErrInvalid) {
		t.Errorf("AddChapter error = %v, want ErrInvalid", err)
	}
}

func TestAddChapter_SortsScenes(t *testing.T) {
	cx := New("p")
	ch := &Chapter{Number: 4, Scenes: []Scene{{Number: 2}, {Number: 1}}}
	if err := cx.AddChapter(ch); err != nil {
		t.Fatalf("AddChapter: %v", err)
	}
	got := cx.Chapters[4].Scenes
	if got[0].Number != 1 || got[0].Chapter != 4 || got[0].ID != "ch4_sc1" {
		t.Errorf("first scene = %+v, want ch4_sc1", got[0])
	}
}

// --- Memories ---

func TestAddMemory_AssignsIDAndAttaches(t *testing.T) {
	cx := testCodex(t)
	id, err := cx.AddMemory(Memory{Owner: "Mira", Content: "the fire", IntroducedChapter: 1})
	if err != nil {
		t.Fatalf("AddMemory: %v", err)
	}
	if id == "" {
		t.Fatal("AddMemory returned empty id")
	}
	if _, ok := cx.Memories[id]; !ok {
		t.Errorf("memory %s not in registry", id)
	}
	mems := cx.Characters["Mira"].Memories
	if len(mems) != 1 || mems[0].ID != id {
		t.Errorf("Mira memories = %+v, want the new memory", mems)
	}
}

// --- Callbacks & facts ---

func TestAddCallback_Defaults(t *testing.T) {
	cx := New("p")
	id, err := cx.AddCallback(testCallback("the key", 2, ""))
	if err != nil {
		t.Fatalf("AddCallback: %v", err)
	}
	if id != "cb_2_0" {
		t.Errorf("id = %q, want cb_2_0", id)
	}
	cb := cx.Callbacks[id]
	if cb.Status != StatusPlanted || cb.Importance != ImportanceMedium {
		t.Errorf("status/importance = %s/%s, want planted/medium", cb.Status, cb.Importance)
	}
}

func TestAddCallback_ImplicitIDsNeverOverwrite(t *testing.T) {
	cx := New("p")
	// An explicit id that an implicit one would collide with.
	if _, err := cx.AddCallback(Callback{ID: "cb_1_1", Name: "x", SetupChapter: 1, SetupDescription: "x"}); err != nil {
		t.Fatalf("AddCallback: %v", err)
	}

	const n = 5
	seen := map[string]bool{}
	for i := range n {
		id, err := cx.AddCallback(testCallback(fmt.Sprintf("cb%d", i), 1, ImportanceLow))
		if err != nil {
			t.Fatalf("AddCallback: %v", err)
		}
		if seen[id] || id == "cb_1_1" {
			t.Errorf("implicit id %q reused", id)
		}
		seen[id] = true
	}
	if got := len(cx.Callbacks); got != n+1 {
		t.Errorf("registry size = %d, want %d", got, n+1)
	}
	if cx.Callbacks["cb_1_1"].Name != "x" {
		t.Error("explicit callback was overwritten")
	}
}

func TestAddCallback_UpsertByExplicitID(t *testing.T) {
	cx := New("p")
	cb := testCallback("gun", 1, ImportanceHigh)
	cb.ID = "gun"
	_, _ = cx.AddCallback(cb)
	cb.Notes = "on the mantel"
	_, _ = cx.AddCallback(cb)
	if len(cx.Callbacks) != 1 || cx.Callbacks["gun"].Notes != "on the mantel" {
		t.Errorf("callbacks = %+v, want single updated entry", cx.Callbacks)
	}
}

func TestAddCallback_RejectsBadImportance(t *testing.T) {
	cx := New("p")
	_, err := cx.AddCallback(testCallback("gun", 1, "urgent"))
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("error = %v, want ErrInvalid", err)
	}
}

func TestAddFact_ImplicitIDsGrowRegistry(t *testing.T) {
	cx := New("p")
	const n = 4
	for i := range n {
		if _, err := cx.AddFact(Fact{Fact: fmt.Sprintf("fact %d", i), EstablishedChapter: 3}); err != nil {
			t.Fatalf("AddFact: %v", err)
		}
	}
	if len(cx.Facts) != n {
		t.Errorf("fact count = %d, want %d", len(cx.Facts), n)
	}
	if _, ok := cx.Facts["fact_3_0"]; !ok {
		t.Error("fact_3_0 missing")
	}
}

func TestAddFact_RewriteRejected(t *testing.T) {
	cx := New("p")
	id, _ := cx.AddFact(Fact{Fact: "The river runs north.", EstablishedChapter: 1})

	if _, err := cx.AddFact(Fact{ID: id, Fact: "The river runs south.", EstablishedChapter: 1}); !errors.Is(err, ErrFactRewrite) {
		t.Errorf("rewrite error = %v, want ErrFactRewrite", err)
	}
	if _, err := cx.AddFact(Fact{ID: id, Fact: "The river runs north.", EstablishedChapter: 1, Verified: true}); err != nil {
		t.Errorf("same-text re-add error = %v, want nil", err)
	}
}

func TestNextID_StartsAtRegistrySize(t *testing.T) {
	taken := map[string]bool{"cb_1_0": true, "cb_1_1": true}
	id, seq := nextID("cb", 7, 0, len(taken), func(id string) bool { return taken[id] })
	if id != "cb_7_2" || seq != 3 {
		t.Errorf("nextID = %q, %d, want cb_7_2, 3", id, seq)
	}
}

// --- Registries ---

func TestRegistries(t *testing.T) {
	cx := New("p")
	if err := cx.SetSymbol("", "nothing"); !errors.Is(err, ErrInvalid) {
		t.Errorf("SetSymbol(\"\") error = %v, want ErrInvalid", err)
	}
	_ = cx.SetSymbol("red thread", "fate")
	_ = cx.SetLocation(Location{Name: "the dam", FirstChapter: 1})
	_ = cx.SetItem(Item{Name: "compass", Owner: "Mira"})
	cx.AddTheme("survival")
	cx.AddTheme("survival")

	if cx.RecurringSymbols["red thread"] != "fate" {
		t.Error("symbol not registered")
	}
	if _, ok := cx.Locations["the dam"]; !ok {
		t.Error("location not registered")
	}
	if cx.Items["compass"].Owner != "Mira" {
		t.Error("item not registered")
	}
	if len(cx.GlobalThemes) != 1 {
		t.Errorf("themes = %v, want one entry", cx.GlobalThemes)
	}
}
