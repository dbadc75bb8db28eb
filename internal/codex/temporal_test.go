package codex

import (
	"testing"
)

func TestCharacterStateAt_Unknown(t *testing.T) {
	cx := testCodex(t)
	st, ok := cx.CharacterStateAt("Nobody", 3)
	if ok {
		t.Error("CharacterStateAt(Nobody) ok = true, want false")
	}
	if st.Name != "" || st.Relationships != nil {
		t.Errorf("state = %+v, want zero value", st)
	}
}

func TestCharacterStateAt_TemporalFilters(t *testing.T) {
	cx := testCodex(t)
	_ = cx.AddEmotionalMoment("Mira", EmotionalMoment{Chapter: 2, Context: "flood"})
	_ = cx.AddEmotionalMoment("Mira", EmotionalMoment{Chapter: 3, Context: "after"})
	_, _ = cx.AddMemory(Memory{Owner: "Mira", Content: "childhood", IntroducedChapter: 1})
	_, _ = cx.AddMemory(Memory{Owner: "Mira", Content: "betrayal", IntroducedChapter: 5})
	_ = cx.AddArcMilestone("Mira", ArcMilestone{Chapter: 2, Description: "takes charge"})
	_ = cx.AddArcMilestone("Mira", ArcMilestone{Chapter: 6, Description: "lets go"})
	_ = cx.SetRelationship("Mira", Relationship{Target: "Jonah", Type: RelAlly})

	st, ok := cx.CharacterStateAt("Mira", 2)
	if !ok {
		t.Fatal("CharacterStateAt(Mira) ok = false")
	}
	if len(st.EmotionalState) != 1 || st.EmotionalState[0].Context != "flood" {
		t.Errorf("emotional state = %+v, want only chapter 2", st.EmotionalState)
	}
	if len(st.MemoriesKnown) != 1 || st.MemoriesKnown[0].Content != "childhood" {
		t.Errorf("memories = %+v, want only childhood", st.MemoriesKnown)
	}
	if len(st.ArcProgress) != 1 {
		t.Errorf("arc progress = %+v, want 1 milestone", st.ArcProgress)
	}
	if _, ok := st.Relationships["Jonah"]; !ok {
		t.Error("relationships missing Jonah")
	}
	if st.Location != "the dam" || len(st.Inventory) != 1 {
		t.Errorf("location/inventory = %q/%v", st.Location, st.Inventory)
	}
}

func TestCharacterStateAt_Liveness(t *testing.T) {
	cx := testCodex(t)
	_ = cx.MarkDead("Jonah", 5)

	for chapter := 1; chapter <= 8; chapter++ {
		st, _ := cx.CharacterStateAt("Jonah", chapter)
		wantAlive := chapter < 5
		if st.Alive != wantAlive {
			t.Errorf("Jonah alive at %d = %v, want %v", chapter, st.Alive, wantAlive)
		}
		st, _ = cx.CharacterStateAt("Mira", chapter)
		if !st.Alive {
			t.Errorf("Mira alive at %d = false, want true", chapter)
		}
	}
}

func TestCharacterStateAt_LivenessIgnoresStaleFlag(t *testing.T) {
	cx := testCodex(t)
	ch := cx.Characters["Caleb"]
	ch.IsAlive = false // no death chapter: the flag alone does not kill
	st, _ := cx.CharacterStateAt("Caleb", 10)
	if !st.Alive {
		t.Error("Caleb alive = false, want true without a death chapter")
	}
}

func TestRelationshipAt(t *testing.T) {
	cx := testCodex(t)
	_ = cx.AddRelationshipState("Mira", "Jonah", RelationshipState{Chapter: 1, Trust: 0.9})
	_ = cx.AddRelationshipState("Mira", "Jonah", RelationshipState{Chapter: 4, Trust: 0.1})

	tests := []struct {
		chapter   int
		wantOK    bool
		wantTrust float64
	}{
		{0, false, 0},
		{1, true, 0.9},
		{3, true, 0.9},
		{4, true, 0.1},
		{12, true, 0.1},
	}
	for _, tt := range tests {
		got, ok := cx.RelationshipAt("Mira", "Jonah", tt.chapter)
		if ok != tt.wantOK || got.Trust != tt.wantTrust {
			t.Errorf("RelationshipAt(ch %d) = %v, %v, want %v, %v", tt.chapter, got.Trust, ok, tt.wantTrust, tt.wantOK)
		}
	}
	if _, ok := cx.RelationshipAt("Mira", "Caleb", 5); ok {
		t.Error("RelationshipAt(Mira, Caleb) ok = true, want false")
	}
}

func TestPendingCallbacks_Order(t *testing.T) {
	cx := New("p")
	_, _ = cx.AddCallback(Callback{ID: "b", Name: "b", SetupChapter: 3, SetupDescription: "b"})
	_, _ = cx.AddCallback(Callback{ID: "a", Name: "a", SetupChapter: 3, SetupDescription: "a"})
	_, _ = cx.AddCallback(Callback{ID: "z", Name: "z", SetupChapter: 1, SetupDescription: "z"})
	_, _ = cx.AddCallback(Callback{ID: "done", Name: "d", SetupChapter: 1, SetupDescription: "d", Status: StatusPaidOff})

	got := cx.PendingCallbacks()
	want := []string{"z", "a", "b"}
	if len(got) != len(want) {
		t.Fatalf("pending = %d, want %d", len(got), len(want))
	}
	for i, cb := range got {
		if cb.ID != want[i] {
			t.Errorf("pending[%d] = %s, want %s", i, cb.ID, want[i])
		}
	}
}

func TestFactsAtOrBefore(t *testing.T) {
	cx := New("p")
	_, _ = cx.AddFact(Fact{Fact: "one", EstablishedChapter: 1})
	_, _ = cx.AddFact(Fact{Fact: "three", EstablishedChapter: 3})
	_, _ = cx.AddFact(Fact{Fact: "five", EstablishedChapter: 5})

	if got := len(cx.FactsAtOrBefore(3)); got != 2 {
		t.Errorf("FactsAtOrBefore(3) = %d facts, want 2", got)
	}
	if got := len(cx.FactsAtOrBefore(0)); got != 0 {
		t.Errorf("FactsAtOrBefore(0) = %d facts, want 0", got)
	}
}

func TestSceneContext_Missing(t *testing.T) {
	cx := testCodex(t)
	tests := []struct {
		name    string
		chapter int
		scene   int
	}{
		{"unknown chapter", 9, 1},
		{"unknown scene", 1, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := cx.SceneContext(tt.chapter, tt.scene)
			if !sc.Empty() {
				t.Errorf("SceneContext(%d, %d) not empty: %+v", tt.chapter, tt.scene, sc)
			}
		})
	}
}

func TestSceneContext_Assembles(t *testing.T) {
	cx := testCodex(t)
	cx.AddTheme("survival")
	_ = cx.SetSymbol("red thread", "fate")
	_, _ = cx.AddFact(Fact{Fact: "The dam is cracked.", EstablishedChapter: 1})
	_, _ = cx.AddFact(Fact{Fact: "Jonah lies.", EstablishedChapter: 3})

	sc := cx.SceneContext(2, 1)
	if sc.Empty() {
		t.Fatal("SceneContext(2, 1) empty")
	}
	if sc.Chapter.Title != "The Flood" || sc.Chapter.Act != "Act I" {
		t.Errorf("chapter info = %+v", sc.Chapter)
	}
	if len(sc.Characters) != 2 {
		t.Errorf("characters = %d, want 2", len(sc.Characters))
	}
	if len(sc.UnknownCharacters) != 1 || sc.UnknownCharacters[0] != "Stranger" {
		t.Errorf("unknown = %v, want [Stranger]", sc.UnknownCharacters)
	}
	if len(sc.EstablishedFacts) != 1 {
		t.Errorf("facts = %d, want 1", len(sc.EstablishedFacts))
	}
	if len(sc.Themes) != 1 || sc.Symbols["red thread"] != "fate" {
		t.Errorf("themes/symbols = %v/%v", sc.Themes, sc.Symbols)
	}
}

func TestSceneContext_ExcludesCallbacksNotYetPlanted(t *testing.T) {
	cx := testCodex(t)
	for ch := 1; ch <= 3; ch++ {
		_ = cx.AddScene(Scene{Chapter: ch, Number: 5})
		_, _ = cx.AddCallback(testCallback("setup", ch, ImportanceHigh))
	}

	for ch := 1; ch <= 3; ch++ {
		sc := cx.SceneContext(ch, 5)
		for _, cb := range sc.PendingCallbacks {
			if cb.SetupChapter >= ch {
				t.Errorf("chapter %d context includes callback %s set up in %d", ch, cb.ID, cb.SetupChapter)
			}
		}
		if got := len(sc.PendingCallbacks); got != ch-1 {
			t.Errorf("chapter %d pending = %d, want %d", ch, got, ch-1)
		}
	}
}
