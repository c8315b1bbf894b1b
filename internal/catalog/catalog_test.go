package catalog

import (
	"testing"
	"writequest_app/internal/model"
)

func TestDefaultUnlocked(t *testing.T) {
	ids := DefaultUnlocked()
	if len(ids) == 0 {
		t.Fatal("expected at least one level without prerequisites")
	}
	for _, id := range ids {
		level, ok := Get(id)
		if !ok {
			t.Fatalf("DefaultUnlocked returned unknown level %q", id)
		}
		if len(level.Prerequisites) != 0 {
			t.Errorf("level %q has prerequisites but is default-unlocked", id)
		}
	}
}

func TestPrerequisitesReferenceEarlierLevels(t *testing.T) {
	seen := map[string]bool{}
	for _, level := range Levels() {
		for _, prereq := range level.Prerequisites {
			if !seen[prereq] {
				t.Errorf("level %q requires %q which is not declared earlier", level.ID, prereq)
			}
		}
		seen[level.ID] = true
	}
}

func TestGet(t *testing.T) {
	level, ok := Get("mechanics-2")
	if !ok {
		t.Fatal("mechanics-2 should exist")
	}
	if level.Type != model.LevelTypeMechanics {
		t.Errorf("mechanics-2 type = %q, want mechanics", level.Type)
	}
	if len(level.Prerequisites) != 1 || level.Prerequisites[0] != "mechanics-1" {
		t.Errorf("mechanics-2 prerequisites = %v, want [mechanics-1]", level.Prerequisites)
	}

	if _, ok := Get("no-such-level"); ok {
		t.Error("expected lookup miss for unknown id")
	}
}

func TestCountByTypeCoversCatalog(t *testing.T) {
	total := CountByType(model.LevelTypeMechanics) +
		CountByType(model.LevelTypeSequencing) +
		CountByType(model.LevelTypeVoice)
	if total != len(Levels()) {
		t.Errorf("stage counts sum to %d, catalog has %d levels", total, len(Levels()))
	}
}
