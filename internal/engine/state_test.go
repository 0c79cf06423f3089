package engine

import (
	"testing"

	"github.com/LunaTecno/DeddysNightJuego/server/internal/config"
	"github.com/LunaTecno/DeddysNightJuego/server/internal/domain/animatronic"
)

func TestMenuStateIsIdle(t *testing.T) {
	cfg := config.Default()
	s := MenuState(cfg)

	if s.Phase != PhaseMenu {
		t.Errorf("expected MENU, got %s", s.Phase)
	}
	if s.BossMode {
		t.Error("menu state must not be boss mode")
	}
	for _, a := range s.Actors {
		if a.Active {
			t.Errorf("%s active on the menu", a.Identity)
		}
	}
	if s.Power != cfg.Power.Full {
		t.Errorf("menu shows %f%% power", s.Power)
	}
}

func TestDoorClosedLookup(t *testing.T) {
	cfg := config.Default()
	s := NewNightState(1, cfg)
	s.LeftDoorClosed = true

	if !s.DoorClosed(animatronic.LeftDoor) {
		t.Error("left door should read closed")
	}
	if s.DoorClosed(animatronic.RightDoor) {
		t.Error("right door should read open")
	}
	if s.DoorClosed(animatronic.Hallway) {
		t.Error("only doors can be closed")
	}
}

func TestOccupantsAt(t *testing.T) {
	cfg := config.Default()
	s := NewNightState(4, cfg)
	setActor(&s, animatronic.Bonzo, func(a *animatronic.Animatronic) {
		a.Location = animatronic.Hallway
	})
	setActor(&s, animatronic.Cheeky, func(a *animatronic.Animatronic) {
		a.Location = animatronic.Hallway
	})

	got := s.OccupantsAt(animatronic.Hallway)
	if len(got) != 2 {
		t.Fatalf("expected Bonzo and Cheeky in the hallway, got %v", got)
	}
	if rest := s.OccupantsAt(animatronic.LeftDoor); rest != nil {
		t.Errorf("nobody should be at the left door, got %v", rest)
	}

	// Inactive actors never show on camera.
	s = NewNightState(1, cfg)
	if got := s.OccupantsAt(animatronic.Stage); len(got) != 2 {
		t.Errorf("night 1 stage feed should show the two sidekicks, got %v", got)
	}
}

func TestSnapshotIsAValueCopy(t *testing.T) {
	cfg := config.Default()
	s := NewNightState(1, cfg)
	snap := s

	setActor(&s, animatronic.Bonzo, func(a *animatronic.Animatronic) {
		a.Location = animatronic.Hallway
	})

	if actorByID(snap, animatronic.Bonzo).Location != animatronic.Stage {
		t.Error("snapshot aliased the live actor array")
	}
}
