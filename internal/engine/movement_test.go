package engine

import (
	"testing"

	"github.com/LunaTecno/DeddysNightJuego/server/internal/config"
	"github.com/LunaTecno/DeddysNightJuego/server/internal/domain/animatronic"
)

// fixedRand always returns the same draws, so a test can script the hallway
// branch and the boss lunge.
type fixedRand struct {
	f float64
	n int
}

func (r fixedRand) Float64() float64 { return r.f }
func (r fixedRand) Intn(n int) int   { return r.n % n }

// neverJump makes the probability draw always fail and the coin pick left.
var neverJump = fixedRand{f: 0.99, n: 0}

func actorByID(s NightState, id animatronic.Identity) animatronic.Animatronic {
	for _, a := range s.Actors {
		if a.Identity == id {
			return a
		}
	}
	return animatronic.Animatronic{}
}

func setActor(s *NightState, id animatronic.Identity, mut func(*animatronic.Animatronic)) {
	for i := range s.Actors {
		if s.Actors[i].Identity == id {
			mut(&s.Actors[i])
			return
		}
	}
}

func TestWalkReachesDoorOnSchedule(t *testing.T) {
	cfg := config.Default()
	s := NewNightState(1, cfg)

	steps := cfg.Movement.StageDwell + cfg.Movement.SideHallDwell + cfg.Movement.HallwayDwell
	for i := 0; i < steps; i++ {
		s, _ = AdvanceActors(s, cfg, neverJump)
		if s.Phase != PhasePlaying {
			t.Fatalf("night ended early at step %d: %s", i, s.Phase)
		}
	}

	bonzo := actorByID(s, animatronic.Bonzo)
	if bonzo.Location != animatronic.LeftDoor {
		t.Fatalf("expected Bonzo at the left door after %d ticks, got %s", steps, bonzo.Location)
	}
	if !bonzo.AtDoor {
		t.Error("at_door not set on arrival")
	}
	if bonzo.DwellTicks != 0 || bonzo.StallTicks != 0 {
		t.Errorf("counters not reset on arrival: dwell=%d stall=%d", bonzo.DwellTicks, bonzo.StallTicks)
	}

	// Deddy sat the night out.
	if deddy := actorByID(s, animatronic.Deddy); deddy.Location != animatronic.Stage || deddy.DwellTicks != 0 {
		t.Errorf("inactive Deddy moved: %+v", deddy)
	}
}

func TestHallwayBranchPicksRight(t *testing.T) {
	cfg := config.Default()
	s := NewNightState(1, cfg)
	setActor(&s, animatronic.Bonzo, func(a *animatronic.Animatronic) {
		a.Location = animatronic.Hallway
		a.DwellTicks = cfg.Movement.HallwayDwell - 1
	})

	s, _ = AdvanceActors(s, cfg, fixedRand{f: 0.99, n: 1})

	if got := actorByID(s, animatronic.Bonzo).Location; got != animatronic.RightDoor {
		t.Errorf("expected right door, got %s", got)
	}
}

func TestClosedTargetDoorSendsHome(t *testing.T) {
	cfg := config.Default()
	s := NewNightState(1, cfg)
	s.LeftDoorClosed = true
	setActor(&s, animatronic.Bonzo, func(a *animatronic.Animatronic) {
		a.Location = animatronic.Hallway
		a.DwellTicks = cfg.Movement.HallwayDwell - 1
	})

	s, occ := AdvanceActors(s, cfg, neverJump) // coin picks the closed left door

	bonzo := actorByID(s, animatronic.Bonzo)
	if bonzo.Location != animatronic.Stage {
		t.Fatalf("expected reset to stage, got %s", bonzo.Location)
	}
	if bonzo.DwellTicks != 0 || bonzo.StallTicks != 0 || bonzo.AtDoor {
		t.Errorf("counters not wiped on stage reset: %+v", bonzo)
	}
	if !hasOccurrence(occ, OccStageReset, animatronic.Bonzo) {
		t.Error("missing stage reset occurrence")
	}
}

func TestDoorRepel(t *testing.T) {
	cfg := config.Default()
	s := NewNightState(4, cfg)
	s.LeftDoorClosed = true
	setActor(&s, animatronic.Deddy, func(a *animatronic.Animatronic) {
		a.Location = animatronic.LeftDoor
		a.AtDoor = true
		a.StallTicks = 40
		a.AlertPlayed = true
	})

	s, occ := AdvanceActors(s, cfg, neverJump)

	deddy := actorByID(s, animatronic.Deddy)
	if deddy.Location != animatronic.Stage || deddy.AtDoor {
		t.Fatalf("expected repel to stage, got %+v", deddy)
	}
	if deddy.StallTicks != 0 || deddy.DwellTicks != 0 {
		t.Error("repel must zero the counters")
	}
	if deddy.AlertPlayed {
		t.Error("repel must re-arm the one-shot alert")
	}
	if s.Phase != PhasePlaying {
		t.Errorf("repel is not a loss, got %s", s.Phase)
	}
	if !hasOccurrence(occ, OccRepelled, animatronic.Deddy) {
		t.Error("missing repel occurrence")
	}
}

func TestStallThresholdIsALoss(t *testing.T) {
	cfg := config.Default()
	s := NewNightState(1, cfg)
	setActor(&s, animatronic.Bonzo, func(a *animatronic.Animatronic) {
		a.Location = animatronic.LeftDoor
		a.AtDoor = true
		a.StallTicks = cfg.Movement.StallLimit - 1
	})

	s, _ = AdvanceActors(s, cfg, neverJump)

	if got := actorByID(s, animatronic.Bonzo).StallTicks; got != cfg.Movement.StallLimit {
		t.Errorf("expected stall %d, got %d", cfg.Movement.StallLimit, got)
	}
	if s.Phase != PhaseGameOver {
		t.Errorf("expected GAME_OVER on stall threshold, got %s", s.Phase)
	}
	// The rest of the cast still got its update this tick.
	if got := actorByID(s, animatronic.Cheeky).DwellTicks; got != 1 {
		t.Errorf("other actors must still update on a breach tick, dwell=%d", got)
	}
}

func TestStallBelowThresholdIsNot(t *testing.T) {
	cfg := config.Default()
	s := NewNightState(1, cfg)
	setActor(&s, animatronic.Bonzo, func(a *animatronic.Animatronic) {
		a.Location = animatronic.LeftDoor
		a.AtDoor = true
		a.StallTicks = cfg.Movement.StallLimit - 2
	})

	s, _ = AdvanceActors(s, cfg, neverJump)

	if s.Phase != PhasePlaying {
		t.Errorf("stall below the limit must not end the night, got %s", s.Phase)
	}
}

func TestDeddyAlertFiresOnce(t *testing.T) {
	cfg := config.Default()
	s := NewNightState(4, cfg)
	setActor(&s, animatronic.Deddy, func(a *animatronic.Animatronic) {
		a.DwellTicks = cfg.Movement.StageDwell - 1
	})

	s, occ := AdvanceActors(s, cfg, neverJump)

	if !hasOccurrence(occ, OccAlert, animatronic.Deddy) {
		t.Fatal("expected the one-shot alert when Deddy leaves the stage")
	}
	if !actorByID(s, animatronic.Deddy).AlertPlayed {
		t.Error("alert guard not set")
	}

	// Put him back on the stage without the repel path: no second alert.
	setActor(&s, animatronic.Deddy, func(a *animatronic.Animatronic) {
		a.Location = animatronic.Stage
		a.AtDoor = false
		a.DwellTicks = cfg.Movement.StageDwell - 1
	})
	_, occ = AdvanceActors(s, cfg, neverJump)
	if hasOccurrence(occ, OccAlert, animatronic.Deddy) {
		t.Error("alert fired twice in one night")
	}

	// Bonzo leaving the stage never cries.
	s2 := NewNightState(1, cfg)
	setActor(&s2, animatronic.Bonzo, func(a *animatronic.Animatronic) {
		a.DwellTicks = cfg.Movement.StageDwell - 1
	})
	_, occ = AdvanceActors(s2, cfg, neverJump)
	if hasOccurrence(occ, OccAlert, animatronic.Bonzo) {
		t.Error("sidekicks must not trigger the Deddy alert")
	}
}

func TestBossJump(t *testing.T) {
	cfg := config.Default()
	s := NewNightState(5, cfg)

	// Probability draw of 0 always fires; coin picks the right door.
	s, occ := AdvanceActors(s, cfg, fixedRand{f: 0, n: 1})

	deddy := actorByID(s, animatronic.Deddy)
	if deddy.Location != animatronic.RightDoor || !deddy.AtDoor {
		t.Fatalf("expected a lunge to the right door, got %+v", deddy)
	}
	if deddy.DwellTicks != 0 || deddy.StallTicks != 0 {
		t.Error("lunge must reset the counters")
	}
	if !hasOccurrence(occ, OccJumped, animatronic.Deddy) {
		t.Error("missing jump occurrence")
	}
	if !hasOccurrence(occ, OccAlert, animatronic.Deddy) {
		t.Error("a lunge off the stage still counts as leaving it")
	}
}

func TestBossJumpSeededToFail(t *testing.T) {
	// With the probability draw always failing, the final night moves
	// exactly like the plain dwell rule.
	cfg := config.Default()
	boss := NewNightState(5, cfg)

	for i := 0; i < cfg.Movement.StageDwell; i++ {
		boss, _ = AdvanceActors(boss, cfg, neverJump)
	}

	deddy := actorByID(boss, animatronic.Deddy)
	if deddy.Location != animatronic.SideHall {
		t.Errorf("expected the normal first hop, got %s", deddy.Location)
	}
}

func TestBossJumpOnlyWhenDwellRuleIdle(t *testing.T) {
	cfg := config.Default()
	s := NewNightState(5, cfg)
	setActor(&s, animatronic.Deddy, func(a *animatronic.Animatronic) {
		a.DwellTicks = cfg.Movement.StageDwell - 1
	})

	// Draw of 0 would fire a jump, but the dwell rule fires first.
	s, occ := AdvanceActors(s, cfg, fixedRand{f: 0, n: 1})

	if actorByID(s, animatronic.Deddy).Location != animatronic.SideHall {
		t.Error("dwell-threshold move must preempt the lunge")
	}
	if hasOccurrence(occ, OccJumped, animatronic.Deddy) {
		t.Error("jump evaluated on a tick the dwell rule fired")
	}
}

func TestAtDoorFlagMatchesLocationEverywhere(t *testing.T) {
	// Walk a whole night with a pseudo-random source and check the
	// structural invariant after every tick.
	cfg := config.Default()
	s := NewNightState(4, cfg)
	rng := fixedRand{f: 0.6, n: 1}

	for i := 0; i < cfg.Night.DurationTicks; i++ {
		s, _ = AdvanceActors(s, cfg, rng)
		for _, a := range s.Actors {
			if a.AtDoor != a.Location.IsDoor() {
				t.Fatalf("tick %d: %s at_door=%v at %s", i, a.Identity, a.AtDoor, a.Location)
			}
		}
		if s.Phase != PhasePlaying {
			break
		}
	}
}

func TestMovementLeavesClockAlone(t *testing.T) {
	cfg := config.Default()
	s := NewNightState(1, cfg)
	s.Elapsed = 42
	s.Power = 73.5

	s, _ = AdvanceActors(s, cfg, neverJump)

	if s.Elapsed != 42 || s.Power != 73.5 {
		t.Error("movement tick touched time or power")
	}
}

func hasOccurrence(occ []Occurrence, kind OccurrenceKind, actor animatronic.Identity) bool {
	for _, o := range occ {
		if o.Kind == kind && o.Actor == actor {
			return true
		}
	}
	return false
}
