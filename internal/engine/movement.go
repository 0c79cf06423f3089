package engine

import (
	"github.com/LunaTecno/DeddysNightJuego/server/internal/config"
	"github.com/LunaTecno/DeddysNightJuego/server/internal/domain/animatronic"
)

// Rand is the random source the scheduler draws from. *math/rand.Rand
// satisfies it; tests inject scripted sources for determinism.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// OccurrenceKind tags a side effect the scheduler discovered while updating
// the actors. The Director translates occurrences into log events.
type OccurrenceKind int

const (
	OccMoved OccurrenceKind = iota
	OccRepelled                 // door slammed in its face, sent home
	OccStageReset               // lodged against a closed door, sent home
	OccJumped                   // boss-mode lunge straight to a door
	OccAlert                    // Deddy left the stage for the first time
)

// Occurrence is one scheduler side effect.
type Occurrence struct {
	Kind  OccurrenceKind
	Actor animatronic.Identity
	From  animatronic.Location
	To    animatronic.Location
}

// AdvanceActors is the movement tick: every active animatronic is recomputed
// from the previous snapshot, in actor order, then the door-breach loss check
// runs over the finished array. It never touches time or power.
//
// Pure aside from draws on rng: a scripted source replays a night exactly.
func AdvanceActors(s NightState, cfg *config.Config, rng Rand) (NightState, []Occurrence) {
	if s.Phase != PhasePlaying {
		return s, nil
	}

	var occ []Occurrence

	for i := range s.Actors {
		a := &s.Actors[i]
		if !a.Active {
			continue
		}

		if a.AtDoor {
			if s.DoorClosed(a.Location) {
				// Repelled: back to the stage with every counter
				// wiped, alert guard included.
				occ = append(occ, Occurrence{Kind: OccRepelled, Actor: a.Identity, From: a.Location, To: animatronic.Stage})
				a.ResetToStage()
				continue
			}
			a.StallTicks++
			continue
		}

		a.DwellTicks++
		if a.DwellTicks >= dwellThreshold(cfg, a.Location) {
			occ = append(occ, stepForward(&s, a, rng)...)
			continue
		}

		// Boss lunge: only when the dwell rule did not fire this tick.
		if s.BossMode && rng.Float64() < cfg.Movement.BossJumpChance {
			occ = append(occ, jumpToDoor(a, rng)...)
		}
	}

	// Loss check after the whole array is updated: any animatronic that has
	// waited out an open door gets in. The actor updates above stand; only
	// the phase flips.
	for i := range s.Actors {
		a := s.Actors[i]
		if a.Active && a.AtDoor && a.StallTicks >= cfg.Movement.StallLimit {
			s.Phase = PhaseGameOver
			break
		}
	}

	return s, occ
}

// stepForward advances an animatronic one hop along the graph.
func stepForward(s *NightState, a *animatronic.Animatronic, rng Rand) []Occurrence {
	switch a.Location {
	case animatronic.Stage:
		occ := leaveStage(a)
		a.ArriveAt(animatronic.SideHall)
		return append(occ, Occurrence{Kind: OccMoved, Actor: a.Identity, From: animatronic.Stage, To: animatronic.SideHall})

	case animatronic.SideHall:
		a.ArriveAt(animatronic.Hallway)
		return []Occurrence{{Kind: OccMoved, Actor: a.Identity, From: animatronic.SideHall, To: animatronic.Hallway}}

	case animatronic.Hallway:
		// The only nondeterministic hop: a fair coin picks the door.
		target := pickDoor(rng)
		if s.DoorClosed(target) {
			// Lodged against a closed door: go home instead of
			// camping the hallway forever.
			from := a.Location
			a.ResetToStage()
			return []Occurrence{{Kind: OccStageReset, Actor: a.Identity, From: from, To: animatronic.Stage}}
		}
		a.ArriveAt(target)
		return []Occurrence{{Kind: OccMoved, Actor: a.Identity, From: animatronic.Hallway, To: target}}

	default:
		// Doors are handled by the at-door branch; nothing else moves.
		return nil
	}
}

// jumpToDoor is Deddy's final-night party trick: skip the walk entirely.
func jumpToDoor(a *animatronic.Animatronic, rng Rand) []Occurrence {
	occ := leaveStage(a)
	from := a.Location
	a.ArriveAt(pickDoor(rng))
	return append(occ, Occurrence{Kind: OccJumped, Actor: a.Identity, From: from, To: a.Location})
}

// leaveStage fires the one-shot alert the first time Deddy steps off the
// stage in a night. The guard only resets on the repel-to-stage paths.
func leaveStage(a *animatronic.Animatronic) []Occurrence {
	if a.Identity != animatronic.Deddy || a.Location != animatronic.Stage || a.AlertPlayed {
		return nil
	}
	a.AlertPlayed = true
	return []Occurrence{{Kind: OccAlert, Actor: a.Identity, From: animatronic.Stage, To: animatronic.Stage}}
}

func pickDoor(rng Rand) animatronic.Location {
	if rng.Intn(2) == 0 {
		return animatronic.LeftDoor
	}
	return animatronic.RightDoor
}

func dwellThreshold(cfg *config.Config, loc animatronic.Location) int {
	switch loc {
	case animatronic.Stage:
		return cfg.Movement.StageDwell
	case animatronic.SideHall:
		return cfg.Movement.SideHallDwell
	default:
		return cfg.Movement.HallwayDwell
	}
}
