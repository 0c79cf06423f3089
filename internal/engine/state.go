// Package engine contains the night simulation: the clock/power ticker, the
// animatronic movement scheduler, and the lifecycle director that owns the
// timers and the phase state machine.
//
// ARCHITECTURAL RULE: the two tickers are pure snapshot transitions.
// AdvanceClock and AdvanceActors each take the previous NightState by value
// and return a new one; neither assumes the other has already run this tick.
// Only the Director holds a mutable reference to "the" current state.
package engine

import (
	"fmt"

	"github.com/LunaTecno/DeddysNightJuego/server/internal/config"
	"github.com/LunaTecno/DeddysNightJuego/server/internal/domain/animatronic"
)

// Phase is the lifecycle state of the game.
type Phase string

const (
	PhaseMenu     Phase = "MENU"
	PhasePlaying  Phase = "PLAYING"
	PhaseGameOver Phase = "GAME_OVER"
	PhaseVictory  Phase = "VICTORY"
)

// ActorCount is the size of the fixed cast.
const ActorCount = 3

// DoorSide names one of the two office doors.
type DoorSide string

const (
	DoorLeft  DoorSide = "LEFT"
	DoorRight DoorSide = "RIGHT"
)

// NightState is one immutable snapshot of the whole simulation. It is a
// plain value: the actor array copies with it, so handing a NightState to
// another goroutine never aliases live state.
type NightState struct {
	Night   int     `json:"night"`
	Elapsed int     `json:"elapsed_ticks"`
	Power   float64 `json:"power"`

	LeftDoorClosed  bool `json:"left_door_closed"`
	RightDoorClosed bool `json:"right_door_closed"`

	Camera    int  `json:"camera"`
	MonitorUp bool `json:"monitor_up"`

	Actors [ActorCount]animatronic.Animatronic `json:"actors"`

	Phase    Phase `json:"phase"`
	BossMode bool  `json:"boss_mode"`
}

// NewNightState builds the fresh state for the start of a night, applying
// the per-night activation table:
//
//	nights 1-3: Bonzo and Cheeky walk, Deddy stays put
//	night 4:    all three walk
//	night 5:    Deddy alone, boss mode
//
// The table escalates on purpose; do not collapse it into a single rule.
func NewNightState(night int, cfg *config.Config) NightState {
	boss := night == cfg.Night.FinalNight
	deddyActive := night >= 4
	sidekicksActive := !boss

	return NightState{
		Night:  night,
		Power:  cfg.Power.Full,
		Camera: 0,
		Actors: [ActorCount]animatronic.Animatronic{
			animatronic.New(animatronic.Deddy, deddyActive),
			animatronic.New(animatronic.Bonzo, sidekicksActive),
			animatronic.New(animatronic.Cheeky, sidekicksActive),
		},
		Phase:    PhasePlaying,
		BossMode: boss,
	}
}

// MenuState is the idle state shown before a night starts or after a run ends.
func MenuState(cfg *config.Config) NightState {
	s := NewNightState(1, cfg)
	s.Phase = PhaseMenu
	for i := range s.Actors {
		s.Actors[i].Active = false
	}
	s.BossMode = false
	return s
}

// ClosedDoors counts the doors currently shut.
func (s NightState) ClosedDoors() int {
	n := 0
	if s.LeftDoorClosed {
		n++
	}
	if s.RightDoorClosed {
		n++
	}
	return n
}

// DoorClosed reports whether the door guarding a location is shut. Non-door
// locations are never "closed".
func (s NightState) DoorClosed(loc animatronic.Location) bool {
	switch loc {
	case animatronic.LeftDoor:
		return s.LeftDoorClosed
	case animatronic.RightDoor:
		return s.RightDoorClosed
	default:
		return false
	}
}

// OccupantsAt lists the active animatronics at a location. The frontend uses
// it to draw whoever is on the selected camera feed.
func (s NightState) OccupantsAt(loc animatronic.Location) []animatronic.Identity {
	var out []animatronic.Identity
	for _, a := range s.Actors {
		if a.Active && a.Location == loc {
			out = append(out, a.Identity)
		}
	}
	return out
}

// HourLabel renders the office clock: the night starts at 12 AM and each 60
// ticks advance it an hour on a 12-hour dial.
func (s NightState) HourLabel() string {
	hour := 12 + s.Elapsed/60
	if hour > 12 {
		hour -= 12
	}
	return fmt.Sprintf("%d AM", hour)
}
