package engine

import "github.com/LunaTecno/DeddysNightJuego/server/internal/config"

// AdvanceClock is the clock/power tick: one tick of elapsed night time, one
// helping of power drain, then the threshold checks in priority order.
// It never touches the actors; it only reads the door and monitor flags to
// price the drain.
//
// Pure: given the same snapshot and tuning it always returns the same result.
func AdvanceClock(s NightState, cfg *config.Config) NightState {
	if s.Phase != PhasePlaying {
		return s
	}

	s.Elapsed++

	drain := cfg.Power.BaseDrain + float64(s.ClosedDoors())*cfg.Power.DoorDrain
	if s.MonitorUp {
		drain += cfg.Power.MonitorDrain
	}
	s.Power -= drain

	// 1. Lights out beats everything else.
	if s.Power <= 0 {
		s.Power = 0
		s.Phase = PhaseGameOver
		return s
	}

	// 2. Dawn. Final night wins the game, earlier nights hand back to the
	// menu as a cleared night.
	if s.Elapsed >= cfg.Night.DurationTicks {
		if s.Night >= cfg.Night.FinalNight {
			s.Phase = PhaseVictory
		} else {
			s.Phase = PhaseMenu
		}
		return s
	}

	// 3. Still dark out there.
	return s
}
