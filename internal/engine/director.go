package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/LunaTecno/DeddysNightJuego/server/internal/config"
	"github.com/LunaTecno/DeddysNightJuego/server/internal/domain/animatronic"
	"github.com/LunaTecno/DeddysNightJuego/server/internal/events"
	"github.com/LunaTecno/DeddysNightJuego/server/internal/platform/logger"
	"github.com/LunaTecno/DeddysNightJuego/server/internal/platform/metrics"
)

// Intent boundary errors. The only recoverable one a player can hit during
// normal play is ErrCameraOffline; the rest flag frontend wiring bugs.
var (
	ErrCameraOffline = errors.New("camera 2 is out of order")
	ErrBadCamera     = errors.New("no such camera")
	ErrBadDoor       = errors.New("no such door")
	ErrBadPhase      = errors.New("intent not valid in current phase")
	ErrBadNight      = errors.New("no such night")
)

// Director owns the lifecycle state machine and the timer plumbing around
// the pure tick functions: two independent fixed-interval tickers while the
// phase is PLAYING, plus the one-shot auto-advance timer between cleared
// nights. All intent methods and both tick paths serialize on one mutex, so
// every transition sees a consistent snapshot.
type Director struct {
	cfg      *config.Config
	log      *logger.Logger
	eventLog *events.EventLog
	rng      Rand

	mu        sync.Mutex
	state     NightState
	prevPhase Phase
	soundOn   bool
	nextNight int // pending auto-advance target; 0 when none

	baseCtx     context.Context
	playCancel  context.CancelFunc // tears down both tickers on phase exit
	autoAdvance *time.Timer
}

// NewDirector wires the lifecycle controller. Pass a seeded *rand.Rand in
// production and a scripted source in tests.
func NewDirector(cfg *config.Config, log *logger.Logger, eventLog *events.EventLog, rng Rand) *Director {
	return &Director{
		cfg:       cfg,
		log:       log,
		eventLog:  eventLog,
		rng:       rng,
		state:     MenuState(cfg),
		prevPhase: PhaseMenu,
		soundOn:   true,
	}
}

// Start binds the director to a context. Timers armed afterwards die with it.
func (d *Director) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.baseCtx = ctx
	d.log.Info("Night director ready", zap.Int("final_night", d.cfg.Night.FinalNight))
}

// Snapshot returns the current immutable state.
func (d *Director) Snapshot() NightState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// SoundOn reports the presentation mute flag.
func (d *Director) SoundOn() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.soundOn
}

// StartNight begins a night from the menu. night <= 0 means "default": the
// stored next night if a cleared night is pending, otherwise night 1.
func (d *Director) StartNight(night int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state.Phase != PhaseMenu {
		return ErrBadPhase
	}
	if night <= 0 {
		if d.nextNight > 0 {
			night = d.nextNight
		} else {
			night = 1
		}
	}
	if night < 1 || night > d.cfg.Night.FinalNight {
		return ErrBadNight
	}

	d.enterPlaying(night)
	return nil
}

// Restart returns to the menu from a terminal phase. The next manual start
// goes back to night 1.
func (d *Director) Restart() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state.Phase != PhaseGameOver && d.state.Phase != PhaseVictory {
		return ErrBadPhase
	}

	d.disarmAutoAdvance()
	d.nextNight = 0
	d.prevPhase = d.state.Phase
	d.state = MenuState(d.cfg)
	d.emit(events.EventTypePhaseChange, "PLAYER", map[string]string{"phase": string(PhaseMenu), "via": "RESTART"})
	d.log.Event("RESTART", "Back to the title screen")
	return nil
}

// ToggleDoor flips a door. The movement scheduler sees the new flag on its
// next tick (repel and drain both key off it).
func (d *Director) ToggleDoor(side DoorSide) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state.Phase != PhasePlaying {
		return ErrBadPhase
	}

	var closed bool
	switch side {
	case DoorLeft:
		d.state.LeftDoorClosed = !d.state.LeftDoorClosed
		closed = d.state.LeftDoorClosed
	case DoorRight:
		d.state.RightDoorClosed = !d.state.RightDoorClosed
		closed = d.state.RightDoorClosed
	default:
		return ErrBadDoor
	}

	metrics.Get().RecordIntent(true)
	d.emit(events.EventTypeDoorToggle, "PLAYER", map[string]interface{}{"side": side, "closed": closed})
	return nil
}

// SelectCamera points the monitor at a feed. Camera 2 has been broken since
// the incident: selecting it changes nothing and returns ErrCameraOffline so
// the frontend can show the rejection notice.
func (d *Director) SelectCamera(camera int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state.Phase != PhasePlaying {
		return ErrBadPhase
	}
	if camera < 0 || camera >= animatronic.CameraCount {
		metrics.Get().RecordIntent(false)
		return ErrBadCamera
	}
	if camera == animatronic.BrokenCamera {
		metrics.Get().RecordIntent(false)
		d.emit(events.EventTypeCameraRejected, "PLAYER", map[string]interface{}{"camera": camera})
		d.log.Warn("Rejected broken camera feed", zap.Int("camera", camera))
		return ErrCameraOffline
	}

	d.state.Camera = camera
	metrics.Get().RecordIntent(true)
	d.emit(events.EventTypeCameraSwitch, "PLAYER", map[string]interface{}{"camera": camera})
	return nil
}

// ToggleMonitor raises or lowers the camera feed. While up it costs power.
func (d *Director) ToggleMonitor() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state.Phase != PhasePlaying {
		return ErrBadPhase
	}
	d.state.MonitorUp = !d.state.MonitorUp
	metrics.Get().RecordIntent(true)
	d.emit(events.EventTypeMonitorToggle, "PLAYER", map[string]interface{}{"up": d.state.MonitorUp})
	return nil
}

// ToggleSound flips the presentation mute flag. It only gates whether the
// one-shot Deddy alert is broadcast; the simulation is unaffected.
func (d *Director) ToggleSound() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.soundOn = !d.soundOn
	return d.soundOn
}

// enterPlaying builds the fresh night and arms both tickers. Caller holds mu.
func (d *Director) enterPlaying(night int) {
	d.disarmAutoAdvance()
	d.nextNight = 0
	d.prevPhase = d.state.Phase
	d.state = NewNightState(night, d.cfg)

	if d.baseCtx == nil {
		d.baseCtx = context.Background()
	}
	playCtx, cancel := context.WithCancel(d.baseCtx)
	d.playCancel = cancel
	go d.runTicker(playCtx, d.clockTick)
	go d.runTicker(playCtx, d.actorTick)

	metrics.Get().RecordNightStarted()
	d.emit(events.EventTypeNightStart, "SYSTEM", map[string]interface{}{"boss_mode": d.state.BossMode})
	d.log.Event("NIGHT_START", "Lights on, doors open", zap.Int("night", night), zap.Bool("boss_mode", d.state.BossMode))
}

// runTicker drives one of the two independent fixed-interval timers. It is
// torn down by playCtx whenever the phase leaves PLAYING; an expired tick
// after teardown is a no-op because the tick functions check the phase.
func (d *Director) runTicker(ctx context.Context, tick func()) {
	t := time.NewTicker(d.cfg.Night.TickInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			tick()
		}
	}
}

// clockTick applies the clock/power transition and reacts to its thresholds.
func (d *Director) clockTick() {
	start := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state.Phase != PhasePlaying {
		return
	}

	next := AdvanceClock(d.state, d.cfg)
	d.state = next
	metrics.Get().RecordClockTick(time.Since(start))

	if next.Phase != PhasePlaying {
		d.leavePlaying(next.Phase)
	}
}

// actorTick applies the movement transition, publishes its occurrences, and
// reacts to a door breach.
func (d *Director) actorTick() {
	start := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state.Phase != PhasePlaying {
		return
	}

	next, occ := AdvanceActors(d.state, d.cfg, d.rng)
	d.state = next
	metrics.Get().RecordActorTick(time.Since(start))

	for _, o := range occ {
		d.publishOccurrence(o)
	}

	if next.Phase != PhasePlaying {
		d.leavePlaying(next.Phase)
	}
}

// leavePlaying handles every exit from PLAYING: tear down the tickers, emit
// the transition events, and arm the auto-advance when a night was cleared.
// Caller holds mu.
func (d *Director) leavePlaying(to Phase) {
	d.prevPhase = PhasePlaying
	if d.playCancel != nil {
		d.playCancel()
		d.playCancel = nil
	}

	switch to {
	case PhaseGameOver:
		metrics.Get().RecordGameOver()
		d.emit(events.EventTypeGameOver, "SYSTEM", map[string]interface{}{"elapsed": d.state.Elapsed, "power": d.state.Power})
		d.log.Event("GAME_OVER", "They got in", zap.Int("night", d.state.Night), zap.Float64("power", d.state.Power))

	case PhaseVictory:
		metrics.Get().RecordVictory()
		d.emit(events.EventTypeVictory, "SYSTEM", nil)
		d.log.Event("VICTORY", "The week is over", zap.Int("night", d.state.Night))

	case PhaseMenu:
		// Cleared night: schedule the next one. Only this path arms the
		// timer; a restart into the menu never does.
		cleared := d.state.Night
		d.nextNight = cleared + 1
		metrics.Get().RecordNightCleared()
		d.emit(events.EventTypeNightCleared, "SYSTEM", map[string]interface{}{"night": cleared, "next": d.nextNight})
		d.log.Event("NIGHT_CLEARED", "6 AM", zap.Int("night", cleared), zap.Int("next", d.nextNight))

		d.autoAdvance = time.AfterFunc(d.cfg.Night.AutoAdvanceDelay, d.fireAutoAdvance)
	}

	d.emit(events.EventTypePhaseChange, "SYSTEM", map[string]string{"phase": string(to)})
}

// fireAutoAdvance runs when the between-nights delay expires. A manual start
// or restart that got there first has already disarmed the timer, but the
// state is re-checked anyway since the timer races its own cancellation.
func (d *Director) fireAutoAdvance() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state.Phase != PhaseMenu || d.prevPhase != PhasePlaying || d.nextNight == 0 {
		return
	}
	if d.baseCtx != nil && d.baseCtx.Err() != nil {
		return
	}

	night := d.nextNight
	d.emit(events.EventTypeAutoAdvance, "SYSTEM", map[string]interface{}{"night": night})
	d.enterPlaying(night)
}

// disarmAutoAdvance cancels a pending between-nights timer. Caller holds mu.
func (d *Director) disarmAutoAdvance() {
	if d.autoAdvance != nil {
		d.autoAdvance.Stop()
		d.autoAdvance = nil
	}
}

// publishOccurrence turns a scheduler side effect into a log event. The
// Deddy alert is the only one gated by the mute flag; everything else always
// reaches the log. Caller holds mu.
func (d *Director) publishOccurrence(o Occurrence) {
	payload := map[string]interface{}{"from": o.From.String(), "to": o.To.String()}

	switch o.Kind {
	case OccMoved:
		d.emit(events.EventTypeActorMoved, string(o.Actor), payload)
	case OccRepelled:
		d.emit(events.EventTypeActorRepelled, string(o.Actor), payload)
		d.log.Event("ACTOR_REPELLED", "Door held", zap.String("actor", string(o.Actor)))
	case OccStageReset:
		d.emit(events.EventTypeActorRepelled, string(o.Actor), payload)
	case OccJumped:
		d.emit(events.EventTypeActorJumped, string(o.Actor), payload)
		d.log.Event("ACTOR_JUMPED", "Deddy lunged", zap.String("to", o.To.String()))
	case OccAlert:
		if d.soundOn {
			d.emit(events.EventTypeDeddyAlert, string(o.Actor), nil)
			d.log.Event("DEDDY_ALERT", "Deddy left the stage")
		}
	}
}

// emit appends an event stamped with the current night. Caller holds mu.
func (d *Director) emit(t events.EventType, actor string, payload interface{}) {
	d.eventLog.Append(events.GameEvent{
		ID:        events.GenerateEventID(),
		Timestamp: time.Now(),
		Type:      t,
		Actor:     actor,
		Payload:   payload,
		Night:     d.state.Night,
	})
}
