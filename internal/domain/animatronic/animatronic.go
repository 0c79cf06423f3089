// Package animatronic defines the fixed cast of "Deddy's Night" and the
// location graph they walk toward the office.
//
// The cast and the graph are deliberately not extensible: three animatronics,
// five named positions, two player-guarded doors. Content lives here; behavior
// lives in the engine.
package animatronic

// Identity names one of the three animatronics.
type Identity string

const (
	Deddy  Identity = "DEDDY"  // the headliner, only active from night 4 on
	Bonzo  Identity = "BONZO"  // left-leaning sidekick, nights 1-4
	Cheeky Identity = "CHEEKY" // right-leaning sidekick, nights 1-4
)

// Location is a node in the fixed directed graph:
// stage -> side hall -> hallway -> {left door | right door} -> stage.
type Location int

const (
	Stage Location = iota
	SideHall
	Hallway
	LeftDoor
	RightDoor
)

// locationNames are the wire/camera labels used by the frontend.
var locationNames = [...]string{"STAGE", "SIDE_HALL", "HALLWAY", "LEFT_DOOR", "RIGHT_DOOR"}

func (l Location) String() string {
	if l < Stage || l > RightDoor {
		return "UNKNOWN"
	}
	return locationNames[l]
}

// IsDoor reports whether the location is one of the two guarded doors.
func (l Location) IsDoor() bool {
	return l == LeftDoor || l == RightDoor
}

// CameraCount is the number of camera feeds wired into the office monitor.
// Camera i watches Location(i).
const CameraCount = 5

// BrokenCamera is the feed that has been out of order since the incident.
// Selecting it is always rejected at the intent boundary.
const BrokenCamera = 2

// CameraLocation returns the location a camera index is bound to.
func CameraLocation(camera int) Location {
	return Location(camera)
}

// Animatronic is the per-actor state advanced by the movement scheduler.
// It is a value type: snapshots copy it wholesale.
type Animatronic struct {
	Identity Identity `json:"identity"`
	Location Location `json:"location"`
	Active   bool     `json:"active"`

	// DwellTicks counts ticks spent at the current non-door location.
	DwellTicks int `json:"dwell_ticks"`

	// AtDoor is true iff Location is LeftDoor or RightDoor.
	AtDoor bool `json:"at_door"`

	// StallTicks counts ticks spent waiting at an open door. Meaningful
	// only while AtDoor; hitting the stall limit is a loss.
	StallTicks int `json:"stall_ticks"`

	// AlertPlayed guards the one-shot cry that fires the first time Deddy
	// leaves the stage. Reset only by the repel-to-stage path.
	AlertPlayed bool `json:"alert_played"`
}

// New places an animatronic on the stage, counters zeroed.
func New(id Identity, active bool) Animatronic {
	return Animatronic{Identity: id, Location: Stage, Active: active}
}

// ResetToStage sends the animatronic home and wipes every per-walk counter,
// including the one-shot alert guard.
func (a *Animatronic) ResetToStage() {
	a.Location = Stage
	a.AtDoor = false
	a.DwellTicks = 0
	a.StallTicks = 0
	a.AlertPlayed = false
}

// ArriveAt moves the animatronic to a new location and zeroes the counters
// that are scoped to the previous one.
func (a *Animatronic) ArriveAt(loc Location) {
	a.Location = loc
	a.AtDoor = loc.IsDoor()
	a.DwellTicks = 0
	a.StallTicks = 0
}
