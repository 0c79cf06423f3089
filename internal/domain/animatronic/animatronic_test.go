package animatronic

import "testing"

func TestGraphShape(t *testing.T) {
	if !LeftDoor.IsDoor() || !RightDoor.IsDoor() {
		t.Error("doors must report IsDoor")
	}
	for _, loc := range []Location{Stage, SideHall, Hallway} {
		if loc.IsDoor() {
			t.Errorf("%s reports IsDoor", loc)
		}
	}
	if CameraLocation(0) != Stage || CameraLocation(4) != RightDoor {
		t.Error("camera binding drifted from the location order")
	}
	if CameraLocation(BrokenCamera) != Hallway {
		t.Error("the broken camera is the hallway feed")
	}
}

func TestResetToStage(t *testing.T) {
	a := New(Deddy, true)
	a.Location = LeftDoor
	a.AtDoor = true
	a.DwellTicks = 7
	a.StallTicks = 42
	a.AlertPlayed = true

	a.ResetToStage()

	if a.Location != Stage || a.AtDoor {
		t.Errorf("not home: %+v", a)
	}
	if a.DwellTicks != 0 || a.StallTicks != 0 || a.AlertPlayed {
		t.Errorf("counters survived the reset: %+v", a)
	}
}

func TestArriveAt(t *testing.T) {
	a := New(Bonzo, true)
	a.DwellTicks = 90

	a.ArriveAt(LeftDoor)
	if !a.AtDoor || a.DwellTicks != 0 || a.StallTicks != 0 {
		t.Errorf("door arrival: %+v", a)
	}

	a.ArriveAt(Hallway)
	if a.AtDoor {
		t.Error("at_door still set away from a door")
	}
}
