package events

import "testing"

func TestAppendAndReplayKeepOrder(t *testing.T) {
	el := NewEventLog()
	el.Append(GameEvent{ID: "a", Type: EventTypeNightStart, Night: 1})
	el.Append(GameEvent{ID: "b", Type: EventTypeDoorToggle, Night: 1})
	el.Append(GameEvent{ID: "c", Type: EventTypeGameOver, Night: 1})

	got := el.Replay()
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	for i, id := range []string{"a", "b", "c"} {
		if got[i].ID != id {
			t.Errorf("position %d: got %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestSinceResumesWhereItLeftOff(t *testing.T) {
	el := NewEventLog()
	el.Append(GameEvent{ID: "a"})
	el.Append(GameEvent{ID: "b"})

	batch, offset := el.Since(0)
	if len(batch) != 2 || offset != 2 {
		t.Fatalf("first poll: %d events, offset %d", len(batch), offset)
	}

	batch, offset = el.Since(offset)
	if len(batch) != 0 || offset != 2 {
		t.Fatalf("idle poll: %d events, offset %d", len(batch), offset)
	}

	el.Append(GameEvent{ID: "c"})
	batch, offset = el.Since(offset)
	if len(batch) != 1 || batch[0].ID != "c" || offset != 3 {
		t.Fatalf("resumed poll: %+v offset %d", batch, offset)
	}
}

func TestByNight(t *testing.T) {
	el := NewEventLog()
	el.Append(GameEvent{ID: "a", Night: 1})
	el.Append(GameEvent{ID: "b", Night: 2})
	el.Append(GameEvent{ID: "c", Night: 2})

	if got := el.ByNight(2); len(got) != 2 {
		t.Errorf("expected 2 events for night 2, got %d", len(got))
	}
	if got := el.ByNight(3); got != nil {
		t.Errorf("expected nothing for night 3, got %d", len(got))
	}
}

func TestGenerateEventIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := GenerateEventID()
		if seen[id] {
			t.Fatalf("duplicate event id %s", id)
		}
		seen[id] = true
	}
}
