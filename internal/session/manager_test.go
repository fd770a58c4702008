package session

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestManagerCreateGetEnd(t *testing.T) {
	m := NewManager(time.Minute, 10)
	s := m.Create("u1")
	if s.ID == "" {
		t.Fatalf("session ID should not be empty")
	}

	got, err := m.Get(s.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.UserID != "u1" || got.Status != StatusActive {
		t.Fatalf("unexpected session state: %+v", got)
	}

	ended, err := m.End(s.ID)
	if err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if ended.Status != StatusEnded {
		t.Fatalf("ended status = %q, want %q", ended.Status, StatusEnded)
	}
}

func TestAppendTurnTrimsOldestFirst(t *testing.T) {
	m := NewManager(time.Minute, 3)
	s := m.Create("u1")

	for i := 1; i <= 5; i++ {
		if _, err := m.AppendTurn(s.ID, Turn{UserText: fmt.Sprintf("q%d", i)}); err != nil {
			t.Fatalf("AppendTurn() error = %v", err)
		}
	}

	hist, err := m.History(s.ID)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(hist) != 3 {
		t.Fatalf("history length = %d, want 3", len(hist))
	}
	for i, want := range []string{"q3", "q4", "q5"} {
		if hist[i].UserText != want {
			t.Fatalf("history[%d].UserText = %q, want %q", i, hist[i].UserText, want)
		}
	}
	if hist[2].Ordinal != 5 {
		t.Fatalf("latest ordinal = %d, want 5", hist[2].Ordinal)
	}
}

func TestHistoryIsACopy(t *testing.T) {
	m := NewManager(time.Minute, 10)
	s := m.Create("")
	if _, err := m.AppendTurn(s.ID, Turn{UserText: "q1"}); err != nil {
		t.Fatalf("AppendTurn() error = %v", err)
	}

	hist, _ := m.History(s.ID)
	hist[0].UserText = "mutated"

	again, _ := m.History(s.ID)
	if again[0].UserText != "q1" {
		t.Fatalf("internal history mutated through returned slice")
	}
}

func TestManagerJanitorExpiresInactive(t *testing.T) {
	m := NewManager(30*time.Millisecond, 10)
	s := m.Create("u1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.StartJanitor(ctx, 10*time.Millisecond)

	time.Sleep(90 * time.Millisecond)
	got, err := m.Get(s.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != StatusEnded {
		t.Fatalf("Status = %q, want %q", got.Status, StatusEnded)
	}
}
