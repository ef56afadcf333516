package ledger

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	log := logrus.New()
	log.Out = io.Discard
	l, err := Open(":memory:", log)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestOpenCreatesSchema(t *testing.T) {
	l := openTestLedger(t)

	sessions, err := l.Sessions()
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 0 {
		t.Fatalf("expected an empty ledger, got %v", sessions)
	}
}

func TestSessionLifecycle(t *testing.T) {
	l := openTestLedger(t)

	params := SessionParams{Barbers: 2, WaitingSeats: 3, Customers: 4, ServiceTimeUs: 500}
	session, err := l.BeginSession(params)
	if err != nil {
		t.Fatal(err)
	}
	if session.ID() == "" {
		t.Fatal("expected a session ID")
	}

	session.Assigned(1, 0)
	session.Assigned(2, 1)
	session.Dropped(3)
	session.Served(1, 0)
	session.Served(2, 1)

	if err := session.Finish(2, 1, 42*time.Millisecond); err != nil {
		t.Fatal(err)
	}

	sessions, err := l.Sessions()
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	got := sessions[0]
	if got.ID != session.ID() {
		t.Errorf("expected session %s, got %s", session.ID(), got.ID)
	}
	if got.Barbers != params.Barbers || got.WaitingSeats != params.WaitingSeats ||
		got.Customers != params.Customers || got.ServiceTimeUs != params.ServiceTimeUs {
		t.Errorf("stored parameters do not match: %+v", got)
	}
	if !got.Served.Valid || got.Served.Int64 != 2 {
		t.Errorf("expected 2 served, got %+v", got.Served)
	}
	if !got.Dropped.Valid || got.Dropped.Int64 != 1 {
		t.Errorf("expected 1 dropped, got %+v", got.Dropped)
	}
	if !got.ElapsedUs.Valid || got.ElapsedUs.Int64 != 42000 {
		t.Errorf("expected 42000us elapsed, got %+v", got.ElapsedUs)
	}

	visits, err := l.Visits(session.ID())
	if err != nil {
		t.Fatal(err)
	}
	if len(visits) != 5 {
		t.Fatalf("expected 5 visits, got %d", len(visits))
	}
	if visits[2].Outcome != "dropped" || visits[2].Chair.Valid {
		t.Errorf("expected a chairless drop for customer 3, got %+v", visits[2])
	}
	if visits[3].Outcome != "served" || !visits[3].Chair.Valid || visits[3].Chair.Int64 != 0 {
		t.Errorf("expected customer 1 served at chair 0, got %+v", visits[3])
	}
}

func TestUnfinishedSessionHasNullResults(t *testing.T) {
	l := openTestLedger(t)

	if _, err := l.BeginSession(SessionParams{Barbers: 1, WaitingSeats: 0, Customers: 1, ServiceTimeUs: 1}); err != nil {
		t.Fatal(err)
	}

	sessions, err := l.Sessions()
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	if sessions[0].Served.Valid || sessions[0].Dropped.Valid {
		t.Errorf("expected NULL results for an unfinished session, got %+v", sessions[0])
	}
}
