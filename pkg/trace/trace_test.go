package trace

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func fixedNow() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) }

func TestRecorderKeepsMostRecent(t *testing.T) {
	r := NewRecorder(2)
	r.Now = fixedNow
	r.Record(KindMount, 1, "a", "")
	r.Record(KindBind, 1, "a", "")
	r.Record(KindUnmount, 1, "a", "")

	if diff := cmp.Diff([]string{KindBind, KindUnmount}, r.Kinds()); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}
	if got := r.Events()[1].Seq; got != 3 {
		t.Errorf("last Seq = %d, want 3", got)
	}
	r.Reset()
	if got := len(r.Events()); got != 0 {
		t.Errorf("%d events after Reset", got)
	}
}

func TestEventString(t *testing.T) {
	ev := Event{Seq: 4, Kind: KindBounds, Unit: "Text(Column)", Detail: "(0,0 3x1)"}
	if got, want := ev.String(), "#4 bounds Text(Column) (0,0 3x1)"; got != want {
		t.Errorf("String = %q, want %q", got, want)
	}
}

func openSink(t *testing.T) *BoltSink {
	t.Helper()
	s, err := OpenBoltSink(filepath.Join(t.TempDir(), "trace.db"))
	if err != nil {
		t.Fatalf("OpenBoltSink: %v", err)
	}
	return s
}

func TestBoltSinkStoresEvents(t *testing.T) {
	s := openSink(t)
	r := NewRecorder(0, s)
	r.Now = fixedNow
	for _, kind := range []string{KindMount, KindBind, KindUnbind, KindUnmount} {
		if err := r.Record(kind, 7, "Surface(Column,$a)", ""); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if got := len(r.Events()); got != 0 {
		t.Errorf("recorder without a buffer kept %d events", got)
	}

	n, err := s.Count()
	if err != nil || n != 4 {
		t.Fatalf("Count = %d, %v; want 4", n, err)
	}
	events, err := s.Events(2, 4)
	if err != nil {
		t.Fatal(err)
	}
	want := []Event{
		{Seq: 2, Time: fixedNow(), Kind: KindBind, ID: 7, Unit: "Surface(Column,$a)"},
		{Seq: 3, Time: fixedNow(), Kind: KindUnbind, ID: 7, Unit: "Surface(Column,$a)"},
	}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	if n, _ := s.Count(); n != 0 {
		t.Errorf("Count after Clear = %d", n)
	}
	if err := r.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestBoltSinkReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")
	s, err := OpenBoltSink(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Write(Event{Seq: 1, Kind: KindCommit})
	s.Close()

	s, err = OpenBoltSink(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	events, err := s.Events(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Kind != KindCommit {
		t.Errorf("events after reopen = %v, want one commit", events)
	}
}
