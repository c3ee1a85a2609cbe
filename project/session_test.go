package project

import (
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestSessionDegradedMode(t *testing.T) {
	s := NewSession(nil)

	s.SetSource("circle at 0.5 0.5")
	if !s.Dirty() {
		t.Fatal("Dirty() = false after SetSource")
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush() error = %v, want nil in degraded mode", err)
	}
	if s.Dirty() {
		t.Error("Dirty() = true after Flush")
	}
	if got := s.Document().Source; got != "circle at 0.5 0.5" {
		t.Errorf("Document().Source = %q", got)
	}
}

func TestSessionSetSettingsValidates(t *testing.T) {
	s := NewSession(nil)

	bad := Default()
	bad.FPS = 0
	if err := s.SetSettings(bad); err == nil {
		t.Error("SetSettings(invalid) = nil error")
	}
	if s.Dirty() {
		t.Error("rejected settings marked the session dirty")
	}

	good := Default()
	good.FPS = 60
	if err := s.SetSettings(good); err != nil {
		t.Fatalf("SetSettings() error = %v", err)
	}
	if got := s.Document().Settings.FPS; got != 60 {
		t.Errorf("Settings.FPS = %v, want 60", got)
	}
}

func TestSessionUnchangedEditStaysClean(t *testing.T) {
	s := NewSession(nil)
	if err := s.SetSettings(Default()); err != nil {
		t.Fatal(err)
	}
	if s.Dirty() {
		t.Error("re-setting identical settings marked the session dirty")
	}
	s.SetSource("")
	if s.Dirty() {
		t.Error("re-setting identical source marked the session dirty")
	}
}

func TestSessionAutosaveDebounce(t *testing.T) {
	s := NewSession(nil)
	clock := time.Unix(100, 0)
	s.now = func() time.Time { return clock }
	s.interval = 2 * time.Second

	s.SetSource("v1")
	if err := s.Autosave(); err != nil {
		t.Fatal(err)
	}
	if !s.Dirty() {
		t.Fatal("Autosave() flushed inside the debounce window")
	}

	// A second edit inside the window does not restart the countdown.
	clock = clock.Add(time.Second)
	s.SetSource("v2")
	clock = clock.Add(time.Second)
	if err := s.Autosave(); err != nil {
		t.Fatal(err)
	}
	if s.Dirty() {
		t.Error("Autosave() did not flush after the window elapsed")
	}
}

func TestSessionRestoreWithoutManager(t *testing.T) {
	s := NewSession(nil)
	s.SetSource("kept")
	if err := s.Restore(); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if got := s.Document().Source; got != "kept" {
		t.Errorf("Restore() without manager replaced source: %q", got)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	doc := Document{
		Settings: Settings{Width: 640, Height: 360, FPS: 24, DurationSeconds: 3, Background: [4]uint8{1, 2, 3, 4}},
		Source:   "rect \"title\" move to 0.25 0.75 over 1s\n",
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var got Document
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got != doc {
		t.Errorf("round trip = %+v, want %+v", got, doc)
	}
}
