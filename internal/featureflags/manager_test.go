package featureflags

import (
	"fmt"
	"testing"
)

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")

	if !m.Enabled("a", "client") || !m.Enabled("c", "client") || !m.Enabled("e", "client") {
		t.Fatal("expected enabled boolean values to evaluate true")
	}
	if m.Enabled("b", "client") || m.Enabled("d", "client") || m.Enabled("f", "client") {
		t.Fatal("expected disabled boolean values to evaluate false")
	}
	if m.Enabled("unknown", "client") {
		t.Fatal("unknown flags are disabled")
	}
}

func TestEnabled_PercentageValues(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%,broken=abc%")

	if !m.Enabled("always", "10.0.0.1") {
		t.Fatal("100% rollout should always be enabled")
	}
	if m.Enabled("never", "10.0.0.1") {
		t.Fatal("0% rollout should always be disabled")
	}
	if m.Enabled("broken", "10.0.0.1") {
		t.Fatal("unparseable percentage should be disabled")
	}

	first := m.Enabled("canary", "10.0.0.42")
	for i := 0; i < 5; i++ {
		if got := m.Enabled("canary", "10.0.0.42"); got != first {
			t.Fatal("rollout evaluation must be deterministic per subject")
		}
	}

	if m.Enabled("canary", "") {
		t.Fatal("percentage rollout requires a subject")
	}
}

func TestEnabled_PercentageRoughlyMatchesShare(t *testing.T) {
	m := NewManager("half=50%")

	enabled := 0
	for i := 0; i < 1000; i++ {
		if m.Enabled("half", fmt.Sprintf("client-%d", i)) {
			enabled++
		}
	}
	if enabled < 400 || enabled > 600 {
		t.Fatalf("expected about half of subjects enabled, got %d/1000", enabled)
	}
}

func TestParseAndSnapshot(t *testing.T) {
	m := NewManager(" bad ,x=on, Y = 20% ,z=off ")

	raw := m.Raw()
	if len(raw) != 3 {
		t.Fatalf("expected 3 parsed flags, got %d", len(raw))
	}
	if raw["x"] != "on" || raw["y"] != "20%" || raw["z"] != "off" {
		t.Fatalf("unexpected raw flags: %#v", raw)
	}

	snap := m.Snapshot("subject")
	if len(snap) != 3 {
		t.Fatalf("expected snapshot size 3, got %d", len(snap))
	}
	if !snap["x"] || snap["z"] {
		t.Fatalf("unexpected snapshot: %#v", snap)
	}
}

func TestNilManager(t *testing.T) {
	var m *Manager
	if m.Enabled(RelatedPosts, "x") {
		t.Fatal("nil manager has no flags enabled")
	}
}
