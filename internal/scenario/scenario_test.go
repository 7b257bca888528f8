package scenario

import (
	"testing"

	"github.com/motionlab/natmech/internal/config"
)

func TestBuildUnknownScenario(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Scenario = "teapot"
	if _, _, _, err := Build(cfg); err == nil {
		t.Error("unknown scenario accepted")
	}
}

func TestList(t *testing.T) {
	names := List()
	if len(names) != len(builders) {
		t.Fatalf("List returned %d names, want %d", len(names), len(builders))
	}
	for _, name := range names {
		if _, ok := builders[name]; !ok {
			t.Errorf("listed scenario %q has no builder", name)
		}
	}
}

func TestScenariosStartConsistent(t *testing.T) {
	for _, name := range List() {
		t.Run(name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Scenario = name
			cfg.Segments = 3

			m, q0, qdot0, err := Build(cfg)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if len(q0) != m.NbQ() || len(qdot0) != m.NbQ() {
				t.Fatalf("state length %d/%d, want %d", len(q0), len(qdot0), m.NbQ())
			}
			if m.MassMatrix() == nil {
				t.Fatal("scenario segments must carry inertia")
			}
			if err := m.ValidateInitialState(q0, 1e-9); err != nil {
				t.Errorf("initial state: %v", err)
			}
			if w := m.OrientationWarnings(q0); len(w) != 0 {
				t.Errorf("orientation warnings: %v", w)
			}
		})
	}
}

func TestScenarioStructure(t *testing.T) {
	cases := []struct {
		scenario        string
		segments        int
		wantSegments    int
		wantJoints      int
		wantConstraints int
	}{
		{"pendulum", 1, 1, 1, 11},
		{"double_pendulum", 2, 2, 2, 22},
		{"chain", 4, 4, 4, 36},
	}
	for _, tc := range cases {
		t.Run(tc.scenario, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Scenario = tc.scenario
			cfg.Segments = tc.segments

			m, _, _, err := Build(cfg)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if m.NbSegments() != tc.wantSegments {
				t.Errorf("segments: got %d, want %d", m.NbSegments(), tc.wantSegments)
			}
			if m.NbJoints() != tc.wantJoints {
				t.Errorf("joints: got %d, want %d", m.NbJoints(), tc.wantJoints)
			}
			if m.NbHolonomicConstraints() != tc.wantConstraints {
				t.Errorf("constraints: got %d, want %d", m.NbHolonomicConstraints(), tc.wantConstraints)
			}
		})
	}
}
