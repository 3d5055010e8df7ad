package config

import (
	"strings"
	"testing"
)

func TestSnapshotValidate(t *testing.T) {
	tests := []struct {
		name    string
		snap    Snapshot
		wantErr string
	}{
		{
			name: "valid full",
			snap: Snapshot{
				Bounds:      &BoundsSnapshot{Bounce: Float(0.5), Friction: Float(0)},
				Flock:       &FlockSnapshot{NeighborRadius: Float(100), MaxSpeed: Float(300)},
				Interaction: &InteractionSnapshot{Mode: String("attract"), Action: String("force")},
				Performance: &PerformanceSnapshot{CellSize: Float(64), MaxPoolSize: Int(0)},
			},
		},
		{
			name:    "bounce out of range",
			snap:    Snapshot{Bounds: &BoundsSnapshot{Bounce: Float(1.2)}},
			wantErr: "bounce",
		},
		{
			name:    "negative friction",
			snap:    Snapshot{Bounds: &BoundsSnapshot{Friction: Float(-0.1)}},
			wantErr: "friction",
		},
		{
			name:    "zero neighbor radius",
			snap:    Snapshot{Flock: &FlockSnapshot{NeighborRadius: Float(0)}},
			wantErr: "neighborRadius",
		},
		{
			name:    "negative target density",
			snap:    Snapshot{Fluid: &FluidSnapshot{TargetDensity: Float(-1)}},
			wantErr: "targetDensity",
		},
		{
			name:    "unknown mode",
			snap:    Snapshot{Interaction: &InteractionSnapshot{Mode: String("orbit")}},
			wantErr: "mode",
		},
		{
			name:    "unknown action",
			snap:    Snapshot{Interaction: &InteractionSnapshot{Action: String("paint")}},
			wantErr: "action",
		},
		{
			name:    "negative pool size",
			snap:    Snapshot{Performance: &PerformanceSnapshot{MaxPoolSize: Int(-1)}},
			wantErr: "maxPoolSize",
		},
		{
			name: "empty snapshot",
			snap: Snapshot{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.snap.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("invalid snapshot accepted")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseSnapshotMalformed(t *testing.T) {
	if _, err := ParseSnapshot([]byte(`{"gravity":`)); err == nil {
		t.Error("malformed JSON accepted")
	}
	if _, err := ParseSnapshot([]byte(`{"gravity":{"strength":"heavy"}}`)); err == nil {
		t.Error("wrong value type accepted")
	}
}

func TestSnapshotMarshalOmitsAbsent(t *testing.T) {
	snap := Snapshot{Gravity: &GravitySnapshot{Strength: Float(500)}}
	data, err := snap.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	s := string(data)
	if !strings.Contains(s, "strength") {
		t.Errorf("present key missing: %s", s)
	}
	if strings.Contains(s, "bounds") || strings.Contains(s, "directionAngle") {
		t.Errorf("absent keys serialized: %s", s)
	}
}
