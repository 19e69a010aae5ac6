package physics

import (
	"testing"

	"github.com/san-kum/racesim/internal/track"
)

func sprintTrack() *track.Track {
	return &track.Track{
		Name: "sprint",
		Segments: []track.Segment{
			{Name: "straight", LengthM: 1000, MaxVelocity: 80},
		},
	}
}

func ovalTrack() *track.Track {
	return &track.Track{
		Name: "oval",
		Segments: []track.Segment{
			{Name: "straight", LengthM: 400, MaxVelocity: 60},
			{Name: "turn", LengthM: 200, MaxVelocity: 25},
		},
	}
}

// runToEnd steps until done, guarding against runaway loops.
func runToEnd(t *testing.T, e *Engine) int {
	t.Helper()
	for i := 0; i < 200000; i++ {
		_, done, err := e.Step()
		if err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
		if done {
			return i + 1
		}
	}
	t.Fatal("engine never finished")
	return 0
}

func TestNewEngineValidation(t *testing.T) {
	trk := sprintTrack()
	tests := []struct {
		name string
		car  Car
		dt   float64
	}{
		{"zero dt", DefaultCar(), 0},
		{"negative dt", DefaultCar(), -0.1},
		{"zero mass", Car{DrivetrainEff: 0.9}, 0.1},
		{"bad efficiency", Car{MassKg: 300, DrivetrainEff: 1.5}, 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewEngine(tt.car, trk, tt.dt); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestEngineAcceleratesFromRest(t *testing.T) {
	e, err := NewEngine(DefaultCar(), sprintTrack(), 0.1)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	prev := 0.0
	for i := 0; i < 50; i++ {
		rec, done, err := e.Step()
		if err != nil {
			t.Fatalf("step failed: %v", err)
		}
		if done {
			break
		}
		if rec.Velocity < prev {
			t.Fatalf("velocity dropped during launch: %f -> %f", prev, rec.Velocity)
		}
		prev = rec.Velocity
	}
	if prev <= 0 {
		t.Error("car never moved")
	}
}

func TestEngineRespectsSpeedLimit(t *testing.T) {
	e, err := NewEngine(DefaultCar(), sprintTrack(), 0.1)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	for i := 0; i < 200000; i++ {
		rec, done, err := e.Step()
		if err != nil {
			t.Fatalf("step failed: %v", err)
		}
		if rec.Velocity > 80.0 {
			t.Fatalf("velocity %f exceeds limit 80", rec.Velocity)
		}
		if rec.TrackMaxVelocity != 80.0 {
			t.Fatalf("expected track max 80, got %f", rec.TrackMaxVelocity)
		}
		if done {
			return
		}
	}
	t.Fatal("engine never finished")
}

func TestEngineBrakesForSlowerSegment(t *testing.T) {
	car := DefaultCar()
	e, err := NewEngine(car, ovalTrack(), 0.05)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	// Velocity inside the turn may exceed its limit by at most one braking
	// step of discretization error.
	slack := car.BrakeDecel * 0.05
	for i := 0; i < 200000; i++ {
		rec, done, err := e.Step()
		if err != nil {
			t.Fatalf("step failed: %v", err)
		}
		if rec.Distance > 400 && rec.Distance < 600 {
			if rec.Velocity > 25.0+slack {
				t.Fatalf("velocity %f in 25 m/s turn at distance %f", rec.Velocity, rec.Distance)
			}
		}
		if done {
			return
		}
	}
	t.Fatal("engine never finished")
}

func TestEngineCompletesLap(t *testing.T) {
	trk := ovalTrack()
	e, err := NewEngine(DefaultCar(), trk, 0.1)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	runToEnd(t, e)

	if e.Distance() < trk.Length() {
		t.Errorf("finished at %f m, track is %f m", e.Distance(), trk.Length())
	}
	if e.Elapsed() <= 0 {
		t.Error("no simulated time elapsed")
	}
	if e.Battery().RemainingJ() >= DefaultCar().BatteryCapacityJ {
		t.Error("lap used no battery energy")
	}
}

func TestEngineStopsWhenBatteryFlat(t *testing.T) {
	car := DefaultCar()
	car.BatteryCapacityJ = 20000 // far too small for the lap
	trk := sprintTrack()

	e, err := NewEngine(car, trk, 0.1)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	runToEnd(t, e)

	if e.Battery().RemainingJ() != 0 {
		t.Errorf("expected empty battery, got %f J", e.Battery().RemainingJ())
	}
	if e.Distance() >= trk.Length() {
		t.Error("car should not have finished on a flat battery")
	}
}

func TestEngineStepAfterFinishIsStable(t *testing.T) {
	e, err := NewEngine(DefaultCar(), sprintTrack(), 0.1)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	runToEnd(t, e)

	d := e.Distance()
	rec, done, err := e.Step()
	if err != nil {
		t.Fatalf("step after finish: %v", err)
	}
	if !done {
		t.Error("expected done after finish")
	}
	if e.Distance() != d || rec.Distance != d {
		t.Error("engine advanced after finishing")
	}
}

func TestEngineMotorPowerWithinPeak(t *testing.T) {
	car := DefaultCar()
	e, err := NewEngine(car, sprintTrack(), 0.1)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	for i := 0; i < 500; i++ {
		rec, done, err := e.Step()
		if err != nil {
			t.Fatalf("step failed: %v", err)
		}
		if rec.MotorPower < 0 || rec.MotorPower > car.PeakPowerW {
			t.Fatalf("motor power %f outside [0, %f]", rec.MotorPower, car.PeakPowerW)
		}
		if done {
			break
		}
	}
}
