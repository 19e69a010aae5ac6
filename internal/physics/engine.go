package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/racesim/internal/telemetry"
	"github.com/san-kum/racesim/internal/track"
)

// lookahead bounds how far ahead the driver scans for slower segments.
const lookaheadM = 500.0

// Engine advances a single car around a track in fixed timesteps. It is the
// worker's step collaborator: each Step returns the next telemetry record
// and whether the run has finished (lap complete or battery flat).
//
// Engine is not safe for concurrent use; exactly one goroutine steps it.
type Engine struct {
	car     Car
	circuit *track.Track
	battery *Battery
	dt      float64

	t        float64
	distance float64
	velocity float64
	finished bool
}

// NewEngine validates the parameters and returns a stepper positioned at the
// start line with a full battery.
func NewEngine(car Car, circuit *track.Track, dt float64) (*Engine, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("physics: dt must be positive, got %f", dt)
	}
	if car.MassKg <= 0 {
		return nil, fmt.Errorf("physics: mass must be positive, got %f", car.MassKg)
	}
	if car.DrivetrainEff <= 0 || car.DrivetrainEff > 1 {
		return nil, fmt.Errorf("physics: drivetrain efficiency must be in (0,1], got %f", car.DrivetrainEff)
	}
	if err := circuit.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		car:     car,
		circuit: circuit,
		battery: NewBattery(car.BatteryCapacityJ),
		dt:      dt,
	}, nil
}

// Step advances the car by one timestep. The done flag is true once the car
// crosses the finish line or the battery is exhausted; further calls after
// that keep reporting done without advancing.
func (e *Engine) Step() (telemetry.Record, bool, error) {
	if e.finished {
		return e.record(e.circuit.MaxVelocityAt(e.distance), 0, 0, 0), true, nil
	}

	limit := e.circuit.MaxVelocityAt(e.distance)
	target := e.targetVelocity(limit)

	accel, motorPower := e.command(target)

	// Integrate, clamping at the target so a step never overshoots a limit
	// in either direction.
	v := e.velocity + accel*e.dt
	switch {
	case e.velocity <= target && v > target:
		v = target
	case e.velocity > target && v < target:
		v = target
	}
	if v < 0 {
		v = 0
	}
	e.distance += (e.velocity + v) / 2 * e.dt
	e.velocity = v
	e.t += e.dt

	batteryPower := e.applyBattery(motorPower)

	if e.distance >= e.circuit.Length() {
		e.finished = true
	}

	rec := e.record(limit, accel, motorPower, batteryPower)
	return rec, e.finished, nil
}

// targetVelocity is the local limit, lowered when a slower segment ahead is
// within the current braking envelope.
func (e *Engine) targetVelocity(limit float64) float64 {
	ahead, distTo := e.circuit.NextLimitWithin(e.distance, lookaheadM)
	if ahead < e.velocity && !math.IsInf(distTo, 1) {
		// One step of travel as margin: the check runs once per step, so
		// without it the brake point can be overshot by up to v*dt.
		if e.car.brakingDistanceTo(e.velocity, ahead)+e.velocity*e.dt >= distTo {
			return ahead
		}
	}
	return limit
}

// command picks the acceleration and motor power for this step.
func (e *Engine) command(target float64) (accel, motorPower float64) {
	drag := e.car.dragForce(e.velocity)

	if e.velocity > target {
		// Service braking; drag helps, motor off.
		return -e.car.BrakeDecel, 0
	}

	// Available tractive force: power-limited (F = P/v) and traction-limited.
	v := math.Max(e.velocity, 0.1)
	available := math.Min(e.car.PeakPowerW/v, e.car.MassKg*e.car.MaxAccel)

	// Demand only what reaching the target by the end of this step takes,
	// so cruising at the limit costs cruise power, not peak power.
	needed := e.car.MassKg*(target-e.velocity)/e.dt + drag
	tractive := math.Min(available, needed)
	if tractive < 0 {
		tractive = 0
	}

	accel = (tractive - drag) / e.car.MassKg
	motorPower = tractive * e.velocity
	if motorPower > e.car.PeakPowerW {
		motorPower = e.car.PeakPowerW
	}
	return accel, motorPower
}

// applyBattery converts motor power to battery power for this step and
// updates the pack. Braking recovers a fraction of kinetic power. Returns
// the battery-side power (positive = discharge).
func (e *Engine) applyBattery(motorPower float64) float64 {
	if motorPower > 0 {
		p := motorPower / e.car.DrivetrainEff
		if !e.battery.Drain(p * e.dt) {
			e.finished = true
		}
		return p
	}
	if e.velocity > 0 && e.car.RegenEff > 0 {
		p := e.car.MassKg * e.car.BrakeDecel * e.velocity * e.car.RegenEff
		e.battery.Recover(p * e.dt)
		return -p
	}
	return 0
}

func (e *Engine) record(limit, accel, motorPower, batteryPower float64) telemetry.Record {
	return telemetry.Record{
		Time:             e.t,
		Distance:         e.distance,
		Velocity:         e.velocity,
		TrackMaxVelocity: limit,
		Acceleration:     accel,
		MotorPower:       motorPower,
		BatteryPower:     batteryPower,
	}
}

// Battery exposes the pack for end-of-run reporting.
func (e *Engine) Battery() *Battery { return e.battery }

// Elapsed returns the simulated time so far.
func (e *Engine) Elapsed() float64 { return e.t }

// Distance returns the distance covered so far.
func (e *Engine) Distance() float64 { return e.distance }
