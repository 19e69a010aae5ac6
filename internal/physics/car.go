package physics

// Car holds the vehicle parameters of the simulated EV.
type Car struct {
	MassKg            float64 `yaml:"mass_kg"`
	PeakPowerW        float64 `yaml:"peak_power_w"`
	MaxAccel          float64 `yaml:"max_accel"`       // traction limit, m/s^2
	BrakeDecel        float64 `yaml:"brake_decel"`     // service braking, m/s^2 (positive)
	DragCoeff         float64 `yaml:"drag_coeff"`      // Cd
	FrontalAreaM2     float64 `yaml:"frontal_area_m2"` // A
	RollingResistance float64 `yaml:"rolling_resistance"`
	DrivetrainEff     float64 `yaml:"drivetrain_eff"` // battery-to-wheel, (0,1]
	RegenEff          float64 `yaml:"regen_eff"`      // wheel-to-battery under braking, [0,1)
	BatteryCapacityJ  float64 `yaml:"battery_capacity_j"`
}

// DefaultCar returns parameters for a small electric race car.
func DefaultCar() Car {
	return Car{
		MassKg:            300,
		PeakPowerW:        40000,
		MaxAccel:          6.0,
		BrakeDecel:        8.0,
		DragCoeff:         0.8,
		FrontalAreaM2:     1.1,
		RollingResistance: 0.015,
		DrivetrainEff:     0.9,
		RegenEff:          0.3,
		BatteryCapacityJ:  5.0e6,
	}
}

const (
	airDensity = 1.225 // kg/m^3 at sea level
	gravity    = 9.81  // m/s^2
)

// dragForce returns the total resistive force at velocity v.
func (c Car) dragForce(v float64) float64 {
	aero := 0.5 * airDensity * c.DragCoeff * c.FrontalAreaM2 * v * v
	rolling := c.RollingResistance * c.MassKg * gravity
	return aero + rolling
}

// brakingDistanceTo returns the distance needed to slow from v to targetV
// at the car's service braking rate. Zero when already at or below targetV.
func (c Car) brakingDistanceTo(v, targetV float64) float64 {
	if v <= targetV || c.BrakeDecel <= 0 {
		return 0
	}
	return (v*v - targetV*targetV) / (2 * c.BrakeDecel)
}

// Battery tracks remaining energy with charge/discharge clamping.
type Battery struct {
	capacityJ  float64
	remainingJ float64
}

// NewBattery returns a full battery of the given capacity.
func NewBattery(capacityJ float64) *Battery {
	return &Battery{capacityJ: capacityJ, remainingJ: capacityJ}
}

// Drain removes energy and reports whether any charge remains.
func (b *Battery) Drain(joules float64) bool {
	b.remainingJ -= joules
	if b.remainingJ <= 0 {
		b.remainingJ = 0
		return false
	}
	return true
}

// Recover adds regenerated energy, clamped to capacity.
func (b *Battery) Recover(joules float64) {
	b.remainingJ += joules
	if b.remainingJ > b.capacityJ {
		b.remainingJ = b.capacityJ
	}
}

// RemainingJ returns the energy left in the pack.
func (b *Battery) RemainingJ() float64 { return b.remainingJ }

// StateOfCharge returns remaining energy as a fraction of capacity.
func (b *Battery) StateOfCharge() float64 {
	if b.capacityJ <= 0 {
		return 0
	}
	return b.remainingJ / b.capacityJ
}
