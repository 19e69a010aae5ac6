// Package physics implements the lap-velocity stepper that produces one
// telemetry record per fixed timestep.
//
// The model is a point-mass electric car driving a segmented track: it
// accelerates under peak motor power toward the local speed limit, brakes
// ahead of slower segments using its braking-distance envelope, and drains
// (or regeneratively recharges) its battery from the motor power it
// commands. All values are SI units.
package physics
