// Package track models the circuit a simulated car drives: an ordered list
// of segments, each with a length and a speed limit. All values are SI units
// (metres, m/s).
package track

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Segment is one stretch of track with a uniform speed limit.
type Segment struct {
	Name        string  `yaml:"name"`
	LengthM     float64 `yaml:"length_m"`
	MaxVelocity float64 `yaml:"max_velocity"`
}

// Track is an ordered sequence of segments driven start to finish.
type Track struct {
	Name     string    `yaml:"name"`
	Segments []Segment `yaml:"segments"`
}

// Load reads a track definition from a YAML file.
func Load(path string) (*Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var t Track
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing track: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Save writes the track definition to a YAML file.
func Save(path string, t *Track) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks segment geometry and limits.
func (t *Track) Validate() error {
	if len(t.Segments) == 0 {
		return fmt.Errorf("track %q has no segments", t.Name)
	}
	for i, seg := range t.Segments {
		if seg.LengthM <= 0 {
			return fmt.Errorf("track %q segment %d: length must be positive, got %f", t.Name, i, seg.LengthM)
		}
		if seg.MaxVelocity <= 0 {
			return fmt.Errorf("track %q segment %d: max velocity must be positive, got %f", t.Name, i, seg.MaxVelocity)
		}
	}
	return nil
}

// Length returns the total track length in metres.
func (t *Track) Length() float64 {
	total := 0.0
	for _, seg := range t.Segments {
		total += seg.LengthM
	}
	return total
}

// SegmentAt returns the segment containing the given distance from the start,
// and the distance remaining within it. Past the end it returns the final
// segment with zero remaining.
func (t *Track) SegmentAt(distance float64) (Segment, float64) {
	pos := 0.0
	for _, seg := range t.Segments {
		if distance < pos+seg.LengthM {
			return seg, pos + seg.LengthM - distance
		}
		pos += seg.LengthM
	}
	return t.Segments[len(t.Segments)-1], 0
}

// MaxVelocityAt returns the speed limit at the given distance from the start.
func (t *Track) MaxVelocityAt(distance float64) float64 {
	seg, _ := t.SegmentAt(distance)
	return seg.MaxVelocity
}

// NextLimitWithin scans ahead from distance and returns the lowest speed
// limit beginning within lookahead metres, together with the distance to
// where it starts. When no slower limit lies ahead it returns the current
// limit and +Inf.
func (t *Track) NextLimitWithin(distance, lookahead float64) (limit, distTo float64) {
	cur := t.MaxVelocityAt(distance)
	limit = cur
	distTo = math.Inf(1)

	pos := 0.0
	for _, seg := range t.Segments {
		segStart := pos
		pos += seg.LengthM
		if segStart <= distance {
			continue
		}
		if segStart-distance > lookahead {
			break
		}
		if seg.MaxVelocity < limit {
			limit = seg.MaxVelocity
			distTo = segStart - distance
		}
	}
	return limit, distTo
}
