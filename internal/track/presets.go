package track

// Built-in circuits, selectable by name from the CLI.

var presets = map[string]*Track{
	"oval": {
		Name: "oval",
		Segments: []Segment{
			{Name: "front straight", LengthM: 400, MaxVelocity: 60},
			{Name: "turn 1-2", LengthM: 200, MaxVelocity: 25},
			{Name: "back straight", LengthM: 400, MaxVelocity: 60},
			{Name: "turn 3-4", LengthM: 200, MaxVelocity: 25},
		},
	},
	"sprint": {
		Name: "sprint",
		Segments: []Segment{
			{Name: "straight", LengthM: 1000, MaxVelocity: 80},
		},
	},
	"road": {
		Name: "road",
		Segments: []Segment{
			{Name: "start straight", LengthM: 300, MaxVelocity: 55},
			{Name: "hairpin", LengthM: 80, MaxVelocity: 12},
			{Name: "esses", LengthM: 250, MaxVelocity: 30},
			{Name: "kink", LengthM: 120, MaxVelocity: 45},
			{Name: "long straight", LengthM: 600, MaxVelocity: 70},
			{Name: "final corner", LengthM: 150, MaxVelocity: 20},
		},
	},
}

// Preset returns a copy of the named built-in track, or nil if unknown.
func Preset(name string) *Track {
	t, ok := presets[name]
	if !ok {
		return nil
	}
	cp := *t
	cp.Segments = make([]Segment, len(t.Segments))
	copy(cp.Segments, t.Segments)
	return &cp
}

// ListPresets returns the names of the built-in tracks.
func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	return names
}
