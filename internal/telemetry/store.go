package telemetry

import (
	"sync"
	"sync/atomic"
)

// Series names one tracked quantity.
type Series string

// The seven quantities sampled at every simulation step.
const (
	SeriesTime             Series = "time"
	SeriesDistance         Series = "distance"
	SeriesVelocity         Series = "velocity"
	SeriesTrackMaxVelocity Series = "track_max_velocity"
	SeriesAcceleration     Series = "acceleration"
	SeriesMotorPower       Series = "motor_power"
	SeriesBatteryPower     Series = "battery_power"
)

var seriesOrder = []Series{
	SeriesTime,
	SeriesDistance,
	SeriesVelocity,
	SeriesTrackMaxVelocity,
	SeriesAcceleration,
	SeriesMotorPower,
	SeriesBatteryPower,
}

// AllSeries returns every tracked series in canonical column order.
func AllSeries() []Series {
	out := make([]Series, len(seriesOrder))
	copy(out, seriesOrder)
	return out
}

// Record holds one value per series at a single index.
type Record struct {
	Time             float64
	Distance         float64
	Velocity         float64
	TrackMaxVelocity float64
	Acceleration     float64
	MotorPower       float64
	BatteryPower     float64
}

// Field returns the record value for the named series.
func (r Record) Field(s Series) float64 {
	switch s {
	case SeriesTime:
		return r.Time
	case SeriesDistance:
		return r.Distance
	case SeriesVelocity:
		return r.Velocity
	case SeriesTrackMaxVelocity:
		return r.TrackMaxVelocity
	case SeriesAcceleration:
		return r.Acceleration
	case SeriesMotorPower:
		return r.MotorPower
	case SeriesBatteryPower:
		return r.BatteryPower
	}
	return 0
}

// Store is the shared sample table. One writer appends records; readers pull
// committed data concurrently. The committed index is the single visibility
// authority: everything at or below it is fully written and immutable,
// everything above it does not exist as far as readers are concerned.
type Store struct {
	mu        sync.RWMutex
	series    map[Series][]float64
	committed atomic.Int64
	pending   int64 // writer-owned, -1 when no record is open
}

// NewStore returns an empty store with committed index -1.
func NewStore() *Store {
	s := &Store{
		series:  make(map[Series][]float64, len(seriesOrder)),
		pending: -1,
	}
	for _, name := range seriesOrder {
		s.series[name] = make([]float64, 0, 1024)
	}
	s.committed.Store(-1)
	return s
}

// BeginRecord opens the next record and returns its index. The slot stays
// invisible to readers until CommitRecord. Writer-only.
func (s *Store) BeginRecord() int {
	s.pending = s.committed.Load() + 1

	// Grow every series by one slot. The lock covers slice reallocation,
	// not completeness: readers never touch indices above the committed one.
	s.mu.Lock()
	for _, name := range seriesOrder {
		if int64(len(s.series[name])) == s.pending {
			s.series[name] = append(s.series[name], 0)
		}
	}
	s.mu.Unlock()

	return int(s.pending)
}

// WriteField stores one series value for the in-progress record. Writer-only.
func (s *Store) WriteField(index int, name Series, value float64) error {
	if s.pending < 0 {
		return ErrNoOpenRecord
	}
	if int64(index) != s.pending {
		return &RangeError{Index: index, Committed: int(s.committed.Load())}
	}
	col, ok := s.series[name]
	if !ok {
		return ErrUnknownSeries
	}
	col[index] = value
	return nil
}

// CommitRecord publishes the in-progress record, advancing the committed
// index. This is the last step of every append and the only point at which
// new data becomes visible. Writer-only.
func (s *Store) CommitRecord() error {
	if s.pending < 0 {
		return ErrNoOpenRecord
	}
	s.committed.Store(s.pending)
	s.pending = -1
	return nil
}

// Append writes and commits a full record in one call and returns its index.
// Writer-only convenience over BeginRecord/WriteField/CommitRecord.
func (s *Store) Append(rec Record) int {
	i := s.BeginRecord()
	for _, name := range seriesOrder {
		s.WriteField(i, name, rec.Field(name))
	}
	s.CommitRecord()
	return i
}

// CurrentIndex returns the last committed index, or -1 when no record has
// been committed. The value is a snapshot: consumers should read it once per
// refresh cycle and bound all reads in that cycle by it.
func (s *Store) CurrentIndex() int {
	return int(s.committed.Load())
}

// Len returns the number of committed records.
func (s *Store) Len() int {
	return s.CurrentIndex() + 1
}

// ReadField returns the committed value at index for the named series.
func (s *Store) ReadField(index int, name Series) (float64, error) {
	committed := s.committed.Load()
	if index < 0 || int64(index) > committed {
		return 0, &RangeError{Index: index, Committed: int(committed)}
	}
	s.mu.RLock()
	col, ok := s.series[name]
	if !ok {
		s.mu.RUnlock()
		return 0, ErrUnknownSeries
	}
	v := col[index]
	s.mu.RUnlock()
	return v, nil
}

// ReadRange copies out values for the named series from start through end
// inclusive. end is clamped to the committed index; start beyond it is an
// error. The returned slice is the caller's to keep.
func (s *Store) ReadRange(start, end int, name Series) ([]float64, error) {
	committed := s.committed.Load()
	if start < 0 || int64(start) > committed {
		return nil, &RangeError{Index: start, Committed: int(committed)}
	}
	if int64(end) > committed {
		end = int(committed)
	}
	if end < start {
		return []float64{}, nil
	}
	s.mu.RLock()
	col, ok := s.series[name]
	if !ok {
		s.mu.RUnlock()
		return nil, ErrUnknownSeries
	}
	out := make([]float64, end-start+1)
	copy(out, col[start:end+1])
	s.mu.RUnlock()
	return out, nil
}

// ReadRecord assembles the full committed record at index.
func (s *Store) ReadRecord(index int) (Record, error) {
	committed := s.committed.Load()
	if index < 0 || int64(index) > committed {
		return Record{}, &RangeError{Index: index, Committed: int(committed)}
	}
	s.mu.RLock()
	rec := Record{
		Time:             s.series[SeriesTime][index],
		Distance:         s.series[SeriesDistance][index],
		Velocity:         s.series[SeriesVelocity][index],
		TrackMaxVelocity: s.series[SeriesTrackMaxVelocity][index],
		Acceleration:     s.series[SeriesAcceleration][index],
		MotorPower:       s.series[SeriesMotorPower][index],
		BatteryPower:     s.series[SeriesBatteryPower][index],
	}
	s.mu.RUnlock()
	return rec, nil
}
