package forecast

import "time"

// Point is a single projected value.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Project returns steps predictions spaced by step, starting one step after from.
func (m *TrendModel) Project(from time.Time, step time.Duration, steps int) []Point {
	if steps <= 0 || step <= 0 {
		return []Point{}
	}

	points := make([]Point, 0, steps)
	for i := 1; i <= steps; i++ {
		at := from.Add(time.Duration(i) * step)
		points = append(points, Point{Timestamp: at, Value: m.Predict(at)})
	}
	return points
}
