package bench

import (
	"math"

	"github.com/shravanasati/tck/internal/quality"
)

// Weights of the sub-scores in the total. They sum to 1.
type Weights struct {
	Time         float64 `json:"time"`
	CPU          float64 `json:"cpu"`
	Memory       float64 `json:"memory"`
	IO           float64 `json:"io"`
	Quality      float64 `json:"quality"`
	Practicality float64 `json:"practicality"`
}

// ScoreWeights favors maintainable code over raw speed.
var ScoreWeights = Weights{
	Time:         0.25,
	CPU:          0.15,
	Memory:       0.10,
	IO:           0.05,
	Quality:      0.20,
	Practicality: 0.25,
}

// ScoreBreakdown is the scored result of one variant.
type ScoreBreakdown struct {
	Time         float64 `json:"time"`
	CPU          float64 `json:"cpu"`
	Memory       float64 `json:"memory"`
	IO           float64 `json:"io"`
	Quality      float64 `json:"quality"`
	Practicality float64 `json:"practicality"`
	Total        float64 `json:"total"`
	// CorrectnessPenalty is set when Total was halved for a wrong result.
	CorrectnessPenalty bool  `json:"correctness_penalty"`
	Grade              Grade `json:"grade"`
}

// Score converts metrics and quality facts into a weighted 0..100 score.
func Score(m ComparisonMetrics, q, baseline quality.Metrics) ScoreBreakdown {
	s := ScoreBreakdown{
		Time:   TimeScore(m.TimeRatio),
		CPU:    CPUScore(m.CPURatio),
		Memory: MemoryScore(m.MemoryDeltaMB),
		IO:     IOScore(m.ReadReduction()),
	}
	if q.Valid() {
		s.Quality = QualityScore(q)
		s.Practicality = PracticalityScore(q, baseline)
	}

	w := ScoreWeights
	s.Total = clamp(s.Time*w.Time + s.CPU*w.CPU + s.Memory*w.Memory + s.IO*w.IO +
		s.Quality*w.Quality + s.Practicality*w.Practicality)
	if !m.Correct {
		s.Total *= 0.5
		s.CorrectnessPenalty = true
	}
	s.Grade = GradeFor(s.Total, s.Practicality)
	return s
}

// TimeScore scores below 1.5x steeply low.
func TimeScore(ratio float64) float64 {
	var s float64
	switch {
	case ratio < 1.5:
		s = ratio * 20
	case ratio >= 50:
		s = 100
	case ratio >= 10:
		s = 80 + (ratio-10)*0.5
	case ratio >= 2:
		s = 60 + (ratio-2)*2.5
	default:
		s = ratio * 30
	}
	return clamp(s)
}

func CPUScore(ratio float64) float64 {
	switch {
	case ratio >= 999:
		return 100
	case ratio >= 10:
		return 90
	case ratio >= 5:
		return 80
	case ratio >= 2:
		return 70
	}
	return clamp(ratio * 35)
}

// MemoryScore rewards any net reduction fully.
func MemoryScore(deltaMB float64) float64 {
	switch {
	case deltaMB <= 0:
		return 100
	case deltaMB <= 10:
		return clamp(90 - deltaMB*2)
	case deltaMB <= 50:
		return clamp(70 - (deltaMB-10)*1.5)
	}
	return clamp(math.Max(10, 70-deltaMB*0.5))
}

// IOScore is neutral when the read count did not change.
func IOScore(readReduction int64) float64 {
	switch {
	case readReduction >= 100:
		return 100
	case readReduction >= 50:
		return 90
	case readReduction >= 10:
		return 80
	case readReduction > 0:
		return clamp(60 + float64(readReduction)*2)
	}
	return 50
}

// QualityScore expects valid metrics.
func QualityScore(q quality.Metrics) float64 {
	var cc float64
	switch {
	case q.Complexity <= 5:
		cc = 100
	case q.Complexity <= 10:
		cc = 80
	case q.Complexity <= 20:
		cc = 60
	default:
		cc = 30
	}
	return clamp(math.Max(0, q.Maintainability)*0.4 + cc*0.3 + slocScore(q.SLOC)*0.3)
}

func slocScore(sloc int) float64 {
	switch {
	case sloc <= 15:
		return 100
	case sloc <= 30:
		return 80
	case sloc <= 60:
		return 60
	}
	return 30
}

// PracticalityScore penalizes dependencies, heavy stacks and code growth
// relative to the baseline. It expects valid candidate metrics.
func PracticalityScore(q, baseline quality.Metrics) float64 {
	var dep float64
	switch n := q.Dependencies; {
	case n == 0:
		dep = 100
	case n <= 2:
		dep = 80
	case n <= 5:
		dep = 60
	default:
		dep = math.Max(20, 60-float64(n-5)*10)
	}

	var tech, lifetime float64
	switch w := q.TechWeight; {
	case w <= 1:
		tech = 100
	case w == 2:
		tech = 80
	case w == 3:
		tech = 60
	default:
		tech = math.Max(20, 60-float64(w-3)*20)
	}
	switch {
	case q.TechWeight >= 3:
		lifetime = 60
	case q.TechWeight == 2:
		lifetime = 80
	default:
		lifetime = 100
	}

	ratio := 1.0
	if baseline.Valid() && baseline.SLOC > 0 {
		ratio = float64(q.SLOC) / float64(baseline.SLOC)
	}
	var size float64
	switch {
	case ratio <= 1.2:
		size = 100
	case ratio <= 2.0:
		size = 80
	case ratio <= 5.0:
		size = 60
	default:
		size = math.Max(20, 60-(ratio-5)*5)
	}

	return clamp(dep*0.3 + tech*0.3 + size*0.2 + lifetime*0.2)
}

func clamp(s float64) float64 {
	if math.IsNaN(s) {
		return 0
	}
	return math.Min(math.Max(s, 0), 100)
}
