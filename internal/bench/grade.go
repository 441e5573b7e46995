package bench

// Grade is a letter grade for a total score.
type Grade string

const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeBPlus Grade = "B+"
	GradeB     Grade = "B"
	GradeCPlus Grade = "C+"
	GradeC     Grade = "C"
	GradeD     Grade = "D"
)

// PracticalityThreshold is the practicality score below which grading is stricter.
const PracticalityThreshold = 60

type gradeStep struct {
	grade          Grade
	normal, strict float64
}

var gradeSteps = []gradeStep{
	{GradeAPlus, 95, 98},
	{GradeA, 85, 90},
	{GradeBPlus, 75, 80},
	{GradeB, 65, 70},
	{GradeCPlus, 55, 60},
	{GradeC, 45, 50},
}

var gradeLabels = map[Grade]string{
	GradeAPlus: "excellent",
	GradeA:     "very good",
	GradeBPlus: "good",
	GradeB:     "above average",
	GradeCPlus: "average",
	GradeC:     "below average",
	GradeD:     "needs work",
}

// GradeFor maps a total to a grade, with stricter thresholds for low practicality.
func GradeFor(total, practicality float64) Grade {
	strict := practicality < PracticalityThreshold
	for _, step := range gradeSteps {
		threshold := step.normal
		if strict {
			threshold = step.strict
		}
		if total >= threshold {
			return step.grade
		}
	}
	return GradeD
}

// Label is the grade with a short description, like "A+ (excellent)".
func (g Grade) Label() string {
	if desc, ok := gradeLabels[g]; ok {
		return string(g) + " (" + desc + ")"
	}
	return string(g)
}
