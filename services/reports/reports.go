package reports

import (
	"errors"
	"math"
	"sort"

	"schooladmin_go/models"
)

// ErrNoGrades signals that no report card exists for the requested term
// and session because no grades were recorded.
var ErrNoGrades = errors.New("no grades found for this term/session")

// SubjectLine is one subject row on a rendered report card.
type SubjectLine struct {
	SubjectID   uint    `json:"subject_id"`
	SubjectName string  `json:"subject_name"`
	Score       float64 `json:"score"`
	Grade       string  `json:"grade"`
	Remarks     string  `json:"remarks"`
}

// Summary is the computed portion of a report card. Values are always
// recomputed from grades at read time; only remarks persist.
type Summary struct {
	Lines    []SubjectLine `json:"subjects"`
	Total    float64       `json:"total"`
	Average  float64       `json:"average"`
	Position int           `json:"position"`
}

// Round2 rounds to two decimal places, matching how averages are
// presented on printed report cards.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Aggregate turns a student's grades for one term into subject lines plus
// total and average. The average is rounded to two decimals; an empty
// grade set yields zeros rather than NaN.
func Aggregate(grades []models.Grade) ([]SubjectLine, float64, float64) {
	lines := make([]SubjectLine, 0, len(grades))
	total := 0.0
	for _, g := range grades {
		lines = append(lines, SubjectLine{
			SubjectID:   g.SubjectID,
			SubjectName: g.Subject.Name,
			Score:       g.Score,
			Grade:       g.Grade,
			Remarks:     g.Remarks,
		})
		total += g.Score
	}

	if len(lines) == 0 {
		return lines, 0, 0
	}
	avg := Round2(total / float64(len(lines)))
	return lines, total, avg
}

// Build assembles the computed portion of a report card. An empty grade
// set is not a blank card, it is ErrNoGrades; the caller fills Position
// once classmates have been aggregated.
func Build(grades []models.Grade) (Summary, error) {
	if len(grades) == 0 {
		return Summary{}, ErrNoGrades
	}
	lines, total, avg := Aggregate(grades)
	return Summary{Lines: lines, Total: total, Average: avg, Position: 1}, nil
}

// Position ranks a student within the class by average, 1-based and
// descending. Students sharing an average share a position.
func Position(studentAvg float64, classAverages []float64) int {
	if len(classAverages) == 0 {
		return 1
	}
	sorted := append([]float64(nil), classAverages...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	for i, avg := range sorted {
		if avg == studentAvg {
			return i + 1
		}
	}
	// The student's average should be in the list; if not, rank below all.
	return len(sorted) + 1
}

// LetterFor resolves a score to a letter grade against the configured
// scale. Returns "" when no band matches.
func LetterFor(score float64, scale []models.GradeScale) string {
	for _, band := range scale {
		if score >= band.MinScore && score <= band.MaxScore {
			return band.Grade
		}
	}
	return ""
}
