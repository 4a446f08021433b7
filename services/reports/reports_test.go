package reports

import (
	"testing"

	"schooladmin_go/models"
)

func grade(subjectID uint, name string, score float64) models.Grade {
	return models.Grade{
		SubjectID: subjectID,
		Subject:   models.Subject{Name: name},
		Score:     score,
	}
}

func TestAggregate(t *testing.T) {
	grades := []models.Grade{
		grade(1, "Mathematics", 82),
		grade(2, "English", 74.5),
		grade(3, "Science", 91),
	}

	lines, total, avg := Aggregate(grades)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if total != 247.5 {
		t.Errorf("total = %v, want 247.5", total)
	}
	if avg != 82.5 {
		t.Errorf("average = %v, want 82.5", avg)
	}
	if lines[0].SubjectName != "Mathematics" || lines[0].Score != 82 {
		t.Errorf("unexpected first line: %+v", lines[0])
	}
}

func TestAggregateRoundsAverage(t *testing.T) {
	grades := []models.Grade{
		grade(1, "Mathematics", 70),
		grade(2, "English", 71),
		grade(3, "Science", 71),
	}

	_, _, avg := Aggregate(grades)
	// 212/3 = 70.666..., presented as 70.67
	if avg != 70.67 {
		t.Errorf("average = %v, want 70.67", avg)
	}
}

func TestAggregateEmpty(t *testing.T) {
	lines, total, avg := Aggregate(nil)
	if len(lines) != 0 || total != 0 || avg != 0 {
		t.Errorf("empty grade set should yield zeros, got lines=%d total=%v avg=%v", len(lines), total, avg)
	}
}

func TestBuild(t *testing.T) {
	grades := []models.Grade{
		grade(1, "Mathematics", 80),
		grade(2, "English", 90),
		grade(3, "Science", 70),
	}

	summary, err := Build(grades)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Total != 240 {
		t.Errorf("total = %v, want 240", summary.Total)
	}
	if summary.Average != 80.00 {
		t.Errorf("average = %v, want 80.00", summary.Average)
	}
	if summary.Position != 1 {
		t.Errorf("default position = %d, want 1", summary.Position)
	}
}

func TestBuildNoGrades(t *testing.T) {
	if _, err := Build(nil); err != ErrNoGrades {
		t.Fatalf("expected ErrNoGrades for an empty term, got %v", err)
	}
	if _, err := Build([]models.Grade{}); err != ErrNoGrades {
		t.Fatalf("expected ErrNoGrades for an empty slice, got %v", err)
	}
}

func TestPosition(t *testing.T) {
	classAverages := []float64{68.5, 91.2, 75, 91.2, 55}

	cases := []struct {
		avg  float64
		want int
	}{
		{91.2, 1}, // tied students share first
		{75, 3},
		{68.5, 4},
		{55, 5},
	}
	for _, tc := range cases {
		if got := Position(tc.avg, classAverages); got != tc.want {
			t.Errorf("Position(%v) = %d, want %d", tc.avg, got, tc.want)
		}
	}
}

func TestPositionSingleStudent(t *testing.T) {
	if got := Position(80, []float64{80}); got != 1 {
		t.Errorf("sole student should rank first, got %d", got)
	}
	if got := Position(80, nil); got != 1 {
		t.Errorf("empty class defaults to first, got %d", got)
	}
}

func TestLetterFor(t *testing.T) {
	scale := []models.GradeScale{
		{Grade: "A", MinScore: 80, MaxScore: 100},
		{Grade: "B", MinScore: 70, MaxScore: 79.99},
		{Grade: "C", MinScore: 60, MaxScore: 69.99},
		{Grade: "F", MinScore: 0, MaxScore: 59.99},
	}

	cases := []struct {
		score float64
		want  string
	}{
		{95, "A"},
		{80, "A"},
		{79.99, "B"},
		{60, "C"},
		{0, "F"},
		{101, ""},
	}
	for _, tc := range cases {
		if got := LetterFor(tc.score, scale); got != tc.want {
			t.Errorf("LetterFor(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}
