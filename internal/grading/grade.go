package grading

import (
	"math"

	"github.com/shopspring/decimal"
)

type threshold struct {
	min   float64
	grade Grade
}

// thresholds are inclusive lower bounds, highest first.
var thresholds = []threshold{
	{90, GradeAPlus},
	{80, GradeA},
	{70, GradeBPlus},
	{60, GradeB},
	{50, GradeCPlus},
	{40, GradeC},
	{33, GradeD},
}

// Classify maps a percentage to its letter grade. Values outside [0, 100]
// are clamped; NaN grades as F.
func Classify(percentage float64) Grade {
	if math.IsNaN(percentage) {
		return GradeF
	}
	percentage = math.Max(0, math.Min(100, percentage))

	for _, t := range thresholds {
		if percentage >= t.min {
			return t.grade
		}
	}
	return GradeF
}

// Rank orders grades from F (0) to A+ (7).
func Rank(grade Grade) int {
	for i, t := range thresholds {
		if t.grade == grade {
			return len(thresholds) - i
		}
	}
	return 0
}

// ratio returns 100*num/den exactly and rounded to two places. A zero
// denominator yields zero.
func ratio(num, den int) (exact float64, rounded float64) {
	if den == 0 {
		return 0, 0
	}
	value := decimal.NewFromInt(int64(num)).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(int64(den)))
	return value.InexactFloat64(), value.Round(2).InexactFloat64()
}

// mean returns sum/count rounded to two places, or zero when count is zero.
func mean(sum, count int) float64 {
	if count == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(count))).Round(2).InexactFloat64()
}
