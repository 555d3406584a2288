package calc

import (
	"math"
	"strconv"
)

// BenfordDistribution is the expected frequency of leading digits 1-9.
var BenfordDistribution = [10]float64{
	1: 0.30103,
	2: 0.17609,
	3: 0.12494,
	4: 0.09691,
	5: 0.07918,
	6: 0.06695,
	7: 0.05799,
	8: 0.05115,
	9: 0.04576,
}

type BenfordLevel string

const (
	BenfordInsufficient BenfordLevel = "insufficient data"
	BenfordLow          BenfordLevel = "low"
	BenfordMedium       BenfordLevel = "medium"
	BenfordHigh         BenfordLevel = "high"
)

// Mean absolute deviation thresholds. Slightly looser than audit practice
// since one company's facts are a small sample.
const (
	benfordMediumMAD = 0.010
	benfordHighMAD   = 0.015
	// benfordMinValue skips single digit amounts, which are mostly noise.
	benfordMinValue = 10
)

// BenfordResult holds the leading digit distribution of a value set.
type BenfordResult struct {
	DigitCounts      map[int]int     `json:"digitCounts"`
	DigitFrequencies map[int]float64 `json:"digitFrequencies"`
	TotalCount       int             `json:"totalCount"`
	MAD              float64         `json:"mad"`
	Flagged          bool            `json:"flagged"`
	Level            BenfordLevel    `json:"level"`
}

// AnalyzeBenford performs first-digit analysis on reported amounts. Values
// below 10 in magnitude and non-finite values are ignored.
func AnalyzeBenford(values []float64) BenfordResult {
	counts := make(map[int]int)
	processed := 0
	for _, v := range values {
		d, ok := leadingDigit(v)
		if !ok {
			continue
		}
		counts[d]++
		processed++
	}
	if processed == 0 {
		return BenfordResult{Level: BenfordInsufficient}
	}

	freqs := make(map[int]float64, 9)
	sumDiff := 0.0
	for d := 1; d <= 9; d++ {
		actual := float64(counts[d]) / float64(processed)
		freqs[d] = actual
		sumDiff += math.Abs(actual - BenfordDistribution[d])
	}
	mad := sumDiff / 9

	r := BenfordResult{
		DigitCounts:      counts,
		DigitFrequencies: freqs,
		TotalCount:       processed,
		MAD:              mad,
		Level:            BenfordLow,
	}
	switch {
	case mad > benfordHighMAD:
		r.Level = BenfordHigh
		r.Flagged = true
	case mad > benfordMediumMAD:
		r.Level = BenfordMedium
	}
	return r
}

func leadingDigit(v float64) (int, bool) {
	v = math.Abs(v)
	if v < benfordMinValue || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	for _, c := range strconv.FormatFloat(v, 'f', -1, 64) {
		if c >= '1' && c <= '9' {
			return int(c - '0'), true
		}
	}
	return 0, false
}
