package algo

import (
	"math"
	"sort"
	"strings"

	"github.com/huangsam/fragility/schema"
)

// RankAssessments sorts assessments by risk score in descending order and
// returns the top 'limit' entries. Equal scores fall back to region id so the
// order is stable across runs. A limit of zero or less keeps everything.
// The slice is sorted in place.
func RankAssessments(assessments []schema.Assessment, limit int) []schema.Assessment {
	sort.SliceStable(assessments, func(i, j int) bool {
		if assessments[i].Risk.RiskScore != assessments[j].Risk.RiskScore {
			return assessments[i].Risk.RiskScore > assessments[j].Risk.RiskScore
		}
		return strings.Compare(assessments[i].Region, assessments[j].Region) < 0
	})
	if limit > 0 && len(assessments) > limit {
		return assessments[:limit]
	}
	return assessments
}

// RankFeatureDeltas sorts feature deltas in place by absolute change, largest
// first. Ties go to the positive delta, then to the feature name.
func RankFeatureDeltas(deltas []schema.FeatureDelta) []schema.FeatureDelta {
	sort.SliceStable(deltas, func(i, j int) bool {
		a := deltas[i]
		b := deltas[j]

		// Primary: Absolute delta (descending)
		absA := math.Abs(a.Delta)
		absB := math.Abs(b.Delta)
		if absA != absB {
			return absA > absB
		}

		// Secondary: Delta sign (positive before negative)
		if a.Delta != b.Delta {
			return a.Delta > b.Delta
		}

		// Tertiary: Feature (ascending)
		return strings.Compare(string(a.Feature), string(b.Feature)) < 0
	})
	return deltas
}
