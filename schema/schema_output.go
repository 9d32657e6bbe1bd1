package schema

// EnrichedAssessment adds presentation data to an Assessment.
type EnrichedAssessment struct {
	Rank  int    `json:"rank"`
	Label string `json:"label"`
	Assessment
}

// GetPlainLabel returns a plain text severity label for a risk score.
// It is finer grained than RiskClass and only used for presentation.
func GetPlainLabel(score float64) string {
	switch {
	case score >= 80:
		return "Critical"
	case score >= 60:
		return "High"
	case score >= 40:
		return "Moderate"
	default:
		return "Low"
	}
}

// EnrichAssessments adds rank and label to a list of assessments.
// The input order is preserved; callers sort beforehand when ranking matters.
func EnrichAssessments(assessments []Assessment) []EnrichedAssessment {
	output := make([]EnrichedAssessment, len(assessments))
	for i, a := range assessments {
		output[i] = EnrichedAssessment{
			Rank:       i + 1,
			Label:      GetPlainLabel(a.Risk.RiskScore),
			Assessment: a,
		}
	}
	return output
}
