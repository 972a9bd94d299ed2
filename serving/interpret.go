package serving

import "github.com/wellsync/wellsync-ai/dataset"

// interpretWellness maps a predicted wellness index to a reading.
func interpretWellness(v float64) string {
	switch {
	case v >= 80:
		return "Excellent mental wellness"
	case v >= 70:
		return "Good mental wellness"
	case v >= 60:
		return "Moderate mental wellness"
	case v >= 50:
		return "Below average mental wellness"
	default:
		return "Poor mental wellness - consider lifestyle changes"
	}
}

// interpretAddiction maps a predicted addiction score to a risk reading.
func interpretAddiction(v float64) string {
	switch {
	case v >= 7:
		return "High risk of social media addiction"
	case v >= 5:
		return "Moderate risk of social media addiction"
	case v >= 4:
		return "Low to moderate risk of social media addiction"
	default:
		return "Low risk of social media addiction"
	}
}

// stressCategory bands a predicted stress level.
func stressCategory(v float64) string {
	switch {
	case v <= 3:
		return "Low"
	case v <= 6:
		return "Moderate"
	case v <= 8:
		return "High"
	default:
		return "Very High"
	}
}

func interpretStress(v float64) string {
	switch stressCategory(v) {
	case "Low":
		return "Low stress level - you are managing well"
	case "Moderate":
		return "Moderate stress level - some areas may need attention"
	case "High":
		return "High stress level - consider active stress management"
	default:
		return "Very high stress level - seek support and prioritize recovery"
	}
}

// stressRecommendations derives lifestyle advice from the prediction and
// the reported habits. Fields the record did not supply contribute no
// recommendation.
func stressRecommendations(predicted float64, rec *dataset.Record) []string {
	var recs []string

	if predicted > 6 {
		recs = append(recs, "Consider stress management techniques such as meditation or deep breathing")
	}
	if v, ok := rec.Numeric["sleep_hours"]; ok && v < 7 {
		recs = append(recs, "Aim for 7-9 hours of sleep per night")
	}
	if v, ok := rec.Numeric["screen_time_hours"]; ok && v > 10 {
		recs = append(recs, "Reduce daily screen time, especially before bed")
	}
	if v, ok := rec.Numeric["exercise_minutes_per_week"]; ok && v < 150 {
		recs = append(recs, "Increase physical activity to at least 150 minutes per week")
	}
	if v, ok := rec.Numeric["social_hours_per_week"]; ok && v < 5 {
		recs = append(recs, "Spend more time connecting with friends and family")
	}

	if len(recs) == 0 {
		recs = append(recs, "Maintain your current healthy lifestyle habits")
	}
	return recs
}
