package features

import (
	"strings"

	"github.com/wellsync/wellsync-ai/dataset"
)

// popularPlatforms are the platforms associated with higher addiction
// scores in the survey data.
var popularPlatforms = map[string]bool{
	"Instagram": true,
	"TikTok":    true,
	"Snapchat":  true,
	"Facebook":  true,
	"Twitter":   true,
}

// EngineerAcademic appends the derived features for the social-media
// addiction model: usage intensity buckets, sleep deficits, mental-health
// risk levels, interaction terms, a combined risk score and platform and
// relationship indicators.
func EngineerAcademic(f *dataset.Frame) error {
	r := &frameReader{frame: f}
	usage := r.numeric("avg_daily_usage_hours")
	sleep := r.numeric("sleep_hours_per_night")
	mental := r.numeric("mental_health_score")
	conflicts := r.numeric("conflicts_over_social_media")
	age := r.numeric("age")
	affects := r.categorical("affects_academic_performance")
	platform := r.categorical("most_used_platform")
	relationship := r.categorical("relationship_status")
	if r.err != nil {
		return r.err
	}

	n := f.NumRows()
	intensity := make([]float64, n)
	deficit := make([]float64, n)
	severeDeficit := make([]float64, n)
	risk := make([]float64, n)
	usageSleep := make([]float64, n)
	mentalSleep := make([]float64, n)
	highConflict := make([]float64, n)
	ageGroup := make([]float64, n)
	poorAcademic := make([]float64, n)
	combinedRisk := make([]float64, n)
	usageSq := make([]float64, n)
	mentalSq := make([]float64, n)
	usageConflict := make([]float64, n)
	usesPopular := make([]float64, n)
	hasRelationship := make([]float64, n)

	for i := 0; i < n; i++ {
		intensity[i] = usageIntensity(usage[i])
		d := OptimalSleepHours - sleep[i]
		if d < 0 {
			d = 0
		}
		deficit[i] = d
		severeDeficit[i] = boolToFloat(sleep[i] < 6)
		risk[i] = mentalHealthRisk(mental[i])
		usageSleep[i] = usage[i] / (sleep[i] + epsilon)
		mentalSleep[i] = mental[i] * sleep[i] / 10
		highConflict[i] = boolToFloat(conflicts[i] >= 4)
		ageGroup[i] = studentAgeGroup(age[i])
		poorAcademic[i] = boolToFloat(strings.EqualFold(affects[i], "yes"))
		combinedRisk[i] = ((usage[i]/10)*0.3 +
			(d/8)*0.25 +
			((10-mental[i])/10)*0.25 +
			(conflicts[i]/5)*0.2) * 10
		usageSq[i] = usage[i] * usage[i]
		mentalSq[i] = mental[i] * mental[i]
		usageConflict[i] = usage[i] * conflicts[i]
		usesPopular[i] = boolToFloat(popularPlatforms[platform[i]])
		hasRelationship[i] = boolToFloat(!strings.EqualFold(relationship[i], "single"))
	}

	f.AddNumeric("usage_intensity", intensity)
	f.AddNumeric("sleep_deficit", deficit)
	f.AddNumeric("severe_sleep_deficit", severeDeficit)
	f.AddNumeric("mental_health_risk", risk)
	f.AddNumeric("usage_sleep_ratio", usageSleep)
	f.AddNumeric("mental_sleep_score", mentalSleep)
	f.AddNumeric("high_conflict", highConflict)
	f.AddNumeric("age_group", ageGroup)
	f.AddNumeric("poor_academic_performance", poorAcademic)
	f.AddNumeric("combined_risk_score", combinedRisk)
	f.AddNumeric("usage_squared", usageSq)
	f.AddNumeric("mental_health_squared", mentalSq)
	f.AddNumeric("usage_conflict_interaction", usageConflict)
	f.AddNumeric("uses_popular_platform", usesPopular)
	f.AddNumeric("has_relationship", hasRelationship)
	return nil
}

// usageIntensity buckets daily usage hours: low, medium, high, very high.
func usageIntensity(hours float64) float64 {
	switch {
	case hours <= 2:
		return 0
	case hours <= 4:
		return 1
	case hours <= 6:
		return 2
	default:
		return 3
	}
}

// mentalHealthRisk inverts the 0-10 mental health score into a risk
// level: 2 high, 1 medium, 0 low.
func mentalHealthRisk(score float64) float64 {
	switch {
	case score <= 3:
		return 2
	case score <= 6:
		return 1
	default:
		return 0
	}
}

// studentAgeGroup buckets student ages, upper-inclusive at 19 and 21.
func studentAgeGroup(age float64) float64 {
	switch {
	case age <= 19:
		return 0
	case age <= 21:
		return 1
	default:
		return 2
	}
}
