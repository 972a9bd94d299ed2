package features

import (
	"math"

	"github.com/wellsync/wellsync-ai/dataset"
)

// EngineerStress appends the derived features for the stress model. It is
// the widest of the three transforms: screen-time patterns, sleep
// deficiency, work-life imbalance, physical activity, social isolation,
// productivity gaps, age patterns, a composite health score and
// polynomial terms.
//
// The composite and flag features use the package's fixed divisors and
// thresholds so a single record at serve time is engineered exactly like
// a training batch.
func EngineerStress(f *dataset.Frame) error {
	r := &frameReader{frame: f}
	screen := r.numeric("screen_time_hours")
	work := r.numeric("work_screen_hours")
	leisure := r.numeric("leisure_screen_hours")
	sleep := r.numeric("sleep_hours")
	quality := r.numeric("sleep_quality_1_5")
	social := r.numeric("social_hours_per_week")
	exercise := r.numeric("exercise_minutes_per_week")
	productivity := r.numeric("productivity_0_100")
	wellness := r.numeric("mental_wellness_index_0_100")
	age := r.numeric("age")
	if r.err != nil {
		return r.err
	}

	n := f.NumRows()
	totalRatio := make([]float64, n)
	workRatio := make([]float64, n)
	leisureRatio := make([]float64, n)
	deficit := make([]float64, n)
	sleepEff := make([]float64, n)
	poorSleep := make([]float64, n)
	workLife := make([]float64, n)
	screenSleep := make([]float64, n)
	excessiveWork := make([]float64, n)
	exerciseHours := make([]float64, n)
	lowExercise := make([]float64, n)
	socialIsolation := make([]float64, n)
	socialExercise := make([]float64, n)
	lowProductivity := make([]float64, n)
	prodWellnessGap := make([]float64, n)
	ageGroup := make([]float64, n)
	youngProfessional := make([]float64, n)
	overallHealth := make([]float64, n)
	highScreen := make([]float64, n)
	extremeScreen := make([]float64, n)
	screenSq := make([]float64, n)
	sleepSq := make([]float64, n)
	ageSq := make([]float64, n)

	for i := 0; i < n; i++ {
		totalRatio[i] = screen[i] / 24.0
		workRatio[i] = work[i] / (screen[i] + epsilon)
		leisureRatio[i] = leisure[i] / (screen[i] + epsilon)
		d := OptimalSleepHours - sleep[i]
		if d < 0 {
			d = 0
		}
		deficit[i] = d
		sleepEff[i] = quality[i] / (sleep[i] + epsilon)
		poorSleep[i] = boolToFloat(sleep[i] < 6 || quality[i] < 2)
		workLife[i] = social[i] / (work[i] + epsilon)
		screenSleep[i] = screen[i] / (sleep[i] + epsilon)
		excessiveWork[i] = boolToFloat(work[i] > HighScreenHours)
		eh := exercise[i] / 60.0
		exerciseHours[i] = eh
		lowExercise[i] = boolToFloat(exercise[i] < LowExerciseMinutes)
		socialIsolation[i] = boolToFloat(social[i] < LowSocialHours)
		socialExercise[i] = (social[i] + eh) / 2
		lowProductivity[i] = boolToFloat(productivity[i] < 50)
		prodWellnessGap[i] = math.Abs(productivity[i] - wellness[i])
		ageGroup[i] = lifestyleAgeGroup(age[i])
		youngProfessional[i] = boolToFloat(age[i] >= 25 && age[i] <= 35)
		overallHealth[i] = (quality[i]/5)*0.25 +
			(exercise[i]/ExerciseMinutesMax)*0.25 +
			(social[i]/SocialHoursMax)*0.25 +
			(wellness[i]/100)*0.25
		highScreen[i] = boolToFloat(screen[i] > HighScreenHours)
		extremeScreen[i] = boolToFloat(screen[i] > ExtremeScreenHours)
		screenSq[i] = screen[i] * screen[i]
		sleepSq[i] = sleep[i] * sleep[i]
		ageSq[i] = age[i] * age[i]
	}

	f.AddNumeric("total_screen_ratio", totalRatio)
	f.AddNumeric("work_screen_ratio", workRatio)
	f.AddNumeric("leisure_screen_ratio", leisureRatio)
	f.AddNumeric("sleep_deficit", deficit)
	f.AddNumeric("sleep_efficiency", sleepEff)
	f.AddNumeric("poor_sleep_indicator", poorSleep)
	f.AddNumeric("work_life_balance", workLife)
	f.AddNumeric("screen_sleep_ratio", screenSleep)
	f.AddNumeric("excessive_work_screen", excessiveWork)
	f.AddNumeric("exercise_hours_week", exerciseHours)
	f.AddNumeric("low_exercise", lowExercise)
	f.AddNumeric("social_isolation", socialIsolation)
	f.AddNumeric("social_exercise_score", socialExercise)
	f.AddNumeric("low_productivity", lowProductivity)
	f.AddNumeric("productivity_wellness_gap", prodWellnessGap)
	f.AddNumeric("age_group", ageGroup)
	f.AddNumeric("young_professional", youngProfessional)
	f.AddNumeric("overall_health_score", overallHealth)
	f.AddNumeric("high_screen_time", highScreen)
	f.AddNumeric("extreme_screen_time", extremeScreen)
	f.AddNumeric("screen_time_squared", screenSq)
	f.AddNumeric("sleep_hours_squared", sleepSq)
	f.AddNumeric("age_squared", ageSq)
	return nil
}
