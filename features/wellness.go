package features

import (
	"github.com/wellsync/wellsync-ai/dataset"
)

// EngineerWellness appends the derived features for the mental-wellness
// model: screen ratios, sleep efficiency, work-life balance, a composite
// health score, a stress-productivity interaction, age groups, screen
// flags and polynomial terms.
func EngineerWellness(f *dataset.Frame) error {
	r := &frameReader{frame: f}
	screen := r.numeric("screen_time_hours")
	work := r.numeric("work_screen_hours")
	leisure := r.numeric("leisure_screen_hours")
	quality := r.numeric("sleep_quality_1_5")
	sleep := r.numeric("sleep_hours")
	social := r.numeric("social_hours_per_week")
	exercise := r.numeric("exercise_minutes_per_week")
	stress := r.numeric("stress_level_0_10")
	productivity := r.numeric("productivity_0_100")
	age := r.numeric("age")
	if r.err != nil {
		return r.err
	}

	n := f.NumRows()
	workRatio := make([]float64, n)
	leisureRatio := make([]float64, n)
	sleepEff := make([]float64, n)
	workLife := make([]float64, n)
	screenSleep := make([]float64, n)
	health := make([]float64, n)
	stressProd := make([]float64, n)
	ageGroup := make([]float64, n)
	highScreen := make([]float64, n)
	excessiveWork := make([]float64, n)
	screenSq := make([]float64, n)
	stressSq := make([]float64, n)
	sleepSq := make([]float64, n)

	for i := 0; i < n; i++ {
		workRatio[i] = work[i] / (screen[i] + epsilon)
		leisureRatio[i] = leisure[i] / (screen[i] + epsilon)
		sleepEff[i] = quality[i] / (sleep[i] + epsilon)
		workLife[i] = social[i] / (work[i] + epsilon)
		screenSleep[i] = screen[i] / (sleep[i] + epsilon)
		health[i] = (quality[i]/5)*0.3 +
			(exercise[i]/ExerciseMinutesMax)*0.4 +
			(social[i]/SocialHoursMax)*0.3
		stressProd[i] = stress[i] * (100 - productivity[i]) / 100
		ageGroup[i] = lifestyleAgeGroup(age[i])
		highScreen[i] = boolToFloat(screen[i] > HighScreenHours)
		excessiveWork[i] = boolToFloat(work[i] > HighScreenHours)
		screenSq[i] = screen[i] * screen[i]
		stressSq[i] = stress[i] * stress[i]
		sleepSq[i] = sleep[i] * sleep[i]
	}

	f.AddNumeric("work_screen_ratio", workRatio)
	f.AddNumeric("leisure_screen_ratio", leisureRatio)
	f.AddNumeric("sleep_efficiency", sleepEff)
	f.AddNumeric("work_life_balance", workLife)
	f.AddNumeric("screen_sleep_ratio", screenSleep)
	f.AddNumeric("health_score", health)
	f.AddNumeric("stress_productivity_interaction", stressProd)
	f.AddNumeric("age_group", ageGroup)
	f.AddNumeric("high_screen_time", highScreen)
	f.AddNumeric("excessive_work_screen", excessiveWork)
	f.AddNumeric("screen_time_squared", screenSq)
	f.AddNumeric("stress_squared", stressSq)
	f.AddNumeric("sleep_squared", sleepSq)
	return nil
}
