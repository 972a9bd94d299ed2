package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wellsync/wellsync-ai/dataset"
)

func wellnessFrame(rows int, screen, work float64) *dataset.Frame {
	f := dataset.NewFrame()
	rep := func(v float64) []float64 {
		vals := make([]float64, rows)
		for i := range vals {
			vals[i] = v
		}
		return vals
	}
	f.AddNumeric("age", rep(30))
	f.AddNumeric("screen_time_hours", rep(screen))
	f.AddNumeric("work_screen_hours", rep(work))
	f.AddNumeric("leisure_screen_hours", rep(screen-work))
	f.AddNumeric("sleep_hours", rep(7))
	f.AddNumeric("sleep_quality_1_5", rep(4))
	f.AddNumeric("stress_level_0_10", rep(5))
	f.AddNumeric("productivity_0_100", rep(70))
	f.AddNumeric("exercise_minutes_per_week", rep(150))
	f.AddNumeric("social_hours_per_week", rep(10))
	return f
}

func TestEngineerWellnessValues(t *testing.T) {
	f := wellnessFrame(1, 8, 6)
	require.NoError(t, EngineerWellness(f))

	ratio, err := f.Numeric("work_screen_ratio")
	require.NoError(t, err)
	assert.InDelta(t, 6.0/(8.0+1e-6), ratio[0], 1e-12)

	health, err := f.Numeric("health_score")
	require.NoError(t, err)
	// (4/5)*0.3 + (150/300)*0.4 + (10/20)*0.3
	assert.InDelta(t, 0.24+0.2+0.15, health[0], 1e-12)

	interaction, err := f.Numeric("stress_productivity_interaction")
	require.NoError(t, err)
	assert.InDelta(t, 5*(100-70.0)/100, interaction[0], 1e-12)

	group, err := f.Numeric("age_group")
	require.NoError(t, err)
	assert.Equal(t, 1.0, group[0])

	high, err := f.Numeric("high_screen_time")
	require.NoError(t, err)
	assert.Equal(t, 0.0, high[0], "8 hours is not above the threshold")
}

func TestEngineerWellnessBatchMatchesSingleRow(t *testing.T) {
	batch := wellnessFrame(3, 10, 7)
	single := wellnessFrame(1, 10, 7)

	require.NoError(t, EngineerWellness(batch))
	require.NoError(t, EngineerWellness(single))

	assert.Equal(t, batch.Columns(), single.Columns())
	for _, name := range batch.Columns() {
		b, err := batch.Numeric(name)
		require.NoError(t, err)
		s, err := single.Numeric(name)
		require.NoError(t, err)
		assert.Equal(t, b[0], s[0], name)
	}
}

func TestEngineerWellnessMissingColumn(t *testing.T) {
	f := dataset.NewFrame()
	f.AddNumeric("age", []float64{30})
	assert.Error(t, EngineerWellness(f))
}

func TestLifestyleAgeGroupEdges(t *testing.T) {
	assert.Equal(t, 0.0, lifestyleAgeGroup(25))
	assert.Equal(t, 1.0, lifestyleAgeGroup(26))
	assert.Equal(t, 1.0, lifestyleAgeGroup(35))
	assert.Equal(t, 2.0, lifestyleAgeGroup(45))
	assert.Equal(t, 3.0, lifestyleAgeGroup(46))
}

func academicFrame(usage, sleep, mental, conflicts float64, platform, relationship, affects string) *dataset.Frame {
	f := dataset.NewFrame()
	f.AddNumeric("age", []float64{20})
	f.AddCategorical("gender", []string{"Female"})
	f.AddCategorical("academic_level", []string{"Undergraduate"})
	f.AddCategorical("country", []string{"USA"})
	f.AddNumeric("avg_daily_usage_hours", []float64{usage})
	f.AddCategorical("most_used_platform", []string{platform})
	f.AddCategorical("affects_academic_performance", []string{affects})
	f.AddNumeric("sleep_hours_per_night", []float64{sleep})
	f.AddNumeric("mental_health_score", []float64{mental})
	f.AddCategorical("relationship_status", []string{relationship})
	f.AddNumeric("conflicts_over_social_media", []float64{conflicts})
	return f
}

func TestEngineerAcademicValues(t *testing.T) {
	f := academicFrame(5, 6.5, 6, 4, "TikTok", "Single", "Yes")
	require.NoError(t, EngineerAcademic(f))

	get := func(name string) float64 {
		vals, err := f.Numeric(name)
		require.NoError(t, err)
		return vals[0]
	}

	assert.Equal(t, 2.0, get("usage_intensity"))
	assert.InDelta(t, 1.5, get("sleep_deficit"), 1e-12)
	assert.Equal(t, 0.0, get("severe_sleep_deficit"))
	assert.Equal(t, 1.0, get("mental_health_risk"))
	assert.Equal(t, 1.0, get("high_conflict"))
	assert.Equal(t, 1.0, get("age_group"))
	assert.Equal(t, 1.0, get("poor_academic_performance"))
	assert.Equal(t, 1.0, get("uses_popular_platform"))
	assert.Equal(t, 0.0, get("has_relationship"))
	assert.InDelta(t, 20.0, get("usage_conflict_interaction"), 1e-12)

	// (5/10)*.3 + (1.5/8)*.25 + (4/10)*.25 + (4/5)*.2, scaled by 10
	want := (0.5*0.3 + 0.1875*0.25 + 0.4*0.25 + 0.8*0.2) * 10
	assert.InDelta(t, want, get("combined_risk_score"), 1e-12)
}

func TestEngineerAcademicUnpopularPlatform(t *testing.T) {
	f := academicFrame(3, 8, 9, 1, "LinkedIn", "In Relationship", "No")
	require.NoError(t, EngineerAcademic(f))

	get := func(name string) float64 {
		vals, err := f.Numeric(name)
		require.NoError(t, err)
		return vals[0]
	}

	assert.Equal(t, 0.0, get("uses_popular_platform"))
	assert.Equal(t, 1.0, get("has_relationship"))
	assert.Equal(t, 0.0, get("poor_academic_performance"))
	assert.Equal(t, 0.0, get("mental_health_risk"))
	assert.Equal(t, 0.0, get("sleep_deficit"), "no deficit at eight hours")
}

func stressFrame(screen, sleep, quality, exercise, social, wellness float64) *dataset.Frame {
	f := dataset.NewFrame()
	f.AddNumeric("age", []float64{28})
	f.AddNumeric("screen_time_hours", []float64{screen})
	f.AddNumeric("work_screen_hours", []float64{screen / 2})
	f.AddNumeric("leisure_screen_hours", []float64{screen / 2})
	f.AddNumeric("sleep_hours", []float64{sleep})
	f.AddNumeric("sleep_quality_1_5", []float64{quality})
	f.AddNumeric("productivity_0_100", []float64{60})
	f.AddNumeric("exercise_minutes_per_week", []float64{exercise})
	f.AddNumeric("social_hours_per_week", []float64{social})
	f.AddNumeric("mental_wellness_index_0_100", []float64{wellness})
	return f
}

func TestEngineerStressValues(t *testing.T) {
	f := stressFrame(12, 5.5, 1, 90, 3, 40)
	require.NoError(t, EngineerStress(f))

	get := func(name string) float64 {
		vals, err := f.Numeric(name)
		require.NoError(t, err)
		return vals[0]
	}

	assert.InDelta(t, 0.5, get("total_screen_ratio"), 1e-12)
	assert.InDelta(t, 2.5, get("sleep_deficit"), 1e-12)
	assert.Equal(t, 1.0, get("poor_sleep_indicator"))
	assert.Equal(t, 1.0, get("low_exercise"))
	assert.Equal(t, 1.0, get("social_isolation"))
	assert.Equal(t, 0.0, get("low_productivity"))
	assert.InDelta(t, 20.0, get("productivity_wellness_gap"), 1e-12)
	assert.Equal(t, 1.0, get("young_professional"))
	assert.Equal(t, 1.0, get("high_screen_time"))
	assert.Equal(t, 0.0, get("extreme_screen_time"), "12 hours is the threshold, not above it")
	assert.InDelta(t, 1.5, get("exercise_hours_week"), 1e-12)
	assert.InDelta(t, (3+1.5)/2, get("social_exercise_score"), 1e-12)

	// .25 weighted: quality/5 + exercise/300 + social/20 + wellness/100
	want := (1.0/5+90.0/300+3.0/20+40.0/100) * 0.25
	assert.InDelta(t, want, get("overall_health_score"), 1e-12)
}

func TestEngineerStressUsesFixedDivisorsOnly(t *testing.T) {
	// A batch with a wildly different second row must engineer the first
	// row identically to a single-row frame; any batch statistic in the
	// composite features would break this.
	single := stressFrame(10, 7, 3, 120, 8, 70)

	batch := dataset.NewFrame()
	batch.AddNumeric("age", []float64{28, 60})
	batch.AddNumeric("screen_time_hours", []float64{10, 2})
	batch.AddNumeric("work_screen_hours", []float64{5, 1})
	batch.AddNumeric("leisure_screen_hours", []float64{5, 1})
	batch.AddNumeric("sleep_hours", []float64{7, 9})
	batch.AddNumeric("sleep_quality_1_5", []float64{3, 5})
	batch.AddNumeric("productivity_0_100", []float64{60, 95})
	batch.AddNumeric("exercise_minutes_per_week", []float64{120, 600})
	batch.AddNumeric("social_hours_per_week", []float64{8, 40})
	batch.AddNumeric("mental_wellness_index_0_100", []float64{70, 95})

	require.NoError(t, EngineerStress(single))
	require.NoError(t, EngineerStress(batch))

	for _, name := range []string{"overall_health_score", "high_screen_time", "social_exercise_score"} {
		sv, err := single.Numeric(name)
		require.NoError(t, err)
		bv, err := batch.Numeric(name)
		require.NoError(t, err)
		assert.Equal(t, sv[0], bv[0], name)
	}
}

func TestConstantsExposeDivisors(t *testing.T) {
	c := Constants()
	assert.Equal(t, 300.0, c["exercise_minutes_max"])
	assert.Equal(t, 20.0, c["social_hours_max"])
	assert.Equal(t, 8.0, c["high_screen_hours"])
}
