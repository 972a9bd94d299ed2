package pipeline

import (
	"fmt"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wellsync/wellsync-ai/dataset"
)

// wellnessTrainingFrame builds a deterministic synthetic survey with n
// distinct rows.
func wellnessTrainingFrame(n int) *dataset.Frame {
	age := make([]float64, n)
	screen := make([]float64, n)
	work := make([]float64, n)
	leisure := make([]float64, n)
	sleep := make([]float64, n)
	quality := make([]float64, n)
	stress := make([]float64, n)
	productivity := make([]float64, n)
	exercise := make([]float64, n)
	social := make([]float64, n)
	target := make([]float64, n)
	gender := make([]string, n)
	occupation := make([]string, n)
	workMode := make([]string, n)
	id := make([]float64, n)

	genders := []string{"Male", "Female", "Other"}
	occupations := []string{"Engineer", "Teacher", "Designer", "Analyst"}
	modes := []string{"Remote", "Hybrid", "Office"}

	for i := 0; i < n; i++ {
		fi := float64(i)
		id[i] = fi
		age[i] = 22 + math.Mod(fi*7, 40)
		screen[i] = 4 + math.Mod(fi*1.3, 8)
		work[i] = screen[i] * 0.6
		leisure[i] = screen[i] * 0.4
		sleep[i] = 5 + math.Mod(fi*0.7, 4)
		quality[i] = 1 + math.Mod(fi, 5)
		stress[i] = math.Mod(fi*1.1, 10)
		productivity[i] = 40 + math.Mod(fi*3.7, 60)
		exercise[i] = math.Mod(fi*23, 280)
		social[i] = math.Mod(fi*1.7, 18)
		target[i] = 30 + math.Mod(fi*4.9, 65)
		gender[i] = genders[i%len(genders)]
		occupation[i] = occupations[i%len(occupations)]
		workMode[i] = modes[i%len(modes)]
	}

	f := dataset.NewFrame()
	f.AddNumeric("user_id", id)
	f.AddNumeric("age", age)
	f.AddCategorical("gender", gender)
	f.AddCategorical("occupation", occupation)
	f.AddCategorical("work_mode", workMode)
	f.AddNumeric("screen_time_hours", screen)
	f.AddNumeric("work_screen_hours", work)
	f.AddNumeric("leisure_screen_hours", leisure)
	f.AddNumeric("sleep_hours", sleep)
	f.AddNumeric("sleep_quality_1_5", quality)
	f.AddNumeric("stress_level_0_10", stress)
	f.AddNumeric("productivity_0_100", productivity)
	f.AddNumeric("exercise_minutes_per_week", exercise)
	f.AddNumeric("social_hours_per_week", social)
	f.AddNumeric("mental_wellness_index_0_100", target)
	return f
}

func wellnessRecordFromRow(f *dataset.Frame, row int) *dataset.Record {
	rec := dataset.NewRecord()
	for _, name := range WellnessConfig().NumericOrder {
		vals, err := f.Numeric(name)
		if err != nil {
			panic(err)
		}
		rec.Numeric[name] = vals[row]
	}
	for _, name := range WellnessConfig().CategoricalOrder {
		vals, err := f.Categorical(name)
		if err != nil {
			panic(err)
		}
		rec.Categorical[name] = vals[row]
	}
	return rec
}

func TestFitTransformSplitsAndContract(t *testing.T) {
	p := New(WellnessConfig())
	res, err := p.FitTransform(wellnessTrainingFrame(40))
	require.NoError(t, err)

	trainRows, cols := res.XTrain.Dims()
	testRows, _ := res.XTest.Dims()
	assert.Equal(t, 40, trainRows+testRows)
	assert.InDelta(t, 8, testRows, 2, "roughly 20% held out")
	assert.Equal(t, len(res.FeatureNames), cols)

	// Raw, categorical and engineered columns all appear; id and target
	// do not.
	assert.Contains(t, res.FeatureNames, "screen_time_hours")
	assert.Contains(t, res.FeatureNames, "gender")
	assert.Contains(t, res.FeatureNames, "health_score")
	assert.NotContains(t, res.FeatureNames, "user_id")
	assert.NotContains(t, res.FeatureNames, "mental_wellness_index_0_100")

	require.NotNil(t, p.Bundle)
	assert.Equal(t, res.FeatureNames, p.Bundle.FeatureNames)
	assert.Equal(t, BundleVersion, p.Bundle.Version)
	assert.Equal(t, 300.0, p.Bundle.Constants["exercise_minutes_max"])
	assert.Len(t, p.Bundle.Encoders, 3)
}

func TestFitTransformDeterministicSplit(t *testing.T) {
	a, err := New(WellnessConfig()).FitTransform(wellnessTrainingFrame(40))
	require.NoError(t, err)
	b, err := New(WellnessConfig()).FitTransform(wellnessTrainingFrame(40))
	require.NoError(t, err)

	assert.Equal(t, a.YTrain.RawVector().Data, b.YTrain.RawVector().Data)
	assert.Equal(t, a.XTest.RawMatrix().Data, b.XTest.RawMatrix().Data)
}

func TestServedRecordMatchesTrainingTransform(t *testing.T) {
	raw := wellnessTrainingFrame(40)
	rec := wellnessRecordFromRow(raw, 5)

	p := New(WellnessConfig())
	res, err := p.FitTransform(raw)
	require.NoError(t, err)

	out, err := p.TransformRecord(rec)
	require.NoError(t, err)
	assert.Empty(t, out.Warnings)

	// The served vector must appear verbatim among the rows produced by
	// the training-side transform.
	match := func(X interface {
		Dims() (int, int)
		At(i, j int) float64
	}) bool {
		r, c := X.Dims()
		for i := 0; i < r; i++ {
			ok := true
			for j := 0; j < c; j++ {
				if math.Abs(X.At(i, j)-out.X.At(0, j)) > 1e-9 {
					ok = false
					break
				}
			}
			if ok {
				return true
			}
		}
		return false
	}
	found := match(res.XTrain) || match(res.XTest)
	assert.True(t, found, "serving transform must reproduce a training row")
}

func TestTransformRecordDeterministic(t *testing.T) {
	raw := wellnessTrainingFrame(40)
	rec := wellnessRecordFromRow(raw, 3)

	p := New(WellnessConfig())
	_, err := p.FitTransform(raw)
	require.NoError(t, err)

	a, err := p.TransformRecord(rec)
	require.NoError(t, err)
	b, err := p.TransformRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, a.X.RawMatrix().Data, b.X.RawMatrix().Data)
}

func TestTransformRecordUnseenCategoryWarnsButSucceeds(t *testing.T) {
	raw := wellnessTrainingFrame(40)
	p := New(WellnessConfig())
	_, err := p.FitTransform(raw)
	require.NoError(t, err)

	rec := wellnessRecordFromRow(raw, 0)
	rec.Categorical["work_mode"] = "Submarine"

	out, err := p.TransformRecord(rec)
	require.NoError(t, err)
	assert.NotEmpty(t, out.Warnings)
}

func TestTransformRecordMissingFieldUsesDefault(t *testing.T) {
	raw := wellnessTrainingFrame(40)
	p := New(WellnessConfig())
	_, err := p.FitTransform(raw)
	require.NoError(t, err)

	rec := wellnessRecordFromRow(raw, 0)
	delete(rec.Numeric, "exercise_minutes_per_week")

	out, err := p.TransformRecord(rec)
	require.NoError(t, err)
	assert.NotEmpty(t, out.Warnings)
	_, c := out.X.Dims()
	assert.Equal(t, len(p.Bundle.FeatureNames), c)
}

func TestTransformRecordNotFitted(t *testing.T) {
	p := New(WellnessConfig())
	_, err := p.TransformRecord(dataset.NewRecord())
	assert.Error(t, err)
}

func TestBundleRoundTrip(t *testing.T) {
	raw := wellnessTrainingFrame(40)
	rec := wellnessRecordFromRow(raw, 7)

	p := New(WellnessConfig())
	_, err := p.FitTransform(raw)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "bundle.gob")
	require.NoError(t, p.Bundle.Save(path))

	loaded, err := LoadBundle(path)
	require.NoError(t, err)
	assert.Equal(t, p.Bundle.FeatureNames, loaded.FeatureNames)

	reloaded, err := NewWithBundle(WellnessConfig(), loaded)
	require.NoError(t, err)

	want, err := p.TransformRecord(rec)
	require.NoError(t, err)
	got, err := reloaded.TransformRecord(rec)
	require.NoError(t, err)

	for j := range p.Bundle.FeatureNames {
		assert.InDelta(t, want.X.At(0, j), got.X.At(0, j), 1e-12)
	}
}

func TestNewWithBundleTaskMismatch(t *testing.T) {
	p := New(WellnessConfig())
	_, err := p.FitTransform(wellnessTrainingFrame(40))
	require.NoError(t, err)

	_, err = NewWithBundle(StressConfig(), p.Bundle)
	assert.Error(t, err)
}

func TestDuplicateRowsDropped(t *testing.T) {
	f := wellnessTrainingFrame(40)

	// Append a copy of row 0 by rebuilding the frame with 41 rows where
	// the last equals the first.
	g := dataset.NewFrame()
	for _, name := range f.Columns() {
		if vals, err := f.Numeric(name); err == nil {
			g.AddNumeric(name, append(append([]float64(nil), vals...), vals[0]))
			continue
		}
		vals, err := f.Categorical(name)
		if err != nil {
			t.Fatal(err)
		}
		g.AddCategorical(name, append(append([]string(nil), vals...), vals[0]))
	}

	p := New(WellnessConfig())
	res, err := p.FitTransform(g)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Dropped)
}

func TestConfigForTask(t *testing.T) {
	for _, task := range []string{TaskMentalWellness, TaskAcademicImpact, TaskStress} {
		cfg, err := ConfigForTask(task)
		require.NoError(t, err, task)
		assert.Equal(t, task, cfg.Task)
		assert.NotNil(t, cfg.Engineer)
		assert.NotNil(t, cfg.Stratify)
	}
	_, err := ConfigForTask("astrology")
	assert.Error(t, err)
}

func TestQuantileBinsBalanced(t *testing.T) {
	y := make([]float64, 100)
	for i := range y {
		y[i] = float64(i)
	}
	bins := QuantileBins(5)(y)

	counts := map[int]int{}
	for _, b := range bins {
		counts[b]++
	}
	assert.Len(t, counts, 5)
	for b, c := range counts {
		assert.InDelta(t, 20, c, 2, fmt.Sprintf("bin %d", b))
	}
}

func TestFixedBinsEdges(t *testing.T) {
	bins := FixedBins([]float64{0, 3, 6, 8, 11})([]float64{0, 2.5, 3, 5, 6.5, 8, 9.9})
	assert.Equal(t, []int{0, 0, 0, 1, 2, 2, 3}, bins)
}

func TestStratifiedSplitPreservesProportions(t *testing.T) {
	bins := make([]int, 100)
	for i := range bins {
		if i < 80 {
			bins[i] = 0
		} else {
			bins[i] = 1
		}
	}

	train, test, err := stratifiedSplit(bins, 0.2, 42)
	require.NoError(t, err)
	assert.Len(t, test, 20)
	assert.Len(t, train, 80)

	minority := 0
	for _, i := range test {
		if bins[i] == 1 {
			minority++
		}
	}
	assert.Equal(t, 4, minority, "20% of the minority bin held out")
}

func TestStratifiedSplitDeterministic(t *testing.T) {
	bins := []int{0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1}
	a1, b1, err := stratifiedSplit(bins, 0.25, 42)
	require.NoError(t, err)
	a2, b2, err := stratifiedSplit(bins, 0.25, 42)
	require.NoError(t, err)
	assert.Equal(t, a1, a2)
	assert.Equal(t, b1, b2)
}
