package api

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wellsync/wellsync-ai/dataset"
	"github.com/wellsync/wellsync-ai/pipeline"
	"github.com/wellsync/wellsync-ai/pkg/config"
	"github.com/wellsync/wellsync-ai/regression"
	"github.com/wellsync/wellsync-ai/serving"
	"github.com/wellsync/wellsync-ai/training"
)

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{ReadTimeout: 15, WriteTimeout: 15, BodyLimit: 1 << 20}
}

// trainWellnessArtifacts persists a minimal wellness artifact set so the
// registry can load one real task.
func trainWellnessArtifacts(t *testing.T, modelsDir string) {
	t.Helper()
	cfg := pipeline.WellnessConfig()

	n := 40
	f := dataset.NewFrame()
	id := make([]float64, n)
	gender := make([]string, n)
	occupation := make([]string, n)
	workMode := make([]string, n)
	numeric := map[string][]float64{}
	for _, name := range append(append([]string{}, cfg.NumericOrder...), cfg.Target) {
		numeric[name] = make([]float64, n)
	}

	genders := []string{"Male", "Female", "Other"}
	occupations := []string{"Engineer", "Teacher", "Designer"}
	modes := []string{"Remote", "Hybrid", "Office"}
	for i := 0; i < n; i++ {
		fi := float64(i)
		screen := 4 + math.Mod(fi*1.3, 8)
		id[i] = fi
		gender[i] = genders[i%3]
		occupation[i] = occupations[i%3]
		workMode[i] = modes[i%3]
		numeric["age"][i] = 22 + math.Mod(fi*7, 40)
		numeric["screen_time_hours"][i] = screen
		numeric["work_screen_hours"][i] = screen * 0.6
		numeric["leisure_screen_hours"][i] = screen * 0.4
		numeric["sleep_hours"][i] = 5 + math.Mod(fi*0.7, 4)
		numeric["sleep_quality_1_5"][i] = 1 + math.Mod(fi, 5)
		numeric["stress_level_0_10"][i] = math.Mod(fi*1.1, 10)
		numeric["productivity_0_100"][i] = 40 + math.Mod(fi*3.7, 60)
		numeric["exercise_minutes_per_week"][i] = math.Mod(fi*23, 280)
		numeric["social_hours_per_week"][i] = math.Mod(fi*1.7, 18)
		numeric[cfg.Target][i] = 30 + math.Mod(fi*4.9, 65)
	}

	f.AddNumeric("user_id", id)
	f.AddCategorical("gender", gender)
	f.AddCategorical("occupation", occupation)
	f.AddCategorical("work_mode", workMode)
	for _, name := range append(append([]string{}, cfg.NumericOrder...), cfg.Target) {
		f.AddNumeric(name, numeric[name])
	}

	pipe := pipeline.New(cfg)
	split, err := pipe.FitTransform(f)
	require.NoError(t, err)

	m := regression.NewRandomForestRegressor(regression.WithNEstimators(10), regression.WithSeed(42))
	require.NoError(t, m.Fit(split.XTrain, split.YTrain))

	dir := filepath.Join(modelsDir, cfg.Task)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, regression.SaveRegressor(m, filepath.Join(dir, training.BestModelFile)))
	require.NoError(t, pipe.Bundle.Save(filepath.Join(dir, training.BundleFile)))

	meta := training.Metadata{RunID: "api-test-run", Task: cfg.Task, BestModel: m.Name()}
	b, err := json.Marshal(meta)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, training.MetadataFile), b, 0o644))
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	modelsDir := t.TempDir()
	trainWellnessArtifacts(t, modelsDir)
	return New(serving.Load(modelsDir), testServerConfig())
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp.StatusCode, decoded
}

func TestRootAndHealth(t *testing.T) {
	app := newTestApp(t)

	code, body := doJSON(t, app, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "WellSync AI", body["service"])

	code, body = doJSON(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "degraded", body["status"], "only the wellness task is loaded")
	assert.Contains(t, body["available"], pipeline.TaskMentalWellness)
}

func TestModelsEndpoints(t *testing.T) {
	app := newTestApp(t)

	code, body := doJSON(t, app, http.MethodGet, "/models/available", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []interface{}{pipeline.TaskMentalWellness}, body["available"])

	code, body = doJSON(t, app, http.MethodGet, "/models/info", nil)
	assert.Equal(t, http.StatusOK, code)
	require.Contains(t, body, pipeline.TaskMentalWellness)
}

func TestExampleEndpoint(t *testing.T) {
	app := newTestApp(t)

	code, body := doJSON(t, app, http.MethodGet, "/examples/mental-wellness", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "screen_time_hours")

	code, _ = doJSON(t, app, http.MethodGet, "/examples/astrology", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestPredictWellness(t *testing.T) {
	app := newTestApp(t)

	code, body := doJSON(t, app, http.MethodPost, "/predict/mental-wellness",
		exampleRecords[pipeline.TaskMentalWellness])
	require.Equal(t, http.StatusOK, code, body)

	value, ok := body["prediction"].(float64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, value, 0.0)
	assert.LessOrEqual(t, value, 100.0)
	assert.NotEmpty(t, body["interpretation"])
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "api-test-run", body["run_id"])
	require.Contains(t, body, "confidence_metrics")
}

func TestPredictRejectsInvalidField(t *testing.T) {
	app := newTestApp(t)

	payload := map[string]interface{}{}
	for k, v := range exampleRecords[pipeline.TaskMentalWellness] {
		payload[k] = v
	}
	payload["age"] = 150

	code, body := doJSON(t, app, http.MethodPost, "/predict/mental-wellness", payload)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "age", body["field"])
}

func TestPredictUnavailableTask(t *testing.T) {
	app := newTestApp(t)

	code, _ := doJSON(t, app, http.MethodPost, "/predict/stress",
		exampleRecords[pipeline.TaskStress])
	assert.Equal(t, http.StatusServiceUnavailable, code)
}

func TestPredictRejectsEmptyBody(t *testing.T) {
	app := newTestApp(t)

	code, _ := doJSON(t, app, http.MethodPost, "/predict/mental-wellness",
		map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestPredictRejectsUnsupportedFieldType(t *testing.T) {
	app := newTestApp(t)

	payload := map[string]interface{}{}
	for k, v := range exampleRecords[pipeline.TaskMentalWellness] {
		payload[k] = v
	}
	payload["notes"] = []string{"unsupported"}

	code, _ := doJSON(t, app, http.MethodPost, "/predict/mental-wellness", payload)
	assert.Equal(t, http.StatusBadRequest, code)
}
