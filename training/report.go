package training

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/wellsync/wellsync-ai/core/model"
	"github.com/wellsync/wellsync-ai/pipeline"
)

// report writes the run's text summary and diagnostic plots under the
// configured reports directory.
func (o *Orchestrator) report(res *RunResult, best model.Regressor, split *pipeline.SplitResult) error {
	dir := filepath.Join(o.cfg.ReportsDir, o.task.Task)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	if err := o.writeTextReport(dir, res, split); err != nil {
		return err
	}

	testPred, err := best.Predict(split.XTest)
	if err != nil {
		return err
	}

	if err := plotPredictions(filepath.Join(dir, "predictions.png"), split.YTest.RawVector().Data, testPred.RawVector().Data); err != nil {
		return err
	}
	if err := plotResiduals(filepath.Join(dir, "residuals.png"), split.YTest.RawVector().Data, testPred.RawVector().Data); err != nil {
		return err
	}

	if imp, ok := best.(model.FeatureImportancer); ok {
		if err := plotImportances(filepath.Join(dir, "feature_importance.png"), split.FeatureNames, imp.FeatureImportances()); err != nil {
			return err
		}
	}

	o.logger.Info().Str("dir", dir).Msg("report written")
	return nil
}

func (o *Orchestrator) writeTextReport(dir string, res *RunResult, split *pipeline.SplitResult) error {
	var b strings.Builder
	line := strings.Repeat("=", 78)

	fmt.Fprintf(&b, "%s\nTRAINING REPORT: %s\n%s\n", line, res.Task, line)
	fmt.Fprintf(&b, "Run ID: %s\nGenerated: %s\n\n", res.RunID, time.Now().UTC().Format(time.RFC3339))

	fmt.Fprintf(&b, "BASELINE COMPARISON\n")
	writeResultTable(&b, res.Baselines)

	fmt.Fprintf(&b, "\nTUNED MODELS AND ENSEMBLES\n")
	writeResultTable(&b, res.Tuned)

	fmt.Fprintf(&b, "\nBEST MODEL: %s\n", res.BestName)
	fmt.Fprintf(&b, "  test R2:   %.4f\n", res.Best.TestR2)
	fmt.Fprintf(&b, "  test MAE:  %.4f\n", res.Best.TestMAE)
	fmt.Fprintf(&b, "  test RMSE: %.4f\n", res.Best.TestRMSE)
	fmt.Fprintf(&b, "  test MAPE: %.2f%%\n", res.Best.TestMAPE)

	fmt.Fprintf(&b, "\nCROSS-VALIDATION (%d folds)\n", res.CV.Folds)
	fmt.Fprintf(&b, "  R2:   %.4f (+/- %.4f)\n", res.CV.R2Mean, res.CV.R2Std)
	fmt.Fprintf(&b, "  MAE:  %.4f (+/- %.4f)\n", res.CV.MAEMean, res.CV.MAEStd)
	fmt.Fprintf(&b, "  RMSE: %.4f (+/- %.4f)\n", res.CV.RMSEMean, res.CV.RMSEStd)

	fmt.Fprintf(&b, "\nFEATURES (%d)\n%s\n", len(split.FeatureNames), strings.Join(split.FeatureNames, ", "))

	name := fmt.Sprintf("training_report_%s.txt", time.Now().UTC().Format("20060102_150405"))
	return os.WriteFile(filepath.Join(dir, name), []byte(b.String()), 0o644)
}

func writeResultTable(b *strings.Builder, results []ModelResult) {
	fmt.Fprintf(b, "%-24s %10s %10s %10s %10s\n", "model", "train_r2", "test_r2", "test_mae", "test_rmse")
	for _, r := range results {
		fmt.Fprintf(b, "%-24s %10.4f %10.4f %10.4f %10.4f\n", r.Name, r.TrainR2, r.TestR2, r.TestMAE, r.TestRMSE)
	}
}

func plotPredictions(path string, actual, predicted []float64) error {
	p := plot.New()
	p.Title.Text = "Actual vs Predicted"
	p.X.Label.Text = "Actual"
	p.Y.Label.Text = "Predicted"

	pts := make(plotter.XYs, len(actual))
	lo, hi := actual[0], actual[0]
	for i := range actual {
		pts[i].X = actual[i]
		pts[i].Y = predicted[i]
		if actual[i] < lo {
			lo = actual[i]
		}
		if actual[i] > hi {
			hi = actual[i]
		}
	}

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	p.Add(scatter)

	ideal, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return err
	}
	ideal.Width = vg.Points(1)
	p.Add(ideal)

	return p.Save(8*vg.Inch, 6*vg.Inch, path)
}

func plotResiduals(path string, actual, predicted []float64) error {
	p := plot.New()
	p.Title.Text = "Residual Distribution"
	p.X.Label.Text = "Residual"
	p.Y.Label.Text = "Count"

	residuals := make(plotter.Values, len(actual))
	for i := range actual {
		residuals[i] = actual[i] - predicted[i]
	}

	hist, err := plotter.NewHist(residuals, 30)
	if err != nil {
		return err
	}
	p.Add(hist)

	return p.Save(8*vg.Inch, 6*vg.Inch, path)
}

func plotImportances(path string, names []string, importances []float64) error {
	type pair struct {
		name  string
		value float64
	}
	pairs := make([]pair, len(importances))
	for i := range importances {
		pairs[i] = pair{names[i], importances[i]}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].value > pairs[j].value })

	top := 20
	if len(pairs) < top {
		top = len(pairs)
	}
	pairs = pairs[:top]

	p := plot.New()
	p.Title.Text = "Feature Importances"
	p.Y.Label.Text = "Importance"

	values := make(plotter.Values, top)
	labels := make([]string, top)
	for i, pr := range pairs {
		values[i] = pr.value
		labels[i] = pr.name
	}

	bars, err := plotter.NewBarChart(values, vg.Points(18))
	if err != nil {
		return err
	}
	p.Add(bars)
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = 0.9
	p.X.Tick.Label.YAlign = -0.5
	p.X.Tick.Label.XAlign = -0.9

	return p.Save(10*vg.Inch, 7*vg.Inch, path)
}
