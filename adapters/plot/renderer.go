package plot

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Renderer writes the report's plots as PNG files into one output
// directory. Plot failures are the caller's to log; metrics never
// depend on a plot having rendered.
type Renderer struct {
	outDir string
}

// NewRenderer creates a renderer rooted at outDir, creating it if needed.
func NewRenderer(outDir string) (*Renderer, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating plot directory: %w", err)
	}
	return &Renderer{outDir: outDir}, nil
}

// PredictedVsActual renders a scatter of predictions against actuals
// with the identity line; a perfect model puts every point on the line.
func (r *Renderer) PredictedVsActual(name string, actual, predicted []float64) (string, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: predicted vs actual", name)
	p.X.Label.Text = "actual"
	p.Y.Label.Text = "predicted"

	pts := make(plotter.XYs, len(actual))
	lo, hi := actual[0], actual[0]
	for i := range actual {
		pts[i] = plotter.XY{X: actual[i], Y: predicted[i]}
		if actual[i] < lo {
			lo = actual[i]
		}
		if actual[i] > hi {
			hi = actual[i]
		}
	}

	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return "", err
	}
	sc.GlyphStyle.Color = color.RGBA{R: 20, G: 80, B: 200, A: 200}
	sc.GlyphStyle.Radius = vg.Points(1.8)
	p.Add(sc)
	p.Legend.Add("predictions", sc)

	ident, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return "", err
	}
	ident.Color = color.RGBA{R: 120, G: 120, B: 120, A: 180}
	ident.Width = vg.Points(0.8)
	p.Add(ident)
	p.Legend.Add("identity", ident)
	p.Add(plotter.NewGrid())

	return r.save(p, fmt.Sprintf("%s_predicted_vs_actual.png", name))
}

// FeatureImportance renders a bar chart of relative importances.
func (r *Renderer) FeatureImportance(name string, features []string, importance []float64) (string, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: feature importance", name)
	p.Y.Label.Text = "relative variance reduction"

	bars, err := plotter.NewBarChart(plotter.Values(importance), vg.Points(24))
	if err != nil {
		return "", err
	}
	bars.Color = color.RGBA{R: 40, G: 120, B: 40, A: 255}
	p.Add(bars)
	p.NominalX(features...)

	return r.save(p, fmt.Sprintf("%s_feature_importance.png", name))
}

// TargetBoxplot renders side-by-side boxplots of the target before and
// after outlier trimming, making the removed tail visible.
func (r *Renderer) TargetBoxplot(before, after []float64) (string, error) {
	p := plot.New()
	p.Title.Text = "target distribution: before/after outlier trim"
	p.Y.Label.Text = "weekly sales"

	b0, err := plotter.NewBoxPlot(vg.Points(40), 0, plotter.Values(before))
	if err != nil {
		return "", err
	}
	b1, err := plotter.NewBoxPlot(vg.Points(40), 1, plotter.Values(after))
	if err != nil {
		return "", err
	}
	p.Add(b0, b1)
	p.NominalX("before", "after")

	return r.save(p, "target_boxplot.png")
}

func (r *Renderer) save(p *plot.Plot, filename string) (string, error) {
	path := filepath.Join(r.outDir, filename)
	if err := p.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return "", err
	}
	return path, nil
}
