package report

import (
	"bytes"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/obesitylab/obego/experiment"
	"github.com/obesitylab/obego/pkg/errors"
)

func renderPNG(p *plot.Plot, width, height vg.Length, what string) ([]byte, error) {
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return nil, errors.Wrapf(err, "rendering %s", what)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, errors.Wrapf(err, "encoding %s", what)
	}
	return buf.Bytes(), nil
}

// performanceComparisonPNG renders the grouped bar chart with one bar per
// metric per model.
func performanceComparisonPNG(records []experiment.RunRecord) ([]byte, error) {
	p := plot.New()
	p.Title.Text = "Model Performance Comparison"
	p.Y.Label.Text = "Score"
	p.Y.Min = 0
	p.Y.Max = 1.05

	metricNames := []string{"accuracy", "precision", "recall", "f1_score"}
	values := make([]plotter.Values, len(metricNames))
	for _, rec := range records {
		values[0] = append(values[0], rec.Accuracy)
		values[1] = append(values[1], rec.Precision)
		values[2] = append(values[2], rec.Recall)
		values[3] = append(values[3], rec.F1)
	}

	barWidth := vg.Points(12)
	for i, name := range metricNames {
		bars, err := plotter.NewBarChart(values[i], barWidth)
		if err != nil {
			return nil, errors.Wrapf(err, "building %s bars", name)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(i)
		bars.Offset = vg.Length(float64(i)-1.5) * barWidth
		p.Add(bars)
		p.Legend.Add(name, bars)
	}

	names := make([]string, len(records))
	for i, rec := range records {
		names[i] = rec.Model
	}
	p.NominalX(names...)
	p.Legend.Top = true

	return renderPNG(p, 8*vg.Inch, 4*vg.Inch, "performance comparison chart")
}

// durationsPNG renders the per-model training duration bar chart.
func durationsPNG(names []string, seconds []float64) ([]byte, error) {
	p := plot.New()
	p.Title.Text = "Model Training Duration"
	p.X.Label.Text = "Model"
	p.Y.Label.Text = "Duration (seconds)"

	bars, err := plotter.NewBarChart(plotter.Values(seconds), vg.Points(24))
	if err != nil {
		return nil, errors.Wrap(err, "building duration bars")
	}
	bars.LineStyle.Width = vg.Length(0)
	bars.Color = plotutil.Color(0)
	p.Add(bars)
	p.NominalX(names...)

	return renderPNG(p, 5*vg.Inch, 3*vg.Inch, "duration chart")
}
