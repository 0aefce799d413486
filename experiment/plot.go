package experiment

import (
	"bytes"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/obesitylab/obego/pkg/errors"
)

// cmGrid adapts a confusion matrix to the heat map grid interface. Rows are
// flipped so the first true label renders at the top.
type cmGrid struct {
	counts [][]int
}

func (g cmGrid) Dims() (c, r int) { return len(g.counts), len(g.counts) }

func (g cmGrid) Z(c, r int) float64 {
	return float64(g.counts[len(g.counts)-1-r][c])
}

func (g cmGrid) X(c int) float64 { return float64(c) }
func (g cmGrid) Y(r int) float64 { return float64(r) }

// confusionMatrixPNG renders the confusion matrix as a heat map and returns
// the encoded PNG bytes.
func confusionMatrixPNG(counts [][]int, modelName string) ([]byte, error) {
	p := plot.New()
	p.Title.Text = "Confusion Matrix - " + modelName
	p.X.Label.Text = "Predicted Label"
	p.Y.Label.Text = "True Label"

	hm := plotter.NewHeatMap(cmGrid{counts: counts}, palette.Heat(12, 1))
	p.Add(hm)

	wt, err := p.WriterTo(6*vg.Inch, 5*vg.Inch, "png")
	if err != nil {
		return nil, errors.Wrapf(err, "rendering confusion matrix for %s", modelName)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, errors.Wrapf(err, "encoding confusion matrix for %s", modelName)
	}
	return buf.Bytes(), nil
}
