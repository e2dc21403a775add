package chart

import (
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"ordermetrics/internal/config"
	"ordermetrics/internal/errors"
	"ordermetrics/ports"
)

const (
	densityPoints   = 200
	defaultBoxShare = 0.15
)

var (
	barColor     = color.RGBA{R: 76, G: 114, B: 176, A: 255}
	densityColor = color.RGBA{R: 33, G: 54, B: 92, A: 255}
)

// DistributionRenderer draws a horizontal box plot above a normalized
// histogram with a kernel density curve, both on one x scale, as PNG
type DistributionRenderer struct {
	Width    vg.Length
	Height   vg.Length
	Bins     int     // 0 selects Freedman-Diaconis
	BoxShare float64 // fraction of the height given to the box plot
}

var _ ports.DistributionRenderer = (*DistributionRenderer)(nil)

// NewDistributionRenderer builds a renderer from plot settings
func NewDistributionRenderer(cfg config.PlotConfig) *DistributionRenderer {
	return &DistributionRenderer{
		Width:    vg.Length(cfg.WidthCM) * vg.Centimeter,
		Height:   vg.Length(cfg.HeightCM) * vg.Centimeter,
		Bins:     cfg.Bins,
		BoxShare: defaultBoxShare,
	}
}

// RenderDistribution writes the figure for d to w
func (r *DistributionRenderer) RenderDistribution(w io.Writer, d ports.Distribution) error {
	if len(d.Values) == 0 {
		return errors.InvalidInput("no values to plot")
	}

	hist, err := r.histogram(d)
	if err != nil {
		return errors.RenderError(err)
	}
	box, err := r.boxPlot(d)
	if err != nil {
		return errors.RenderError(err)
	}
	box.X.Min, box.X.Max = hist.X.Min, hist.X.Max

	img := vgimg.New(r.Width, r.Height)
	dc := draw.New(img)

	// Align lines up the data areas horizontally; the vertical split is ours
	canvases := plot.Align([][]*plot.Plot{{box}, {hist}}, draw.Tiles{Rows: 2, Cols: 1}, dc)
	share := r.BoxShare
	if share <= 0 || share >= 1 {
		share = defaultBoxShare
	}
	split := dc.Min.Y + vg.Length(1-share)*(dc.Max.Y-dc.Min.Y)
	canvases[0][0].Min.Y, canvases[0][0].Max.Y = split, dc.Max.Y
	canvases[1][0].Min.Y, canvases[1][0].Max.Y = dc.Min.Y, split

	box.Draw(canvases[0][0])
	hist.Draw(canvases[1][0])

	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(w); err != nil {
		return errors.IOError("failed to write PNG", err)
	}
	return nil
}

func (r *DistributionRenderer) histogram(d ports.Distribution) (*plot.Plot, error) {
	bins := r.Bins
	if bins <= 0 {
		bins = FreedmanDiaconisBins(d.Values)
	}

	p := plot.New()
	p.X.Label.Text = d.Label
	p.Y.Label.Text = "Density"

	h, err := plotter.NewHist(plotter.Values(d.Values), bins)
	if err != nil {
		return nil, err
	}
	h.Normalize(1)
	h.FillColor = barColor
	h.LineStyle.Color = color.White
	p.Add(h)

	if curve := DensityCurve(d.Values, densityPoints); curve != nil {
		line, err := plotter.NewLine(curve)
		if err != nil {
			return nil, err
		}
		line.LineStyle.Color = densityColor
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
	}
	return p, nil
}

func (r *DistributionRenderer) boxPlot(d ports.Distribution) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = d.Title

	b, err := plotter.NewBoxPlot(vg.Points(20), 0, plotter.Values(d.Values))
	if err != nil {
		return nil, err
	}
	b.Horizontal = true
	b.FillColor = barColor
	p.Add(b)
	p.HideAxes()
	return p, nil
}
