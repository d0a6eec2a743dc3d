package viz

import (
	"github.com/guptarohit/asciigraph"
)

// PlotSeries renders values as an ASCII line chart, downsampling to width
// points when needed.
func PlotSeries(values []float64, caption string, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if len(values) == 1 {
		values = []float64{values[0], values[0]}
	}
	return asciigraph.Plot(downsample(values, width),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// PlotMany overlays several equally long series in distinct colors.
func PlotMany(series [][]float64, caption string, width, height int) string {
	data := make([][]float64, 0, len(series))
	for _, s := range series {
		if len(s) == 0 {
			continue
		}
		data = append(data, downsample(s, width))
	}
	if len(data) == 0 {
		return ""
	}
	return asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.Cyan, asciigraph.Goldenrod),
	)
}

func downsample(values []float64, n int) []float64 {
	if n <= 0 || len(values) <= n {
		return values
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = values[i*len(values)/n]
	}
	return out
}
