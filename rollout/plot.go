package rollout

import (
	"os"
	"path"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Comparator renders the datasets of several runs side by side.
type Comparator func(names []string, datasets []DataSet)

func NoopComparator() Comparator {
	return func(_ []string, _ []DataSet) {}
}

// CoveragePlotter draws one unique-states line per run.
func CoveragePlotter(plotPath string) Comparator {
	if _, err := os.Stat(plotPath); err != nil {
		os.MkdirAll(plotPath, os.ModePerm)
	}
	return linePlotter(plotPath, "coverage.png", "States covered")
}

// EpisodeLengthPlotter draws one episode-length line per run.
func EpisodeLengthPlotter(plotPath string) Comparator {
	if _, err := os.Stat(plotPath); err != nil {
		os.MkdirAll(plotPath, os.ModePerm)
	}
	return linePlotter(plotPath, "episode_lengths.png", "Episode length")
}

func linePlotter(plotPath, fileName, yLabel string) Comparator {
	return func(names []string, datasets []DataSet) {
		p := plot.New()
		p.Title.Text = "Comparison"
		p.X.Label.Text = "Episode"
		p.Y.Label.Text = yLabel
		for i := 0; i < len(names); i++ {
			values, ok := datasets[i].([]int)
			if !ok {
				continue
			}
			points := make(plotter.XYs, len(values))
			for j, v := range values {
				points[j] = plotter.XY{
					X: float64(j),
					Y: float64(v),
				}
			}
			line, err := plotter.NewLine(points)
			if err != nil {
				continue
			}
			line.Color = plotutil.Color(i)
			p.Add(line)
			p.Legend.Add(names[i], line)
		}
		p.Save(8*vg.Inch, 8*vg.Inch, path.Join(plotPath, fileName))
	}
}
