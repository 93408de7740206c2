package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/devdedup/internal/engine"
)

const (
	plotWidth  = "900px"
	plotHeight = "500px"
)

// WriteClusterSizePlot renders a bar chart of the cluster size distribution
// as a standalone HTML page. Singleton clusters are included so the chart
// shows how much of the pool was merged.
func WriteClusterSizePlot(w io.Writer, res *engine.Result) error {
	sizes := make(map[int]int)
	for _, members := range res.Partition.Groups() {
		sizes[len(members)]++
	}

	distinct := make([]int, 0, len(sizes))
	for size := range sizes {
		distinct = append(distinct, size)
	}

	sort.Ints(distinct)

	labels := make([]string, len(distinct))
	data := make([]opts.BarData, len(distinct))

	for i, size := range distinct {
		labels[i] = strconv.Itoa(size)
		data[i] = opts.BarData{Value: sizes[size]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: plotWidth, Height: plotHeight}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Cluster Size Distribution",
			Subtitle: "Number of identity clusters per member count",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Cluster size"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Clusters"}),
	)
	bar.SetXAxis(labels)
	bar.AddSeries("Clusters", data)

	err := bar.Render(w)
	if err != nil {
		return fmt.Errorf("render cluster size plot: %w", err)
	}

	return nil
}
