package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/lox/handstats/internal/fileutil"
	"github.com/lox/handstats/internal/handhistory"
	"github.com/lox/handstats/internal/statistics"
)

// ChartConfig holds configuration for the positional chart.
type ChartConfig struct {
	Title  string
	Width  string
	Height string
	Theme  string
	Colors []string
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Title:  "Results by position",
		Width:  "1000px",
		Height: "560px",
		Theme:  "light",
		Colors: []string{"#5470C6", "#91CC75", "#FAC858", "#EE6666", "#9A60B4", "#3BA272"},
	}
}

func evValue(m statistics.Metric) any {
	if v, ok := m.Float(); ok {
		return v
	}
	// echarts leaves a gap for "-"
	return "-"
}

// NewChart builds a bar chart of wins by showdown type per position with
// EV bb/100 lines on a secondary axis. The overall row is not plotted.
func NewChart(st *statistics.Table, order []handhistory.Position, config ChartConfig) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  config.Width,
			Height: config.Height,
			Theme:  config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: fmt.Sprintf("%d hands, bb unit %d", st.Row(statistics.Overall).Hands, st.BBUnit),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "bottom",
		}),
		charts.WithColorsOpts(opts.Colors(config.Colors)),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "Hands won",
			Type: "value",
		}),
	)
	bar.ExtendYAxis(opts.YAxis{
		Name: "EV bb/100",
		Type: "value",
	})

	rows := st.Ordered(order)
	rows = rows[:len(rows)-1]

	labels := make([]string, len(rows))
	var showdown, noShowdown, total []opts.BarData
	var ev, evShowdown, evNonShowdown []opts.LineData
	for i, r := range rows {
		labels[i] = string(r.Position)
		showdown = append(showdown, opts.BarData{Value: r.WonShowdown})
		noShowdown = append(noShowdown, opts.BarData{Value: r.WonNoShowdown})
		total = append(total, opts.BarData{Value: r.TotalWon})
		ev = append(ev, opts.LineData{Value: evValue(r.EVBBPer100)})
		evShowdown = append(evShowdown, opts.LineData{Value: evValue(r.ShowdownEV)})
		evNonShowdown = append(evNonShowdown, opts.LineData{Value: evValue(r.NonShowdownEV)})
	}

	bar.SetXAxis(labels).
		AddSeries("Won at showdown", showdown).
		AddSeries("Won without showdown", noShowdown).
		AddSeries("Total won", total)

	line := charts.NewLine()
	line.SetXAxis(labels).
		AddSeries("EV bb/100", ev).
		AddSeries("Showdown EV bb/100", evShowdown).
		AddSeries("Non-showdown EV bb/100", evNonShowdown).
		SetSeriesOptions(
			charts.WithLineChartOpts(opts.LineChart{
				YAxisIndex: 1,
				Smooth:     opts.Bool(false),
			}),
		)
	bar.Overlap(line)
	return bar
}

// RenderChart writes the chart as a standalone HTML page.
func RenderChart(w io.Writer, st *statistics.Table, order []handhistory.Position, config ChartConfig) error {
	if err := NewChart(st, order, config).Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// SaveChart renders the chart to an HTML file.
func SaveChart(path string, st *statistics.Table, order []handhistory.Position, config ChartConfig) error {
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return RenderChart(w, st, order, config)
	})
}
