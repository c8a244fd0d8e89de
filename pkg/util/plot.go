/*
Copyright 2024 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package util

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/mihai-snyk/gapartition/pkg/algorithms"
	"github.com/mihai-snyk/gapartition/pkg/framework"
)

// PlotConvergence renders the best fitness and the feasible share of every
// generation as a line chart.
func PlotConvergence(w io.Writer, history []algorithms.GenerationStats, title string) error {
	if len(history) == 0 {
		return fmt.Errorf("history is empty for %s", title)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: "best fitness and feasible share per generation",
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "generation",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "clusters",
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(true),
			},
		}),
	)
	line.ExtendYAxis(opts.YAxis{
		Name: "feasible",
		Min:  0,
		Max:  1,
	})

	generations := make([]string, len(history))
	best := make([]opts.LineData, len(history))
	feasible := make([]opts.LineData, len(history))
	for i, stats := range history {
		generations[i] = strconv.Itoa(stats.Generation)
		if clusters, ok := stats.Best.Clusters(); ok {
			best[i] = opts.LineData{Value: clusters}
		} else {
			best[i] = opts.LineData{Value: "-"}
		}
		share := 0.0
		if stats.Size > 0 {
			share = float64(stats.Feasible) / float64(stats.Size)
		}
		feasible[i] = opts.LineData{Value: share}
	}

	line.SetXAxis(generations).
		AddSeries("Best fitness", best).
		AddSeries("Feasible share", feasible, charts.WithLineChartOpts(opts.LineChart{YAxisIndex: 1}))

	return line.Render(w)
}

// PlotPartition renders the graph with one node category per cluster, so
// every cluster gets its own color. Vertices are labeled from 1.
func PlotPartition(w io.Writer, g *framework.Graph, p framework.Partition, title string) error {
	if err := p.Validate(g.N()); err != nil {
		return err
	}

	categories := make([]*opts.GraphCategory, len(p))
	for i := range p {
		categories[i] = &opts.GraphCategory{Name: fmt.Sprintf("cluster %d", i+1)}
	}

	assign := p.Assignment(g.N())
	nodes := make([]opts.GraphNode, g.N())
	for v := range nodes {
		nodes[v] = opts.GraphNode{
			Name:       strconv.Itoa(v + 1),
			Category:   assign[v],
			SymbolSize: 18,
		}
	}

	edges := g.Edges()
	links := make([]opts.GraphLink, len(edges))
	for i, e := range edges {
		links[i] = opts.GraphLink{
			Source: strconv.Itoa(e.U + 1),
			Target: strconv.Itoa(e.V + 1),
			Value:  float32(e.Cost),
		}
	}

	graph := charts.NewGraph()
	graph.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("%d clusters", len(p)),
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
	)
	graph.AddSeries("partition", nodes, links,
		charts.WithGraphChartOpts(opts.GraphChart{
			Layout:     "force",
			Roam:       opts.Bool(true),
			Categories: categories,
			Force: &opts.GraphForce{
				Repulsion:  120,
				EdgeLength: 60,
			},
		}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}),
	)

	return graph.Render(w)
}

// RenderToFile creates path and hands it to render.
func RenderToFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
