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

package util_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/yaml"

	"github.com/mihai-snyk/gapartition/pkg/algorithms"
	"github.com/mihai-snyk/gapartition/pkg/framework"
	"github.com/mihai-snyk/gapartition/pkg/util"
)

func sixVertexInstance(t *testing.T) *framework.Instance {
	t.Helper()
	g, err := framework.NewGraph(6, []framework.Edge{
		{U: 0, V: 1, Cost: 2},
		{U: 0, V: 2, Cost: 5},
		{U: 1, V: 3, Cost: 4},
		{U: 1, V: 4, Cost: 3},
		{U: 2, V: 5, Cost: 1},
		{U: 4, V: 5, Cost: 3},
	})
	if err != nil {
		t.Fatalf("building graph: %v", err)
	}
	inst, err := framework.NewInstance("instance_6_6_4_3", g, 4, 3)
	if err != nil {
		t.Fatalf("building instance: %v", err)
	}
	return inst
}

func TestResultWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.txt")
	w := util.NewResultWriter(path)

	if err := w.Separator(); err != nil {
		t.Fatal(err)
	}
	if err := w.Header(); err != nil {
		t.Fatal(err)
	}
	if err := w.Append("instance_6_6_4_3.dat", framework.Feasible(3)); err != nil {
		t.Fatal(err)
	}
	if err := w.Append("instance_20_30_20_3.dat", framework.Infeasible); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"----------------------------------------------------",
		"Instance Result",
		"instance_6_6_4_3.dat 3",
		"instance_20_30_20_3.dat inf",
		"",
	}, "\n")
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Errorf("Results file mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteReport(t *testing.T) {
	inst := sixVertexInstance(t)
	result := &algorithms.Result{
		Best:           framework.Partition{{0, 1}, {2, 5, 4}, {3}},
		Fitness:        framework.Feasible(3),
		GenerationsRun: 7,
		LastGeneration: 4,
		Stagnated:      true,
		Seed:           42,
	}
	report := util.NewRunReport(inst, algorithms.DefaultConfig(), result)
	if diff := cmp.Diff([][]int{{1, 2}, {3, 6, 5}, {4}}, report.Best); diff != "" {
		t.Errorf("Best not rendered 1-based (-want +got):\n%s", diff)
	}

	path := filepath.Join(t.TempDir(), "reports", "run.yaml")
	if err := util.WriteReport(path, report); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]interface{}
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Report is not valid YAML: %v", err)
	}
	if decoded["instance"] != "instance_6_6_4_3" {
		t.Errorf("Unexpected instance %v", decoded["instance"])
	}
	if decoded["fitness"] != float64(3) {
		t.Errorf("Unexpected fitness %v", decoded["fitness"])
	}
	if decoded["lastGeneration"] != float64(4) {
		t.Errorf("Unexpected last generation %v", decoded["lastGeneration"])
	}
	if _, ok := decoded["analysis"]; !ok {
		t.Errorf("Report lacks the cluster analysis")
	}
}

func TestWriteMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "gapartition_test_total", Help: "Test counter."})
	reg.MustRegister(counter)
	counter.Add(3)

	path := filepath.Join(t.TempDir(), "ga.prom")
	if err := util.WriteMetrics(reg, path); err != nil {
		t.Fatalf("WriteMetrics: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "gapartition_test_total 3") {
		t.Errorf("Metrics file lacks the counter:\n%s", data)
	}
}

func TestPlots(t *testing.T) {
	inst := sixVertexInstance(t)

	var buf bytes.Buffer
	history := []algorithms.GenerationStats{
		{Generation: 1, Size: 10, Best: framework.Infeasible},
		{Generation: 2, Size: 10, Best: framework.Feasible(4), Feasible: 3},
		{Generation: 3, Size: 10, Best: framework.Feasible(3), Feasible: 6},
	}
	if err := util.PlotConvergence(&buf, history, "instance_6_6_4_3"); err != nil {
		t.Fatalf("PlotConvergence: %v", err)
	}
	if !strings.Contains(buf.String(), "Best fitness") {
		t.Errorf("Convergence chart lacks the fitness series")
	}
	if err := util.PlotConvergence(&buf, nil, "empty"); err == nil {
		t.Errorf("Expected an error for an empty history")
	}

	buf.Reset()
	p := framework.Partition{{0, 1}, {2, 5, 4}, {3}}
	if err := util.PlotPartition(&buf, inst.Graph, p, "instance_6_6_4_3"); err != nil {
		t.Fatalf("PlotPartition: %v", err)
	}
	if !strings.Contains(buf.String(), "cluster 3") {
		t.Errorf("Partition chart lacks cluster categories")
	}
	if err := util.PlotPartition(&buf, inst.Graph, framework.Partition{{0, 1}}, "bad"); err == nil {
		t.Errorf("Expected an error for an invalid partition")
	}

	path := filepath.Join(t.TempDir(), "partition.html")
	err := util.RenderToFile(path, func(w io.Writer) error {
		return util.PlotPartition(w, inst.Graph, p, "file")
	})
	if err != nil {
		t.Fatalf("RenderToFile: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Chart file missing: %v", err)
	}
}
