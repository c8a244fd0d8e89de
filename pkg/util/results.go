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
	"os"
	"path/filepath"
	"strings"
	"time"

	"sigs.k8s.io/yaml"

	"github.com/mihai-snyk/gapartition/pkg/algorithms"
	"github.com/mihai-snyk/gapartition/pkg/analysis"
	"github.com/mihai-snyk/gapartition/pkg/framework"
	"github.com/mihai-snyk/gapartition/pkg/instance"
)

const separator = "----------------------------------------------------"

// ResultWriter appends "<instance> <fitness>" lines to a results file, the
// layout experiment scripts diff between runs.
type ResultWriter struct {
	path string
}

// NewResultWriter returns a writer appending to path.
func NewResultWriter(path string) *ResultWriter {
	return &ResultWriter{path: path}
}

// Path returns the results file.
func (w *ResultWriter) Path() string {
	return w.path
}

// Separator appends a dashed line.
func (w *ResultWriter) Separator() error {
	return w.appendLines(separator)
}

// Header opens a block of results.
func (w *ResultWriter) Header() error {
	return w.appendLines("Instance Result")
}

// Append records the final fitness of one run.
func (w *ResultWriter) Append(instanceName string, fitness framework.Fitness) error {
	return w.appendLines(fmt.Sprintf("%s %v", instanceName, fitness))
}

func (w *ResultWriter) appendLines(lines ...string) error {
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(strings.Join(lines, "\n") + "\n"); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// RunReport is the YAML summary of a single run.
type RunReport struct {
	Instance       string            `json:"instance"`
	Vertices       int               `json:"vertices"`
	Edges          int               `json:"edges"`
	MaxCost        int64             `json:"maxCost"`
	MaxSize        int               `json:"maxSize"`
	PopulationSize int               `json:"populationSize"`
	Generations    int               `json:"generations"`
	GenerationsRun int               `json:"generationsRun"`
	LastGeneration int               `json:"lastGeneration"`
	Stagnated      bool              `json:"stagnated"`
	Seed           uint64            `json:"seed"`
	Fitness        framework.Fitness `json:"fitness"`
	Best           [][]int           `json:"best"`
	Timings        map[string]string `json:"timings"`
	Elapsed        string            `json:"elapsed"`
	Analysis       *analysis.Report  `json:"analysis,omitempty"`
}

// NewRunReport summarizes result for inst.
func NewRunReport(inst *framework.Instance, config algorithms.Config, result *algorithms.Result) RunReport {
	t := result.Timings
	report := RunReport{
		Instance:       inst.Name,
		Vertices:       inst.Graph.N(),
		Edges:          len(inst.Graph.Edges()),
		MaxCost:        inst.MaxCost,
		MaxSize:        inst.MaxSize,
		PopulationSize: config.PopulationSize,
		Generations:    config.Generations,
		GenerationsRun: result.GenerationsRun,
		LastGeneration: result.LastGeneration,
		Stagnated:      result.Stagnated,
		Seed:           result.Seed,
		Fitness:        result.Fitness,
		Best:           instance.OneBased(result.Best),
		Timings: map[string]string{
			string(algorithms.PhasePopulate):   t.Populate.Round(time.Microsecond).String(),
			string(algorithms.PhaseSelection):  t.Selection.Round(time.Microsecond).String(),
			string(algorithms.PhaseTournament): t.Tournament.Round(time.Microsecond).String(),
			string(algorithms.PhaseCrossover):  t.Crossover.Round(time.Microsecond).String(),
			string(algorithms.PhaseMutation):   t.Mutation.Round(time.Microsecond).String(),
		},
		Elapsed: t.Total().Round(time.Millisecond).String(),
	}
	if result.Best != nil {
		a := analysis.Analyze(inst, result.Best)
		report.Analysis = &a
	}
	return report
}

// WriteReport writes report as YAML to path, creating parent directories.
func WriteReport(path string, report RunReport) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
