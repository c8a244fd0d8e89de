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

// Package app implements the gapartition commands.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"
	logsapi "k8s.io/component-base/logs/api/v1"
	"k8s.io/klog/v2"

	"github.com/mihai-snyk/gapartition/cmd/gapartition/app/options"
	"github.com/mihai-snyk/gapartition/pkg/algorithms"
	"github.com/mihai-snyk/gapartition/pkg/analysis"
	"github.com/mihai-snyk/gapartition/pkg/benchmarks"
	"github.com/mihai-snyk/gapartition/pkg/framework"
	"github.com/mihai-snyk/gapartition/pkg/instance"
	"github.com/mihai-snyk/gapartition/pkg/metrics"
	"github.com/mihai-snyk/gapartition/pkg/tracing"
	"github.com/mihai-snyk/gapartition/pkg/util"
	"github.com/mihai-snyk/gapartition/pkg/warmstart"
)

const serviceName = "gapartition"

// NewGAPartitionCommand creates the root command with the run and bench
// subcommands.
func NewGAPartitionCommand(out io.Writer) *cobra.Command {
	logs := options.NewLoggingOptions()

	cmd := &cobra.Command{
		Use:   "gapartition",
		Short: "gapartition",
		Long: `Partitions a weighted graph into the fewest clusters such that every
cluster has at most T vertices and a spanning tree of cost at most D,
using a genetic algorithm.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logsapi.ValidateAndApply(logs, nil)
		},
	}
	cmd.SetOut(out)
	logsapi.AddFlags(logs, cmd.PersistentFlags())

	cmd.AddCommand(newRunCommand(out), newBenchCommand(out))
	return cmd
}

func newRunCommand(out io.Writer) *cobra.Command {
	o := options.NewRunOptions()
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evolve a partition for one instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Validate(); err != nil {
				return err
			}
			if err := o.Complete(cmd.Flags()); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return Run(ctx, o, out)
		},
	}
	o.AddFlags(cmd.Flags())
	return cmd
}

func newBenchCommand(out io.Writer) *cobra.Command {
	o := options.NewBenchOptions()
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run the GA over a set of instances",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Validate(); err != nil {
				return err
			}
			if err := o.Complete(cmd.Flags()); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return Bench(ctx, o, out)
		},
	}
	o.AddFlags(cmd.Flags())
	return cmd
}

// Run evolves a partition for the instance named in o and writes every
// configured output.
func Run(ctx context.Context, o *options.RunOptions, out io.Writer) error {
	logger := klog.FromContext(ctx)
	cfg := o.Config

	inst, err := instance.Load(o.Instance)
	if err != nil {
		return err
	}
	logger.Info("Loaded instance", "instance", inst.Name, "vertices", inst.Graph.N(), "edges", len(inst.Graph.Edges()), "maxCost", inst.MaxCost, "maxSize", inst.MaxSize)

	tp, err := tracing.Setup(ctx, serviceName, cfg.Output.OTelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Error(err, "Failed to flush traces")
		}
	}()

	registry := prometheus.NewRegistry()
	recorder, err := metrics.NewRecorder(registry, inst.Name)
	if err != nil {
		return err
	}

	config := o.AlgorithmConfig()
	seeder, err := warmstart.NewAgglomerative(o.SeedingConfig(inst, config.Seed))
	if err != nil {
		return err
	}
	ga, err := algorithms.NewGA(config, inst, seeder, algorithms.WithObserver(recorder))
	if err != nil {
		return err
	}

	result, runErr := ga.Run(ctx)
	recorder.RecordRun(result, runErr)
	if result == nil {
		return runErr
	}
	if runErr != nil {
		logger.Info("Run interrupted, reporting the best individual so far", "err", runErr)
	}

	fmt.Fprintf(out, "*** Generation %d: %v --> %v ***\n", result.LastGeneration, instance.OneBased(result.Best), result.Fitness)
	if o.Explain {
		analysis.Print(out, analysis.Analyze(inst, result.Best))
	}

	if err := writeOutputs(o.GAOptions, inst, config, result, registry); err != nil {
		return err
	}
	return runErr
}

func writeOutputs(o *options.GAOptions, inst *framework.Instance, config algorithms.Config, result *algorithms.Result, gatherer prometheus.Gatherer) error {
	output := o.Config.Output

	if output.Results != "" {
		w := util.NewResultWriter(output.Results)
		if err := w.Append(inst.Name, result.Fitness); err != nil {
			return err
		}
	}
	if output.Report != "" {
		if err := util.WriteReport(output.Report, util.NewRunReport(inst, config, result)); err != nil {
			return err
		}
	}
	if output.PlotDir != "" {
		if err := os.MkdirAll(output.PlotDir, 0o755); err != nil {
			return err
		}
		if len(result.History) > 0 {
			err := util.RenderToFile(filepath.Join(output.PlotDir, inst.Name+"_convergence.html"), func(w io.Writer) error {
				return util.PlotConvergence(w, result.History, inst.Name)
			})
			if err != nil {
				return err
			}
		}
		err := util.RenderToFile(filepath.Join(output.PlotDir, inst.Name+"_partition.html"), func(w io.Writer) error {
			return util.PlotPartition(w, inst.Graph, result.Best, inst.Name)
		})
		if err != nil {
			return err
		}
	}
	if output.MetricsFile != "" {
		if err := util.WriteMetrics(gatherer, output.MetricsFile); err != nil {
			return err
		}
	}
	return nil
}

// Bench runs the suite over the instances named in o, or over generated
// instances of the standard shapes when none are named.
func Bench(ctx context.Context, o *options.BenchOptions, out io.Writer) error {
	logger := klog.FromContext(ctx)
	cfg := o.Config

	instances, err := benchInstances(o)
	if err != nil {
		return err
	}

	tp, err := tracing.Setup(ctx, serviceName, cfg.Output.OTelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Error(err, "Failed to flush traces")
		}
	}()

	registry := prometheus.NewRegistry()
	recorders := map[string]*metrics.Recorder{}
	suiteConfig := benchmarks.SuiteConfig{
		GA:            o.AlgorithmConfig(),
		Iterations:    o.Iterations,
		Seeding:       o.SeedingTemplate(),
		RespectBounds: cfg.Seeding.RespectBounds,
		OutputDir:     o.OutputDir,
		NewObserver: func(inst *framework.Instance) (algorithms.Observer, error) {
			// iterations of an instance accumulate into one set of series
			if r, ok := recorders[inst.Name]; ok {
				return r, nil
			}
			r, err := metrics.NewRecorder(registry, inst.Name)
			if err != nil {
				return nil, err
			}
			recorders[inst.Name] = r
			return r, nil
		},
		AfterRun: func(inst *framework.Instance, result *algorithms.Result, err error) {
			if r, ok := recorders[inst.Name]; ok {
				r.RecordRun(result, err)
			}
		},
	}
	if cfg.Output.Results != "" {
		suiteConfig.Results = util.NewResultWriter(cfg.Output.Results)
	}

	suite := benchmarks.NewSuite(suiteConfig)
	for _, inst := range instances {
		suite.AddInstance(inst)
	}
	outcomes, err := suite.Run(ctx)
	for _, outcome := range outcomes {
		fmt.Fprintf(out, "%s [%d] generation %d --> %v (%v)\n", outcome.Instance, outcome.Iteration, outcome.LastGeneration, outcome.Fitness, outcome.Elapsed)
	}
	if err != nil {
		return err
	}

	if cfg.Output.MetricsFile != "" {
		return util.WriteMetrics(registry, cfg.Output.MetricsFile)
	}
	return nil
}

func benchInstances(o *options.BenchOptions) ([]*framework.Instance, error) {
	if len(o.Instances) == 0 {
		rng := rand.New(rand.NewSource(o.Config.Seed))
		var instances []*framework.Instance
		for _, shape := range benchmarks.StandardShapes() {
			if shape.N > o.MaxVertices {
				continue
			}
			inst, err := benchmarks.RandomInstance(rng, shape, o.MaxWeight)
			if err != nil {
				return nil, err
			}
			instances = append(instances, inst)
		}
		return instances, nil
	}

	var paths []string
	for _, p := range o.Instances {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, p)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(p, "*.dat"))
		if err != nil {
			return nil, err
		}
		sort.Strings(matches)
		paths = append(paths, matches...)
	}

	instances := make([]*framework.Instance, 0, len(paths))
	for _, p := range paths {
		inst, err := instance.Load(p)
		if err != nil {
			return nil, err
		}
		instances = append(instances, inst)
	}
	if len(instances) == 0 {
		return nil, fmt.Errorf("no instances found in %s", strings.Join(o.Instances, ", "))
	}
	return instances, nil
}
