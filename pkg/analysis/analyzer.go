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

package analysis

import (
	"fmt"
	"io"
	"strings"

	"github.com/mihai-snyk/gapartition/pkg/constraints"
	"github.com/mihai-snyk/gapartition/pkg/framework"
)

// Violation names the bound a cluster breaks.
type Violation string

const (
	ViolationNone         Violation = ""
	ViolationSize         Violation = "size"
	ViolationDisconnected Violation = "disconnected"
	ViolationCost         Violation = "cost"
)

// ClusterReport describes one cluster of a partition.
type ClusterReport struct {
	Index     int       `json:"index"`
	Vertices  []int     `json:"vertices"` // 1-based
	Size      int       `json:"size"`
	Connected bool      `json:"connected"`
	TreeCost  int64     `json:"treeCost,omitempty"` // only meaningful when connected
	Violation Violation `json:"violation,omitempty"`
}

// Report explains a partition against the bounds of an instance.
type Report struct {
	Instance    string            `json:"instance"`
	MaxCost     int64             `json:"maxCost"`
	MaxSize     int               `json:"maxSize"`
	Fitness     framework.Fitness `json:"fitness"`
	Clusters    []ClusterReport   `json:"clusters"`
	Violations  int               `json:"violations"`
	LargestSize int               `json:"largestSize"`
	MaxTreeCost int64             `json:"maxTreeCost"`
}

// Analyze evaluates every cluster of p. Unlike the oracle it does not stop at
// the first violation, and the size check does not hide the cost check.
func Analyze(inst *framework.Instance, p framework.Partition) Report {
	report := Report{
		Instance: inst.Name,
		MaxCost:  inst.MaxCost,
		MaxSize:  inst.MaxSize,
		Fitness:  constraints.NewOracle(inst).Evaluate(p),
		Clusters: make([]ClusterReport, 0, len(p)),
	}

	for i, c := range p {
		cr := ClusterReport{Index: i, Size: len(c), Vertices: make([]int, len(c))}
		for j, v := range c {
			cr.Vertices[j] = v + 1
		}
		cr.TreeCost, cr.Connected = constraints.SpanningTreeCost(inst.Graph, c)

		switch {
		case cr.Size > inst.MaxSize:
			cr.Violation = ViolationSize
		case !cr.Connected:
			cr.Violation = ViolationDisconnected
		case cr.TreeCost > inst.MaxCost:
			cr.Violation = ViolationCost
		}
		if cr.Violation != ViolationNone {
			report.Violations++
		}
		if cr.Size > report.LargestSize {
			report.LargestSize = cr.Size
		}
		if cr.Connected && cr.TreeCost > report.MaxTreeCost {
			report.MaxTreeCost = cr.TreeCost
		}
		report.Clusters = append(report.Clusters, cr)
	}
	return report
}

// Print writes a human-readable breakdown of the report.
func Print(w io.Writer, r Report) {
	fmt.Fprintf(w, "\n=== %s (D=%d, T=%d) ===\n", r.Instance, r.MaxCost, r.MaxSize)
	fmt.Fprintf(w, "Fitness: %v\n", r.Fitness)
	fmt.Fprintf(w, "Clusters: %d, largest: %d, max tree cost: %d\n", len(r.Clusters), r.LargestSize, r.MaxTreeCost)

	fmt.Fprintln(w, "\nCLUSTER BREAKDOWN:")
	for _, c := range r.Clusters {
		cost := "-"
		if c.Connected {
			cost = fmt.Sprintf("%d", c.TreeCost)
		}
		line := fmt.Sprintf("  %3d. size=%d cost=%s %v", c.Index+1, c.Size, cost, c.Vertices)
		if c.Violation != ViolationNone {
			line += "  <-- violates " + strings.ToUpper(string(c.Violation))
		}
		fmt.Fprintln(w, line)
	}
	if r.Violations > 0 {
		fmt.Fprintf(w, "\n%d cluster(s) violate the bounds\n", r.Violations)
	}
}
