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

// Package instance reads and writes problem instances in the
// "n m D T / edges / distance matrix" text format.
package instance

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mihai-snyk/gapartition/pkg/framework"
)

// ErrMalformed indicates an instance file that does not follow the format.
var ErrMalformed = errors.New("instance: malformed instance file")

// MaxVertices bounds n; the graph keeps n x n adjacency and cost matrices.
const MaxVertices = 4096

// Load reads the instance stored at path. The instance is named after the
// file without its extension.
func Load(path string) (*framework.Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	inst, err := Parse(name, f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return inst, nil
}

// Parse reads an instance: a header line "n m D T", m lines "u v w" with
// 1-based endpoints, then optionally an n x n distance matrix. When the
// matrix is present it defines adjacency (nonzero entries) and costs;
// otherwise the edge list does.
func Parse(name string, r io.Reader) (*framework.Instance, error) {
	values, err := readInts(r)
	if err != nil {
		return nil, err
	}
	if len(values) < 4 {
		return nil, fmt.Errorf("%w: header needs n m D T, got %d values", ErrMalformed, len(values))
	}
	n, m, maxCost, maxSize := int(values[0]), int(values[1]), values[2], int(values[3])
	if n < 0 || m < 0 {
		return nil, fmt.Errorf("%w: negative vertex or edge count (n=%d, m=%d)", ErrMalformed, n, m)
	}
	if values[0] > MaxVertices {
		return nil, fmt.Errorf("%w: %d vertices exceeds the limit of %d", ErrMalformed, values[0], MaxVertices)
	}
	values = values[4:]

	if len(values) < 3*m {
		return nil, fmt.Errorf("%w: expected %d edge lines, found %d values", ErrMalformed, m, len(values))
	}
	edges := make([]framework.Edge, m)
	for i := range edges {
		u, v, w := values[3*i], values[3*i+1], values[3*i+2]
		edges[i] = framework.Edge{U: int(u) - 1, V: int(v) - 1, Cost: w}
	}
	values = values[3*m:]

	var g *framework.Graph
	switch len(values) {
	case 0:
		g, err = framework.NewGraph(n, edges)
	case n * n:
		matrix := make([][]int64, n)
		for i := range matrix {
			matrix[i] = values[i*n : (i+1)*n]
		}
		g, err = framework.NewGraphFromMatrix(matrix)
	default:
		return nil, fmt.Errorf("%w: %d trailing values, want 0 or a %dx%d matrix", ErrMalformed, len(values), n, n)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	return framework.NewInstance(name, g, maxCost, maxSize)
}

func readInts(r io.Reader) ([]int64, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	scanner.Split(bufio.ScanWords)

	var values []int64
	for scanner.Scan() {
		x, err := strconv.ParseInt(scanner.Text(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: value %d: %w", ErrMalformed, len(values)+1, err)
		}
		values = append(values, x)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return values, nil
}

// Write serializes inst in the format read by Parse. The distance matrix is
// appended unless an edge has zero cost, which the matrix cannot express.
func Write(w io.Writer, inst *framework.Instance) error {
	g := inst.Graph
	edges := g.Edges()
	withMatrix := true
	for _, e := range edges {
		if e.Cost == 0 {
			withMatrix = false
			break
		}
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d %d %d\n", g.N(), len(edges), inst.MaxCost, inst.MaxSize)
	for _, e := range edges {
		fmt.Fprintf(bw, "%d %d %d\n", e.U+1, e.V+1, e.Cost)
	}
	for u := 0; withMatrix && u < g.N(); u++ {
		row := make([]string, g.N())
		for v := range row {
			row[v] = strconv.FormatInt(g.Cost(u, v), 10)
		}
		fmt.Fprintln(bw, strings.Join(row, " "))
	}
	return bw.Flush()
}

// FileName returns the conventional file name instance_<n>_<m>_<D>_<T>.dat.
func FileName(inst *framework.Instance) string {
	g := inst.Graph
	return fmt.Sprintf("instance_%d_%d_%d_%d.dat", g.N(), len(g.Edges()), inst.MaxCost, inst.MaxSize)
}

// OneBased renders p with vertices numbered from 1, as in reports.
func OneBased(p framework.Partition) [][]int {
	out := make([][]int, len(p))
	for i, c := range p {
		out[i] = make([]int, len(c))
		for j, v := range c {
			out[i][j] = v + 1
		}
	}
	return out
}
