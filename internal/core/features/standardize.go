// Package features turns catalog rows into a standardized numeric matrix.
package features

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/ewilliams-labs/resonance/internal/core/domain"
)

// Epsilon keeps the z-score and norm denominators non-zero for constant
// columns and zero vectors.
const Epsilon = 1e-8

// Matrix is an N x F standardized feature matrix. It is never mutated after
// Standardize returns and is safe for concurrent reads.
type Matrix struct {
	data  *mat.Dense
	names []string
}

// Standardize z-scores every requested column over the whole dataset using
// the population standard deviation: (v - mean) / (std + Epsilon).
//
// An empty names slice resolves to domain.DefaultFeatures. Columns absent
// from the dataset yield a *domain.SchemaError listing all of them. Rows are
// assumed to carry every requested feature; loaders enforce that.
func Standardize(ds domain.Dataset, names []string) (*Matrix, error) {
	resolved := domain.ResolveFeatures(names)
	if missing := ds.MissingColumns(resolved); len(missing) > 0 {
		return nil, &domain.SchemaError{Missing: missing}
	}
	rows := ds.Len()
	if rows == 0 {
		return nil, domain.ErrEmptyDataset
	}

	data := mat.NewDense(rows, len(resolved), nil)
	for i, t := range ds.Tracks {
		for j, name := range resolved {
			data.Set(i, j, t.Features[name])
		}
	}

	col := make([]float64, rows)
	for j := range resolved {
		mat.Col(col, j, data)
		mean, std := stat.PopMeanStdDev(col, nil)
		denom := std + Epsilon
		for i, v := range col {
			data.Set(i, j, (v-mean)/denom)
		}
	}

	return &Matrix{data: data, names: resolved}, nil
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int {
	r, _ := m.data.Dims()
	return r
}

// Cols returns the number of feature columns.
func (m *Matrix) Cols() int {
	_, c := m.data.Dims()
	return c
}

// Names returns the resolved column ordering.
func (m *Matrix) Names() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

// RawRow returns row i backed by the matrix storage. Callers must not
// modify it.
func (m *Matrix) RawRow(i int) []float64 {
	return m.data.RawRowView(i)
}
