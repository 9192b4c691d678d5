// Package distribution implements categorical probability tables over
// discrete index dimensions. Axis 0 is the outcome axis: a conditional
// slice is the column obtained by fixing every trailing index, and a
// normalized table has every such column summing to one. Tables carry
// no hidden state beyond their values.
package distribution

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/floats"

	"github.com/adalundhe/praxis/core/fault"
)

// NormTolerance is the absolute tolerance within which a conditional
// slice must sum to one to count as normalized.
const NormTolerance = 1e-9

// Categorical is a non-negative table over one or more discrete index
// dimensions, stored row-major as a flat slice.
type Categorical struct {
	data  []float64
	shape []int
}

// New constructs a Categorical from row-major data and a shape.
// Negative entries and shape/data length mismatches are rejected
// eagerly rather than coerced.
func New(data []float64, shape ...int) (Categorical, error) {
	if len(shape) == 0 {
		return Categorical{}, fault.Configf("distribution.New", "shape must have at least one dimension")
	}
	n := 1
	for _, d := range shape {
		if d <= 0 {
			return Categorical{}, fault.Configf("distribution.New", "dimension sizes must be positive, got %v", shape)
		}
		n *= d
	}
	if len(data) != n {
		return Categorical{}, fault.Configf("distribution.New", "data length %d does not match shape %v (want %d)", len(data), shape, n)
	}
	for i, v := range data {
		if v < 0 {
			return Categorical{}, fault.Domainf("distribution.New", "negative entry %g at flat index %d", v, i)
		}
	}
	c := Categorical{
		data:  make([]float64, n),
		shape: make([]int, len(shape)),
	}
	copy(c.data, data)
	copy(c.shape, shape)
	return c, nil
}

// Uniform returns the rank-1 uniform distribution over n outcomes.
func Uniform(n int) Categorical {
	data := make([]float64, n)
	for i := range data {
		data[i] = 1.0 / float64(n)
	}
	return Categorical{data: data, shape: []int{n}}
}

// OneHot returns the rank-1 point mass on outcome hot.
func OneHot(n, hot int) (Categorical, error) {
	if hot < 0 || hot >= n {
		return Categorical{}, fault.Configf("distribution.OneHot", "outcome %d out of range [0,%d)", hot, n)
	}
	data := make([]float64, n)
	data[hot] = 1
	return Categorical{data: data, shape: []int{n}}, nil
}

// Rank returns the number of index dimensions.
func (c Categorical) Rank() int { return len(c.shape) }

// Shape returns a copy of the table's dimension sizes.
func (c Categorical) Shape() []int {
	out := make([]int, len(c.shape))
	copy(out, c.shape)
	return out
}

// Len returns the total number of entries.
func (c Categorical) Len() int { return len(c.data) }

// Values returns a copy of the flat row-major data.
func (c Categorical) Values() []float64 {
	out := make([]float64, len(c.data))
	copy(out, c.data)
	return out
}

// At returns the entry at the given multi-index.
func (c Categorical) At(idx ...int) float64 {
	if len(idx) != len(c.shape) {
		panic("distribution: index rank mismatch")
	}
	flat := 0
	for d, i := range idx {
		if i < 0 || i >= c.shape[d] {
			panic("distribution: index out of range")
		}
		flat = flat*c.shape[d] + i
	}
	return c.data[flat]
}

// colStride is the distance between consecutive outcome-axis entries
// of the same conditional column in the flat layout.
func (c Categorical) colStride() int {
	stride := 1
	for _, d := range c.shape[1:] {
		stride *= d
	}
	return stride
}

// Normalize divides each conditional slice by its sum and returns the
// result as a new table. It fails with a DomainError if any slice sums
// to exactly zero. Normalization is idempotent.
func (c Categorical) Normalize() (Categorical, error) {
	rows := c.shape[0]
	stride := c.colStride()
	out := Categorical{data: make([]float64, len(c.data)), shape: c.Shape()}
	copy(out.data, c.data)

	for col := 0; col < stride; col++ {
		sum := 0.0
		for r := 0; r < rows; r++ {
			sum += out.data[r*stride+col]
		}
		if sum == 0 {
			return Categorical{}, fault.Domainf("distribution.Normalize", "conditional slice %d sums to zero", col)
		}
		for r := 0; r < rows; r++ {
			out.data[r*stride+col] /= sum
		}
	}
	return out, nil
}

// IsNormalized reports whether every conditional slice sums to one
// within NormTolerance.
func (c Categorical) IsNormalized() bool {
	rows := c.shape[0]
	stride := c.colStride()
	for col := 0; col < stride; col++ {
		sum := 0.0
		for r := 0; r < rows; r++ {
			sum += c.data[r*stride+col]
		}
		if math.Abs(sum-1) > NormTolerance {
			return false
		}
	}
	return true
}

// Dot contracts a rank-2 (|O|x|S|) table with an |S|-length vector,
// producing the |O|-length marginal A*x.
func (c Categorical) Dot(x []float64) ([]float64, error) {
	if len(c.shape) != 2 {
		return nil, fault.Configf("distribution.Dot", "contraction requires a rank-2 table, got rank %d", len(c.shape))
	}
	rows, cols := c.shape[0], c.shape[1]
	if len(x) != cols {
		return nil, fault.Configf("distribution.Dot", "vector length %d does not match %d columns", len(x), cols)
	}
	out := make([]float64, rows)
	blas64.Gemv(
		blas.NoTrans, 1.0,
		blas64.General{Rows: rows, Cols: cols, Stride: cols, Data: c.data},
		blas64.Vector{N: cols, Inc: 1, Data: x}, 0.0,
		blas64.Vector{N: rows, Inc: 1, Data: out},
	)
	return out, nil
}

// Slice fixes the final axis of a rank-3 table at index k, returning
// the contiguous rank-2 table. For a transition tensor shaped
// (|S|,|S|,|U|) this selects the column-stochastic matrix of action k.
func (c Categorical) Slice(k int) (Categorical, error) {
	if len(c.shape) != 3 {
		return Categorical{}, fault.Configf("distribution.Slice", "slicing requires a rank-3 table, got rank %d", len(c.shape))
	}
	d0, d1, d2 := c.shape[0], c.shape[1], c.shape[2]
	if k < 0 || k >= d2 {
		return Categorical{}, fault.Configf("distribution.Slice", "slice index %d out of range [0,%d)", k, d2)
	}
	data := make([]float64, d0*d1)
	for i := 0; i < d0; i++ {
		for j := 0; j < d1; j++ {
			data[i*d1+j] = c.data[(i*d1+j)*d2+k]
		}
	}
	return Categorical{data: data, shape: []int{d0, d1}}, nil
}

// Row returns a copy of row i of a rank-2 table: the likelihood of
// outcome i across every column state.
func (c Categorical) Row(i int) ([]float64, error) {
	if len(c.shape) != 2 {
		return nil, fault.Configf("distribution.Row", "row access requires a rank-2 table, got rank %d", len(c.shape))
	}
	rows, cols := c.shape[0], c.shape[1]
	if i < 0 || i >= rows {
		return nil, fault.Configf("distribution.Row", "row %d out of range [0,%d)", i, rows)
	}
	out := make([]float64, cols)
	copy(out, c.data[i*cols:(i+1)*cols])
	return out, nil
}

// Column returns a copy of column j of a rank-2 table: the outcome
// distribution conditioned on state j.
func (c Categorical) Column(j int) ([]float64, error) {
	if len(c.shape) != 2 {
		return nil, fault.Configf("distribution.Column", "column access requires a rank-2 table, got rank %d", len(c.shape))
	}
	rows, cols := c.shape[0], c.shape[1]
	if j < 0 || j >= cols {
		return nil, fault.Configf("distribution.Column", "column %d out of range [0,%d)", j, cols)
	}
	out := make([]float64, rows)
	for r := 0; r < rows; r++ {
		out[r] = c.data[r*cols+j]
	}
	return out, nil
}

// ColumnEntropies returns, for each column of a rank-2 table, the
// Shannon entropy of that column's outcome distribution. Zero entries
// contribute zero.
func (c Categorical) ColumnEntropies() ([]float64, error) {
	if len(c.shape) != 2 {
		return nil, fault.Configf("distribution.ColumnEntropies", "entropy requires a rank-2 table, got rank %d", len(c.shape))
	}
	rows, cols := c.shape[0], c.shape[1]
	out := make([]float64, cols)
	for j := 0; j < cols; j++ {
		h := 0.0
		for r := 0; r < rows; r++ {
			p := c.data[r*cols+j]
			if p > 0 {
				h -= p * math.Log(p)
			}
		}
		out[j] = h
	}
	return out, nil
}

// Sample draws one outcome index from a rank-1 normalized distribution
// by cumulative-distribution inversion against a uniform draw from
// rng. Each call redraws; the result is not restartable.
func (c Categorical) Sample(rng *rand.Rand) (int, error) {
	if len(c.shape) != 1 {
		return 0, fault.Configf("distribution.Sample", "sampling requires a rank-1 table, got rank %d", len(c.shape))
	}
	if math.Abs(floats.Sum(c.data)-1) > NormTolerance {
		return 0, fault.Domainf("distribution.Sample", "distribution is not normalized (sum %g)", floats.Sum(c.data))
	}
	u := rng.Float64()
	cum := 0.0
	for i, p := range c.data {
		cum += p
		if u < cum {
			return i, nil
		}
	}
	// Floating-point shortfall in the cumulative sum lands here.
	return len(c.data) - 1, nil
}
