package core

import "math/big"

// ParikhVector is an integer vector indexed by activity (via an
// ActivityIndex), counting net occurrences of each activity along some path.
// Region synthesis (component M) uses it for a candidate region's per-label
// token delta.
type ParikhVector []int64

// NewParikhVector returns a zero vector of the given dimension.
func NewParikhVector(dim int) ParikhVector {
	return make(ParikhVector, dim)
}

// widen returns a copy of v padded with zeros to at least n elements.
func (v ParikhVector) widen(n int) ParikhVector {
	if len(v) >= n {
		return append(ParikhVector(nil), v...)
	}
	out := make(ParikhVector, n)
	copy(out, v)
	return out
}

// Add returns v + o, widening to the larger of the two dimensions.
func (v ParikhVector) Add(o ParikhVector) ParikhVector {
	n := len(v)
	if len(o) > n {
		n = len(o)
	}
	a, b := v.widen(n), o.widen(n)
	out := make(ParikhVector, n)
	for i := range out {
		out[i] = a[i] + b[i]
	}
	return out
}

// Sub returns v - o, widening to the larger of the two dimensions.
func (v ParikhVector) Sub(o ParikhVector) ParikhVector {
	n := len(v)
	if len(o) > n {
		n = len(o)
	}
	a, b := v.widen(n), o.widen(n)
	out := make(ParikhVector, n)
	for i := range out {
		out[i] = a[i] - b[i]
	}
	return out
}

// IsZero reports whether every component of v is zero.
func (v ParikhVector) IsZero() bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// Equal reports whether v and o agree in every component, treating a
// missing trailing component as zero.
func (v ParikhVector) Equal(o ParikhVector) bool {
	return v.Sub(o).IsZero()
}

// ParikhMatrix is a growing basis of Parikh vectors reduced to row-echelon
// form by integer (gcd-based, fraction-free) elimination. It answers: is a
// candidate vector in the span of the vectors seen so far? Region synthesis
// uses this to keep only candidate regions whose per-label delta vector adds
// rank to the regions already kept.
type ParikhMatrix struct {
	rows [][]big.Int
	dim  int
}

// NewParikhMatrix returns an empty matrix over vectors of dimension dim.
func NewParikhMatrix(dim int) *ParikhMatrix {
	return &ParikhMatrix{dim: dim}
}

func toBigRow(v ParikhVector, dim int) []big.Int {
	w := v.widen(dim)
	row := make([]big.Int, dim)
	for i, x := range w {
		row[i].SetInt64(x)
	}
	return row
}

// Reduce eliminates v against the current basis rows and returns the
// remainder. A zero remainder means v is a linear combination of vectors
// already added.
func (m *ParikhMatrix) Reduce(v ParikhVector) ParikhVector {
	if len(v) > m.dim {
		m.growDim(len(v))
	}
	row := toBigRow(v, m.dim)
	for _, basis := range m.rows {
		pivot := firstNonZero(basis)
		if pivot < 0 {
			continue
		}
		if row[pivot].Sign() == 0 {
			continue
		}
		eliminate(row, basis, pivot)
	}
	return fromBigRow(row)
}

// AddRow reduces v against the existing basis and, if the remainder is
// nonzero, appends the gcd-normalized reduced row to the basis (rows stay in
// insertion order). It returns whether v added new rank.
func (m *ParikhMatrix) AddRow(v ParikhVector) bool {
	if len(v) > m.dim {
		m.growDim(len(v))
	}
	reduced := toBigRow(v, m.dim)
	for _, basis := range m.rows {
		pivot := firstNonZero(basis)
		if pivot < 0 || reduced[pivot].Sign() == 0 {
			continue
		}
		eliminate(reduced, basis, pivot)
	}
	pivot := firstNonZero(reduced)
	if pivot < 0 {
		return false
	}
	normalizeByGCD(reduced)
	m.rows = append(m.rows, reduced)
	return true
}

// Rank reports the number of linearly independent vectors added so far.
func (m *ParikhMatrix) Rank() int { return len(m.rows) }

func (m *ParikhMatrix) growDim(n int) {
	for i := range m.rows {
		row := make([]big.Int, n)
		copy(row, m.rows[i])
		m.rows[i] = row
	}
	m.dim = n
}

func firstNonZero(row []big.Int) int {
	for i := range row {
		if row[i].Sign() != 0 {
			return i
		}
	}
	return -1
}

// eliminate subtracts a multiple of basis from row so that row[pivot]
// becomes zero, using fraction-free (Bareiss-style) cross multiplication:
// row := row*basis[pivot] - basis*row[pivot], then divides out the gcd of
// the result to keep coefficients from growing unboundedly.
func eliminate(row, basis []big.Int, pivot int) {
	a := new(big.Int).Set(&row[pivot])
	b := new(big.Int).Set(&basis[pivot])
	for i := range row {
		var t1, t2 big.Int
		t1.Mul(&row[i], b)
		t2.Mul(&basis[i], a)
		row[i].Sub(&t1, &t2)
	}
	normalizeByGCD(row)
}

// normalizeByGCD divides every component of row by the gcd of its nonzero
// components, keeping the integer coefficients minimal.
func normalizeByGCD(row []big.Int) {
	g := new(big.Int)
	for i := range row {
		if row[i].Sign() == 0 {
			continue
		}
		if g.Sign() == 0 {
			g.Abs(&row[i])
		} else {
			g.GCD(nil, nil, g, new(big.Int).Abs(&row[i]))
		}
	}
	if g.Sign() == 0 || g.Cmp(big.NewInt(1)) == 0 {
		return
	}
	for i := range row {
		row[i].Quo(&row[i], g)
	}
}

func fromBigRow(row []big.Int) ParikhVector {
	out := make(ParikhVector, len(row))
	for i := range row {
		out[i] = row[i].Int64()
	}
	return out
}
