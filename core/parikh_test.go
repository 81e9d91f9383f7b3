package core

import "testing"

func TestParikhVectorAddSub(t *testing.T) {
	a := ParikhVector{1, 2, 3}
	b := ParikhVector{1, 1, 1, 4}
	sum := a.Add(b)
	if !sum.Equal(ParikhVector{2, 3, 4, 4}) {
		t.Fatalf("unexpected sum: %v", sum)
	}
	diff := b.Sub(a)
	if !diff.Equal(ParikhVector{0, -1, -2, 4}) {
		t.Fatalf("unexpected diff: %v", diff)
	}
}

func TestParikhVectorIsZero(t *testing.T) {
	if !(ParikhVector{0, 0, 0}).IsZero() {
		t.Fatalf("expected zero vector")
	}
	if (ParikhVector{0, 1}).IsZero() {
		t.Fatalf("expected non-zero vector")
	}
}

func TestParikhMatrixDetectsLinearDependence(t *testing.T) {
	m := NewParikhMatrix(3)
	if !m.AddRow(ParikhVector{1, 2, 3}) {
		t.Fatalf("expected first row to add rank")
	}
	if !m.AddRow(ParikhVector{0, 1, 1}) {
		t.Fatalf("expected second independent row to add rank")
	}
	dependent := ParikhVector{2, 5, 7} // 2*(1,2,3) + 1*(0,1,1)
	if m.AddRow(dependent) {
		t.Fatalf("expected a linearly dependent row to add no rank")
	}
	if m.Rank() != 2 {
		t.Fatalf("expected rank 2, got %d", m.Rank())
	}
}

func TestParikhMatrixReduceToZero(t *testing.T) {
	m := NewParikhMatrix(2)
	m.AddRow(ParikhVector{2, 4})
	r := m.Reduce(ParikhVector{4, 8})
	if !r.IsZero() {
		t.Fatalf("expected reduction of a scaled-duplicate row to zero, got %v", r)
	}
}

func TestParikhMatrixReduceNonzeroForIndependent(t *testing.T) {
	m := NewParikhMatrix(2)
	m.AddRow(ParikhVector{1, 0})
	r := m.Reduce(ParikhVector{0, 1})
	if r.IsZero() {
		t.Fatalf("expected an independent vector to reduce to nonzero")
	}
}
