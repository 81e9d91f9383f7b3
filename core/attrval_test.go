package core

import "testing"

func TestAttrValueEqualSameKindOnly(t *testing.T) {
	a := Int32Val(5)
	b := Int64Val(5)
	if a.Equal(b) {
		t.Fatalf("values of different kinds must not be Equal")
	}
	if !a.Equal(Int32Val(5)) {
		t.Fatalf("equal same-kind values must compare equal")
	}
	if !Empty().Equal(Empty()) {
		t.Fatalf("empty must equal empty")
	}
	if Empty().Equal(Int32Val(0)) {
		t.Fatalf("empty must not equal any other kind")
	}
}

func TestAttrValueCompareSameKindRejectsCrossKind(t *testing.T) {
	_, err := CompareSameKind(Int32Val(1), DoubleVal(1))
	if err == nil || !Is(err, CodeInvalidArgument) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestAttrValueCompareNumericCoerces(t *testing.T) {
	c, err := CompareNumeric(Int32Val(1), DoubleVal(2.0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c >= 0 {
		t.Fatalf("expected 1 < 2.0, got cmp=%d", c)
	}
}

func TestAttrValueOwnedStringOrder(t *testing.T) {
	a := OwnedStringVal("abc")
	b := OwnedStringVal("abd")
	c, err := CompareSameKind(a, b)
	if err != nil || c >= 0 {
		t.Fatalf("expected abc < abd, got cmp=%d err=%v", c, err)
	}
}

func TestAttrValueByteArrayOrder(t *testing.T) {
	a := ByteArrayVal([]byte{1, 2})
	b := ByteArrayVal([]byte{1, 3})
	c, err := CompareSameKind(a, b)
	if err != nil || c >= 0 {
		t.Fatalf("expected [1,2] < [1,3], got cmp=%d err=%v", c, err)
	}
}

func TestAttrValueCloneSharesRefCountedHandle(t *testing.T) {
	a := OwnedStringVal("hello")
	b := a.Clone()
	if !a.Equal(b) {
		t.Fatalf("clone must compare equal to original")
	}
	// the clone shares a's reference-counted owner, so its count is now 2
	if *a.owned.n != 2 {
		t.Fatalf("expected refcount 2 after clone, got %d", *a.owned.n)
	}
}

func TestCompareTotalOrderTagFirst(t *testing.T) {
	if Compare(Empty(), Int32Val(0)) >= 0 {
		t.Fatalf("Empty (kind 0) must sort before Int32")
	}
}

func TestCanonicalString(t *testing.T) {
	if Int32Val(42).CanonicalString() != "42" {
		t.Fatalf("unexpected canonical string")
	}
	if CStrVal("abc").CanonicalString() != "abc" {
		t.Fatalf("unexpected canonical string for CStr")
	}
}
