package core

import (
	"fmt"
	"reflect"
	"strconv"
)

// Kind discriminates the variant carried by an AttrValue.
type Kind byte

const (
	KindEmpty Kind = iota
	KindChar
	KindUChar
	KindInt32
	KindUInt32
	KindInt64
	KindUInt64
	KindDouble
	KindVoidPtr
	KindCStr
	KindOwnedString
	KindByteArray
	KindDestrObj
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "Empty"
	case KindChar:
		return "Char"
	case KindUChar:
		return "UChar"
	case KindInt32:
		return "Int32"
	case KindUInt32:
		return "UInt32"
	case KindInt64:
		return "Int64"
	case KindUInt64:
		return "UInt64"
	case KindDouble:
		return "Double"
	case KindVoidPtr:
		return "VoidPtr"
	case KindCStr:
		return "CStr"
	case KindOwnedString:
		return "OwnedString"
	case KindByteArray:
		return "ByteArray"
	case KindDestrObj:
		return "DestrObj"
	default:
		return "Unknown"
	}
}

// refCounted is a minimal reference-counted owner for shared payloads
// (owned strings and byte arrays). Copying an AttrValue clones the handle
// (bumps the count), never the payload.
type refCounted[T any] struct {
	val T
	n   *int32
}

func newRefCounted[T any](v T) *refCounted[T] {
	one := int32(1)
	return &refCounted[T]{val: v, n: &one}
}

func (r *refCounted[T]) clone() *refCounted[T] {
	if r == nil {
		return nil
	}
	*r.n++
	return r
}

// AttrValue is a tagged union over the variant kinds listed in spec.md §3.1.
// Only the field matching Kind is meaningful.
type AttrValue struct {
	kind  Kind
	i     int64            // Char, UChar, Int32, UInt32, Int64, UInt64 (sign-extended/zero-extended as appropriate)
	f     float64          // Double
	ptr   uintptr          // VoidPtr
	cstr  string           // CStr: a borrow, not owned by this value
	owned *refCounted[string]
	bytes *refCounted[[]byte]
	destr any // DestrObj: opaque, compared by identity only
}

// Empty returns the Empty attribute value.
func Empty() AttrValue { return AttrValue{kind: KindEmpty} }

func CharVal(v int8) AttrValue    { return AttrValue{kind: KindChar, i: int64(v)} }
func UCharVal(v uint8) AttrValue  { return AttrValue{kind: KindUChar, i: int64(v)} }
func Int32Val(v int32) AttrValue  { return AttrValue{kind: KindInt32, i: int64(v)} }
func UInt32Val(v uint32) AttrValue { return AttrValue{kind: KindUInt32, i: int64(v)} }
func Int64Val(v int64) AttrValue  { return AttrValue{kind: KindInt64, i: v} }
func UInt64Val(v uint64) AttrValue { return AttrValue{kind: KindUInt64, i: int64(v)} }
func DoubleVal(v float64) AttrValue { return AttrValue{kind: KindDouble, f: v} }
func VoidPtrVal(v uintptr) AttrValue { return AttrValue{kind: KindVoidPtr, ptr: v} }

// CStrVal wraps a borrowed string; the caller is responsible for the
// borrow's lifetime (typically a StringPool intern result).
func CStrVal(s string) AttrValue { return AttrValue{kind: KindCStr, cstr: s} }

// OwnedStringVal copies s into a fresh reference-counted owner.
func OwnedStringVal(s string) AttrValue {
	return AttrValue{kind: KindOwnedString, owned: newRefCounted(s)}
}

// ByteArrayVal copies b into a fresh reference-counted owner.
func ByteArrayVal(b []byte) AttrValue {
	cp := append([]byte(nil), b...)
	return AttrValue{kind: KindByteArray, bytes: newRefCounted(cp)}
}

// DestrObjVal wraps an opaque handle, compared only by identity.
func DestrObjVal(v any) AttrValue { return AttrValue{kind: KindDestrObj, destr: v} }

// Kind reports the variant carried by v.
func (v AttrValue) Kind() Kind { return v.kind }

// Clone returns a copy of v. For OwnedString/ByteArray this clones the
// reference-counted handle, not the payload.
func (v AttrValue) Clone() AttrValue {
	c := v
	if v.owned != nil {
		c.owned = v.owned.clone()
	}
	if v.bytes != nil {
		c.bytes = v.bytes.clone()
	}
	return c
}

// AsInt64 returns the integer payload for any integer-kinded value.
func (v AttrValue) AsInt64() (int64, bool) {
	switch v.kind {
	case KindChar, KindUChar, KindInt32, KindUInt32, KindInt64, KindUInt64:
		return v.i, true
	}
	return 0, false
}

// AsDouble returns the float payload for Double.
func (v AttrValue) AsDouble() (float64, bool) {
	if v.kind == KindDouble {
		return v.f, true
	}
	return 0, false
}

// AsString returns the string payload for CStr or OwnedString.
func (v AttrValue) AsString() (string, bool) {
	switch v.kind {
	case KindCStr:
		return v.cstr, true
	case KindOwnedString:
		return v.owned.val, true
	}
	return "", false
}

// AsBytes returns the byte payload for ByteArray.
func (v AttrValue) AsBytes() ([]byte, bool) {
	if v.kind == KindByteArray {
		return v.bytes.val, true
	}
	return nil, false
}

// Equal reports same-kind, same-value equality. Empty equals only Empty.
// Cross-kind numeric comparisons are never folded in here — see
// CompareNumeric for that — this mirrors the Open Question decision
// recorded in DESIGN.md.
func (v AttrValue) Equal(o AttrValue) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindEmpty:
		return true
	case KindChar, KindUChar, KindInt32, KindUInt32, KindInt64, KindUInt64:
		return v.i == o.i
	case KindDouble:
		return v.f == o.f
	case KindVoidPtr:
		return v.ptr == o.ptr
	case KindCStr:
		return v.cstr == o.cstr
	case KindOwnedString:
		return v.owned.val == o.owned.val
	case KindByteArray:
		return string(v.bytes.val) == string(o.bytes.val)
	case KindDestrObj:
		return destrEqual(v.destr, o.destr)
	}
	return false
}

// destrEqual compares opaque DestrObj payloads by pointer identity when the
// underlying type supports it, and falls back to reflect.DeepEqual
// otherwise — DestrObj may wrap non-comparable types (slices, maps), where
// Go's == would panic.
func destrEqual(a, b any) bool {
	ai, bi := destrIdentity(a), destrIdentity(b)
	if ai != 0 || bi != 0 {
		return ai == bi
	}
	return reflect.DeepEqual(a, b)
}

// CompareSameKind totally orders two values of the same Kind: tag first
// (trivial here since kinds already match), then value — OwnedString by
// lexicographic order, ByteArray by lexicographic byte-content order. It is
// an InvalidArgument error to compare values of different kinds; use
// CompareNumeric for that.
func CompareSameKind(a, b AttrValue) (int, error) {
	if a.kind != b.kind {
		return 0, NewError(CodeInvalidArgument, fmt.Sprintf("CompareSameKind: kind mismatch %s vs %s", a.kind, b.kind))
	}
	switch a.kind {
	case KindEmpty:
		return 0, nil
	case KindChar, KindUChar, KindInt32, KindUInt32, KindInt64:
		return cmpInt64(a.i, b.i), nil
	case KindUInt64:
		ua, ub := uint64(a.i), uint64(b.i)
		switch {
		case ua < ub:
			return -1, nil
		case ua > ub:
			return 1, nil
		}
		return 0, nil
	case KindDouble:
		return cmpFloat64(a.f, b.f), nil
	case KindVoidPtr:
		return cmpUintptr(a.ptr, b.ptr), nil
	case KindCStr:
		return cmpString(a.cstr, b.cstr), nil
	case KindOwnedString:
		return cmpString(a.owned.val, b.owned.val), nil
	case KindByteArray:
		return cmpString(string(a.bytes.val), string(b.bytes.val)), nil
	case KindDestrObj:
		return cmpUintptr(destrIdentity(a.destr), destrIdentity(b.destr)), nil
	}
	return 0, NewError(CodeInvalidArgument, "CompareSameKind: unknown kind")
}

// CompareNumeric coerces any two integer- or double-kinded values to
// float64 and compares numerically, ignoring Kind. This is the permissive
// "convenience" comparison spec.md §3.1 mentions; it is never used by
// ordering-sensitive pool/index code, only exposed for callers that
// explicitly want cross-kind numeric comparison.
func CompareNumeric(a, b AttrValue) (int, error) {
	af, aok := numericOf(a)
	bf, bok := numericOf(b)
	if !aok || !bok {
		return 0, NewError(CodeInvalidArgument, "CompareNumeric: non-numeric kind")
	}
	return cmpFloat64(af, bf), nil
}

func numericOf(v AttrValue) (float64, bool) {
	if v.kind == KindUInt64 {
		return float64(uint64(v.i)), true
	}
	if i, ok := v.AsInt64(); ok {
		return float64(i), true
	}
	if f, ok := v.AsDouble(); ok {
		return f, true
	}
	return 0, false
}

// Compare gives a total order across all kinds: tag first, then same-kind
// value order. This is what StateID sequences and pools use internally for
// deterministic ordering and is distinct from CompareNumeric.
func Compare(a, b AttrValue) int {
	if a.kind != b.kind {
		return cmpInt64(int64(a.kind), int64(b.kind))
	}
	c, err := CompareSameKind(a, b)
	if err != nil {
		return 0
	}
	return c
}

// CanonicalString returns a deterministic, human-readable form of v,
// suitable for hashing/interning keys and DOT labels.
func (v AttrValue) CanonicalString() string {
	switch v.kind {
	case KindEmpty:
		return "<empty>"
	case KindChar, KindInt32, KindInt64:
		return strconv.FormatInt(v.i, 10)
	case KindUChar, KindUInt32, KindUInt64:
		return strconv.FormatUint(uint64(v.i), 10)
	case KindDouble:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindVoidPtr:
		return fmt.Sprintf("0x%x", v.ptr)
	case KindCStr:
		return v.cstr
	case KindOwnedString:
		return v.owned.val
	case KindByteArray:
		return fmt.Sprintf("%x", v.bytes.val)
	case KindDestrObj:
		return fmt.Sprintf("<destr:%x>", destrIdentity(v.destr))
	default:
		return "<unknown>"
	}
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpUintptr(a, b uintptr) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// destrIdentity returns a stable, comparable identity for an opaque DestrObj
// payload. DestrObj is meant to wrap pointer-like handles; for any other
// kind of value it falls back to 0, which means all non-pointer DestrObj
// values compare equal under CompareSameKind — callers that need a finer
// order should compare payloads through their own accessor instead.
func destrIdentity(v any) uintptr {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Chan, reflect.Func, reflect.Slice, reflect.UnsafePointer:
		return rv.Pointer()
	default:
		return 0
	}
}
