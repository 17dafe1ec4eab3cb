package frame

import (
	"math"
	"strconv"
)

// Kind is the type tag of a Value.
type Kind int

const (
	// KindMissing marks an absent cell. Numeric conversion yields NaN.
	KindMissing Kind = iota
	// KindNumber is a float64 cell.
	KindNumber
	// KindLabel is a string cell, e.g. a category label.
	KindLabel
)

// Value is one cell of a Frame.
type Value struct {
	kind  Kind
	num   float64
	label string
}

// Num returns a numeric cell. NaN is stored as missing.
func Num(x float64) Value {
	if math.IsNaN(x) {
		return Value{kind: KindMissing}
	}
	return Value{kind: KindNumber, num: x}
}

// Label returns a string cell.
func Label(s string) Value {
	return Value{kind: KindLabel, label: s}
}

// Missing returns an absent cell.
func Missing() Value {
	return Value{kind: KindMissing}
}

// Kind returns the cell type.
func (v Value) Kind() Kind { return v.kind }

// IsMissing reports whether the cell is absent.
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Float returns the numeric value. Missing cells return NaN and true, label
// cells return false.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindMissing:
		return math.NaN(), true
	default:
		return 0, false
	}
}

// Text returns the label of a label cell.
func (v Value) Text() (string, bool) {
	if v.kind != KindLabel {
		return "", false
	}
	return v.label, true
}

func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindLabel:
		return v.label
	default:
		return "NaN"
	}
}

// Parse converts raw text (for example a CSV field) into a Value. Empty
// strings and "NaN" are missing, parseable numbers are numeric, everything
// else is a label.
func Parse(s string) Value {
	if s == "" || s == "NaN" || s == "nan" {
		return Missing()
	}
	if x, err := strconv.ParseFloat(s, 64); err == nil {
		return Num(x)
	}
	return Label(s)
}
