package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// This file defines unit-safe lengths used by theme settings.

// Unit represents the original unit of a length value as written in a theme.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers like factors
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
)

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

func (u Unit) String() string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + l.Unit.String()
}

// To converts this length to target unit. Supported targets: UnitMM, UnitPT.
// Unit-less lengths are returned as-is.
func (l Length) To(target Unit) float64 {
	var mm float64
	switch l.Unit {
	case UnitMM:
		mm = l.Value
	case UnitCM:
		mm = l.Value * 10
	case UnitIN:
		mm = l.Value * 25.4
	case UnitPT:
		if target == UnitPT {
			return l.Value
		}
		mm = l.Value * PtToMm
	default:
		return l.Value
	}
	if target == UnitPT {
		return mm * MmToPt
	}
	return mm
}

func (l Length) ToMM() float64 { return l.To(UnitMM) }
func (l Length) ToPT() float64 { return l.To(UnitPT) }

// ParseRawLengthStr parses a length string such as "20mm" or "9pt",
// preserving its unit. Unparsable input yields a zero, unit-less Length.
func ParseRawLengthStr(value string) Length {
	l, err := ParseLength(value)
	if err != nil {
		return Length{}
	}
	return l
}

// ParseLength is ParseRawLengthStr with an error for input that is not a
// number followed by mm, cm, in, pt or nothing.
func ParseLength(value string) (Length, error) {
	lower := strings.ToLower(strings.TrimSpace(value))
	if lower == "" {
		return Length{}, fmt.Errorf("长度为空")
	}
	unit := UnitNone
	num := lower
	for _, suf := range []struct {
		s string
		u Unit
	}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}} {
		if strings.HasSuffix(lower, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(lower, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, fmt.Errorf("无法解析长度 %q", value)
	}
	return Length{Value: f, Unit: unit}, nil
}
