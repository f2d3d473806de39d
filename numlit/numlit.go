// Package numlit parses the numeric literal forms BASIC source text uses
// — decimal, `&H` hexadecimal, `&`/`&O` octal, and floating-point with an
// optional `!`/`#` type suffix — into a typed scalar value.
package numlit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gosuda/basicir/symbols"
)

// Value is a parsed numeric literal tagged with the DataType its digits
// and suffix resolved to. Exactly the field matching Type is meaningful.
type Value struct {
	Type symbols.DataType
	I32  int32
	I64  int64
	F32  float32
	F64  float64
}

// Parse interprets digits (the literal's text with any base prefix and
// type suffix already stripped by the lexer) in the given base (8, 10, or
// 16) with the given type suffix (0 for none). Base-10 text containing a
// decimal point or an exponent marker (E/e/D/d) is parsed as floating
// point; all other text is parsed as an integer.
func Parse(digits string, base int, suffix byte) (Value, error) {
	switch base {
	case 8, 10, 16:
	default:
		return Value{}, fmt.Errorf("numlit: unsupported base %d", base)
	}
	if digits == "" {
		return Value{}, fmt.Errorf("numlit: empty literal")
	}

	if base == 10 && isFloatText(digits) {
		return parseFloat(digits, suffix)
	}
	return parseInt(digits, base, suffix)
}

func isFloatText(digits string) bool {
	return strings.ContainsAny(digits, ".eEdD")
}

// normalizeExponent rewrites a BASIC 'D'/'d' double-precision exponent
// marker to the 'e' Go's float parser understands.
func normalizeExponent(digits string) string {
	if !strings.ContainsAny(digits, "Dd") {
		return digits
	}
	return strings.NewReplacer("D", "e", "d", "e").Replace(digits)
}

func parseFloat(digits string, suffix byte) (Value, error) {
	normalized := normalizeExponent(digits)

	switch suffix {
	case '!':
		f, err := strconv.ParseFloat(normalized, 32)
		if err != nil {
			return Value{}, fmt.Errorf("numlit: malformed single literal %q: %w", digits, err)
		}
		return Value{Type: symbols.Float32, F32: float32(f)}, nil
	case '#':
		f, err := strconv.ParseFloat(normalized, 64)
		if err != nil {
			return Value{}, fmt.Errorf("numlit: malformed double literal %q: %w", digits, err)
		}
		return Value{Type: symbols.Float64, F64: f}, nil
	case 0:
		f, err := strconv.ParseFloat(normalized, 64)
		if err != nil {
			return Value{}, fmt.Errorf("numlit: malformed floating literal %q: %w", digits, err)
		}
		return Value{Type: symbols.Float64, F64: f}, nil
	default:
		return Value{}, fmt.Errorf("numlit: type suffix %q not valid on floating literal %q", suffix, digits)
	}
}

func parseInt(digits string, base int, suffix byte) (Value, error) {
	v, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return Value{}, fmt.Errorf("numlit: malformed literal %q: %w", digits, err)
	}
	i64 := int64(v)

	switch suffix {
	case '%':
		if i64 < -(1<<31) || i64 > (1<<31-1) {
			return Value{}, fmt.Errorf("numlit: literal %q out of range for INTEGER", digits)
		}
		return Value{Type: symbols.Int32, I32: int32(i64)}, nil
	case '&', '@':
		return Value{Type: symbols.Int64, I64: i64}, nil
	case '!':
		return Value{Type: symbols.Float32, F32: float32(i64)}, nil
	case '#':
		return Value{Type: symbols.Float64, F64: float64(i64)}, nil
	case 0:
		if i64 >= -(1<<31) && i64 <= (1<<31-1) {
			return Value{Type: symbols.Int32, I32: int32(i64)}, nil
		}
		return Value{Type: symbols.Int64, I64: i64}, nil
	default:
		return Value{}, fmt.Errorf("numlit: unknown type suffix %q", suffix)
	}
}
