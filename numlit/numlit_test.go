package numlit_test

import (
	"testing"

	"github.com/gosuda/basicir/numlit"
	"github.com/gosuda/basicir/symbols"
)

func TestParseHex(t *testing.T) {
	v, err := numlit.Parse("FF", 16, 0)
	if err != nil {
		t.Fatal(err)
	}
	if v.Type != symbols.Int32 || v.I32 != 255 {
		t.Fatalf("&HFF: got %+v", v)
	}
}

func TestParseOctal(t *testing.T) {
	v, err := numlit.Parse("17", 8, 0)
	if err != nil {
		t.Fatal(err)
	}
	if v.Type != symbols.Int32 || v.I32 != 15 {
		t.Fatalf("&O17: got %+v", v)
	}
}

func TestParseDecimalIntSuffixes(t *testing.T) {
	cases := []struct {
		suffix byte
		want   symbols.DataType
	}{
		{0, symbols.Int32},
		{'%', symbols.Int32},
		{'&', symbols.Int64},
		{'@', symbols.Int64},
		{'!', symbols.Float32},
		{'#', symbols.Float64},
	}
	for _, c := range cases {
		v, err := numlit.Parse("42", 10, c.suffix)
		if err != nil {
			t.Fatalf("suffix %q: %v", c.suffix, err)
		}
		if v.Type != c.want {
			t.Fatalf("suffix %q: got %v want %v", c.suffix, v.Type, c.want)
		}
	}
}

func TestParseIntOverflowsToInt64WithoutSuffix(t *testing.T) {
	v, err := numlit.Parse("5000000000", 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if v.Type != symbols.Int64 || v.I64 != 5000000000 {
		t.Fatalf("got %+v", v)
	}
}

func TestParseIntSuffixOverflowIsError(t *testing.T) {
	if _, err := numlit.Parse("5000000000", 10, '%'); err == nil {
		t.Fatalf("expected overflow error forcing INTEGER on an out-of-range literal")
	}
}

func TestParseFloatLiteral(t *testing.T) {
	v, err := numlit.Parse("3.14", 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if v.Type != symbols.Float64 || v.F64 != 3.14 {
		t.Fatalf("got %+v", v)
	}
}

func TestParseFloatSingleSuffix(t *testing.T) {
	v, err := numlit.Parse("2.5", 10, '!')
	if err != nil {
		t.Fatal(err)
	}
	if v.Type != symbols.Float32 || v.F32 != 2.5 {
		t.Fatalf("got %+v", v)
	}
}

func TestParseDoubleExponentMarker(t *testing.T) {
	v, err := numlit.Parse("1.5D2", 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if v.Type != symbols.Float64 || v.F64 != 150 {
		t.Fatalf("1.5D2: got %+v", v)
	}
}

func TestParseMalformed(t *testing.T) {
	if _, err := numlit.Parse("12x", 10, 0); err == nil {
		t.Fatalf("expected error for malformed literal")
	}
}
