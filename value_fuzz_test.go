package sqlite

import (
	"math"
	"strconv"
	"testing"
)

// The text coercions must be total: any byte sequence yields a value, and
// integers that strconv can parse exactly must round-trip unchanged.
func FuzzTextToInt64(f *testing.F) {
	f.Add("")
	f.Add("0")
	f.Add("-9223372036854775808")
	f.Add("9223372036854775807")
	f.Add("99999999999999999999")
	f.Add("  +12abc")
	f.Add("3.7")
	f.Add("\x00\xff")
	f.Fuzz(func(t *testing.T, s string) {
		got := TextValue(s).Int64()
		if want, err := strconv.ParseInt(s, 10, 64); err == nil {
			if got != want {
				t.Fatalf("TextValue(%q).Int64() = %d, strconv says %d", s, got, want)
			}
		}
	})
}

func FuzzTextToFloat64(f *testing.F) {
	f.Add("")
	f.Add("0.0")
	f.Add("-2.5")
	f.Add(".5")
	f.Add("12.")
	f.Add("1.2.3")
	f.Fuzz(func(t *testing.T, s string) {
		got := TextValue(s).Float64()
		if math.IsNaN(got) {
			t.Fatalf("TextValue(%q).Float64() is NaN", s)
		}
	})
}
