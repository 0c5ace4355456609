package sqlite

import (
	"math"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Value is an immutable SQL scalar holding one of the five storage classes.
// A zero Value is NULL. Values are self-contained (detached from any engine
// memory) and safe to cache and share.
//
// Every Value coerces to each of Integer/Float/Text/Blob following the
// engine's documented cast rules. The coercions are pure and never fail,
// with one exception: the C API defines no Float->Text/Blob cast on this
// path, so Text, Blob and Len report an unsupported-conversion error for
// Float values instead of inventing a format.
type Value struct {
	class   StorageClass
	int     int64
	float   float64
	text    string
	blob    []byte
	zeroLen int // >=0 only for zero-blob values
}

// IntegerValue returns an Integer-class value.
func IntegerValue(v int64) Value {
	return Value{class: Integer, int: v, zeroLen: -1}
}

// FloatValue returns a Float-class value.
func FloatValue(v float64) Value {
	return Value{class: Float, float: v, zeroLen: -1}
}

// TextValue returns a Text-class value.
func TextValue(v string) Value {
	return Value{class: Text, text: v, zeroLen: -1}
}

// BlobValue returns a Blob-class value. The bytes are copied.
func BlobValue(v []byte) Value {
	b := make([]byte, len(v))
	copy(b, v)
	return Value{class: Blob, blob: b, zeroLen: -1}
}

// NullValue returns the NULL value.
func NullValue() Value {
	return Value{class: Null, zeroLen: -1}
}

// ZeroBlob returns a Blob-class value of n zero bytes. When bound to a
// statement parameter it is sent as a zeroblob, which the engine allocates
// without transferring the bytes; everywhere else it behaves as a blob of
// n zeros.
func ZeroBlob(n int) Value {
	if n < 0 {
		n = 0
	}
	return Value{class: Blob, zeroLen: n}
}

// ValueOf converts common host scalar types into a Value, funneling
// everything into the five canonical storage classes. Booleans become 0/1
// integers, timestamps RFC3339Nano text, UUIDs and URLs their text forms.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return NullValue(), nil
	case Value:
		return x, nil
	case bool:
		if x {
			return IntegerValue(1), nil
		}
		return IntegerValue(0), nil
	case int:
		return IntegerValue(int64(x)), nil
	case int8:
		return IntegerValue(int64(x)), nil
	case int16:
		return IntegerValue(int64(x)), nil
	case int32:
		return IntegerValue(int64(x)), nil
	case int64:
		return IntegerValue(x), nil
	case uint:
		return IntegerValue(int64(x)), nil
	case uint8:
		return IntegerValue(int64(x)), nil
	case uint16:
		return IntegerValue(int64(x)), nil
	case uint32:
		return IntegerValue(int64(x)), nil
	case uint64:
		// cap at MaxInt64 to avoid overflow
		if x > uint64(math.MaxInt64) {
			return IntegerValue(math.MaxInt64), nil
		}
		return IntegerValue(int64(x)), nil
	case float32:
		return FloatValue(float64(x)), nil
	case float64:
		return FloatValue(x), nil
	case string:
		return TextValue(x), nil
	case []byte:
		if x == nil {
			return NullValue(), nil
		}
		return BlobValue(x), nil
	case time.Time:
		return TextValue(x.Format(time.RFC3339Nano)), nil
	case uuid.UUID:
		return TextValue(x.String()), nil
	case url.URL:
		return TextValue(x.String()), nil
	case *url.URL:
		if x == nil {
			return NullValue(), nil
		}
		return TextValue(x.String()), nil
	default:
		return Value{}, misuse("unsupported value type %T", v)
	}
}

// Class returns which of the five storage classes the value holds. It never
// changes after construction.
func (v Value) Class() StorageClass {
	if v.class == 0 {
		return Null
	}
	return v.class
}

// IsZeroBlob reports whether the value was constructed with ZeroBlob.
func (v Value) IsZeroBlob() bool {
	return v.class == Blob && v.zeroLen >= 0
}

// Int64 coerces the value to an integer. Text parses the longest leading
// decimal prefix (clamping on overflow), floats truncate toward zero, blobs
// go through the text rules, NULL is 0.
func (v Value) Int64() int64 {
	switch v.Class() {
	case Integer:
		return v.int
	case Float:
		return floatToInt64(v.float)
	case Text:
		return textToInt64(v.text)
	case Blob:
		if v.zeroLen >= 0 {
			return 0
		}
		return textToInt64(string(v.blob))
	default:
		return 0
	}
}

// Float64 coerces the value to a float following the same rules as Int64,
// except that text parsing admits a single decimal point.
func (v Value) Float64() float64 {
	switch v.Class() {
	case Integer:
		return float64(v.int)
	case Float:
		return v.float
	case Text:
		return textToFloat64(v.text)
	case Blob:
		if v.zeroLen >= 0 {
			return 0
		}
		return textToFloat64(string(v.blob))
	default:
		return 0
	}
}

// Text coerces the value to text. Integers render as decimal strings, blobs
// are reinterpreted as UTF-8, NULL is empty. Float values report an
// unsupported conversion.
func (v Value) Text() (string, error) {
	switch v.Class() {
	case Integer:
		return strconv.FormatInt(v.int, 10), nil
	case Float:
		return "", errFloatConversion()
	case Text:
		return v.text, nil
	case Blob:
		if v.zeroLen >= 0 {
			return string(make([]byte, v.zeroLen)), nil
		}
		return string(v.blob), nil
	default:
		return "", nil
	}
}

// Blob coerces the value to a byte slice. The result is a fresh copy.
// Float values report an unsupported conversion.
func (v Value) Blob() ([]byte, error) {
	switch v.Class() {
	case Integer:
		return []byte(strconv.FormatInt(v.int, 10)), nil
	case Float:
		return nil, errFloatConversion()
	case Text:
		return []byte(v.text), nil
	case Blob:
		if v.zeroLen >= 0 {
			return make([]byte, v.zeroLen), nil
		}
		out := make([]byte, len(v.blob))
		copy(out, v.blob)
		return out, nil
	default:
		return []byte{}, nil
	}
}

// Len returns the byte length of the value's blob encoding. It carries the
// same Float restriction as Blob.
func (v Value) Len() (int, error) {
	switch v.Class() {
	case Integer:
		return len(strconv.FormatInt(v.int, 10)), nil
	case Float:
		return 0, errFloatConversion()
	case Text:
		return len(v.text), nil
	case Blob:
		if v.zeroLen >= 0 {
			return v.zeroLen, nil
		}
		return len(v.blob), nil
	default:
		return 0, nil
	}
}

func errFloatConversion() error {
	return misuse("unsupported conversion from FLOAT")
}

// floatToInt64 truncates toward zero and clamps to the int64 range; the
// engine never signals overflow on this cast.
func floatToInt64(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= float64(math.MaxInt64):
		return math.MaxInt64
	case f <= float64(math.MinInt64):
		return math.MinInt64
	default:
		return int64(f)
	}
}

func isSQLSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// textToInt64 parses the longest leading optionally-signed decimal prefix of
// s, skipping leading whitespace. No digits yields 0; overflow clamps to the
// int64 boundary matching the sign.
func textToInt64(s string) int64 {
	i := 0
	for i < len(s) && isSQLSpace(s[i]) {
		i++
	}
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	var n uint64
	overflow := false
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		d := uint64(s[i] - '0')
		if n > (math.MaxUint64-d)/10 {
			overflow = true
		} else {
			n = n*10 + d
		}
		i++
	}
	if i == start {
		return 0
	}
	if neg {
		if overflow || n > uint64(math.MaxInt64)+1 {
			return math.MinInt64
		}
		if n == uint64(math.MaxInt64)+1 {
			return math.MinInt64
		}
		return -int64(n)
	}
	if overflow || n > uint64(math.MaxInt64) {
		return math.MaxInt64
	}
	return int64(n)
}

// textToFloat64 applies the same prefix logic as textToInt64 but admits one
// decimal point. No match yields 0.0.
func textToFloat64(s string) float64 {
	i := 0
	for i < len(s) && isSQLSpace(s[i]) {
		i++
	}
	start := i
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	f, err := strconv.ParseFloat(trimFloatPrefix(s[start:i]), 64)
	if err != nil {
		return 0
	}
	return f
}

// trimFloatPrefix normalizes prefixes ParseFloat rejects, like "1." or "-.".
func trimFloatPrefix(s string) string {
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}

// NativeValue is a scalar backed by a live engine value handle. It is only
// valid for the duration of the callback invocation that produced it; use
// Detach to obtain a Value with no such restriction.
type NativeValue struct {
	handle sqlite3_value
	live   *bool
}

// Class returns the storage class of the native value, or Null once the
// producing callback has returned.
func (v NativeValue) Class() StorageClass {
	if !*v.live {
		return Null
	}
	return sqlite3_value_type(v.handle)
}

func (v NativeValue) Int64() int64 {
	if !*v.live {
		return 0
	}
	return sqlite3_value_int64(v.handle)
}

func (v NativeValue) Float64() float64 {
	if !*v.live {
		return 0
	}
	return sqlite3_value_double(v.handle)
}

func (v NativeValue) Text() string {
	if !*v.live {
		return ""
	}
	return sqlite3_value_text(v.handle)
}

func (v NativeValue) Blob() []byte {
	if !*v.live {
		return nil
	}
	return sqlite3_value_blob(v.handle)
}

// Detach copies the native value into a self-contained Value that remains
// valid after the callback returns.
func (v NativeValue) Detach() Value {
	if !*v.live {
		return NullValue()
	}
	switch sqlite3_value_type(v.handle) {
	case Integer:
		return IntegerValue(sqlite3_value_int64(v.handle))
	case Float:
		return FloatValue(sqlite3_value_double(v.handle))
	case Text:
		return TextValue(sqlite3_value_text(v.handle))
	case Blob:
		return BlobValue(sqlite3_value_blob(v.handle))
	default:
		return NullValue()
	}
}
