package netatmo

import (
	"math"
	"strings"
	"testing"
)

func TestGetString(t *testing.T) {
	data := map[string]any{
		"name": "Plug",
		"place": map[string]any{
			"city": "Paris",
		},
	}

	if got, ok := GetString(data, "name"); !ok || got != "Plug" {
		t.Errorf("GetString(name) = %q, %v", got, ok)
	}
	if got, ok := GetString(data, "place", "city"); !ok || got != "Paris" {
		t.Errorf("GetString(place, city) = %q, %v", got, ok)
	}
	if _, ok := GetString(data, "missing"); ok {
		t.Error("Missing key should not be found")
	}
	if _, ok := GetString(data, "place", "country"); ok {
		t.Error("Missing nested key should not be found")
	}
	if _, ok := GetString(data); ok {
		t.Error("No keys should not be found")
	}
	if _, ok := GetString(nil, "name"); ok {
		t.Error("Nil map should not be found")
	}
}

func TestGetInt(t *testing.T) {
	data := map[string]any{
		"float":    float64(42),
		"int":      7,
		"int64":    int64(9),
		"string":   "42",
		"nan":      math.NaN(),
		"inf":      math.Inf(1),
		"overflow": math.MaxFloat64,
	}

	if got, ok := GetInt(data, "float"); !ok || got != 42 {
		t.Errorf("GetInt(float) = %d, %v", got, ok)
	}
	if got, ok := GetInt(data, "int"); !ok || got != 7 {
		t.Errorf("GetInt(int) = %d, %v", got, ok)
	}
	if got, ok := GetInt(data, "int64"); !ok || got != 9 {
		t.Errorf("GetInt(int64) = %d, %v", got, ok)
	}
	for _, key := range []string{"string", "nan", "inf", "overflow"} {
		if _, ok := GetInt(data, key); ok {
			t.Errorf("GetInt(%s) should fail", key)
		}
	}
}

func TestGetFloat(t *testing.T) {
	data := map[string]any{"f": 21.5, "i": 3, "s": "x"}
	if got, ok := GetFloat(data, "f"); !ok || got != 21.5 {
		t.Errorf("GetFloat(f) = %v, %v", got, ok)
	}
	if got, ok := GetFloat(data, "i"); !ok || got != 3 {
		t.Errorf("GetFloat(i) = %v, %v", got, ok)
	}
	if _, ok := GetFloat(data, "s"); ok {
		t.Error("GetFloat on a string should fail")
	}
}

func TestGetBool(t *testing.T) {
	data := map[string]any{"on": true, "off": false, "s": "true"}
	if got, ok := GetBool(data, "on"); !ok || !got {
		t.Errorf("GetBool(on) = %v, %v", got, ok)
	}
	if got, ok := GetBool(data, "off"); !ok || got {
		t.Errorf("GetBool(off) = %v, %v", got, ok)
	}
	if _, ok := GetBool(data, "s"); ok {
		t.Error("GetBool on a string should fail")
	}
}

func TestTruncatePreview(t *testing.T) {
	short := truncatePreview([]byte("hello"))
	if short != "hello" {
		t.Errorf("truncatePreview = %q", short)
	}
	long := truncatePreview([]byte(strings.Repeat("x", 500)))
	if len(long) != 203 || !strings.HasSuffix(long, "...") {
		t.Errorf("truncatePreview length = %d", len(long))
	}
}
