package tickets

import (
	"reflect"
	"testing"
)

func TestNormalizePrefix(t *testing.T) {
	cases := map[string]string{
		"jaz":       "JAZ",
		"Jazz Fest": "JAZ",
		"a":         "AXX",
		"":          "XXX",
		"r&b":       "RBX",
		"1st":       "1ST",
		"éclair":    "CLA",
	}
	for in, want := range cases {
		if got := NormalizePrefix(in); got != want {
			t.Fatalf("NormalizePrefix(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatCode(t *testing.T) {
	if got := FormatCode("JAZ", 1); got != "JAZ001" {
		t.Fatalf("FormatCode = %q", got)
	}
	if got := FormatCode("JAZ", 1000); got != "JAZ1000" {
		t.Fatalf("FormatCode past 999 = %q", got)
	}
}

func TestNextCodesContinuesFromMax(t *testing.T) {
	existing := []string{"JAZ001", "JAZ007", "JAZ003", "JAZ1002", "JAZBAD"}
	max := maxSuffix(existing, "JAZ")
	if max != 1002 {
		t.Fatalf("maxSuffix = %d, want 1002", max)
	}

	got := nextCodes("JAZ", 0, 3)
	want := []string{"JAZ001", "JAZ002", "JAZ003"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("nextCodes = %v, want %v", got, want)
	}

	got = nextCodes("JAZ", 998, 3)
	want = []string{"JAZ999", "JAZ1000", "JAZ1001"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("nextCodes across 999 = %v, want %v", got, want)
	}
}
