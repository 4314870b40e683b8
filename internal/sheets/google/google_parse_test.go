package google

import "testing"

func TestToStrings(t *testing.T) {
	got := toStrings([]interface{}{" a ", 42, 1.5})
	want := []string{"a", "42", "1.5"}
	if len(got) != len(want) {
		t.Fatalf("toStrings returned %d values, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("toStrings[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
