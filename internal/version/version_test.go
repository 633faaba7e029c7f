package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	got := String()
	if !strings.HasPrefix(got, "Asteroid Opposition Search ") {
		t.Errorf("String() = %q, want the program name first", got)
	}
	if !strings.HasSuffix(got, Version) {
		t.Errorf("String() = %q, want it to end with %q", got, Version)
	}
}
