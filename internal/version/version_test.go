// ABOUTME: Tests for version constants
// ABOUTME: Checks the --version string and release number format
package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	got := String()
	if !strings.HasPrefix(got, Product+" ") {
		t.Errorf("String() = %q, want product prefix %q", got, Product)
	}
	if !strings.HasSuffix(got, Version) {
		t.Errorf("String() = %q, want version suffix %q", got, Version)
	}
}

func TestVersionSemver(t *testing.T) {
	parts := strings.Split(Version, ".")
	if len(parts) != 3 {
		t.Fatalf("Version %q should have three dot-separated parts", Version)
	}
	for _, p := range parts {
		if p == "" || strings.Trim(p, "0123456789") != "" {
			t.Errorf("Version %q has a non-numeric part %q", Version, p)
		}
	}
}
