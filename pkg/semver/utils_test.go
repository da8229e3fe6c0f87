package semver

import "testing"

func TestGetNumericVersion(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"1.2.3", 1002003},
		{"v1.2.3", 1002003},
		{"0.10.0", 10000},
		{"2", 2},
		{"", 0},
	}

	for _, tt := range tests {
		if got := GetNumericVersion(tt.in); got != tt.want {
			t.Errorf("GetNumericVersion(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestIsNewer(t *testing.T) {
	if !IsNewer("1.2.4", "1.2.3") {
		t.Error("expected 1.2.4 to be newer than 1.2.3")
	}
	if IsNewer("1.2.3", "1.2.3") {
		t.Error("equal versions are not newer")
	}
	if IsNewer("1.2.3", "1.10.0") {
		t.Error("1.2.3 is older than 1.10.0")
	}
}
