package skillpoint

import "testing"

func TestParseLevel(t *testing.T) {
	for _, valid := range []string{"unknown", "emerging", "working", "fluent"} {
		level, err := ParseLevel(valid)
		if err != nil {
			t.Errorf("ParseLevel(%q) failed: %v", valid, err)
		}
		if string(level) != valid {
			t.Errorf("ParseLevel(%q) = %q", valid, level)
		}
	}
	if _, err := ParseLevel("expert"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLevelGap(t *testing.T) {
	cases := []struct {
		level Level
		want  float64
	}{
		{LevelUnknown, 0.9},
		{LevelEmerging, 0.75},
		{LevelWorking, 0.5},
		{LevelFluent, 0.25},
		{Level(""), 0.9},
	}
	for _, tc := range cases {
		if got := tc.level.Gap(); got != tc.want {
			t.Errorf("Gap(%q) = %v, want %v", tc.level, got, tc.want)
		}
	}
}
