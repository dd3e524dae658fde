package direction

import "testing"

func TestParseStage(t *testing.T) {
	for _, valid := range []string{"explore", "shape", "attack", "stabilize"} {
		stage, err := ParseStage(valid)
		if err != nil {
			t.Errorf("ParseStage(%q) failed: %v", valid, err)
		}
		if string(stage) != valid {
			t.Errorf("ParseStage(%q) = %q", valid, stage)
		}
	}
	if _, err := ParseStage("sprint"); err == nil {
		t.Error("expected error for unknown stage")
	}
}
