package theme

import "testing"

func TestByNameFallsBack(t *testing.T) {
	if got := ByName("tokyo-night").Name; got != "tokyo-night" {
		t.Errorf("ByName(tokyo-night) = %q", got)
	}
	if got := ByName("nope").Name; got != FlexokiDark.Name {
		t.Errorf("unknown theme = %q, want %q", got, FlexokiDark.Name)
	}
}

func TestSeverityColors(t *testing.T) {
	th := FlexokiDark
	if th.Severity("critical") != th.Red {
		t.Error("critical should be red")
	}
	if th.Severity("warning") != th.Severity("high") {
		t.Error("warning and high should share a color")
	}
	if th.Utilization(95) != th.Red || th.Utilization(10) != th.Green {
		t.Error("utilization colors out of order")
	}
	if th.Trend("over") != th.Red || th.Trend("on-track") != th.Green {
		t.Error("trend colors out of order")
	}
}
