package match

import "testing"

func TestTeamName(t *testing.T) {
	m := Match{
		HomeTeamID: "idn-persija",
		AwayTeamID: "idn-persib",
		HomeTeam:   "Persija Jakarta",
		AwayTeam:   "Persib Bandung",
	}

	if got := m.TeamName("idn-persija"); got != "Persija Jakarta" {
		t.Fatalf("expected home name, got %q", got)
	}
	if got := m.TeamName("idn-persib"); got != "Persib Bandung" {
		t.Fatalf("expected away name, got %q", got)
	}
	if got := m.TeamName("idn-arema"); got != "idn-arema" {
		t.Fatalf("expected fallback to the raw id, got %q", got)
	}
}

func TestIsLiveStatus(t *testing.T) {
	for _, status := range []string{"LIVE", "live", "HT", "2H", "ET", "PEN", "in_play"} {
		if !IsLiveStatus(status) {
			t.Fatalf("expected %q to read as live", status)
		}
	}
	for _, status := range []string{"", "SCHEDULED", "FINISHED", "POSTPONED"} {
		if IsLiveStatus(status) {
			t.Fatalf("expected %q to read as not live", status)
		}
	}
}

func TestNormalizeStatus(t *testing.T) {
	if got := NormalizeStatus("  finished "); got != StatusFinished {
		t.Fatalf("expected FINISHED, got %q", got)
	}
	if got := NormalizeStatus(""); got != StatusScheduled {
		t.Fatalf("expected the empty status to default to SCHEDULED, got %q", got)
	}
}
