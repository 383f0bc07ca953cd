package ingest

import (
	"testing"

	"github.com/flexfleet/flexdispatch/core/model"
)

func TestNormalizeLocation(t *testing.T) {
	cases := []struct {
		raw  string
		want model.Location
	}{
		{"ALR", "ALR"},
		{" alr ", "ALR"},
		{"TIEL", "TL"},
		{"ALP", "ALR"},
		{"EXT WW", "XWW"},
		{"WW", "XWW"},
		{"ASD ZO", "ASD"},
		{"VIL (BE)", "VIL"},
		{"TEM", "NAM"},
		{"ZWO", "ZL"},
		{"ZWD", "ZL"},
		{"", ""},
		{"UNKNOWN", "UNKNOWN"},
	}
	for _, c := range cases {
		if got := NormalizeLocation(c.raw); got != c.want {
			t.Errorf("NormalizeLocation(%q) = %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestTruckBase(t *testing.T) {
	cases := []struct {
		name string
		want model.Location
	}{
		{"ALR1", "ALR"},
		{"ALR12", "ALR"},
		{"TB3", "TB"},
		{"TL2 AVOND", "TL"},
		{"BLUE ALR", "ALR"},
		{"BLUEFLEX TB", "TB"},
		{"BLEUFLEX TB", "TB"},
		{"BOL 2", "TB"},
		{"BOLVW", "HT"},
		{"FLEX EXT WW", "XWW"},
		{"FLEX BOL 2", "BFC"},
		{"FLEX BFC", "TB"},
		{"NWG EMB A", "NIWG"},
		{"NWG1", "NIWG"},
		{"tiel4", "TL"},
	}
	for _, c := range cases {
		if got := TruckBase(c.name); got != c.want {
			t.Errorf("TruckBase(%q) = %q, want %q", c.name, got, c.want)
		}
	}
}
