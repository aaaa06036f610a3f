package appdata

import (
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
)

func TestDir(t *testing.T) {
	tests := []struct {
		appName string
		want    string
	}{
		{"strata", filepath.Join(xdg.DataHome, "strata")},
		{"Strata", filepath.Join(xdg.DataHome, "strata")},
		{".strata", filepath.Join(xdg.DataHome, "strata")},
		{".Strata", filepath.Join(xdg.DataHome, "strata")},
		{"", "."},
		{".", "."},
	}
	for i, test := range tests {
		if got := Dir(test.appName); got != test.want {
			t.Errorf("Dir #%d (%q) expected %s got %s", i, test.appName, test.want, got)
		}
	}
	if got := ConfigDir("Strata"); got != filepath.Join(xdg.ConfigHome, "strata") {
		t.Errorf("ConfigDir got %s", got)
	}
}
