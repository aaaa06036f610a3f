package env

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "#!/usr/bin/env bash\n" +
		"export ENGINE=gravel\n" +
		"\n" +
		"# comment\n" +
		"PORT = 3335\n" +
		"BROKEN\n" +
		"OWNERS=a,b=c\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	e, err := GetEnv(path)
	if err != nil {
		t.Fatal(err)
	}
	expect := map[string]string{"ENGINE": "gravel", "PORT": "3335", "OWNERS": "a,b=c"}
	if len(e) != len(expect) {
		t.Fatalf("expected %d keys got %d: %v", len(expect), len(e), e)
	}
	for k, v := range expect {
		if got, ok := e.LookupEnv(k); !ok || got != v {
			t.Fatalf("%s: expected %q got %q (%v)", k, v, got, ok)
		}
	}
	if _, ok := e.LookupEnv("BROKEN"); ok {
		t.Fatal("line without = should be skipped")
	}
}
