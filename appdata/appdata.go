// Package appdata locates the per-user data directory of an application, following the XDG
// base directory conventions on unix and the platform equivalents elsewhere.
package appdata

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/adrg/xdg"
)

// Dir returns the directory an application called appName keeps its data in. A leading dot
// is stripped and the name is lower-cased, so "Strata" and ".strata" share a directory. An
// empty name or a lone "." yields the current directory.
func Dir(appName string) string {
	name := strings.TrimPrefix(appName, ".")
	if name == "" {
		return "."
	}
	r := []rune(name)
	r[0] = unicode.ToLower(r[0])
	return filepath.Join(xdg.DataHome, string(r))
}

// ConfigDir is like Dir but for configuration files.
func ConfigDir(appName string) string {
	name := strings.TrimPrefix(appName, ".")
	if name == "" {
		return "."
	}
	r := []rune(name)
	r[0] = unicode.ToLower(r[0])
	return filepath.Join(xdg.ConfigHome, string(r))
}
