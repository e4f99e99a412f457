// Package confpatch activates database settings in a web2py-style
// 000_config.py by rewriting the commented-out default lines in place.
package confpatch

import (
	"fmt"
	"os"
	"strings"

	"github.com/krypt0x/eden/internal/backend"
)

// Commented default lines as they appear in the stock configuration
// template. A patched file no longer contains them, which makes a second
// run a no-op instead of an error.
const (
	defaultDBType   = `#settings.database.db_type = "postgres"`
	defaultUsername = `#settings.database.username = "eden"`
	defaultDatabase = `#settings.database.database = "sahana"`
	defaultPassword = `#settings.database.password = "password"`
	defaultSpatial  = `#settings.gis.spatialdb = True`
)

// Replacement is one literal substitution, applied to the first occurrence
// of Old only.
type Replacement struct {
	Old string
	New string
}

// Values are the active settings a patch writes into the configuration.
type Values struct {
	Username string
	Password string
	Database string
}

// ForBackend returns the ordered replacement list for a backend: the four
// generic database lines for any recognized engine, plus the spatial flag
// when PostGIS is requested. An unrecognized engine yields nil, so the
// artifact is left untouched.
func ForBackend(b backend.Backend, v Values) []Replacement {
	switch b.Engine {
	case backend.EngineMySQL, backend.EnginePostgres:
	default:
		return nil
	}

	reps := []Replacement{
		{Old: defaultDBType, New: fmt.Sprintf(`settings.database.db_type = "%s"`, b.Engine)},
		{Old: defaultUsername, New: fmt.Sprintf(`settings.database.username = "%s"`, v.Username)},
		{Old: defaultDatabase, New: fmt.Sprintf(`settings.database.database = "%s"`, v.Database)},
		{Old: defaultPassword, New: fmt.Sprintf(`settings.database.password = "%s"`, v.Password)},
	}
	if b.PostGIS {
		reps = append(reps, Replacement{Old: defaultSpatial, New: "settings.gis.spatialdb = True"})
	}
	return reps
}

// Apply runs each replacement against content and returns the patched
// content together with the replacements whose Old pattern was not found.
// A missing pattern is not an error: it usually means the line is already
// active from a previous run.
func Apply(content string, reps []Replacement) (string, []Replacement) {
	var unmatched []Replacement
	for _, r := range reps {
		if !strings.Contains(content, r.Old) {
			unmatched = append(unmatched, r)
			continue
		}
		content = strings.Replace(content, r.Old, r.New, 1)
	}
	return content, unmatched
}

// File reads path, applies the replacements, and writes the result back,
// preserving the file mode. The file is only rewritten when at least one
// pattern matched. Returns the unmatched replacements for the caller to
// report.
func File(path string, reps []Replacement) ([]Replacement, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	patched, unmatched := Apply(string(raw), reps)
	if patched == string(raw) {
		return unmatched, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat config: %w", err)
	}
	if err := os.WriteFile(path, []byte(patched), info.Mode()); err != nil {
		return nil, fmt.Errorf("write config: %w", err)
	}
	return unmatched, nil
}
