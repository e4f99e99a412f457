package backend

import "strings"

// Engine identifies the database engine a selector targets.
type Engine int

const (
	EngineUnknown Engine = iota
	EngineMySQL
	EnginePostgres
)

func (e Engine) String() string {
	switch e {
	case EngineMySQL:
		return "mysql"
	case EnginePostgres:
		return "postgres"
	default:
		return "unknown"
	}
}

// Backend is a parsed backend selector such as "postgres-10+postgis": an
// engine name, an optional dash-separated version, and an optional
// plus-separated feature suffix.
type Backend struct {
	Engine  Engine
	Version string
	PostGIS bool
}

// Parse splits a selector into its engine, version, and feature components.
// An unrecognized engine yields EngineUnknown; callers treat that as a no-op
// rather than an error so unlisted values in a CI matrix pass through
// harmlessly.
func Parse(s string) Backend {
	rest, feature, _ := strings.Cut(s, "+")
	engine, version, _ := strings.Cut(rest, "-")

	b := Backend{
		Version: version,
		PostGIS: feature == "postgis",
	}
	switch engine {
	case "mysql":
		b.Engine = EngineMySQL
	case "postgres":
		b.Engine = EnginePostgres
	}
	return b
}
