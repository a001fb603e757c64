package config

// Config holds connector settings, typically loaded from a YAML or JSON
// file with FromFile.
//
// The zero value sets nothing: fields left at their zero value (or nil)
// keep the connector's defaults when the Config is applied.
type Config struct {
	// LockStripes is the number of lock stripes used to serialize per-key
	// operations. Zero or negative keeps the default.
	LockStripes int `yaml:"lock_stripes" json:"lock_stripes"`

	// CreateMissing controls whether acquires may create database files
	// that do not exist yet. Nil keeps the default (create).
	CreateMissing *bool `yaml:"create_missing" json:"create_missing"`

	// Driver is the database/sql driver name used for opens.
	// Empty keeps the default.
	Driver string `yaml:"driver" json:"driver"`

	// Pragmas are applied to every database the connector opens. Values are
	// written into PRAGMA statements verbatim, so numeric values must be
	// quoted in YAML ("10000").
	Pragmas map[string]string `yaml:"pragmas" json:"pragmas"`
}
