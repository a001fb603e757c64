/*
Package config provides file-based configuration for the connector.

# Overview

Config is a plain struct mirroring the connector's construction options.
Fields left at their zero value (or nil) keep the connector's defaults, so a
partial file configures only what it mentions.

# File Loading

Load configuration from YAML or JSON files:

	cfg, err := config.FromFile("connector.yaml")
	if err != nil {
	    log.Fatal(err)
	}

	// Or load from bytes
	cfg, err = config.FromYAML(yamlBytes)
	cfg, err = config.FromJSON(jsonBytes)

A typical file:

	lock_stripes: 8
	create_missing: false
	pragmas:
	  journal_mode: WAL
	  busy_timeout: "10000"

Pragma values are written into PRAGMA statements verbatim; quote YAML values
that would otherwise parse as numbers or booleans.

# Applying

Pass the loaded Config to the connector:

	c := sqliteconn.New(sqliteconn.WithConfig(cfg))

WithConfig applies only the fields the file set and composes with the other
construction options.
*/
package config
