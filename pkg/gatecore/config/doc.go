/*
Package config loads gatecore client settings.

# Overview

Settings come from three layers, later layers winning:

 1. DefaultClient
 2. an optional YAML or JSON file (FromFile, then ClientFrom)
 3. GATECORE_* environment variables (ParseEnv)

LoadClient applies all three and validates the result:

	cfg, err := config.LoadClient("gatecore.yaml")
	if err != nil {
	    return err
	}

# File Format

Keys are flat:

	gateway_url: wss://gateway.example.com/?v=10&encoding=json
	shards: 2
	log_level: debug
	metrics: true
	tracing: false
	drop_log_path: ./drops.db
	drop_retention: 72h

# Map Access

Config wraps the decoded file and returns defaults for missing keys or
mismatched types, so partial files are fine:

	raw, _ := config.FromYAML(data)
	shards := raw.Int("shards", 1)
*/
package config
