// Package config provides configuration management for the mcpkit CLI.
//
// This package handles loading and validating mcpkit's own configuration
// file. Agent MCP documents are handled by the docstore package.
//
// # Configuration File
//
// The default location is <XDG config>/mcpkit/config.yaml (override the
// directory with MCPKIT_CONFIG_DIR):
//
//	version: 1
//	default_agent: cursor
//	catalog:
//	  repo: rohitsoni007/mcp-kit
//	  version: latest
//	  file: ~/mcp-servers.yaml   # optional local fallback
//	selector:
//	  page_size: 10
//	backup:
//	  retention: 5
//
// Every key can be overridden from the environment with the MCPKIT_
// prefix, dots replaced by underscores (MCPKIT_CATALOG_VERSION=v0.0.8).
//
// # Loading Configuration
//
//	config.Init()
//	cfg, err := config.Load("")
//
// Load validates the result and reports the first problem found; use
// [Validate] directly to see all of them.
package config
