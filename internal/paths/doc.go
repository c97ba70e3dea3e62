// Package paths resolves the directories mcpkit itself owns: its config
// file, the catalog cache and the backup store.
//
// The package wraps github.com/adrg/xdg for cross-platform XDG Base Directory
// Specification compliance. Agent document locations live in the agent
// package, which builds on [ExpandHome] and [ResolveHome].
//
//	| Purpose        | Location                        |
//	|----------------|---------------------------------|
//	| Config file    | <ConfigHome>/mcpkit/config.yaml |
//	| Catalog cache  | <CacheHome>/mcpkit/catalog/     |
//	| Backups        | <ConfigHome>/mcpkit/backups/    |
package paths
