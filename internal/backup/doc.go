// Package backup snapshots agent documents before mcpkit rewrites them.
//
// Each backup is a directory holding copies of the documents plus a
// manifest with their SHA-256 hashes:
//
//	<config>/mcpkit/backups/
//	└── {agent}/
//	    └── {timestamp}/
//	        ├── manifest.json
//	        └── {copied files...}
//
// [Manager.Backup] creates a snapshot and prunes old ones beyond the
// retention count. [Manager.Restore] verifies the hashes and copies the
// files back, snapshotting the current state first. [Session] makes sure a
// single command run backs each agent up at most once.
//
// All file access goes through an [afero.Fs].
package backup
