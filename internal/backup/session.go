package backup

import (
	"sync"

	"github.com/thoreinstein/mcpkit/internal/errors"
)

// Session backs each agent up at most once, however many times a command
// writes its documents.
type Session struct {
	mgr *Manager

	mu   sync.Mutex
	done map[string]*Manifest
}

// NewSession returns a Session creating backups through mgr. A nil mgr
// disables backups.
func NewSession(mgr *Manager) *Session {
	return &Session{mgr: mgr, done: make(map[string]*Manifest)}
}

// EnsureBackedUp backs up paths for agentID unless that already happened in
// this session. It returns the backup created, or nil when nothing was
// backed up (disabled, already done, or no file exists yet). A failed
// backup is not remembered, so the next call retries.
func (s *Session) EnsureBackedUp(agentID string, paths []string) (*Manifest, error) {
	if s == nil || s.mgr == nil || len(paths) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.done[agentID]; ok {
		return nil, nil
	}
	manifest, err := s.mgr.Backup(agentID, paths)
	switch {
	case errors.Is(err, ErrNothingToBackUp):
		s.done[agentID] = nil
		return nil, nil
	case err != nil:
		if manifest == nil {
			return nil, errors.Wrapf(err, "creating backup for %s", agentID)
		}
		// Backup written, pruning failed; the snapshot is still usable.
	}
	s.done[agentID] = manifest
	return manifest, nil
}
