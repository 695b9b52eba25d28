package service

import "sync"

// inflightSet tracks artifacts with a validation run in progress. The marker
// is checked and set before any network call so two requests for the same
// artifact can never both trigger a remote job, even if batches ever run in
// parallel.
type inflightSet struct {
	mu      sync.Mutex
	members map[string]struct{}
}

func newInflightSet() *inflightSet {
	return &inflightSet{members: make(map[string]struct{})}
}

// TryAcquire marks artifactID in flight. It returns false if a run is already
// in progress.
func (s *inflightSet) TryAcquire(artifactID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.members[artifactID]; exists {
		return false
	}
	s.members[artifactID] = struct{}{}
	return true
}

func (s *inflightSet) Release(artifactID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.members, artifactID)
}
