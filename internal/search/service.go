package search

import "log"

// Indexer is implemented by Meili. A nil Indexer disables search entirely.
type Indexer interface {
	IndexPlaybook(record PlaybookRecord) error
	Healthy() bool
}

// Service dispatches index updates in the background. Failures are logged
// and dropped; the index catches up on the next write or rebuild.
type Service struct {
	indexer Indexer
}

func NewService(indexer Indexer) *Service {
	return &Service{indexer: indexer}
}

func (s *Service) Enabled() bool {
	return s != nil && s.indexer != nil
}

func (s *Service) PlaybookChanged(record PlaybookRecord) {
	if !s.Enabled() {
		return
	}
	go func() {
		if err := s.indexer.IndexPlaybook(record); err != nil {
			log.Printf("search: index playbook %s: %v", record.ID, err)
		}
	}()
}
