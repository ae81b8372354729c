package service

import "github.com/palaver-chat/palaver/internal/domain"

// SelectStorageProvider picks the storage backend for the lifetime of the
// process: candidates are tried in order and the first enabled one wins.
// Returns nil when no candidate is enabled, which puts uploads into degraded
// mode (rejected as disabled).
func SelectStorageProvider(candidates ...domain.StorageProvider) domain.StorageProvider {
	for _, candidate := range candidates {
		if candidate != nil && candidate.Enabled() {
			return candidate
		}
	}
	return nil
}
