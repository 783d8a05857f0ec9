package store

import "context"

// Collection names. Each collection is one JSON document: an array of
// records for most, a single object for config.
const (
	CollectionRequests   = "requests"
	CollectionVoters     = "voters"
	CollectionCandidates = "candidates"
	CollectionConfig     = "config"
	CollectionAdmins     = "admins"
)

// Store persists whole collections, atomically at the granularity of one
// collection write. All access to a given collection is serialized: Mutate
// runs its callback under the collection's lock so read-modify-write cycles
// never interleave.
//
// Read degrades to nil on a missing or unreadable collection. That makes a
// storage failure indistinguishable from "no data yet"; inherited behavior,
// kept deliberately (see DESIGN.md).
type Store interface {
	Read(ctx context.Context, collection string) ([]byte, error)
	Write(ctx context.Context, collection string, data []byte) error
	Mutate(ctx context.Context, collection string, fn func(data []byte) ([]byte, error)) error
	Close() error
}
