package docstore

import "context"

// Collection names for the application documents. Each collection is a
// single JSON document read and written whole.
const (
	CollectionUsers       = "users"
	CollectionConfig      = "config"
	CollectionResults     = "results"
	CollectionAssignments = "scenario_assignments"
)

// Store persists whole JSON documents keyed by collection name.
//
// Load returns (nil, nil) when the collection has never been written so
// callers can fall back to an empty default. Save replaces the document
// atomically with respect to concurrent readers of the same process.
type Store interface {
	Load(ctx context.Context, collection string) ([]byte, error)
	Save(ctx context.Context, collection string, doc []byte) error
	Ping(ctx context.Context) error
	Close()
}
