package invoicedoc

import "context"

// DefaultLatestName is the well-known name of the most recent document.
const DefaultLatestName = "latest-invoice.docx"

// Store persists generated documents under a name.
//
// The generator overwrites one well-known name on every generation: the
// last write wins, with no locking between concurrent generations.
// Open must return an error matching ErrArtifactNotFound for unknown names.
type Store interface {
	Save(ctx context.Context, name string, data []byte) error
	Open(ctx context.Context, name string) ([]byte, error)
	// Location describes where name is stored, for logs and responses.
	Location(name string) string
}
