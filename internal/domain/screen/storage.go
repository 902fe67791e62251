package screen

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StoredMolecule is a persisted screening record: the assembled record bytes
// plus the fields extracted from it so storage can index and prefilter
// without parsing payloads.
type StoredMolecule struct {
	ID              uuid.UUID
	SMILES          string
	CanonicalSMILES string
	Fingerprint     Fingerprint
	Record          []byte
	HeavyAtoms      int
	CreatedAt       time.Time
}

// RecordRepository is the storage contract for screening records.
type RecordRepository interface {
	// Save inserts one record.  Saving a molecule whose canonical form is
	// already stored returns ErrCodeMoleculeAlreadyExists.
	Save(ctx context.Context, m *StoredMolecule) error

	// BatchSave bulk-loads records and returns how many were written.
	BatchSave(ctx context.Context, ms []*StoredMolecule) (int64, error)

	// FindByID fetches one record by primary key.
	FindByID(ctx context.Context, id uuid.UUID) (*StoredMolecule, error)

	// FindByCanonicalSMILES fetches the record holding a canonical form.
	FindByCanonicalSMILES(ctx context.Context, canonical string) (*StoredMolecule, error)

	// CandidatesForQuery returns up to limit records whose fingerprints
	// survive the containment screen against query.  Implementations may
	// evaluate the screen coarsely; callers re-screen with MightContain.
	CandidatesForQuery(ctx context.Context, query Fingerprint, limit int) ([]*StoredMolecule, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)

	// Delete removes a record by primary key.
	Delete(ctx context.Context, id uuid.UUID) error
}
