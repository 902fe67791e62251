// Package repositories implements the persistent record store on PostgreSQL.
package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/molscreen/internal/domain/screen"
	"github.com/turtacn/molscreen/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molscreen/pkg/errors"
)

// RecordRepository stores screening records in the mol_records table.
//
// The fingerprint is persisted as a BIGINT so the fragment-subset check can
// run inside the database as a coarse prefilter.  Bit 63 of a fingerprint is
// always zero, so the signed column never goes negative and bit shifts in
// SQL behave like their unsigned counterparts.
type RecordRepository struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

var _ screen.RecordRepository = (*RecordRepository)(nil)

// NewRecordRepository builds a repository over an established pool.
func NewRecordRepository(pool *pgxpool.Pool, log logging.Logger) *RecordRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &RecordRepository{pool: pool, logger: log}
}

const recordColumns = `id, smiles, canonical_smiles, fingerprint, record, heavy_atoms, created_at`

// scanRecord reads one StoredMolecule from a row.
func scanRecord(row pgx.Row) (*screen.StoredMolecule, error) {
	var m screen.StoredMolecule
	var fp int64
	if err := row.Scan(&m.ID, &m.SMILES, &m.CanonicalSMILES, &fp, &m.Record, &m.HeavyAtoms, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Fingerprint = screen.Fingerprint(uint64(fp))
	return &m, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Save / BatchSave
// ─────────────────────────────────────────────────────────────────────────────

// Save inserts a record.  Canonical SMILES is unique; inserting a molecule
// that is already stored returns ErrCodeMoleculeAlreadyExists.
func (r *RecordRepository) Save(ctx context.Context, m *screen.StoredMolecule) error {
	const q = `
		INSERT INTO mol_records (id, smiles, canonical_smiles, fingerprint, record, heavy_atoms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (canonical_smiles) DO NOTHING`

	tag, err := r.pool.Exec(ctx, q,
		m.ID, m.SMILES, m.CanonicalSMILES, int64(uint64(m.Fingerprint)),
		m.Record, m.HeavyAtoms, m.CreatedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to save record")
	}
	if tag.RowsAffected() == 0 {
		return errors.New(errors.ErrCodeMoleculeAlreadyExists, "molecule already stored").
			WithDetail("canonical_smiles=" + m.CanonicalSMILES)
	}
	return nil
}

// BatchSave bulk-loads records with COPY.  Unlike Save it does not tolerate
// duplicates; callers use it for initial imports into an empty table.
func (r *RecordRepository) BatchSave(ctx context.Context, ms []*screen.StoredMolecule) (int64, error) {
	rows := make([][]interface{}, 0, len(ms))
	for _, m := range ms {
		rows = append(rows, []interface{}{
			m.ID, m.SMILES, m.CanonicalSMILES, int64(uint64(m.Fingerprint)),
			m.Record, m.HeavyAtoms, m.CreatedAt,
		})
	}

	n, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"mol_records"},
		[]string{"id", "smiles", "canonical_smiles", "fingerprint", "record", "heavy_atoms", "created_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to batch save records")
	}
	r.logger.Info("batch saved records", logging.Int64("count", n))
	return n, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Lookups
// ─────────────────────────────────────────────────────────────────────────────

// FindByID fetches one record by primary key.
func (r *RecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*screen.StoredMolecule, error) {
	const q = `SELECT ` + recordColumns + ` FROM mol_records WHERE id = $1`
	m, err := scanRecord(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.New(errors.ErrCodeMoleculeNotFound, "record not found").
				WithDetail("id=" + id.String())
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load record")
	}
	return m, nil
}

// FindByCanonicalSMILES fetches the record holding a given canonical form.
func (r *RecordRepository) FindByCanonicalSMILES(ctx context.Context, canonical string) (*screen.StoredMolecule, error) {
	const q = `SELECT ` + recordColumns + ` FROM mol_records WHERE canonical_smiles = $1`
	m, err := scanRecord(r.pool.QueryRow(ctx, q, canonical))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, errors.New(errors.ErrCodeMoleculeNotFound, "record not found").
				WithDetail("canonical_smiles=" + canonical)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load record")
	}
	return m, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// CandidatesForQuery — in-database containment prefilter
// ─────────────────────────────────────────────────────────────────────────────

// CandidateMask returns the bits a containing fingerprint must carry for the
// given query: its fragment bits plus its stereo and charge flags.
func CandidateMask(query screen.Fingerprint) uint64 {
	mask := query.FragmentBits()
	if query.HasStereoCenters() {
		mask |= 1 << 61
	}
	if query.HasCharges() {
		mask |= 1 << 62
	}
	return mask
}

// CandidatesForQuery streams back records that survive the containment
// checks expressed in SQL: fragment/stereo/charge bits as a subset test and
// the two bucket comparisons as shifts.  This mirrors the in-process screen,
// so callers re-screening the results get identical verdicts; the SQL form
// just keeps non-candidates from crossing the wire.
func (r *RecordRepository) CandidatesForQuery(ctx context.Context, query screen.Fingerprint, limit int) ([]*screen.StoredMolecule, error) {
	const q = `
		SELECT ` + recordColumns + `
		FROM mol_records
		WHERE (fingerprint & $1) = $1
		  AND ((fingerprint >> 55) & 15) >= $2
		  AND ((fingerprint >> 59) & 3)  >= $3
		ORDER BY created_at
		LIMIT $4`

	rows, err := r.pool.Query(ctx, q,
		int64(CandidateMask(query)),
		int64(query.HeavyAtomBucket()),
		int64(query.RingBucket()),
		limit,
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCandidateScanFailed, "candidate query failed")
	}
	defer rows.Close()

	var out []*screen.StoredMolecule
	for rows.Next() {
		m, err := scanRecord(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeCandidateScanFailed, "failed to scan candidate")
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCandidateScanFailed, "candidate scan aborted")
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Count / Delete
// ─────────────────────────────────────────────────────────────────────────────

// Count returns the number of stored records.
func (r *RecordRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM mol_records`).Scan(&n); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count records")
	}
	return n, nil
}

// Delete removes a record by primary key.
func (r *RecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM mol_records WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to delete record")
	}
	if tag.RowsAffected() == 0 {
		return errors.New(errors.ErrCodeMoleculeNotFound, "record not found").
			WithDetail("id=" + id.String())
	}
	return nil
}
