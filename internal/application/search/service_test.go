package search

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/molscreen/internal/config"
	"github.com/turtacn/molscreen/internal/domain/screen"
	"github.com/turtacn/molscreen/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────────────────────────────────────

type fakeMol struct {
	smiles     string
	canonical  string
	heavyAtoms int
	rings      int
	fragCounts map[string]int
}

func (m *fakeMol) NumHeavyAtoms() int     { return m.heavyAtoms }
func (m *fakeMol) NumRings() int          { return m.rings }
func (m *fakeMol) HasStereoCenters() bool { return false }
func (m *fakeMol) HasFormalCharges() bool { return false }

type pair struct{ target, query string }

// fakeToolkit answers every chemistry question from explicit tables.
// Payloads are the SMILES bytes themselves.
type fakeToolkit struct {
	mols      map[string]*fakeMol
	substruct map[pair]bool
	counts    map[pair]int

	matchCalls int
}

func newFakeToolkit(mols ...*fakeMol) *fakeToolkit {
	tk := &fakeToolkit{
		mols:      make(map[string]*fakeMol),
		substruct: make(map[pair]bool),
		counts:    make(map[pair]int),
	}
	for _, m := range mols {
		if m.canonical == "" {
			m.canonical = m.smiles
		}
		tk.mols[m.smiles] = m
	}
	return tk
}

func (tk *fakeToolkit) relate(target, query string, ok bool) {
	tk.substruct[pair{target, query}] = ok
}

func (tk *fakeToolkit) CompilePattern(smiles string) (screen.Pattern, error) {
	return smiles, nil
}

func (tk *fakeToolkit) CountMatches(mol screen.Molecule, pattern screen.Pattern, _ screen.MatchParams) (int, error) {
	return mol.(*fakeMol).fragCounts[pattern.(string)], nil
}

func (tk *fakeToolkit) IsSubstructureMatch(target, query screen.Molecule, _ screen.MatchParams) (bool, error) {
	tk.matchCalls++
	ts, qs := target.(*fakeMol).smiles, query.(*fakeMol).smiles
	if ok, set := tk.substruct[pair{ts, qs}]; set {
		return ok, nil
	}
	return ts == qs, nil
}

func (tk *fakeToolkit) CountUniqueMatches(target, query screen.Molecule, _ screen.MatchParams) (int, error) {
	ts, qs := target.(*fakeMol).smiles, query.(*fakeMol).smiles
	if n, set := tk.counts[pair{ts, qs}]; set {
		return n, nil
	}
	if ts == qs {
		return 1, nil
	}
	return 0, nil
}

func (tk *fakeToolkit) CanonicalForm(mol screen.Molecule, _ bool) (string, error) {
	return mol.(*fakeMol).canonical, nil
}

func (tk *fakeToolkit) ParseMolecule(text string) (screen.Molecule, error) {
	if m, ok := tk.mols[text]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("fake: unknown SMILES %q", text)
}

func (tk *fakeToolkit) SerializeMolecule(mol screen.Molecule) ([]byte, error) {
	return []byte(mol.(*fakeMol).smiles), nil
}

func (tk *fakeToolkit) DeserializeMolecule(data []byte) (screen.Molecule, error) {
	if m, ok := tk.mols[string(data)]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("fake: unknown payload %q", string(data))
}

// fakeRepo is an in-memory record store.  CandidatesForQuery is deliberately
// coarse (everything is a candidate) so tests cover the service re-screen.
type fakeRepo struct {
	byID    map[uuid.UUID]*screen.StoredMolecule
	byCanon map[string]*screen.StoredMolecule
	order   []uuid.UUID
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		byID:    make(map[uuid.UUID]*screen.StoredMolecule),
		byCanon: make(map[string]*screen.StoredMolecule),
	}
}

func (r *fakeRepo) Save(_ context.Context, m *screen.StoredMolecule) error {
	if _, dup := r.byCanon[m.CanonicalSMILES]; dup {
		return errors.New(errors.ErrCodeMoleculeAlreadyExists, "molecule already stored")
	}
	r.byID[m.ID] = m
	r.byCanon[m.CanonicalSMILES] = m
	r.order = append(r.order, m.ID)
	return nil
}

func (r *fakeRepo) BatchSave(ctx context.Context, ms []*screen.StoredMolecule) (int64, error) {
	var n int64
	for _, m := range ms {
		if err := r.Save(ctx, m); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (r *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*screen.StoredMolecule, error) {
	if m, ok := r.byID[id]; ok {
		return m, nil
	}
	return nil, errors.New(errors.ErrCodeMoleculeNotFound, "record not found")
}

func (r *fakeRepo) FindByCanonicalSMILES(_ context.Context, canonical string) (*screen.StoredMolecule, error) {
	if m, ok := r.byCanon[canonical]; ok {
		return m, nil
	}
	return nil, errors.New(errors.ErrCodeMoleculeNotFound, "record not found")
}

func (r *fakeRepo) CandidatesForQuery(_ context.Context, _ screen.Fingerprint, limit int) ([]*screen.StoredMolecule, error) {
	var out []*screen.StoredMolecule
	for _, id := range r.order {
		if len(out) >= limit {
			break
		}
		out = append(out, r.byID[id])
	}
	return out, nil
}

func (r *fakeRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.byID)), nil
}

func (r *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	m, ok := r.byID[id]
	if !ok {
		return errors.New(errors.ErrCodeMoleculeNotFound, "record not found")
	}
	delete(r.byID, id)
	delete(r.byCanon, m.CanonicalSMILES)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// ── Stock molecules ──────────────────────────────────────────────────────────

func benzene() *fakeMol {
	return &fakeMol{
		smiles:     "c1ccccc1",
		heavyAtoms: 6,
		rings:      1,
		fragCounts: map[string]int{"c1ccccc1": 1},
	}
}

func toluene() *fakeMol {
	return &fakeMol{
		smiles:     "Cc1ccccc1",
		heavyAtoms: 7,
		rings:      1,
		fragCounts: map[string]int{"c1ccccc1": 1, "Ccc": 2, "C": 1, "cc(c)c": 1},
	}
}

// ethane: two heavy atoms and no rings; benzene queries screen it out on
// the size bucket before anything else runs.
func ethane() *fakeMol {
	return &fakeMol{
		smiles:     "CC",
		heavyAtoms: 2,
		fragCounts: map[string]int{"C": 2, "CC": 1},
	}
}

func newTestService(t *testing.T, tk *fakeToolkit, repo *fakeRepo) Service {
	t.Helper()
	cfg := config.SearchConfig{
		CandidateLimit:     1000,
		DefaultResultLimit: 10,
		MaxResultLimit:     100,
	}
	svc, err := NewService(repo, tk, cfg, nil, nil, nil)
	require.NoError(t, err)
	return svc
}

// ─────────────────────────────────────────────────────────────────────────────
// Ingest
// ─────────────────────────────────────────────────────────────────────────────

func TestIngest_StoresRecord(t *testing.T) {
	tk := newFakeToolkit(benzene())
	repo := newFakeRepo()
	svc := newTestService(t, tk, repo)

	res, err := svc.Ingest(context.Background(), &IngestInput{SMILES: "c1ccccc1"})
	require.NoError(t, err)
	require.NotNil(t, res.Molecule)

	assert.Equal(t, "c1ccccc1", res.Molecule.SMILES)
	assert.Equal(t, "c1ccccc1", res.Molecule.CanonicalSMILES)
	assert.Equal(t, 6, res.Molecule.HeavyAtoms)

	stored, err := repo.FindByCanonicalSMILES(context.Background(), "c1ccccc1")
	require.NoError(t, err)
	// Benzene hits the aromatic ring fragment and sizes into the buckets.
	assert.Equal(t, screen.Fingerprint(1<<13|1<<55|1<<59), stored.Fingerprint)

	// The stored record round-trips through the wire format.
	rec, err := screen.FromBytes(stored.Record)
	require.NoError(t, err)
	fp, err := rec.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, stored.Fingerprint, fp)
	payload, err := rec.Payload()
	require.NoError(t, err)
	assert.Equal(t, []byte("c1ccccc1"), payload)
}

func TestIngest_Duplicate(t *testing.T) {
	tk := newFakeToolkit(benzene())
	repo := newFakeRepo()
	svc := newTestService(t, tk, repo)

	_, err := svc.Ingest(context.Background(), &IngestInput{SMILES: "c1ccccc1"})
	require.NoError(t, err)

	_, err = svc.Ingest(context.Background(), &IngestInput{SMILES: "c1ccccc1"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeMoleculeAlreadyExists))
}

func TestIngest_InvalidInput(t *testing.T) {
	svc := newTestService(t, newFakeToolkit(), newFakeRepo())

	_, err := svc.Ingest(context.Background(), &IngestInput{SMILES: ""})
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))

	_, err = svc.Ingest(context.Background(), &IngestInput{SMILES: "not-a-molecule"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidSMILES))
}

func TestIngestBatch(t *testing.T) {
	tk := newFakeToolkit(benzene(), toluene(), ethane())
	repo := newFakeRepo()
	svc := newTestService(t, tk, repo)

	res, err := svc.IngestBatch(context.Background(), []string{
		"c1ccccc1",
		"Cc1ccccc1",
		"c1ccccc1", // duplicate within the batch
		"bogus",    // unparsable
		"CC",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3), res.Stored)
	assert.Equal(t, 1, res.Duplicates)
	assert.Equal(t, []string{"bogus"}, res.Failed)

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestIngestBatch_SkipsAlreadyStored(t *testing.T) {
	tk := newFakeToolkit(benzene(), toluene())
	repo := newFakeRepo()
	svc := newTestService(t, tk, repo)

	_, err := svc.Ingest(context.Background(), &IngestInput{SMILES: "c1ccccc1"})
	require.NoError(t, err)

	res, err := svc.IngestBatch(context.Background(), []string{"c1ccccc1", "Cc1ccccc1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Stored)
	assert.Equal(t, 1, res.Duplicates)
}

// ─────────────────────────────────────────────────────────────────────────────
// Substructure search
// ─────────────────────────────────────────────────────────────────────────────

func TestSearchSubstructure(t *testing.T) {
	tk := newFakeToolkit(benzene(), toluene(), ethane())
	tk.relate("Cc1ccccc1", "c1ccccc1", true)
	repo := newFakeRepo()
	svc := newTestService(t, tk, repo)

	_, err := svc.IngestBatch(context.Background(), []string{"c1ccccc1", "Cc1ccccc1", "CC"})
	require.NoError(t, err)

	res, err := svc.SearchSubstructure(context.Background(), &SubstructureInput{SMILES: "c1ccccc1"})
	require.NoError(t, err)

	// Benzene and toluene match; ethane is screened out without an oracle
	// call.
	require.Len(t, res.Molecules, 2)
	assert.Equal(t, 3, res.CandidatesScanned)
	assert.Equal(t, 1, res.ScreenRejected)
	assert.Equal(t, 2, tk.matchCalls)
	assert.False(t, res.Truncated)
}

func TestSearchSubstructure_OracleRejectsFalsePositive(t *testing.T) {
	tk := newFakeToolkit(benzene(), toluene())
	// Fingerprint containment holds, but the oracle says toluene does not
	// actually contain benzene here.
	tk.relate("Cc1ccccc1", "c1ccccc1", false)
	repo := newFakeRepo()
	svc := newTestService(t, tk, repo)

	_, err := svc.IngestBatch(context.Background(), []string{"Cc1ccccc1"})
	require.NoError(t, err)

	res, err := svc.SearchSubstructure(context.Background(), &SubstructureInput{SMILES: "c1ccccc1"})
	require.NoError(t, err)
	assert.Empty(t, res.Molecules)
	assert.Equal(t, 0, res.ScreenRejected, "screen passed; only the oracle rejected")
}

func TestSearchSubstructure_LimitTruncates(t *testing.T) {
	tk := newFakeToolkit(benzene(), toluene())
	tk.relate("Cc1ccccc1", "c1ccccc1", true)
	repo := newFakeRepo()
	svc := newTestService(t, tk, repo)

	_, err := svc.IngestBatch(context.Background(), []string{"c1ccccc1", "Cc1ccccc1"})
	require.NoError(t, err)

	res, err := svc.SearchSubstructure(context.Background(), &SubstructureInput{SMILES: "c1ccccc1", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, res.Molecules, 1)
	assert.True(t, res.Truncated)
}

func TestSearchSubstructure_UnknownQuery(t *testing.T) {
	svc := newTestService(t, newFakeToolkit(), newFakeRepo())
	_, err := svc.SearchSubstructure(context.Background(), &SubstructureInput{SMILES: "???"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidSMILES))
}

// ─────────────────────────────────────────────────────────────────────────────
// Occurrence count
// ─────────────────────────────────────────────────────────────────────────────

func TestCountOccurrences(t *testing.T) {
	tk := newFakeToolkit(benzene(), toluene())
	tk.relate("Cc1ccccc1", "c1ccccc1", true)
	tk.counts[pair{"Cc1ccccc1", "c1ccccc1"}] = 1
	repo := newFakeRepo()
	svc := newTestService(t, tk, repo)

	ing, err := svc.Ingest(context.Background(), &IngestInput{SMILES: "Cc1ccccc1"})
	require.NoError(t, err)

	res, err := svc.CountOccurrences(context.Background(), &CountInput{
		TargetID: ing.Molecule.ID,
		SMILES:   "c1ccccc1",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
}

func TestCountOccurrences_ScreenShortCircuit(t *testing.T) {
	tk := newFakeToolkit(benzene(), ethane())
	repo := newFakeRepo()
	svc := newTestService(t, tk, repo)

	// Store ethane; a benzene query cannot be contained, so the count is
	// zero without any match call.
	ing, err := svc.Ingest(context.Background(), &IngestInput{SMILES: "CC"})
	require.NoError(t, err)

	res, err := svc.CountOccurrences(context.Background(), &CountInput{
		TargetID: ing.Molecule.ID,
		SMILES:   "c1ccccc1",
	})
	require.NoError(t, err)
	assert.Zero(t, res.Count)
	assert.Zero(t, tk.matchCalls)
}

func TestCountOccurrences_BadTargetID(t *testing.T) {
	svc := newTestService(t, newFakeToolkit(), newFakeRepo())
	_, err := svc.CountOccurrences(context.Background(), &CountInput{TargetID: "nope", SMILES: "CC"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
}

// ─────────────────────────────────────────────────────────────────────────────
// Exact match
// ─────────────────────────────────────────────────────────────────────────────

func TestExactMatch(t *testing.T) {
	tk := newFakeToolkit(benzene(), toluene())
	repo := newFakeRepo()
	svc := newTestService(t, tk, repo)

	_, err := svc.Ingest(context.Background(), &IngestInput{SMILES: "c1ccccc1"})
	require.NoError(t, err)

	res, err := svc.ExactMatch(context.Background(), &ExactInput{SMILES: "c1ccccc1"})
	require.NoError(t, err)
	require.True(t, res.Found)
	assert.Equal(t, "c1ccccc1", res.Molecule.CanonicalSMILES)

	res, err = svc.ExactMatch(context.Background(), &ExactInput{SMILES: "Cc1ccccc1"})
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Nil(t, res.Molecule)
}

func TestExactMatch_AliasResolvesThroughCanonicalForm(t *testing.T) {
	// Kekulé benzene parses to a different fake molecule whose canonical
	// form matches the stored aromatic one.
	kekule := &fakeMol{
		smiles:     "C1=CC=CC=C1",
		canonical:  "c1ccccc1",
		heavyAtoms: 6,
		rings:      1,
		fragCounts: map[string]int{"c1ccccc1": 1},
	}
	tk := newFakeToolkit(benzene(), kekule)
	tk.relate("c1ccccc1", "C1=CC=CC=C1", true)
	tk.relate("C1=CC=CC=C1", "c1ccccc1", true)
	repo := newFakeRepo()
	svc := newTestService(t, tk, repo)

	_, err := svc.Ingest(context.Background(), &IngestInput{SMILES: "c1ccccc1"})
	require.NoError(t, err)

	res, err := svc.ExactMatch(context.Background(), &ExactInput{SMILES: "C1=CC=CC=C1"})
	require.NoError(t, err)
	assert.True(t, res.Found)
}

// ─────────────────────────────────────────────────────────────────────────────
// Record management
// ─────────────────────────────────────────────────────────────────────────────

func TestGetAndDeleteMolecule(t *testing.T) {
	tk := newFakeToolkit(benzene())
	repo := newFakeRepo()
	svc := newTestService(t, tk, repo)

	ing, err := svc.Ingest(context.Background(), &IngestInput{SMILES: "c1ccccc1"})
	require.NoError(t, err)

	got, err := svc.GetMolecule(context.Background(), ing.Molecule.ID)
	require.NoError(t, err)
	assert.Equal(t, ing.Molecule.Fingerprint, got.Fingerprint)

	require.NoError(t, svc.DeleteMolecule(context.Background(), ing.Molecule.ID))

	_, err = svc.GetMolecule(context.Background(), ing.Molecule.ID)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMoleculeNotFound))

	_, err = svc.GetMolecule(context.Background(), "not-a-uuid")
	assert.True(t, errors.IsCode(err, errors.ErrCodeBadRequest))
}

func TestStats(t *testing.T) {
	tk := newFakeToolkit(benzene(), ethane())
	repo := newFakeRepo()
	svc := newTestService(t, tk, repo)

	_, err := svc.IngestBatch(context.Background(), []string{"c1ccccc1", "CC"})
	require.NoError(t, err)

	res, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Molecules)
}
