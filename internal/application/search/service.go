// Package search provides the application-level service for molecule ingest
// and fingerprint-screened search.  It sits between the HTTP/CLI interfaces
// and the screening domain, owning candidate scanning, oracle verification,
// and the canonical-form cache.
package search

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/molscreen/internal/config"
	"github.com/turtacn/molscreen/internal/domain/screen"
	"github.com/turtacn/molscreen/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molscreen/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/molscreen/pkg/errors"
)

// CanonicalResolver memoizes canonical-form computation keyed by payload.
// The Redis-backed cache satisfies it; tests use a pass-through.
type CanonicalResolver interface {
	GetOrCompute(ctx context.Context, payload []byte, useStereo bool, compute func(ctx context.Context) (string, error)) (string, error)
}

// Service defines the molecule search application operations.
type Service interface {
	Ingest(ctx context.Context, input *IngestInput) (*IngestResult, error)
	IngestBatch(ctx context.Context, smiles []string) (*BatchIngestResult, error)
	SearchSubstructure(ctx context.Context, input *SubstructureInput) (*SubstructureResult, error)
	CountOccurrences(ctx context.Context, input *CountInput) (*CountResult, error)
	ExactMatch(ctx context.Context, input *ExactInput) (*ExactResult, error)
	GetMolecule(ctx context.Context, id string) (*Molecule, error)
	DeleteMolecule(ctx context.Context, id string) error
	Stats(ctx context.Context) (*StatsResult, error)
}

// IngestInput contains input for storing one molecule.
type IngestInput struct {
	SMILES string
}

// SubstructureInput contains input for a substructure search.
type SubstructureInput struct {
	SMILES string
	Limit  int
}

// CountInput asks how many times a query occurs in one stored molecule.
type CountInput struct {
	TargetID string
	SMILES   string
}

// ExactInput contains input for an exact-match lookup.
type ExactInput struct {
	SMILES string
}

// Molecule is the application-level DTO for a stored record.
type Molecule struct {
	ID              string    `json:"id"`
	SMILES          string    `json:"smiles"`
	CanonicalSMILES string    `json:"canonical_smiles"`
	Fingerprint     string    `json:"fingerprint"`
	HeavyAtoms      int       `json:"heavy_atoms"`
	RecordSize      int       `json:"record_size"`
	CreatedAt       time.Time `json:"created_at"`
}

// IngestResult reports a stored molecule.
type IngestResult struct {
	Molecule *Molecule `json:"molecule"`
}

// BatchIngestResult summarizes a bulk ingest.
type BatchIngestResult struct {
	Stored     int64    `json:"stored"`
	Duplicates int      `json:"duplicates"`
	Failed     []string `json:"failed,omitempty"`
}

// SubstructureResult holds verified substructure matches plus scan counters.
type SubstructureResult struct {
	Molecules         []*Molecule `json:"molecules"`
	CandidatesScanned int         `json:"candidates_scanned"`
	ScreenRejected    int         `json:"screen_rejected"`
	Truncated         bool        `json:"truncated"`
}

// CountResult reports the occurrence count of a query in one target.
type CountResult struct {
	TargetID string `json:"target_id"`
	Count    int    `json:"count"`
}

// ExactResult reports whether a molecule is stored and, if so, which record.
type ExactResult struct {
	Found    bool      `json:"found"`
	Molecule *Molecule `json:"molecule,omitempty"`
}

// StatsResult holds store-level counters.
type StatsResult struct {
	Molecules int64 `json:"molecules"`
}

// serviceImpl implements the Service interface.
type serviceImpl struct {
	repo       screen.RecordRepository
	toolkit    screen.Toolkit
	encoder    *screen.Encoder
	comparator *screen.Comparator
	canon      CanonicalResolver
	cfg        config.SearchConfig
	metrics    *prometheus.AppMetrics
	logger     logging.Logger
}

// NewService creates the search application service.  canon and metrics may
// be nil; canonical forms are then computed directly and metrics discarded.
func NewService(
	repo screen.RecordRepository,
	toolkit screen.Toolkit,
	cfg config.SearchConfig,
	canon CanonicalResolver,
	metrics *prometheus.AppMetrics,
	logger logging.Logger,
) (Service, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if metrics == nil {
		metrics = prometheus.NewNopAppMetrics()
	}

	enc, err := screen.NewEncoder(toolkit, logger.Named("encoder"))
	if err != nil {
		return nil, err
	}

	var opts []screen.ComparatorOption
	if cfg.UseChirality {
		opts = append(opts, screen.WithChirality(true))
	}

	return &serviceImpl{
		repo:       repo,
		toolkit:    toolkit,
		encoder:    enc,
		comparator: screen.NewComparator(toolkit, logger.Named("comparator"), opts...),
		canon:      canon,
		cfg:        cfg,
		metrics:    metrics,
		logger:     logger,
	}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Ingest
// ─────────────────────────────────────────────────────────────────────────────

// prepared is a molecule parsed, encoded, and serialized, ready to store.
type prepared struct {
	mol       screen.Molecule
	fp        screen.Fingerprint
	payload   []byte
	canonical string
}

// prepare runs the ingest pipeline up to (but not including) the store write.
func (s *serviceImpl) prepare(ctx context.Context, smiles string) (*prepared, error) {
	if smiles == "" {
		return nil, errors.InvalidParam("smiles is required")
	}

	mol, err := s.toolkit.ParseMolecule(smiles)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidSMILES, "failed to parse SMILES").
			WithDetail("smiles=" + smiles)
	}

	start := time.Now()
	fp, err := s.encoder.Encode(mol)
	if err != nil {
		return nil, err
	}
	s.metrics.EncodeDuration.WithLabelValues("ingest").Observe(time.Since(start).Seconds())

	payload, err := s.toolkit.SerializeMolecule(mol)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeMoleculeSerializeFailed, "failed to serialize molecule")
	}

	canonical, err := s.canonicalForm(ctx, mol, payload)
	if err != nil {
		return nil, err
	}

	return &prepared{mol: mol, fp: fp, payload: payload, canonical: canonical}, nil
}

// canonicalForm resolves the identity key for a molecule, via the cache when
// one is wired.  Exact-match identity and the stored canonical column must
// agree on stereo sensitivity, so both use cfg.UseChirality.
func (s *serviceImpl) canonicalForm(ctx context.Context, mol screen.Molecule, payload []byte) (string, error) {
	compute := func(ctx context.Context) (string, error) {
		form, err := s.toolkit.CanonicalForm(mol, s.cfg.UseChirality)
		if err != nil {
			return "", errors.Wrap(err, errors.ErrCodeCanonicalFormFailed, "failed to compute canonical form")
		}
		return form, nil
	}
	if s.canon == nil {
		return compute(ctx)
	}
	return s.canon.GetOrCompute(ctx, payload, s.cfg.UseChirality, compute)
}

func (s *serviceImpl) Ingest(ctx context.Context, input *IngestInput) (*IngestResult, error) {
	p, err := s.prepare(ctx, input.SMILES)
	if err != nil {
		s.metrics.IngestTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	rec := screen.Assemble(p.fp, p.payload)
	s.metrics.RecordBytes.WithLabelValues("ingest").Observe(float64(rec.Size()))

	stored := &screen.StoredMolecule{
		ID:              uuid.New(),
		SMILES:          input.SMILES,
		CanonicalSMILES: p.canonical,
		Fingerprint:     p.fp,
		Record:          rec.Bytes(),
		HeavyAtoms:      p.mol.NumHeavyAtoms(),
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.repo.Save(ctx, stored); err != nil {
		if errors.IsCode(err, errors.ErrCodeMoleculeAlreadyExists) {
			s.metrics.IngestTotal.WithLabelValues("duplicate").Inc()
		} else {
			s.metrics.IngestTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}

	s.metrics.IngestTotal.WithLabelValues("ok").Inc()
	s.logger.Info("molecule stored",
		logging.String("id", stored.ID.String()),
		logging.String("fingerprint", p.fp.String()),
		logging.Int("heavy_atoms", stored.HeavyAtoms),
	)
	return &IngestResult{Molecule: toDTO(stored)}, nil
}

// IngestBatch prepares every molecule, skips the unparsable ones, and bulk
// loads the rest.  Molecules already stored under the same canonical form
// are counted as duplicates, not failures.
func (s *serviceImpl) IngestBatch(ctx context.Context, smiles []string) (*BatchIngestResult, error) {
	result := &BatchIngestResult{}
	seen := make(map[string]struct{}, len(smiles))
	batch := make([]*screen.StoredMolecule, 0, len(smiles))

	for _, sm := range smiles {
		p, err := s.prepare(ctx, sm)
		if err != nil {
			s.metrics.IngestTotal.WithLabelValues("error").Inc()
			s.logger.Warn("skipping molecule in batch", logging.String("smiles", sm), logging.Err(err))
			result.Failed = append(result.Failed, sm)
			continue
		}
		if _, dup := seen[p.canonical]; dup {
			result.Duplicates++
			continue
		}
		if _, err := s.repo.FindByCanonicalSMILES(ctx, p.canonical); err == nil {
			s.metrics.IngestTotal.WithLabelValues("duplicate").Inc()
			result.Duplicates++
			continue
		} else if !errors.IsCode(err, errors.ErrCodeMoleculeNotFound) {
			return nil, err
		}
		seen[p.canonical] = struct{}{}

		rec := screen.Assemble(p.fp, p.payload)
		batch = append(batch, &screen.StoredMolecule{
			ID:              uuid.New(),
			SMILES:          sm,
			CanonicalSMILES: p.canonical,
			Fingerprint:     p.fp,
			Record:          rec.Bytes(),
			HeavyAtoms:      p.mol.NumHeavyAtoms(),
			CreatedAt:       time.Now().UTC(),
		})
	}

	if len(batch) > 0 {
		n, err := s.repo.BatchSave(ctx, batch)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeIngestFailed, "batch ingest failed")
		}
		result.Stored = n
		s.metrics.IngestTotal.WithLabelValues("ok").Add(float64(n))
	}
	return result, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Substructure search
// ─────────────────────────────────────────────────────────────────────────────

func (s *serviceImpl) SearchSubstructure(ctx context.Context, input *SubstructureInput) (*SubstructureResult, error) {
	start := time.Now()
	defer func() {
		s.metrics.SearchDuration.WithLabelValues("substructure").Observe(time.Since(start).Seconds())
	}()

	limit := s.clampLimit(input.Limit)

	query, err := s.toolkit.ParseMolecule(input.SMILES)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidSMILES, "failed to parse query SMILES").
			WithDetail("smiles=" + input.SMILES)
	}
	encStart := time.Now()
	qfp, err := s.encoder.Encode(query)
	if err != nil {
		return nil, err
	}
	s.metrics.EncodeDuration.WithLabelValues("query").Observe(time.Since(encStart).Seconds())

	candidates, err := s.repo.CandidatesForQuery(ctx, qfp, s.cfg.CandidateLimit)
	if err != nil {
		return nil, err
	}
	s.metrics.CandidatesScanned.WithLabelValues("substructure").Observe(float64(len(candidates)))

	result := &SubstructureResult{CandidatesScanned: len(candidates)}
	screenPasses := 0
	oracleRejects := 0

	for _, cand := range candidates {
		if len(result.Molecules) >= limit {
			result.Truncated = true
			break
		}

		// The store prefilters coarsely; the authoritative screen runs here.
		ok, reason := screen.Screen(cand.Fingerprint, qfp)
		if !ok {
			s.metrics.ScreensTotal.WithLabelValues("reject", string(reason)).Inc()
			result.ScreenRejected++
			continue
		}
		s.metrics.ScreensTotal.WithLabelValues("pass", "").Inc()
		screenPasses++

		rec, err := screen.FromBytes(cand.Record)
		if err != nil {
			return nil, err
		}
		payload, err := rec.Payload()
		if err != nil {
			return nil, err
		}
		target, err := s.toolkit.DeserializeMolecule(payload)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeUnparsablePayload,
				"failed to deserialize stored record").WithDetail("id=" + cand.ID.String())
		}

		s.metrics.OracleCallsTotal.WithLabelValues("substructure").Inc()
		matched, err := s.comparator.IsSubstructureMolecules(target, query)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSubstructureSearchFailed, "oracle verification failed")
		}
		if !matched {
			oracleRejects++
			continue
		}
		result.Molecules = append(result.Molecules, toDTO(cand))
	}

	if screenPasses > 0 {
		s.metrics.FalsePositiveRate.WithLabelValues("substructure").
			Set(float64(oracleRejects) / float64(screenPasses))
	}
	return result, nil
}

func (s *serviceImpl) clampLimit(limit int) int {
	if limit <= 0 {
		return s.cfg.DefaultResultLimit
	}
	if limit > s.cfg.MaxResultLimit {
		return s.cfg.MaxResultLimit
	}
	return limit
}

// ─────────────────────────────────────────────────────────────────────────────
// Occurrence count
// ─────────────────────────────────────────────────────────────────────────────

func (s *serviceImpl) CountOccurrences(ctx context.Context, input *CountInput) (*CountResult, error) {
	start := time.Now()
	defer func() {
		s.metrics.SearchDuration.WithLabelValues("count").Observe(time.Since(start).Seconds())
	}()

	id, err := uuid.Parse(input.TargetID)
	if err != nil {
		return nil, errors.InvalidParam("target id must be a UUID")
	}
	stored, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	query, err := s.toolkit.ParseMolecule(input.SMILES)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidSMILES, "failed to parse query SMILES")
	}
	qfp, err := s.encoder.Encode(query)
	if err != nil {
		return nil, err
	}

	if !screen.MightContain(stored.Fingerprint, qfp) {
		s.metrics.ScreensTotal.WithLabelValues("reject", "count").Inc()
		return &CountResult{TargetID: input.TargetID, Count: 0}, nil
	}

	rec, err := screen.FromBytes(stored.Record)
	if err != nil {
		return nil, err
	}
	payload, err := rec.Payload()
	if err != nil {
		return nil, err
	}
	target, err := s.toolkit.DeserializeMolecule(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUnparsablePayload, "failed to deserialize stored record")
	}

	s.metrics.OracleCallsTotal.WithLabelValues("count").Inc()
	n, err := s.comparator.SubstructCountMolecules(target, query)
	if err != nil {
		return nil, err
	}
	return &CountResult{TargetID: input.TargetID, Count: n}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Exact match
// ─────────────────────────────────────────────────────────────────────────────

func (s *serviceImpl) ExactMatch(ctx context.Context, input *ExactInput) (*ExactResult, error) {
	start := time.Now()
	defer func() {
		s.metrics.SearchDuration.WithLabelValues("exact").Observe(time.Since(start).Seconds())
	}()

	p, err := s.prepare(ctx, input.SMILES)
	if err != nil {
		return nil, err
	}

	stored, err := s.repo.FindByCanonicalSMILES(ctx, p.canonical)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeMoleculeNotFound) {
			return &ExactResult{Found: false}, nil
		}
		return nil, err
	}

	// The canonical column decides membership; the comparator confirms so a
	// stale or colliding row can never answer yes.
	storedRec, err := screen.FromBytes(stored.Record)
	if err != nil {
		return nil, err
	}
	s.metrics.OracleCallsTotal.WithLabelValues("exact").Inc()
	same, err := s.comparator.IsExactMatch(storedRec, screen.Assemble(p.fp, p.payload))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExactSearchFailed, "exact match verification failed")
	}
	if !same {
		s.logger.Warn("canonical lookup disagreed with exact comparison",
			logging.String("id", stored.ID.String()),
			logging.String("canonical", p.canonical),
		)
		return &ExactResult{Found: false}, nil
	}
	return &ExactResult{Found: true, Molecule: toDTO(stored)}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Record management
// ─────────────────────────────────────────────────────────────────────────────

func (s *serviceImpl) GetMolecule(ctx context.Context, id string) (*Molecule, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, errors.InvalidParam("id must be a UUID")
	}
	stored, err := s.repo.FindByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	return toDTO(stored), nil
}

func (s *serviceImpl) DeleteMolecule(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return errors.InvalidParam("id must be a UUID")
	}
	return s.repo.Delete(ctx, uid)
}

func (s *serviceImpl) Stats(ctx context.Context) (*StatsResult, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &StatsResult{Molecules: n}, nil
}

func toDTO(m *screen.StoredMolecule) *Molecule {
	if m == nil {
		return nil
	}
	return &Molecule{
		ID:              m.ID.String(),
		SMILES:          m.SMILES,
		CanonicalSMILES: m.CanonicalSMILES,
		Fingerprint:     m.Fingerprint.String(),
		HeavyAtoms:      m.HeavyAtoms,
		RecordSize:      len(m.Record),
		CreatedAt:       m.CreatedAt,
	}
}
