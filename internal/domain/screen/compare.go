package screen

import (
	"github.com/turtacn/molscreen/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molscreen/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Comparator — exact-match and substructure queries over records
// ─────────────────────────────────────────────────────────────────────────────

// Comparator answers identity and substructure questions about records.
// Every operation screens on the fingerprint prefix first and consults the
// injected toolkit only for candidates the screen cannot eliminate.
type Comparator struct {
	toolkit Toolkit

	// useChirality makes stereochemistry part of exact-match identity.
	// Substructure matching always ignores it, mirroring the fingerprint,
	// which is computed without chirality.
	useChirality bool

	log logging.Logger
}

// ComparatorOption configures a Comparator.
type ComparatorOption func(*Comparator)

// WithChirality makes exact-match comparison stereo-sensitive.
func WithChirality(on bool) ComparatorOption {
	return func(c *Comparator) { c.useChirality = on }
}

// NewComparator builds a Comparator around a toolkit.  The default identity
// notion ignores stereochemistry.
func NewComparator(toolkit Toolkit, log logging.Logger, opts ...ComparatorOption) *Comparator {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &Comparator{toolkit: toolkit, log: log}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// molecule deserializes a record payload, classifying failures as
// ErrCodeUnparsablePayload.
func (c *Comparator) molecule(r Record) (Molecule, error) {
	payload, err := r.Payload()
	if err != nil {
		return nil, err
	}
	mol, err := c.toolkit.DeserializeMolecule(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUnparsablePayload,
			"failed to deserialize record payload")
	}
	return mol, nil
}

// IsExactMatch reports whether two records hold the identical molecule.
//
// Deterministic encoding means identical molecules always share a prefix,
// so a prefix mismatch decides immediately with no payload work.  Matching
// prefixes fall through to the toolkit: a mutual substructure check (with
// recursion disabled, neither side is a query pattern) followed by canonical
// form equality, which settles graphs the mutual check cannot distinguish.
func (c *Comparator) IsExactMatch(a, b Record) (bool, error) {
	pa, err := a.PrefixBits()
	if err != nil {
		return false, err
	}
	pb, err := b.PrefixBits()
	if err != nil {
		return false, err
	}
	if pa != pb {
		return false, nil
	}
	// Full prefix next; same cost class, strictly stronger filter.
	fa, err := a.Fingerprint()
	if err != nil {
		return false, err
	}
	fb, err := b.Fingerprint()
	if err != nil {
		return false, err
	}
	if fa != fb {
		return false, nil
	}

	ma, err := c.molecule(a)
	if err != nil {
		return false, err
	}
	mb, err := c.molecule(b)
	if err != nil {
		return false, err
	}
	return c.isExactMolecules(ma, mb)
}

// isExactMolecules runs the toolkit side of exact matching.
func (c *Comparator) isExactMolecules(a, b Molecule) (bool, error) {
	params := MatchParams{
		Uniquify:          true,
		RecursionPossible: false,
		UseChirality:      c.useChirality,
		MaxMatches:        10,
		NumThreads:        1,
	}
	ab, err := c.toolkit.IsSubstructureMatch(a, b, params)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeMatchOracleFailed, "exact match: forward check failed")
	}
	ba, err := c.toolkit.IsSubstructureMatch(b, a, params)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeMatchOracleFailed, "exact match: reverse check failed")
	}
	if ab != ba {
		return false, nil
	}

	ca, err := c.toolkit.CanonicalForm(a, c.useChirality)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCanonicalFormFailed, "exact match: canonical form of left operand")
	}
	cb, err := c.toolkit.CanonicalForm(b, c.useChirality)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeCanonicalFormFailed, "exact match: canonical form of right operand")
	}
	return ca == cb, nil
}

// IsSubstructure reports whether the molecule in query occurs as a
// substructure of the molecule in target.  A screen rejection answers false
// without deserializing either payload.
func (c *Comparator) IsSubstructure(target, query Record) (bool, error) {
	ft, err := target.Fingerprint()
	if err != nil {
		return false, err
	}
	fq, err := query.Fingerprint()
	if err != nil {
		return false, err
	}
	if !MightContain(ft, fq) {
		return false, nil
	}

	mt, err := c.molecule(target)
	if err != nil {
		return false, err
	}
	mq, err := c.molecule(query)
	if err != nil {
		return false, err
	}
	return c.IsSubstructureMolecules(mt, mq)
}

// IsSubstructureMolecules answers the substructure question for already
// deserialized molecules, with no screening.  Recursion is enabled: the
// query side may be an arbitrary pattern.
func (c *Comparator) IsSubstructureMolecules(target, query Molecule) (bool, error) {
	params := MatchParams{
		Uniquify:          true,
		RecursionPossible: true,
		UseChirality:      false,
		MaxMatches:        10,
		NumThreads:        1,
	}
	ok, err := c.toolkit.IsSubstructureMatch(target, query, params)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeMatchOracleFailed, "substructure check failed")
	}
	return ok, nil
}

// SubstructCount returns the number of distinct occurrences of the query
// molecule in the target record.  A screen rejection returns zero without
// consulting the oracle.
func (c *Comparator) SubstructCount(target Record, query Record) (int, error) {
	ft, err := target.Fingerprint()
	if err != nil {
		return 0, err
	}
	fq, err := query.Fingerprint()
	if err != nil {
		return 0, err
	}
	if !MightContain(ft, fq) {
		return 0, nil
	}

	mt, err := c.molecule(target)
	if err != nil {
		return 0, err
	}
	mq, err := c.molecule(query)
	if err != nil {
		return 0, err
	}
	return c.SubstructCountMolecules(mt, mq)
}

// SubstructCountMolecules counts distinct occurrences of query in target
// for already deserialized molecules.  Unlike the boolean check, the count
// enumerates every unique match: MaxMatches is left at the oracle's default
// so the result is never capped.
func (c *Comparator) SubstructCountMolecules(target, query Molecule) (int, error) {
	params := MatchParams{
		Uniquify:          true,
		RecursionPossible: true,
		UseChirality:      false,
		NumThreads:        1,
	}
	n, err := c.toolkit.CountUniqueMatches(target, query, params)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeMatchOracleFailed, "substructure count failed")
	}
	return n, nil
}
