package screen

// This package computes fingerprints and screening verdicts; it never
// inspects molecular graphs itself.  Everything chemistry-shaped arrives
// through the capability interfaces below, implemented by a cheminformatics
// toolkit binding in production and by hand-built fakes in tests.

// Molecule is a parsed molecule as seen by the screening layer: a handle
// plus the four scalar observations the fingerprint needs.
type Molecule interface {
	// NumHeavyAtoms returns the number of non-hydrogen atoms.
	NumHeavyAtoms() int

	// NumRings returns the number of rings (SSSR count).
	NumRings() int

	// HasStereoCenters reports whether any atom or bond carries defined
	// stereochemistry.
	HasStereoCenters() bool

	// HasFormalCharges reports whether any atom carries a non-zero formal
	// charge.
	HasFormalCharges() bool
}

// Pattern is a compiled substructure query.  It is opaque to this package;
// only the MatchCounter that produced it can interpret it.
type Pattern interface{}

// MatchParams carries the knobs a substructure match operation honors.
type MatchParams struct {
	// Uniquify deduplicates matches that cover the same atom set.
	Uniquify bool

	// RecursionPossible permits recursive SMARTS evaluation.
	RecursionPossible bool

	// UseChirality makes atom and bond stereochemistry part of the match.
	UseChirality bool

	// MaxMatches caps the number of matches enumerated.  Zero means the
	// implementation's default.
	MaxMatches int

	// NumThreads caps match parallelism.  Zero means the implementation's
	// default; fingerprint encoding always pins this to 1.
	NumThreads int
}

// ScreeningMatchParams returns the fixed parameter set used for fragment
// counting during fingerprint encoding.  Encoding is only deterministic if
// every encoder uses exactly these values.
func ScreeningMatchParams() MatchParams {
	return MatchParams{
		Uniquify:          true,
		RecursionPossible: true,
		UseChirality:      false,
		MaxMatches:        10,
		NumThreads:        1,
	}
}

// MatchCounter compiles fragment queries and counts their occurrences in a
// molecule.  It is the only capability the fingerprint encoder needs.
type MatchCounter interface {
	// CompilePattern compiles a SMILES fragment into a reusable query.
	CompilePattern(smiles string) (Pattern, error)

	// CountMatches returns the number of times pattern occurs in mol under
	// the given parameters.
	CountMatches(mol Molecule, pattern Pattern, params MatchParams) (int, error)
}

// IsomorphismOracle answers the exact subgraph questions the fingerprint
// screen cannot: it is consulted only for candidates that survive screening.
type IsomorphismOracle interface {
	// IsSubstructureMatch reports whether query occurs as a substructure
	// of target.
	IsSubstructureMatch(target, query Molecule, params MatchParams) (bool, error)

	// CountUniqueMatches returns the number of distinct occurrences of
	// query in target.
	CountUniqueMatches(target, query Molecule, params MatchParams) (int, error)

	// CanonicalForm returns a canonical text serialization of mol.  Two
	// molecules are identical iff their canonical forms are equal.  When
	// useStereo is false, stereochemistry is excluded from the form.
	CanonicalForm(mol Molecule, useStereo bool) (string, error)
}

// Toolkit is the full cheminformatics capability surface: parsing and
// serialization on top of counting and isomorphism.  Production wires a
// single toolkit binding through all four roles.
type Toolkit interface {
	MatchCounter
	IsomorphismOracle

	// ParseMolecule parses a SMILES string into a Molecule.
	ParseMolecule(text string) (Molecule, error)

	// SerializeMolecule renders mol into the opaque payload bytes stored
	// inside a Record.
	SerializeMolecule(mol Molecule) ([]byte, error)

	// DeserializeMolecule reverses SerializeMolecule.
	DeserializeMolecule(data []byte) (Molecule, error)
}
