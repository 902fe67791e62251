package screen

import (
	"fmt"
)

// Hand-built toolkit fakes.  Every chemistry answer in these tests is
// constructed explicitly; nothing here evaluates SMILES for real.

type fakeMol struct {
	smiles      string
	canonical   string // canonical form without stereo
	canonStereo string // canonical form with stereo; falls back to canonical
	heavyAtoms  int
	rings       int
	stereo      bool
	charged     bool
	fragCounts  map[string]int // match count per fragment SMILES
}

func (m *fakeMol) NumHeavyAtoms() int     { return m.heavyAtoms }
func (m *fakeMol) NumRings() int          { return m.rings }
func (m *fakeMol) HasStereoCenters() bool { return m.stereo }
func (m *fakeMol) HasFormalCharges() bool { return m.charged }

type pair struct{ target, query string }

type fakeToolkit struct {
	mols      map[string]*fakeMol // keyed by SMILES; payloads are SMILES bytes
	substruct map[pair]bool       // explicit relation; (x, x) defaults true
	counts    map[pair]int

	failPatterns map[string]bool // CompilePattern errors for these
	countErr     error           // forced CountMatches failure

	matchCalls       int
	countCalls       int
	deserializeCalls int
}

func newFakeToolkit(mols ...*fakeMol) *fakeToolkit {
	tk := &fakeToolkit{
		mols:         make(map[string]*fakeMol),
		substruct:    make(map[pair]bool),
		counts:       make(map[pair]int),
		failPatterns: make(map[string]bool),
	}
	for _, m := range mols {
		if m.canonical == "" {
			m.canonical = m.smiles
		}
		if m.canonStereo == "" {
			m.canonStereo = m.canonical
		}
		tk.mols[m.smiles] = m
	}
	return tk
}

func (tk *fakeToolkit) relate(target, query string, ok bool) {
	tk.substruct[pair{target, query}] = ok
}

func (tk *fakeToolkit) CompilePattern(smiles string) (Pattern, error) {
	if tk.failPatterns[smiles] {
		return nil, fmt.Errorf("fake: cannot compile %q", smiles)
	}
	return smiles, nil
}

func (tk *fakeToolkit) CountMatches(mol Molecule, pattern Pattern, _ MatchParams) (int, error) {
	if tk.countErr != nil {
		return 0, tk.countErr
	}
	return mol.(*fakeMol).fragCounts[pattern.(string)], nil
}

func (tk *fakeToolkit) IsSubstructureMatch(target, query Molecule, _ MatchParams) (bool, error) {
	tk.matchCalls++
	ts, qs := target.(*fakeMol).smiles, query.(*fakeMol).smiles
	if ok, set := tk.substruct[pair{ts, qs}]; set {
		return ok, nil
	}
	return ts == qs, nil
}

func (tk *fakeToolkit) CountUniqueMatches(target, query Molecule, params MatchParams) (int, error) {
	tk.countCalls++
	ts, qs := target.(*fakeMol).smiles, query.(*fakeMol).smiles
	n, set := tk.counts[pair{ts, qs}]
	if !set && ts == qs {
		n = 1
	}
	if params.MaxMatches > 0 && n > params.MaxMatches {
		n = params.MaxMatches
	}
	return n, nil
}

func (tk *fakeToolkit) CanonicalForm(mol Molecule, useStereo bool) (string, error) {
	m := mol.(*fakeMol)
	if useStereo {
		return m.canonStereo, nil
	}
	return m.canonical, nil
}

func (tk *fakeToolkit) ParseMolecule(text string) (Molecule, error) {
	if m, ok := tk.mols[text]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("fake: unknown SMILES %q", text)
}

func (tk *fakeToolkit) SerializeMolecule(mol Molecule) ([]byte, error) {
	return []byte(mol.(*fakeMol).smiles), nil
}

func (tk *fakeToolkit) DeserializeMolecule(data []byte) (Molecule, error) {
	tk.deserializeCalls++
	if m, ok := tk.mols[string(data)]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("fake: unknown payload %q", string(data))
}

// ── Stock molecules ──────────────────────────────────────────────────────────

// benzene: one aromatic ring, six heavy atoms, no stereo or charge.
func benzene() *fakeMol {
	return &fakeMol{
		smiles:     "c1ccccc1",
		heavyAtoms: 6,
		rings:      1,
		fragCounts: map[string]int{"c1ccccc1": 1},
	}
}

// toluene: benzene plus a methyl, so every benzene fragment survives and a
// few more appear.
func toluene() *fakeMol {
	return &fakeMol{
		smiles:     "Cc1ccccc1",
		heavyAtoms: 7,
		rings:      1,
		fragCounts: map[string]int{"c1ccccc1": 1, "Ccc": 2, "C": 1, "cc(c)c": 1},
	}
}
