package screen

// FragmentPattern pairs a SMILES fragment with the match-count thresholds
// that each earn one fingerprint bit.  Thresholds are kept in catalog order,
// not sorted: the position of a threshold within its pattern, combined with
// the position of the pattern within the catalog, fixes the bit it owns.
type FragmentPattern struct {
	// SMILES is the fragment query, compiled once at encoder construction.
	SMILES string

	// Thresholds lists minimum match counts.  Threshold t sets its bit when
	// the fragment matches the molecule at least t times.
	Thresholds []uint8
}

// FragmentLibrary is the ordered catalog of fragment patterns behind bits
// 0 through 54 of the screening fingerprint.  The fragments and counts were
// selected by Andrew Dalke from frequency analysis of PubChem structures:
// http://www.dalkescientific.com/writings/diary/archive/2012/06/11/optimizing_substructure_keys.html
//
// The order is load-bearing.  Bit 0 is "O appears ≥2 times", bit 1 is
// "O appears ≥3 times", and so on through the catalog; stored fingerprints
// only stay comparable across versions if neither the order nor the counts
// change.  Appending is the only safe evolution.
var FragmentLibrary = []FragmentPattern{
	{"O", []uint8{2, 3, 1, 4, 5}},
	{"Ccc", []uint8{2, 4}},
	{"CCN", []uint8{1}},
	{"cnc", []uint8{1}},
	{"cN", []uint8{1}},
	{"C=O", []uint8{1}},
	{"CCC", []uint8{1}},
	{"S", []uint8{1}},
	{"c1ccccc1", []uint8{1, 2}},
	{"N", []uint8{2, 3, 1}},
	{"C=C", []uint8{1}},
	{"nn", []uint8{1}},
	{"CO", []uint8{2}},
	{"Ccn", []uint8{1, 2}},
	{"CCCCC", []uint8{1}},
	{"cc(c)c", []uint8{1}},
	{"CNC", []uint8{2}},
	{"s", []uint8{1}},
	{"CC(C)C", []uint8{1}},
	{"o", []uint8{1}},
	{"cncnc", []uint8{1}},
	{"C=N", []uint8{1}},
	{"CC=O", []uint8{2, 3}},
	{"Cl", []uint8{1}},
	{"ccncc", []uint8{2}},
	{"CCCCCC", []uint8{6}},
	{"F", []uint8{1}},
	{"CCOC", []uint8{3}},
	{"c(cn)n", []uint8{1}},
	{"C", []uint8{9, 6, 1}},
	{"CC=C(C)C", []uint8{1}},
	{"c1ccncc1", []uint8{1}},
	{"CC(C)N", []uint8{1}},
	{"CC", []uint8{1}},
	{"CCC(C)O", []uint8{4}},
	{"ccc(cc)n", []uint8{2}},
	{"C1CCCC1", []uint8{1}},
	{"CNCN", []uint8{1}},
	{"cncn", []uint8{3}},
	{"CSC", []uint8{1}},
	{"CCNCCCN", []uint8{1}},
	{"CccC", []uint8{1}},
	{"ccccc(c)c", []uint8{3}},
}

// LibraryBitCount returns the total number of fragment bits the catalog
// defines.  It must equal FragmentBitCount; NewEncoder enforces this.
func LibraryBitCount() int {
	n := 0
	for _, p := range FragmentLibrary {
		n += len(p.Thresholds)
	}
	return n
}
