package screen

// ─────────────────────────────────────────────────────────────────────────────
// Containment screen
// ─────────────────────────────────────────────────────────────────────────────

// RejectReason identifies which screening check eliminated a candidate.
// It exists so callers can label metrics; the screen itself only needs the
// boolean verdict.
type RejectReason string

const (
	// ReasonNone means the candidate passed all checks.
	ReasonNone RejectReason = ""

	// ReasonSize: the target's heavy-atom bucket is below the query's.
	ReasonSize RejectReason = "size"

	// ReasonRings: the target's ring bucket is below the query's.
	ReasonRings RejectReason = "rings"

	// ReasonStereo: the query has stereocenters but the target has none.
	ReasonStereo RejectReason = "stereo"

	// ReasonCharge: the query has formal charges but the target has none.
	ReasonCharge RejectReason = "charge"

	// ReasonFragments: the query's fragment bits are not a subset of the
	// target's.
	ReasonFragments RejectReason = "fragments"
)

// Screen runs the five containment checks in order and reports the verdict
// together with the first check that failed.  Checks are ordered cheapest
// signal first; all of them are a handful of word operations, so the order
// matters only for the reject-reason statistics.
//
// The screen is sound: if query truly occurs as a substructure of target,
// Screen never rejects the pair.  Each check relies on a property that a
// substructure cannot exceed in its superstructure — fewer heavy atoms,
// fewer rings, stereo and charge implications, and monotone fragment
// counts.  The converse does not hold; a pass means "maybe", and the
// isomorphism oracle has the final word.
func Screen(target, query Fingerprint) (bool, RejectReason) {
	if target.HeavyAtomBucket() < query.HeavyAtomBucket() {
		return false, ReasonSize
	}
	if target.RingBucket() < query.RingBucket() {
		return false, ReasonRings
	}
	if query.HasStereoCenters() && !target.HasStereoCenters() {
		return false, ReasonStereo
	}
	if query.HasCharges() && !target.HasCharges() {
		return false, ReasonCharge
	}
	q := uint64(query) & FragMask
	if uint64(target)&q != q {
		return false, ReasonFragments
	}
	return true, ReasonNone
}

// MightContain reports whether a molecule with fingerprint target could
// possibly contain the molecule with fingerprint query as a substructure.
// False positives are expected and bounded by the oracle; false negatives
// do not occur.
func MightContain(target, query Fingerprint) bool {
	ok, _ := Screen(target, query)
	return ok
}
