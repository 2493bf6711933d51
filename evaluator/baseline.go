package evaluator

// BaselineFn computes the trust threshold for round r under fault tolerance bound f
type BaselineFn func(r, f uint64) float64

// QuorumBaseline scales the round counter by the quorum ratio (2f+1)/(3f+1)
func QuorumBaseline(r, f uint64) float64 {
	return float64(r) * float64(2*f+1) / float64(3*f+1)
}
