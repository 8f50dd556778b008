package gksummary

import "math"

// QuantileToRank converts a quantile fraction into a 1-based rank over n
// observations: rank = max(ceil(phi*n), 1).
//
// For n = 4 the mapping is [0, 1/4] -> 1, (1/4, 2/4] -> 2, (2/4, 3/4] -> 3
// and (3/4, 1] -> 4. The caller is responsible for phi being in [0, 1].
func QuantileToRank(phi float64, n uint64) uint64 {
	rank := uint64(math.Ceil(phi * float64(n)))
	if rank < 1 {
		rank = 1
	}
	return rank
}

// RankToQuantile is the inverse of QuantileToRank for ranks in [1, n]:
// QuantileToRank(RankToQuantile(r, n), n) == r.
func RankToQuantile(rank, n uint64) float64 {
	if rank <= 1 {
		return 0
	}
	phi := float64(rank) / float64(n)
	// rank/n rounded up can make ceil(phi*n) land one past rank, e.g.
	// 7.0/100*100 = 7.000000000000001. Step phi down until the conversions
	// agree.
	for QuantileToRank(phi, n) > rank {
		phi = math.Nextafter(phi, 0)
	}
	return phi
}
