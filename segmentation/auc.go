package segmentation

import "sort"

// scoreGroup counts the positive and negative samples that received the
// same classifier confidence.
type scoreGroup struct {
	score     float64
	positives int
	negatives int
}

// rocAUC computes the area under the ROC curve from groups of equally
// scored samples, counting ties between a positive and a negative as
// half a correct ordering. It returns ChanceScore when either class is
// empty. The groups slice is sorted in place.
func rocAUC(groups []scoreGroup) float64 {
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].score < groups[j].score })

	var (
		positives, negatives int
		below                int
		u                    float64
	)

	for lo := 0; lo < len(groups); {
		pos, neg := 0, 0
		hi := lo
		for ; hi < len(groups) && groups[hi].score == groups[lo].score; hi++ {
			pos += groups[hi].positives
			neg += groups[hi].negatives
		}

		u += float64(pos) * (float64(below) + 0.5*float64(neg))
		below += neg
		positives += pos
		negatives += neg
		lo = hi
	}

	if positives == 0 || negatives == 0 {
		return ChanceScore
	}

	return u / (float64(positives) * float64(negatives))
}
