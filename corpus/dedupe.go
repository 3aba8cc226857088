package corpus

import "sort"

// DefaultThreshold is the same-domain title similarity above which two
// records collapse into one cluster.
const DefaultThreshold = 90

// crossDomainThreshold catches syndicated or mirrored titles: at this
// similarity two records collapse regardless of domain.
const crossDomainThreshold = 98

// Deduplicate partitions records into clusters of near-duplicates and keeps
// one representative per cluster. threshold is the same-domain similarity
// bound in [0,100]; values <= 0 fall back to DefaultThreshold.
//
// Records are scanned in recency order (date_pub descending, unknown dates
// last, ties keeping their relative input order), so the representative of a
// cluster is always its most recent member. A later record j is absorbed
// into representative i when both share a non-empty domain and
// TokenSetRatio >= threshold, or when TokenSetRatio >= 98 regardless of
// domain. The clustering is deliberately greedy, not transitive: a chain of
// slowly drifting titles may keep more than one representative. The output
// keeps the sorted order.
func Deduplicate(records []Record, threshold int) []Record {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return moreRecent(sorted[i], sorted[j])
	})

	absorbed := make([]bool, len(sorted))
	kept := make([]Record, 0, len(sorted))
	for i := range sorted {
		if absorbed[i] {
			continue
		}
		rep := sorted[i]
		for j := i + 1; j < len(sorted); j++ {
			if absorbed[j] {
				continue
			}
			score := TokenSetRatio(rep.Titre, sorted[j].Titre)
			sameDomain := rep.Domain != "" && sorted[j].Domain != "" &&
				rep.Domain == sorted[j].Domain
			if (sameDomain && score >= float64(threshold)) ||
				score >= crossDomainThreshold {
				absorbed[j] = true
			}
		}
		kept = append(kept, rep)
	}
	return kept
}

// moreRecent orders records for deduplication: newest first, unknown dates
// after every dated record. Equal dates (and pairs of unknown dates) report
// false so the stable sort preserves input order.
func moreRecent(a, b Record) bool {
	if a.DatePub.IsZero() {
		return false
	}
	if b.DatePub.IsZero() {
		return true
	}
	return a.DatePub.After(b.DatePub)
}
