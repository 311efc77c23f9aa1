package rank

import "sort"

// DefaultTopN is the number of sections kept when the caller does not say.
const DefaultTopN = 5

// Rank orders scored sections by score, highest first, breaking ties by
// document, page and position in the document. Excluded and zero-score
// sections are dropped. The first topN receive importance ranks 1..topN.
func Rank(scored []ScoredSection, topN int) []ScoredSection {
	if topN <= 0 {
		topN = DefaultTopN
	}

	kept := make([]ScoredSection, 0, len(scored))
	for _, s := range scored {
		if s.Excluded || s.Score <= 0 {
			continue
		}
		kept = append(kept, s)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Section.DocIndex != b.Section.DocIndex {
			return a.Section.DocIndex < b.Section.DocIndex
		}
		if a.Section.Page != b.Section.Page {
			return a.Section.Page < b.Section.Page
		}
		return a.Section.Order < b.Section.Order
	})

	if len(kept) > topN {
		kept = kept[:topN]
	}
	for i := range kept {
		kept[i].ImportanceRank = i + 1
	}
	return kept
}
