package blockdoc

// matchResult is the correspondence between an old block sequence and a
// freshly split new sequence.
//
// Invariants:
//   - keeps is ordered by new index and each old index appears at most once
//   - inserts and deletes are ordered ascending
//   - every new index appears in exactly one of keeps/inserts, every old
//     index in exactly one of keeps/deletes
type matchResult struct {
	keeps   []keepPair
	inserts []int // new indices with no hash match
	deletes []int // old indices left unclaimed
}

// keepPair records a new block matched to an old block with equal hash.
type keepPair struct {
	newIndex int
	oldIndex int

	// moved is set by the command generator's order-violation pass when
	// the block cannot be left in place.
	moved bool
}

// matchBlocks computes the keep/insert/delete correspondence by content
// hash. New blocks are processed in index order; each claims the unclaimed
// old index with equal hash that minimizes |oldIndex - newIndex|, preferring
// the smaller old index on a distance tie. This favors "the block stayed
// roughly where it was" when content is duplicated, e.g. two identical
// headings.
func matchBlocks(old []*Block, hashes []string) matchResult {
	byHash := make(map[string][]int, len(old))
	for i, b := range old {
		byHash[b.Hash] = append(byHash[b.Hash], i)
	}

	claimed := make([]bool, len(old))
	res := matchResult{}

	for newIdx, h := range hashes {
		candidates := byHash[h]
		best := -1
		bestDist := 0
		for _, oldIdx := range candidates {
			if claimed[oldIdx] {
				continue
			}
			dist := oldIdx - newIdx
			if dist < 0 {
				dist = -dist
			}
			if best == -1 || dist < bestDist {
				best = oldIdx
				bestDist = dist
			}
		}
		if best == -1 {
			res.inserts = append(res.inserts, newIdx)
			continue
		}
		claimed[best] = true
		res.keeps = append(res.keeps, keepPair{newIndex: newIdx, oldIndex: best})
	}

	for i := range old {
		if !claimed[i] {
			res.deletes = append(res.deletes, i)
		}
	}

	return res
}
