package search

import (
	"sort"

	"github.com/fyrsmithlabs/docsearchd/internal/chunker"
	"github.com/fyrsmithlabs/docsearchd/internal/vectorstore"
)

// fused is one candidate with its reciprocal rank fusion score.
type fused struct {
	Chunk chunker.Chunk
	// Score is normalized to [0, 1]: 1.0 means rank 1 in every list.
	Score float32
}

// fuseRRF merges ranked candidate lists with reciprocal rank fusion.
//
// Each appearance contributes 1/(rank+k) with 1-based ranks; absence
// from a list contributes nothing. Fusion is rank-based, so the
// incomparable score scales of the two vector spaces never need
// normalizing against each other. The summed score is then divided by
// the maximum attainable sum, len(lists)/(1+k), to land in [0, 1]
// where a fixed threshold is meaningful. The division is monotonic and
// cannot change the ranking.
//
// Ties are broken by chunk id ascending for deterministic output.
func fuseRRF(k int, lists ...[]vectorstore.Candidate) []fused {
	if k <= 0 {
		k = 60
	}

	type entry struct {
		chunk chunker.Chunk
		score float64
	}
	byID := make(map[string]*entry)

	for _, list := range lists {
		for i, candidate := range list {
			rank := i + 1
			contribution := 1.0 / float64(rank+k)
			if e, ok := byID[candidate.Chunk.ChunkID]; ok {
				e.score += contribution
			} else {
				byID[candidate.Chunk.ChunkID] = &entry{
					chunk: candidate.Chunk,
					score: contribution,
				}
			}
		}
	}

	maxScore := float64(len(lists)) / float64(1+k)
	out := make([]fused, 0, len(byID))
	for _, e := range byID {
		out = append(out, fused{
			Chunk: e.chunk,
			Score: float32(e.score / maxScore),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Chunk.ChunkID < out[j].Chunk.ChunkID
	})
	return out
}
