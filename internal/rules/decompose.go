package rules

import (
	"log"
	"sort"

	"tractor-game/internal/shared"
)

// cardPair is a pairKey-matched couple of cards inside one suit group.
type cardPair struct {
	cards [2]shared.Card
}

// idKey joins the sorted card ids; it is the deterministic tie-break between
// equally strong pairs.
func (p cardPair) idKey() string {
	a, b := p.cards[0].ID, p.cards[1].ID
	if b < a {
		a, b = b, a
	}
	return a + "," + b
}

// pairUp splits cards into pairKey pairs and leftover singles, preserving the
// incoming order. In a double deck a pair key occurs at most twice.
func pairUp(cards []shared.Card) ([]cardPair, []shared.Card) {
	pending := map[string]int{}
	used := make([]bool, len(cards))
	var pairs []cardPair
	for i, c := range cards {
		key := shared.PairKey(c)
		if j, ok := pending[key]; ok {
			pairs = append(pairs, cardPair{cards: [2]shared.Card{cards[j], c}})
			used[i], used[j] = true, true
			delete(pending, key)
			continue
		}
		pending[key] = i
	}
	var singles []shared.Card
	for i, c := range cards {
		if !used[i] {
			singles = append(singles, c)
		}
	}
	return pairs, singles
}

// seqPair couples a pair with its adjacency rank.
type seqPair struct {
	pair cardPair
	seq  int
}

// seqPairsOf returns the pairs that have an adjacency rank, plus those that do
// not, sorted ascending by (seq, idKey).
func seqPairsOf(pairs []cardPair, ctx Context) ([]seqPair, []cardPair) {
	var withSeq []seqPair
	var withOut []cardPair
	for _, pr := range pairs {
		if seq, ok := ctx.Seq(pr.cards[0]); ok {
			withSeq = append(withSeq, seqPair{pair: pr, seq: seq})
		} else {
			withOut = append(withOut, pr)
		}
	}
	sort.Slice(withSeq, func(i, j int) bool {
		if withSeq[i].seq != withSeq[j].seq {
			return withSeq[i].seq < withSeq[j].seq
		}
		return withSeq[i].pair.idKey() < withSeq[j].pair.idKey()
	})
	return withSeq, withOut
}

// bestRun finds the longest run of strictly consecutive adjacency ranks among
// the given pairs, preferring the highest-ending run on equal length. Pairs
// sharing an adjacency rank contribute one slot per rank; the lexically first
// pair fills it. Returns the indices of the chosen pairs, low to high.
func bestRun(pairs []seqPair) []int {
	// one representative index per distinct seq, input already sorted
	repr := make([]int, 0, len(pairs))
	lastSeq := 0
	for i, sp := range pairs {
		if len(repr) == 0 || sp.seq != lastSeq {
			repr = append(repr, i)
			lastSeq = sp.seq
		}
	}

	var best []int
	for start := 0; start < len(repr); {
		end := start
		for end+1 < len(repr) && pairs[repr[end+1]].seq == pairs[repr[end]].seq+1 {
			end++
		}
		run := repr[start : end+1]
		// prefer longer; on equal length prefer the higher-ending run
		if len(run) > len(best) || (len(run) == len(best) && len(best) > 0 &&
			pairs[run[len(run)-1]].seq > pairs[best[len(best)-1]].seq) {
			best = append([]int(nil), run...)
		}
		start = end + 1
	}
	return best
}

// removeIndices drops the given sorted indices from pairs.
func removeIndices(pairs []seqPair, idx []int) []seqPair {
	drop := map[int]bool{}
	for _, i := range idx {
		drop[i] = true
	}
	out := make([]seqPair, 0, len(pairs)-len(idx))
	for i, sp := range pairs {
		if !drop[i] {
			out = append(out, sp)
		}
	}
	return out
}

// BestDecomposition produces the deterministic maximal decomposition of a
// same-suit-group card set: greedily extracted tractors (longest first, then
// highest), then pairs by descending strength, then singles by descending
// strength. The ordering and its tie-breaks feed throw arbitration and
// punishment selection, so they must never drift.
//
// Mixed suit groups are a programmer error here, not a user error: callers
// must pre-validate, and violations are fatal.
func BestDecomposition(cards []shared.Card, ctx Context) []Pattern {
	if len(cards) == 0 {
		return nil
	}
	group, ok := uniformGroup(cards, ctx)
	if !ok {
		log.Panicf("BestDecomposition called with mixed suit groups: %v", cards)
	}

	sorted := sortByKeyDesc(cards, ctx)
	pairs, singles := pairUp(sorted)
	withSeq, plainPairs := seqPairsOf(pairs, ctx)

	var parts []Pattern
	for {
		run := bestRun(withSeq)
		if len(run) < 2 {
			break
		}
		var tractorCards []shared.Card
		for _, i := range run {
			tractorCards = append(tractorCards, withSeq[i].pair.cards[0], withSeq[i].pair.cards[1])
		}
		tractorCards = sortByKeyDesc(tractorCards, ctx)
		parts = append(parts, Pattern{
			Kind:      Tractor,
			SuitGroup: group,
			Size:      len(tractorCards),
			Cards:     tractorCards,
			TopKey:    ctx.Key(tractorCards[0]),
			Length:    len(run),
		})
		withSeq = removeIndices(withSeq, run)
	}

	loosePairs := plainPairs
	for _, sp := range withSeq {
		loosePairs = append(loosePairs, sp.pair)
	}
	sort.Slice(loosePairs, func(i, j int) bool {
		ki, kj := ctx.Key(loosePairs[i].cards[0]), ctx.Key(loosePairs[j].cards[0])
		if ki != kj {
			return ki > kj
		}
		return loosePairs[i].idKey() < loosePairs[j].idKey()
	})
	for _, pr := range loosePairs {
		pc := sortByKeyDesc(pr.cards[:], ctx)
		parts = append(parts, Pattern{
			Kind:      Pair,
			SuitGroup: group,
			Size:      2,
			Cards:     pc,
			TopKey:    ctx.Key(pc[0]),
		})
	}

	// singles already strongest-first from the sorted input
	for _, c := range singles {
		parts = append(parts, Pattern{
			Kind:      Single,
			SuitGroup: group,
			Size:      1,
			Cards:     []shared.Card{c},
			TopKey:    ctx.Key(c),
		})
	}
	return parts
}
