package scoring

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/openmahjong/lounge-go/internal/model"
)

// Evaluator scores declared hands against named patterns. Callers treat
// it as opaque: a declaration is either valid with a point total or not.
type Evaluator interface {
	// EvaluateHand checks a hand against one named pattern. valid is true
	// only when every tile in the hand is consumed by the pattern.
	EvaluateHand(hand []model.Tile, pattern string) (valid bool, points int, err error)
	// BestPatterns returns the highest-scoring pattern names for a hand,
	// with the tile count they match. Zero-score patterns are omitted.
	BestPatterns(hand []model.Tile) ([]string, int)
}

// NMJLEvaluator scores hands against the National Mah Jongg League card
// by matching each pattern group and consuming tiles from the hand.
type NMJLEvaluator struct {
	patterns map[string]Pattern
	ordered  []string
}

// NewNMJLEvaluator creates an evaluator over the given card. A nil or
// empty card falls back to the built-in catalog.
func NewNMJLEvaluator(card []Pattern) *NMJLEvaluator {
	if len(card) == 0 {
		card = DefaultCard()
	}
	e := &NMJLEvaluator{
		patterns: make(map[string]Pattern, len(card)),
		ordered:  make([]string, 0, len(card)),
	}
	for _, p := range card {
		name := p.Name()
		e.patterns[name] = p
		e.ordered = append(e.ordered, name)
	}
	return e
}

func (e *NMJLEvaluator) EvaluateHand(hand []model.Tile, pattern string) (bool, int, error) {
	p, ok := e.patterns[pattern]
	if !ok {
		return false, 0, fmt.Errorf("%w: %q", model.ErrPatternNotFound, pattern)
	}
	score := scoreHand(countTiles(hand), p)
	return score == len(hand) && len(hand) > 0, score, nil
}

func (e *NMJLEvaluator) BestPatterns(hand []model.Tile) ([]string, int) {
	counts := countTiles(hand)
	best := 0
	var names []string
	for _, name := range e.ordered {
		score := scoreHand(counts, e.patterns[name])
		if score == 0 {
			continue
		}
		if score > best {
			best = score
			names = names[:0]
		}
		if score == best {
			names = append(names, name)
		}
	}
	return names, best
}

var _ Evaluator = (*NMJLEvaluator)(nil)

// tile is the parsed form of a model.Tile: a numbered suit tile.
// Flowers, winds, dragons and jokers parse to ok=false and only match
// through their dedicated group kinds.
type tile struct {
	value int
	suit  byte
}

var suits = []byte{'D', 'C', 'B'}

func parseTile(t model.Tile) (tile, bool) {
	s := strings.ToUpper(strings.TrimSpace(string(t)))
	if len(s) < 2 {
		return tile{}, false
	}
	v, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || v < 1 || v > 9 {
		return tile{}, false
	}
	switch s[len(s)-1] {
	case 'D', 'C', 'B':
		return tile{value: v, suit: s[len(s)-1]}, true
	}
	return tile{}, false
}

func countTiles(hand []model.Tile) map[tile]int {
	counts := make(map[tile]int, len(hand))
	for _, t := range hand {
		if pt, ok := parseTile(t); ok {
			counts[pt]++
		}
	}
	return counts
}

// groupTileCost orders groups largest-first so big sets claim tiles
// before pairs and singles fragment them.
func groupTileCost(k GroupKind) int {
	switch k {
	case GroupQuint:
		return 5
	case GroupKong:
		return 4
	case GroupPung, GroupSequence:
		return 3
	case GroupPair:
		return 2
	case GroupSingle:
		return 1
	}
	return 0
}

// scoreHand counts how many tiles of the hand the pattern consumes.
// Each group claims its tiles from a working copy so no tile is counted
// twice.
func scoreHand(counts map[tile]int, p Pattern) int {
	remaining := make(map[tile]int, len(counts))
	for k, v := range counts {
		remaining[k] = v
	}

	// ALL PAIRS ignores values entirely: every pair in the hand counts
	if p.Section == "ALL PAIRS" {
		score := 0
		for _, n := range remaining {
			score += (n / 2) * 2
		}
		return score
	}

	groups := append([]Group(nil), p.Groups...)
	sort.SliceStable(groups, func(i, j int) bool {
		return groupTileCost(groups[i].Kind) > groupTileCost(groups[j].Kind)
	})

	score := 0
	for _, g := range groups {
		score += consumeGroup(remaining, g)
	}
	return score
}

func consumeGroup(remaining map[tile]int, g Group) int {
	switch g.Kind {
	case GroupPung, GroupKong, GroupPair, GroupQuint:
		need := groupTileCost(g.Kind)
		v, err := strconv.Atoi(g.Values)
		if err != nil {
			return 0
		}
		for _, suit := range suits {
			t := tile{value: v, suit: suit}
			if remaining[t] >= need {
				remaining[t] -= need
				return need
			}
		}
	case GroupSequence:
		values, ok := parseSequence(g.Values)
		if !ok {
			return 0
		}
		for _, suit := range suits {
			if consumeRun(remaining, values[0], len(values), suit) {
				return len(values)
			}
		}
	}
	return 0
}

// parseSequence accepts only consecutive runs; card notations like
// "2,0,2,5" describe year digits, not runs, and never match.
func parseSequence(spec string) ([]int, bool) {
	parts := strings.Split(spec, ",")
	values := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, false
		}
		values = append(values, v)
	}
	for i := 1; i < len(values); i++ {
		if values[i] != values[i-1]+1 {
			return nil, false
		}
	}
	return values, len(values) > 0
}

func consumeRun(remaining map[tile]int, start, length int, suit byte) bool {
	for i := 0; i < length; i++ {
		if remaining[tile{value: start + i, suit: suit}] < 1 {
			return false
		}
	}
	for i := 0; i < length; i++ {
		remaining[tile{value: start + i, suit: suit}]--
	}
	return true
}
