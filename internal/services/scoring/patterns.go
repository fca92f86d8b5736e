package scoring

import "fmt"

// GroupKind classifies one required group of a card pattern
type GroupKind string

const (
	GroupPair     GroupKind = "pair"
	GroupPung     GroupKind = "pung"
	GroupKong     GroupKind = "kong"
	GroupQuint    GroupKind = "quint"
	GroupSequence GroupKind = "sequence"
	GroupSingle   GroupKind = "single"
)

// Group is one tile group a pattern requires. Values is the card
// notation: a single number for pung/kong/pair, a comma list for runs.
type Group struct {
	Kind   GroupKind
	Values string
}

// Pattern is one line of the NMJL card
type Pattern struct {
	Section     string
	Line        int
	Description string
	Groups      []Group
}

// Name is the stable identifier clients declare against, e.g.
// "CONSECUTIVE RUN-3".
func (p Pattern) Name() string {
	return fmt.Sprintf("%s-%d", p.Section, p.Line)
}

// DefaultCard is the built-in subset of the 2025 card used when no
// card is supplied at construction.
func DefaultCard() []Pattern {
	return []Pattern{
		{
			Section:     "CONSECUTIVE RUN",
			Line:        1,
			Description: "Run of five, pung, pung, pair in one suit",
			Groups: []Group{
				{Kind: GroupSequence, Values: "1,2,3,4,5"},
				{Kind: GroupPung, Values: "6"},
				{Kind: GroupPung, Values: "7"},
				{Kind: GroupPair, Values: "8"},
			},
		},
		{
			Section:     "CONSECUTIVE RUN",
			Line:        3,
			Description: "Two kongs flanking a run of four, pair",
			Groups: []Group{
				{Kind: GroupKong, Values: "1"},
				{Kind: GroupSequence, Values: "2,3,4,5"},
				{Kind: GroupKong, Values: "6"},
				{Kind: GroupPair, Values: "7"},
			},
		},
		{
			Section:     "ANY LIKE NUMBERS",
			Line:        1,
			Description: "Kongs and pungs of a like number across suits",
			Groups: []Group{
				{Kind: GroupKong, Values: "5"},
				{Kind: GroupKong, Values: "5"},
				{Kind: GroupPung, Values: "5"},
				{Kind: GroupPung, Values: "5"},
			},
		},
		{
			Section:     "13579",
			Line:        2,
			Description: "Odd pungs ascending with a kong cap",
			Groups: []Group{
				{Kind: GroupPung, Values: "1"},
				{Kind: GroupPung, Values: "3"},
				{Kind: GroupKong, Values: "5"},
				{Kind: GroupKong, Values: "7"},
			},
		},
		{
			Section:     "2468",
			Line:        1,
			Description: "Even pungs and kongs with an even pair",
			Groups: []Group{
				{Kind: GroupPung, Values: "2"},
				{Kind: GroupKong, Values: "4"},
				{Kind: GroupPung, Values: "6"},
				{Kind: GroupKong, Values: "8"},
				{Kind: GroupPair, Values: "2"},
			},
		},
		{
			Section:     "ALL PAIRS",
			Line:        1,
			Description: "Seven pairs, any tiles",
		},
	}
}
