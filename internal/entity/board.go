package entity

import "strings"

// BoardCategory is the listing segment a stock belongs to, derived from its
// numeric code prefix.
type BoardCategory string

const (
	BoardShanghaiMain BoardCategory = "shMain"
	BoardSTAR         BoardCategory = "star"
	BoardShenzhenMain BoardCategory = "szMain"
	BoardSME          BoardCategory = "sme"
	BoardChiNext      BoardCategory = "chinext"
	BoardBeijing      BoardCategory = "bj"
	BoardUnclassified BoardCategory = ""
)

// boardPrefixes maps each category to its code prefixes. The prefixes are
// mutually exclusive, so evaluation order does not change the result.
var boardPrefixes = []struct {
	category BoardCategory
	prefixes []string
}{
	{BoardShanghaiMain, []string{"600", "601", "603", "605"}},
	{BoardSTAR, []string{"688"}},
	{BoardShenzhenMain, []string{"000", "001"}},
	{BoardSME, []string{"002", "003"}},
	{BoardChiNext, []string{"300", "301"}},
	{BoardBeijing, []string{"920", "830", "430"}},
}

// ClassifyBoard maps a stock code to its board category. Codes that match no
// known prefix classify as BoardUnclassified and are excluded from every
// board-filtered view.
func ClassifyBoard(code string) BoardCategory {
	for _, b := range boardPrefixes {
		for _, p := range b.prefixes {
			if strings.HasPrefix(code, p) {
				return b.category
			}
		}
	}
	return BoardUnclassified
}

// BoardSet is a set of enabled board categories. An empty set yields an
// empty board-filtered view, not an unfiltered one.
type BoardSet map[BoardCategory]struct{}

// AllBoardCategories lists the classifiable categories in display order.
func AllBoardCategories() []BoardCategory {
	cats := make([]BoardCategory, 0, len(boardPrefixes))
	for _, b := range boardPrefixes {
		cats = append(cats, b.category)
	}
	return cats
}

// ParseBoardSet parses a comma-separated boards parameter. Unknown names are
// ignored. The empty string parses to an empty set.
func ParseBoardSet(csv string) BoardSet {
	set := make(BoardSet)
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		for _, b := range boardPrefixes {
			if string(b.category) == part {
				set[b.category] = struct{}{}
			}
		}
	}
	return set
}

// Contains reports whether the category is enabled. BoardUnclassified is
// never contained.
func (s BoardSet) Contains(c BoardCategory) bool {
	if c == BoardUnclassified {
		return false
	}
	_, ok := s[c]
	return ok
}

// String renders the set as the comma-separated boards parameter, in the
// fixed category order.
func (s BoardSet) String() string {
	var parts []string
	for _, b := range boardPrefixes {
		if _, ok := s[b.category]; ok {
			parts = append(parts, string(b.category))
		}
	}
	return strings.Join(parts, ",")
}

// ExchangeSymbol maps a bare stock code to the exchange-prefixed symbol the
// daily snapshots are keyed by ("600000" -> "sh600000").
func ExchangeSymbol(code string) string {
	switch {
	case strings.HasPrefix(code, "6"):
		return "sh" + code
	case strings.HasPrefix(code, "0"), strings.HasPrefix(code, "3"):
		return "sz" + code
	case strings.HasPrefix(code, "8"), strings.HasPrefix(code, "4"), strings.HasPrefix(code, "9"):
		return "bj" + code
	}
	return "sz" + code
}
