package valueobject

import (
	"fmt"
	"strconv"
	"strings"
)

// DeclarationPath addresses one node in an overview forest. Components are
// 1-based sibling indices, counted over emitted declarations only, so a
// path stays valid for the filter level it was produced under.
type DeclarationPath []int

// ParseDeclarationPath parses a dot-joined path such as "2.1.3".
func ParseDeclarationPath(raw string) (DeclarationPath, error) {
	components, err := parsePathComponents(raw)
	if err != nil {
		return nil, err
	}
	return DeclarationPath(components), nil
}

// String renders the path in its dot-joined form.
func (p DeclarationPath) String() string {
	return joinPathComponents(p)
}

// Child returns the path extended by a 1-based child index.
func (p DeclarationPath) Child(index int) DeclarationPath {
	child := make(DeclarationPath, len(p)+1)
	copy(child, p)
	child[len(p)] = index
	return child
}

// Parent returns the path without its last component, and false for a
// top-level path.
func (p DeclarationPath) Parent() (DeclarationPath, bool) {
	if len(p) <= 1 {
		return nil, false
	}
	parent := make(DeclarationPath, len(p)-1)
	copy(parent, p[:len(p)-1])
	return parent, true
}

// TokenAddress addresses one token in a token stream. Tokens are numbered
// by a single flat counter across the whole file, so a canonical address
// has exactly one component. Dotted forms parse for symmetry with
// declaration paths but can never match a token.
type TokenAddress []int

// ParseTokenAddress parses a token address such as "17".
func ParseTokenAddress(raw string) (TokenAddress, error) {
	components, err := parsePathComponents(raw)
	if err != nil {
		return nil, err
	}
	return TokenAddress(components), nil
}

// String renders the address in its dot-joined form.
func (a TokenAddress) String() string {
	return joinPathComponents(a)
}

// TokenIndex returns the addressed 1-based token index. It reports false
// for multi-component addresses, which address nothing.
func (a TokenAddress) TokenIndex() (int, bool) {
	if len(a) != 1 {
		return 0, false
	}
	return a[0], true
}

func parsePathComponents(raw string) ([]int, error) {
	if raw == "" {
		return nil, fmt.Errorf("address cannot be empty")
	}
	parts := strings.Split(raw, ".")
	components := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("address component %q is not a number", part)
		}
		if n < 1 {
			return nil, fmt.Errorf("address component %d must be positive", n)
		}
		components = append(components, n)
	}
	return components, nil
}

func joinPathComponents(components []int) string {
	parts := make([]string, len(components))
	for i, c := range components {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, ".")
}

// SelectionStrategy picks one token out of the tokens found on a line.
type SelectionStrategy string

const (
	SelectFirst           SelectionStrategy = "first"
	SelectLast            SelectionStrategy = "last"
	SelectLargestSpan     SelectionStrategy = "largest-span"
	SelectSmallestSpan    SelectionStrategy = "smallest-span"
	SelectNearestToColumn SelectionStrategy = "nearest-to-column"
)

// ParseSelectionStrategy validates and normalizes a strategy name.
func ParseSelectionStrategy(raw string) (SelectionStrategy, error) {
	s := SelectionStrategy(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case SelectFirst, SelectLast, SelectLargestSpan, SelectSmallestSpan, SelectNearestToColumn:
		return s, nil
	case "":
		return SelectFirst, nil
	default:
		return "", fmt.Errorf("unknown selection strategy %q", raw)
	}
}

// TokensOnLine returns the tokens whose text starts on the zero-based row,
// in stream order. Rows outside the file yield an empty result. A token is
// on the row its first content byte falls on, so a multi-line token is
// found only via its first line.
func TokensOnLine(tokens []Token, row uint32) []Token {
	var result []Token
	for _, tok := range tokens {
		if tok.Text == "" {
			continue
		}
		if tok.StartPos.Row == row {
			result = append(result, tok)
		}
	}
	return result
}

// SelectToken applies a strategy to the tokens found on one line. The
// column only matters for nearest-to-column and is zero-based. It reports
// false when no token is available.
func SelectToken(tokens []Token, strategy SelectionStrategy, column uint32) (Token, bool) {
	if len(tokens) == 0 {
		return Token{}, false
	}

	switch strategy {
	case SelectLast:
		return tokens[len(tokens)-1], true
	case SelectLargestSpan:
		best := tokens[0]
		for _, tok := range tokens[1:] {
			if tok.ByteLength() > best.ByteLength() {
				best = tok
			}
		}
		return best, true
	case SelectSmallestSpan:
		best := tokens[0]
		for _, tok := range tokens[1:] {
			if tok.ByteLength() < best.ByteLength() {
				best = tok
			}
		}
		return best, true
	case SelectNearestToColumn:
		best := tokens[0]
		bestDistance := columnDistance(best, column)
		for _, tok := range tokens[1:] {
			if d := columnDistance(tok, column); d < bestDistance {
				best = tok
				bestDistance = d
			}
		}
		return best, true
	default:
		return tokens[0], true
	}
}

// columnDistance measures how far a column lies from a token on the same
// line. Columns inside the token are at distance zero.
func columnDistance(tok Token, column uint32) uint32 {
	start := tok.StartPos.Column
	end := tok.EndPos.Column
	if tok.StartPos.Row != tok.EndPos.Row {
		end = MaxUint32
	}
	if column < start {
		return start - column
	}
	if column >= end {
		return column - end + 1
	}
	return 0
}
