package valueobject

import (
	"fmt"
	"strings"
)

// Visibility represents a Swift access-control level. Levels form a total
// order from most restrictive to most permissive.
type Visibility string

const (
	VisibilityPrivate     Visibility = "private"
	VisibilityFilePrivate Visibility = "fileprivate"
	VisibilityInternal    Visibility = "internal"
	VisibilityPackage     Visibility = "package"
	VisibilityPublic      Visibility = "public"
	VisibilityOpen        Visibility = "open"
)

// DefaultVisibility is the level assumed for declarations that carry no
// explicit access modifier.
const DefaultVisibility = VisibilityInternal

var visibilityOrdinals = map[Visibility]int{
	VisibilityPrivate:     0,
	VisibilityFilePrivate: 1,
	VisibilityInternal:    2,
	VisibilityPackage:     3,
	VisibilityPublic:      4,
	VisibilityOpen:        5,
}

// ParseVisibility converts a modifier keyword into a Visibility. Setter
// scopes such as "private(set)" resolve to their base level. Unknown
// keywords return an error so callers can fall back to the default level.
func ParseVisibility(keyword string) (Visibility, error) {
	base := keyword
	if idx := strings.IndexByte(base, '('); idx >= 0 {
		base = base[:idx]
	}
	v := Visibility(strings.TrimSpace(base))
	if _, ok := visibilityOrdinals[v]; !ok {
		return "", fmt.Errorf("not an access modifier: %q", keyword)
	}
	return v, nil
}

// IsVisibilityKeyword reports whether the keyword names an access level,
// including setter-scoped forms like "public(set)".
func IsVisibilityKeyword(keyword string) bool {
	_, err := ParseVisibility(keyword)
	return err == nil
}

// ResolveVisibility returns the access level a modifier list declares.
// Setter-scoped forms such as "private(set)" restrict the setter only and
// never lower the declaration's own level, so they are skipped. Without a
// plain access modifier the default level applies.
func ResolveVisibility(keywords []string) Visibility {
	for _, keyword := range keywords {
		if strings.ContainsRune(keyword, '(') {
			continue
		}
		if v, err := ParseVisibility(keyword); err == nil {
			return v
		}
	}
	return DefaultVisibility
}

// Ordinal returns the position of the level in the access-control order.
// Unknown values rank below private so they never pass a filter.
func (v Visibility) Ordinal() int {
	ord, ok := visibilityOrdinals[v]
	if !ok {
		return -1
	}
	return ord
}

// AtLeast reports whether v is at least as permissive as other.
func (v Visibility) AtLeast(other Visibility) bool {
	return v.Ordinal() >= other.Ordinal()
}

// IsValid reports whether v is one of the defined access levels.
func (v Visibility) IsValid() bool {
	_, ok := visibilityOrdinals[v]
	return ok
}

func (v Visibility) String() string {
	return string(v)
}
