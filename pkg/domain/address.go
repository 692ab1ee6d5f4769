package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Address is the structural position of a node: the 0-indexed position among
// its siblings at every tree level. The root has the empty address.
type Address []int

// String renders the address as "[3:1:0]".
func (a Address) String() string {
	parts := make([]string, len(a))
	for i, idx := range a {
		parts[i] = strconv.Itoa(idx)
	}
	return "[" + strings.Join(parts, ":") + "]"
}

// Child returns a new address for the i-th child of a.
func (a Address) Child(i int) Address {
	child := make(Address, len(a)+1)
	copy(child, a)
	child[len(a)] = i
	return child
}

// HasPrefix reports whether a lies inside the subtree rooted at p.
func (a Address) HasPrefix(p Address) bool {
	if len(p) > len(a) {
		return false
	}
	for i := range p {
		if a[i] != p[i] {
			return false
		}
	}
	return true
}

// Equal reports whether both addresses point to the same node.
func (a Address) Equal(b Address) bool {
	return len(a) == len(b) && a.HasPrefix(b)
}

// MarshalText encodes the address in its bracket form.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText decodes the bracket form produced by MarshalText.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAddress parses "[3:1:0]" (brackets optional).
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if s == "" {
		return Address{}, nil
	}
	parts := strings.Split(s, ":")
	addr := make(Address, 0, len(parts))
	for _, p := range parts {
		idx, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("invalid address %q: segment %q is not a non-negative index", s, p)
		}
		addr = append(addr, idx)
	}
	return addr, nil
}

// Selector is an externally supplied selective-run request: either
// "<file>[i:j:k]" (structural address) or "<file>:<line>".
type Selector struct {
	File    string
	Address Address
	Line    int
}

// HasAddress reports whether the selector carries a structural address.
func (s Selector) HasAddress() bool { return s.Address != nil }

func (s Selector) String() string {
	if s.HasAddress() {
		return s.File + s.Address.String()
	}
	return fmt.Sprintf("%s:%d", s.File, s.Line)
}

// ParseSelector parses "<file>[i:j:k]", "[i:j:k]" or "<file>:<line>".
func ParseSelector(s string) (Selector, error) {
	s = strings.TrimSpace(s)
	if open := strings.Index(s, "["); open >= 0 {
		if !strings.HasSuffix(s, "]") {
			return Selector{}, fmt.Errorf("invalid selector %q: missing closing bracket", s)
		}
		addr, err := ParseAddress(s[open:])
		if err != nil {
			return Selector{}, err
		}
		return Selector{File: s[:open], Address: addr}, nil
	}

	colon := strings.LastIndex(s, ":")
	if colon <= 0 {
		return Selector{}, fmt.Errorf("invalid selector %q: expected <file>[i:j] or <file>:<line>", s)
	}
	line, err := strconv.Atoi(s[colon+1:])
	if err != nil || line <= 0 {
		return Selector{}, fmt.Errorf("invalid selector %q: bad line number", s)
	}
	return Selector{File: s[:colon], Line: line}, nil
}
