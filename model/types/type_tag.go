package types

import (
	"fmt"
	"strings"
)

// TypeTag is the canonical string form of a type, e.g. "u64" or
// "0x1::coin::CoinStore<0x1::coin::Gold>".
type TypeTag string

// StructTag identifies a struct type published under a module.
type StructTag struct {
	Address    Address
	Module     string
	Name       string
	TypeParams []TypeTag
}

func (t StructTag) String() string {
	var b strings.Builder
	b.WriteString(t.Address.String())
	b.WriteString("::")
	b.WriteString(t.Module)
	b.WriteString("::")
	b.WriteString(t.Name)
	if len(t.TypeParams) > 0 {
		b.WriteByte('<')
		for i, p := range t.TypeParams {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(string(p))
		}
		b.WriteByte('>')
	}
	return b.String()
}

// TypeTag returns the struct tag as a type tag.
func (t StructTag) TypeTag() TypeTag {
	return TypeTag(t.String())
}

// ModuleID returns the module the struct is declared in.
func (t StructTag) ModuleID() ModuleID {
	return ModuleID{Address: t.Address, Name: t.Module}
}

// ParseStructTag parses "address::module::Name<T1, T2>".
func ParseStructTag(s string) (StructTag, error) {
	s = strings.TrimSpace(s)

	var params []TypeTag
	if i := strings.IndexByte(s, '<'); i >= 0 {
		if !strings.HasSuffix(s, ">") {
			return StructTag{}, fmt.Errorf("invalid struct tag %q: unbalanced type parameters", s)
		}
		inner := s[i+1 : len(s)-1]
		s = s[:i]

		parts, err := splitTypeParams(inner)
		if err != nil {
			return StructTag{}, fmt.Errorf("invalid struct tag %q: %w", s, err)
		}
		params = parts
	}

	parts := strings.Split(s, "::")
	if len(parts) != 3 {
		return StructTag{}, fmt.Errorf("invalid struct tag %q: expected address::module::name", s)
	}

	address, err := ParseAddress(parts[0])
	if err != nil {
		return StructTag{}, fmt.Errorf("invalid struct tag %q: %w", s, err)
	}
	if parts[1] == "" || parts[2] == "" {
		return StructTag{}, fmt.Errorf("invalid struct tag %q: empty identifier", s)
	}

	return StructTag{
		Address:    address,
		Module:     parts[1],
		Name:       parts[2],
		TypeParams: params,
	}, nil
}

// MustParseStructTag is ParseStructTag which panics on error.
func MustParseStructTag(s string) StructTag {
	t, err := ParseStructTag(s)
	if err != nil {
		panic(err)
	}
	return t
}

func splitTypeParams(s string) ([]TypeTag, error) {
	var (
		params []TypeTag
		depth  int
		start  int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced type parameters")
			}
		case ',':
			if depth == 0 {
				params = append(params, TypeTag(strings.TrimSpace(s[start:i])))
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced type parameters")
	}
	last := strings.TrimSpace(s[start:])
	if last == "" {
		return nil, fmt.Errorf("empty type parameter")
	}
	return append(params, TypeTag(last)), nil
}

// ModuleID identifies a published module.
type ModuleID struct {
	Address Address
	Name    string
}

func (id ModuleID) String() string {
	return id.Address.String() + "::" + id.Name
}

// FunctionKey returns the dispatch key of a function declared in the module.
func (id ModuleID) FunctionKey(function string) string {
	return id.String() + "::" + function
}
