// Package powers holds the fixed set of power codes and parses matchups
// from their hyphen-delimited form ("ENG-GER").
package powers

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"sync"

	yaml "gopkg.in/yaml.v3"
)

//go:embed powers.yaml
var defaultFiles embed.FS

// ErrInvalidMatchup is returned for matchup input that cannot name a set of rooms.
var ErrInvalidMatchup = errors.New("invalid matchup")

// Code is a short uppercase power identifier such as "ENG".
type Code string

// Catalog is the enumerable set of known powers.
type Catalog struct {
	names map[Code]string
	codes []Code
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the catalog built from the embedded powers.yaml.
func Default() *Catalog {
	defaultOnce.Do(func() {
		raw, err := fs.ReadFile(defaultFiles, "powers.yaml")
		if err != nil {
			panic(fmt.Sprintf("read embedded powers: %v", err))
		}
		c, err := Load(raw)
		if err != nil {
			panic(fmt.Sprintf("parse embedded powers: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Load parses a catalog document of the form {powers: {CODE: Display Name}}.
func Load(b []byte) (*Catalog, error) {
	var doc struct {
		Powers map[string]string `yaml:"powers"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal powers: %w", err)
	}
	if len(doc.Powers) == 0 {
		return nil, errors.New("no powers defined")
	}

	c := &Catalog{names: make(map[Code]string, len(doc.Powers))}
	for k, v := range doc.Powers {
		code := Code(strings.ToUpper(strings.TrimSpace(k)))
		if code == "" || strings.ContainsAny(string(code), "- ") {
			return nil, fmt.Errorf("bad power code %q", k)
		}
		c.names[code] = strings.TrimSpace(v)
		c.codes = append(c.codes, code)
	}
	slices.Sort(c.codes)

	return c, nil
}

// Codes returns every known code in ascending order.
func (c *Catalog) Codes() []Code {
	return slices.Clone(c.codes)
}

func (c *Catalog) Valid(code Code) bool {
	_, ok := c.names[code]
	return ok
}

// Name returns the display name for code, or the code itself when unknown.
func (c *Catalog) Name(code Code) string {
	if n, ok := c.names[code]; ok && n != "" {
		return n
	}
	return string(code)
}

// ParseMatchup validates a hyphen-delimited list of power codes and returns
// it in canonical (ascending) order. Unknown or repeated codes and matchups
// of fewer than two powers are rejected with ErrInvalidMatchup.
func (c *Catalog) ParseMatchup(raw string) (Matchup, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidMatchup)
	}

	tokens := strings.Split(raw, "-")
	m := make(Matchup, 0, len(tokens))
	seen := make(map[Code]struct{}, len(tokens))
	for _, tok := range tokens {
		code := Code(strings.ToUpper(strings.TrimSpace(tok)))
		if !c.Valid(code) {
			return nil, fmt.Errorf("%w: unknown power %q", ErrInvalidMatchup, tok)
		}
		if _, dup := seen[code]; dup {
			return nil, fmt.Errorf("%w: duplicate power %q", ErrInvalidMatchup, code)
		}
		seen[code] = struct{}{}
		m = append(m, code)
	}

	if len(m) < 2 {
		return nil, fmt.Errorf("%w: need at least two powers, got %d", ErrInvalidMatchup, len(m))
	}

	slices.Sort(m)
	return m, nil
}

// Pairs returns every two-power matchup of the catalog, in ascending order.
func (c *Catalog) Pairs() []Matchup {
	var out []Matchup
	for i := 0; i < len(c.codes); i++ {
		for j := i + 1; j < len(c.codes); j++ {
			out = append(out, Matchup{c.codes[i], c.codes[j]})
		}
	}
	return out
}

// All is the matchup of every power in the catalog.
func (c *Catalog) All() Matchup {
	return slices.Clone(Matchup(c.codes))
}

// Matchup is a canonical, ascending set of at least two powers.
type Matchup []Code

func (m Matchup) String() string {
	return Join(m)
}

// Others returns every member except the one at index i, in order.
func (m Matchup) Others(i int) []Code {
	out := make([]Code, 0, len(m)-1)
	out = append(out, m[:i]...)
	return append(out, m[i+1:]...)
}

// Join concatenates codes with "-".
func Join(codes []Code) string {
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = string(c)
	}
	return strings.Join(parts, "-")
}
