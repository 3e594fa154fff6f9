package normalizer

import (
	"fmt"
	"sort"
	"strings"
)

// Category is one canonical value of a domain with its known spellings.
type Category struct {
	Code    string   `yaml:"code"`
	Label   string   `yaml:"label"`
	Aliases []string `yaml:"aliases"`
}

// Domain resolves raw strings to category codes using a disambiguation
// table built once at construction. It is safe for concurrent use.
type Domain struct {
	name       string
	categories []Category
	// exact maps a folded spelling to its category code.
	exact map[string]string
	// spellings is sorted for deterministic prefix scans.
	spellings []spelling
}

type spelling struct {
	folded string
	code   string
}

// NewDomain builds a domain. Two categories sharing a folded spelling is an error.
func NewDomain(name string, categories []Category) (*Domain, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDomain, name)
	}

	d := &Domain{
		name:       name,
		categories: append([]Category(nil), categories...),
		exact:      make(map[string]string),
	}

	for _, c := range categories {
		for _, s := range append([]string{c.Code, c.Label}, c.Aliases...) {
			if err := d.add(s, c.Code); err != nil {
				return nil, err
			}
		}
	}

	sort.Slice(d.spellings, func(i, j int) bool {
		return d.spellings[i].folded < d.spellings[j].folded
	})

	return d, nil
}

func (d *Domain) add(raw, code string) error {
	folded := Fold(raw)
	if folded == "" {
		return nil
	}

	if existing, ok := d.exact[folded]; ok {
		if existing != code {
			return fmt.Errorf("%w: %s %q (%s, %s)", ErrAmbiguousSpelling, d.name, raw, existing, code)
		}

		return nil
	}

	d.exact[folded] = code
	d.spellings = append(d.spellings, spelling{folded: folded, code: code})

	return nil
}

// WithAliases returns a copy of the domain with extra spellings per code.
func (d *Domain) WithAliases(aliases map[string][]string) (*Domain, error) {
	categories := make([]Category, len(d.categories))
	index := make(map[string]int, len(d.categories))

	for i, c := range d.categories {
		c.Aliases = append([]string(nil), c.Aliases...)
		categories[i] = c
		index[c.Code] = i
	}

	codes := make([]string, 0, len(aliases))
	for code := range aliases {
		codes = append(codes, code)
	}

	sort.Strings(codes)

	for _, code := range codes {
		i, ok := index[code]
		if !ok {
			return nil, fmt.Errorf("%w: %s %q", ErrUnknownCategory, d.name, code)
		}

		categories[i].Aliases = append(categories[i].Aliases, aliases[code]...)
	}

	return NewDomain(d.name, categories)
}

// Name returns the field name used in errors.
func (d *Domain) Name() string {
	return d.name
}

// Codes returns the canonical codes in declaration order.
func (d *Domain) Codes() []string {
	codes := make([]string, 0, len(d.categories))
	for _, c := range d.categories {
		codes = append(codes, c.Code)
	}

	return codes
}

// Label returns the display label of a code.
func (d *Domain) Label(code string) string {
	for _, c := range d.categories {
		if c.Code == code {
			return c.Label
		}
	}

	return code
}

// Normalize returns the canonical code for raw. It tries an exact match on
// codes, labels and aliases, then a prefix match, then a substring match.
// Zero or several matching categories yield a *NormalizationError.
func (d *Domain) Normalize(raw string) (string, error) {
	folded := Fold(raw)
	if folded == "" {
		return "", &NormalizationError{Field: d.name, Raw: raw}
	}

	if code, ok := d.exact[folded]; ok {
		return code, nil
	}

	candidates := d.match(func(s string) bool { return strings.HasPrefix(s, folded) })
	if len(candidates) == 0 {
		candidates = d.match(func(s string) bool { return strings.Contains(s, folded) })
	}

	if len(candidates) == 1 {
		return candidates[0], nil
	}

	return "", &NormalizationError{Field: d.name, Raw: raw, Candidates: candidates}
}

func (d *Domain) match(fn func(string) bool) []string {
	seen := make(map[string]bool)

	var codes []string

	for _, s := range d.spellings {
		if fn(s.folded) && !seen[s.code] {
			seen[s.code] = true
			codes = append(codes, s.code)
		}
	}

	sort.Strings(codes)

	return codes
}
