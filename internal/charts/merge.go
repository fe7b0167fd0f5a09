package charts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/cases"
)

// MergeRule maps a set of aliases onto one canonical category.
type MergeRule struct {
	Target  string   `json:"target" yaml:"target"`
	Aliases []string `json:"aliases" yaml:"aliases"`
}

// MergeTable normalizes category names. Matching ignores case, accents and
// surrounding or repeated whitespace. Names without a rule pass through.
type MergeTable struct {
	targets map[string]string
}

// NewMergeTable validates rules and builds the lookup table. A target is
// always an alias of itself.
func NewMergeTable(rules []MergeRule) (*MergeTable, error) {
	t := &MergeTable{targets: make(map[string]string)}
	var errs []error
	for i, r := range rules {
		target := strings.TrimSpace(r.Target)
		if target == "" {
			errs = append(errs, fmt.Errorf("rule %d: empty target", i))
			continue
		}
		for _, a := range append([]string{target}, r.Aliases...) {
			key := normalize(a)
			if key == "" {
				errs = append(errs, fmt.Errorf("rule %q: empty alias", target))
				continue
			}
			if prev, ok := t.targets[key]; ok && prev != target {
				errs = append(errs, fmt.Errorf("alias %q maps to both %q and %q", a, prev, target))
				continue
			}
			t.targets[key] = target
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return t, nil
}

// MustMergeTable is NewMergeTable for static rule sets.
func MustMergeTable(rules []MergeRule) *MergeTable {
	t, err := NewMergeTable(rules)
	if err != nil {
		panic(err)
	}
	return t
}

// Canonical returns the merge target for name, or name unchanged.
func (t *MergeTable) Canonical(name string) string {
	if t == nil {
		return name
	}
	if target, ok := t.targets[normalize(name)]; ok {
		return target
	}
	return name
}

// fold case-folds s. Casers carry state, so each call gets its own.
func fold(s string) string {
	return cases.Fold().String(s)
}

func normalize(s string) string {
	s = unidecode.Unidecode(s)
	s = strings.Join(strings.Fields(s), " ")
	return fold(s)
}

// DefaultTheatreRules collapses personal viewing locations into Home.
func DefaultTheatreRules() []MergeRule {
	return []MergeRule{
		{Target: "Home", Aliases: []string{
			"Camp Awesome", "Rochester", "Hopatcong", "McWeavers", "Michigan",
			"jwm's house", "Virginia", "Gualala", "Cleveland", "Puerto Rico",
			"Airplane", "Hampton Beach",
		}},
	}
}

// DefaultFormatRules groups viewing formats into broad families.
func DefaultFormatRules() []MergeRule {
	return []MergeRule{
		{Target: "Streaming", Aliases: []string{
			"Apple TV", "Netflix", "Download", "YouTube", "Nebula", "Xbox Streaming",
			"Screening", "HD Download", "Amazon Instant", "Netflix Streaming",
			"iTunes Streaming", "iPad", "Amazon Unbox", "Amazon Prime", "Hulu", "Xbox",
			"Disney+", "iTunes (iPad)", "Qello", "Google Play",
		}},
		{Target: "Physical", Aliases: []string{"BluRay", "Blu-ray", "VCD", "CD", "DVD", "VHS"}},
		{Target: "TV/Cable", Aliases: []string{"TV", "On Demand"}},
		{Target: "Theater", Aliases: []string{"Theatre", "IMAX", "IFFBoston"}},
	}
}
