// Package ingest turns a health export CSV into dated rows of canonical field values.
package ingest

import (
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"example.com/wellness/internal/domain"
)

// AliasTable maps each canonical field to the normalized header texts accepted for it.
type AliasTable map[domain.Field][]string

// HeaderIndex maps a resolved canonical field to its column position.
type HeaderIndex map[domain.Field]int

var defaultAliases = AliasTable{
	domain.FieldDate:              {"date"},
	domain.FieldActiveEnergy:      {"active energy"},
	domain.FieldExerciseMinutes:   {"apple exercise time"},
	domain.FieldStandHour:         {"apple stand hour"},
	domain.FieldStandMinutes:      {"apple stand time"},
	domain.FieldSpO2:              {"blood oxygen saturation (% )", "blood oxygen saturation (%)"},
	domain.FieldEnvAudio:          {"environmental audio exposure (dbaspl)"},
	domain.FieldFlightsClimbed:    {"flights climbed (count)"},
	domain.FieldHRMin:             {"heart rate [min] (count/min)"},
	domain.FieldHRMax:             {"heart rate [max] (count/min)"},
	domain.FieldHRAvg:             {"heart rate [avg] (count/min)"},
	domain.FieldHRV:               {"heart rate variability (ms)"},
	domain.FieldPhysicalEffort:    {"physical effort (kcal/hr"},
	domain.FieldRestingEnergy:     {"resting energy (kcal)"},
	domain.FieldRestingHR:         {"resting heart rate (count/min)"},
	domain.FieldStairDown:         {"stair speed: down (ft/s)"},
	domain.FieldStairUp:           {"stair speed: up (ft/s)"},
	domain.FieldSteps:             {"step count (count)"},
	domain.FieldDistance:          {"walking + running distance (mi)"},
	domain.FieldWalkAsymmetry:     {"walking asymmetry percentage (%)"},
	domain.FieldWalkDoubleSupport: {"walking double support percentage (%)"},
	domain.FieldWalkHRAvg:         {"walking heart rate average (count/min)"},
	domain.FieldWalkSpeed:         {"walking speed (mi/hr)"},
	domain.FieldWalkStepLength:    {"walking step length (in)"},
}

// DefaultAliases returns a copy of the built-in alias table.
func DefaultAliases() AliasTable {
	return defaultAliases.Merge(nil)
}

// Merge returns a new table holding t's aliases followed by extra's, normalized and de-duplicated.
func (t AliasTable) Merge(extra AliasTable) AliasTable {
	out := make(AliasTable, len(t))
	for field, aliases := range t {
		out[field] = normalizeAll(aliases)
	}
	for field, aliases := range extra {
		out[field] = lo.Uniq(append(out[field], normalizeAll(aliases)...))
	}
	return out
}

// LoadAliasOverlay reads a YAML document of the form `field: [alias, ...]`.
func LoadAliasOverlay(path string) (AliasTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read alias overlay: %w", err)
	}

	var doc map[string][]string
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse alias overlay %s: %w", path, err)
	}

	table := make(AliasTable, len(doc))
	for name, aliases := range doc {
		field := domain.Field(name)
		if !field.Known() {
			return nil, fmt.Errorf("alias overlay %s: unknown field %q", path, name)
		}
		table[field] = aliases
	}
	return table, nil
}

// Normalize strips a leading byte-order mark, trims whitespace and lower-cases a header cell.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, "\uFEFF")))
}

func normalizeAll(values []string) []string {
	return lo.FilterMap(values, func(v string, _ int) (string, bool) {
		n := Normalize(v)
		return n, n != ""
	})
}

// Resolver maps a raw header row to column positions using an alias table.
type Resolver struct {
	aliases AliasTable
}

// NewResolver builds a Resolver. A nil table selects the built-in aliases.
func NewResolver(aliases AliasTable) *Resolver {
	if aliases == nil {
		aliases = DefaultAliases()
	}
	return &Resolver{aliases: aliases}
}

// Resolve locates every canonical field in header. Each field is matched exactly against
// its aliases first, then by the first header containing any alias. A required field that
// matches neither way fails with *domain.MissingColumnError.
func (r *Resolver) Resolve(header []string) (HeaderIndex, error) {
	normalized := lo.Map(header, func(h string, _ int) string { return Normalize(h) })

	index := make(HeaderIndex, len(domain.Fields))
	for _, field := range domain.Fields {
		aliases := r.aliases[field]
		if col, ok := resolveColumn(normalized, aliases); ok {
			index[field] = col
			continue
		}
		if field.Optional() {
			continue
		}
		return nil, &domain.MissingColumnError{Field: field, Aliases: append([]string(nil), aliases...)}
	}
	return index, nil
}

func resolveColumn(headers, aliases []string) (int, bool) {
	for _, alias := range aliases {
		if col := lo.IndexOf(headers, alias); col >= 0 {
			return col, true
		}
	}
	for col, h := range headers {
		if lo.SomeBy(aliases, func(alias string) bool { return strings.Contains(h, alias) }) {
			return col, true
		}
	}
	return -1, false
}
