package search

import (
	"context"
	"log/slog"
	"math"
	"net/url"
	"strings"

	"github.com/poiesic/resolvit/storage"
)

// Canonical URIs for well-known code systems.
const (
	SystemSNOMED  = "http://snomed.info/sct"
	SystemLOINC   = "http://loinc.org"
	SystemRxNorm  = "http://www.nlm.nih.gov/research/umls/rxnorm"
	SystemICD10   = "http://hl7.org/fhir/sid/icd-10"
	SystemICD10CM = "http://hl7.org/fhir/sid/icd-10-cm"
	SystemICD9CM  = "http://hl7.org/fhir/sid/icd-9-cm"
	SystemCPT     = "http://www.ama-assn.org/go/cpt"
	SystemUCUM    = "http://unitsofmeasure.org"
	SystemCVX     = "http://hl7.org/fhir/sid/cvx"
	SystemNDC     = "http://hl7.org/fhir/sid/ndc"
)

// Default fuzzy-matching acceptance constants. A candidate system matches
// when the edit distance between code segments is at most
// max(floor, ceil(factor * min(len(a), len(b)))).
const (
	defaultFuzzyFloor  = 2
	defaultFuzzyFactor = 0.34
)

// systemAliases maps short names to canonical system URIs. Keys are
// normalized by stripAliasKey, so "SNOMED CT", "snomed-ct", and "snomed_ct"
// share one entry.
var systemAliases = map[string]string{
	"snomed":   SystemSNOMED,
	"snomedct": SystemSNOMED,
	"sct":      SystemSNOMED,
	"loinc":    SystemLOINC,
	"rxnorm":   SystemRxNorm,
	"icd10":    SystemICD10,
	"icd10cm":  SystemICD10CM,
	"icd9cm":   SystemICD9CM,
	"cpt":      SystemCPT,
	"ucum":     SystemUCUM,
	"cvx":      SystemCVX,
	"ndc":      SystemNDC,
}

// stripAliasKey lowercases an alias and removes spaces, hyphens, and
// underscores.
func stripAliasKey(input string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(input) {
		switch r {
		case ' ', '-', '_':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SystemResolver maps free-form system identifiers onto canonical system
// URIs, preferring the systems currently loaded in the concept store.
type SystemResolver struct {
	repository  storage.ConceptRepository
	fuzzyFloor  int
	fuzzyFactor float64
	logger      *slog.Logger
}

// ResolverOption configures a SystemResolver.
type ResolverOption func(*SystemResolver)

// WithFuzzyThreshold overrides the fuzzy acceptance constants.
func WithFuzzyThreshold(floor int, factor float64) ResolverOption {
	return func(r *SystemResolver) {
		if floor > 0 {
			r.fuzzyFloor = floor
		}
		if factor > 0 {
			r.fuzzyFactor = factor
		}
	}
}

// WithResolverLogger sets a custom logger.
// Default is slog.Default().
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *SystemResolver) {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
	}
}

// NewSystemResolver creates a resolver backed by the given concept store.
func NewSystemResolver(repository storage.ConceptRepository, opts ...ResolverOption) (*SystemResolver, error) {
	if repository == nil {
		return nil, ErrConceptRepositoryRequired
	}

	r := &SystemResolver{
		repository:  repository,
		fuzzyFloor:  defaultFuzzyFloor,
		fuzzyFactor: defaultFuzzyFactor,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

// Normalize maps input onto a canonical system URI. It reports false when
// nothing plausible matches. Checks run in order: alias table, exact match
// against loaded systems (after stripping a |version suffix), authority URL
// rewrite, fuzzy match on code segments.
func (r *SystemResolver) Normalize(ctx context.Context, input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}

	// An alias names its canonical URI whether or not that system is loaded
	if uri, ok := systemAliases[stripAliasKey(input)]; ok {
		return uri, true
	}

	// "url|version" is canonical notation for a versioned reference
	if idx := strings.IndexByte(input, '|'); idx >= 0 {
		input = input[:idx]
	}

	supported, err := r.repository.SupportedSystems(ctx)
	if err != nil {
		r.logger.Warn("listing supported systems failed", "err", err)
		return "", false
	}

	for _, system := range supported {
		if system == input {
			return system, true
		}
	}

	if uri, ok := r.matchAuthority(input, supported); ok {
		return uri, true
	}

	return r.matchFuzzy(input, supported)
}

// ResolveAll resolves a batch of requested identifiers and returns the
// deduplicated set of matched system URIs in first-resolved order.
// Unmatched inputs are dropped.
func (r *SystemResolver) ResolveAll(ctx context.Context, inputs []string) []string {
	var resolved []string
	seen := make(map[string]bool, len(inputs))

	for _, input := range inputs {
		uri, ok := r.Normalize(ctx, input)
		if !ok {
			r.logger.Debug("system not resolvable", "input", input)
			continue
		}
		if seen[uri] {
			continue
		}
		seen[uri] = true
		resolved = append(resolved, uri)
	}

	return resolved
}

// matchAuthority rewrites URLs on known terminology authority hosts to the
// canonical form used by loaded systems. A versioned browser URL like
// terminology.hl7.org/5.0.0/CodeSystem/v3-MaritalStatus resolves to the
// loaded http://terminology.hl7.org/CodeSystem/v3-MaritalStatus.
func (r *SystemResolver) matchAuthority(input string, supported []string) (string, bool) {
	u, err := url.Parse(input)
	if err != nil || u.Host == "" {
		return "", false
	}

	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	if host != "terminology.hl7.org" && host != "hl7.org" {
		return "", false
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i < len(segments)-1; i++ {
		var candidate string
		switch segments[i] {
		case "CodeSystem":
			candidate = "http://terminology.hl7.org/CodeSystem/" + segments[i+1]
		case "sid":
			candidate = "http://hl7.org/fhir/sid/" + segments[i+1]
		default:
			continue
		}
		for _, system := range supported {
			if system == candidate {
				return system, true
			}
		}
	}

	return "", false
}

// matchFuzzy compares the code segment of input against the code segment of
// every known system and accepts the closest candidate within the
// edit-distance budget. Ties keep the first candidate in enumeration order
// over the sorted system list.
func (r *SystemResolver) matchFuzzy(input string, supported []string) (string, bool) {
	segment := codeSegment(input)
	if segment == "" {
		return "", false
	}

	best := ""
	bestDist := -1
	for _, system := range supported {
		candidate := codeSegment(system)
		if candidate == "" {
			continue
		}
		dist := levenshteinDistance(segment, candidate)
		if !r.withinFuzzyBudget(dist, len(segment), len(candidate)) {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best = system
			bestDist = dist
		}
	}

	return best, best != ""
}

func (r *SystemResolver) withinFuzzyBudget(dist, lenA, lenB int) bool {
	budget := int(math.Ceil(r.fuzzyFactor * float64(min(lenA, lenB))))
	if budget < r.fuzzyFloor {
		budget = r.fuzzyFloor
	}
	return dist <= budget
}

// codeSegment extracts the last meaningful path token of a system
// identifier: "http://hl7.org/fhir/sid/icd-10-cm" yields "icd-10-cm". A
// bare host such as "loinc.org" is reduced to its distinctive label
// ("loinc").
func codeSegment(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))

	if idx := strings.Index(s, "://"); idx >= 0 {
		s = s[idx+3:]
	}
	s = strings.Trim(s, "/")

	if idx := strings.LastIndexByte(s, '/'); idx >= 0 {
		s = s[idx+1:]
	}

	if strings.Contains(s, ".") {
		s = strings.TrimPrefix(s, "www.")
		for _, suffix := range []string{".org", ".com", ".net", ".gov", ".info", ".edu"} {
			if cut, ok := strings.CutSuffix(s, suffix); ok {
				s = cut
				break
			}
		}
	}

	return s
}
