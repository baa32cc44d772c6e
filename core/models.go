package core

import (
	"encoding/binary"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Concept is one canonical (system, code) entry of a loaded code system.
// Concepts are immutable once loaded.
type Concept struct {
	Id      ID
	System  string // canonical code system URI, e.g. "http://loinc.org"
	Code    string
	Display string
}

// Key returns a string representation of the concept identity as "system|code".
// This is used for generating deterministic IDs.
func (c *Concept) Key() string {
	return c.System + "|" + c.Code
}

// ComputeId derives the content-based ID from Key, stores it on the concept,
// and returns it.
func (c *Concept) ComputeId() ID {
	c.Id = IDFromContent(c.Key())
	return c.Id
}

// Designation is an alternate textual label for a concept. The primary
// display is stored as one designation so full-text search covers it too.
type Designation struct {
	ConceptId ID
	Label     string
	UseCode   string // optional use classifier
}

// CodeSystemMeta describes one loaded code system.
type CodeSystemMeta struct {
	System       string
	Version      string
	Name         string
	Title        string
	ConceptCount int
}

// Hit is a single ranked search result. Score is normalized so that a larger
// value means a better match; under full-system fallback it is a string
// similarity in [0, 1].
type Hit struct {
	System  string
	Code    string
	Display string
	Score   float64
}

// Placeholder marks one unresolved code location extracted from a target
// document. It is ephemeral and never persisted.
type Placeholder struct {
	Path              string // dotted path, e.g. "code.coding[0]"
	Pointer           string // JSON pointer, e.g. "/code/coding/0"
	PotentialDisplays []string
	PotentialSystems  []string
	PotentialCodes    []string
}

// SeedQuery returns the initial search query for the placeholder:
// its potential displays joined with spaces. May be empty.
func (p *Placeholder) SeedQuery() string {
	return strings.Join(p.PotentialDisplays, " ")
}

// Attempt records one resolution iteration for a placeholder.
// It is retained only for the current resolution's failure report.
type Attempt struct {
	Query      string
	Systems    []string
	HitCount   int
	SampleHits []*Hit // at most three
	Decision   string // short summary of the turn's outcome
}

// ResolutionFailure is the failure record kept for one placeholder that
// could not be resolved.
type ResolutionFailure struct {
	Resource      string
	Pointer       string
	Attempts      []*Attempt
	FailureReason string
}

// Capabilities summarizes what the loaded corpus can answer.
type Capabilities struct {
	Supported []string // all loaded system URIs
	Big       []string // systems above the big-system concept count threshold
	Builtin   []string // HL7 authority-namespaced systems
}
