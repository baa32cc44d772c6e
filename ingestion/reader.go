package ingestion

// NDJSON bundle records. A bundle opens with a CodeSystem descriptor and
// follows with one concept per line. Several descriptors may share a stream;
// each one switches the system the following concepts belong to.

// probeLine sniffs a record's kind before committing to a full decode.
// Descriptors carry a url, concepts carry a code.
type probeLine struct {
	URL  string `json:"url"`
	Code string `json:"code"`
}

// descriptorLine is a CodeSystem header record.
type descriptorLine struct {
	ResourceType string `json:"resourceType,omitempty"`
	URL          string `json:"url"`
	Version      string `json:"version,omitempty"`
	Name         string `json:"name,omitempty"`
	Title        string `json:"title,omitempty"`
	Count        int    `json:"count,omitempty"`
}

// conceptLine is a single concept record.
type conceptLine struct {
	Code        string            `json:"code"`
	Display     string            `json:"display,omitempty"`
	Designation []designationLine `json:"designation,omitempty"`
}

// designationLine is an additional label on a concept, FHIR style: the use
// coding tells synonyms and short names apart.
type designationLine struct {
	Value string `json:"value"`
	Use   *struct {
		Code string `json:"code,omitempty"`
	} `json:"use,omitempty"`
}
