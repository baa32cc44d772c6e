// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "fmt"

// ValidateConcept validates a Concept according to domain rules.
//
// Validation rules:
//   - System must not be empty
//   - Code must not be empty
//   - Display must not be empty
//
// NOT validated:
//   - Id (0 is valid; ComputeId fills it from content)
func ValidateConcept(concept *Concept) error {
	if concept == nil {
		return fmt.Errorf("%w: concept is nil", ErrInvalidConcept)
	}

	if concept.System == "" {
		return fmt.Errorf("%w: %w", ErrInvalidConcept, ErrEmptySystem)
	}

	if concept.Code == "" {
		return fmt.Errorf("%w: %w", ErrInvalidConcept, ErrEmptyCode)
	}

	if concept.Display == "" {
		return fmt.Errorf("%w: %w", ErrInvalidConcept, ErrEmptyDisplay)
	}

	return nil
}

// ValidateDesignation validates a Designation according to domain rules.
//
// Validation rules:
//   - ConceptId must reference a concept (non-zero)
//   - Label must not be empty
//
// NOT validated:
//   - UseCode (optional classifier)
func ValidateDesignation(designation *Designation) error {
	if designation == nil {
		return fmt.Errorf("%w: designation is nil", ErrInvalidDesignation)
	}

	if designation.ConceptId == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidDesignation, ErrMissingConceptId)
	}

	if designation.Label == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDesignation, ErrEmptyLabel)
	}

	return nil
}

// ValidateCodeSystemMeta validates a CodeSystemMeta according to domain rules.
//
// Validation rules:
//   - System must not be empty
//   - ConceptCount must not be negative
//
// NOT validated:
//   - Version, Name, Title (all optional descriptor fields)
func ValidateCodeSystemMeta(meta *CodeSystemMeta) error {
	if meta == nil {
		return fmt.Errorf("%w: meta is nil", ErrInvalidCodeSystem)
	}

	if meta.System == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCodeSystem, ErrEmptySystem)
	}

	if meta.ConceptCount < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidCodeSystem, ErrNegativeConceptCount)
	}

	return nil
}
