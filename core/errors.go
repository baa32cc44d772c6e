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

import "errors"

// Domain validation errors
var (
	// ErrInvalidConcept indicates a Concept failed validation.
	ErrInvalidConcept = errors.New("invalid concept")

	// ErrInvalidDesignation indicates a Designation failed validation.
	ErrInvalidDesignation = errors.New("invalid designation")

	// ErrInvalidCodeSystem indicates a CodeSystemMeta failed validation.
	ErrInvalidCodeSystem = errors.New("invalid code system")

	// ErrEmptySystem indicates the System field is empty.
	ErrEmptySystem = errors.New("system cannot be empty")

	// ErrEmptyCode indicates the Code field is empty.
	ErrEmptyCode = errors.New("code cannot be empty")

	// ErrEmptyDisplay indicates the Display field is empty.
	ErrEmptyDisplay = errors.New("display cannot be empty")

	// ErrEmptyLabel indicates a designation Label field is empty.
	ErrEmptyLabel = errors.New("label cannot be empty")

	// ErrMissingConceptId indicates a designation without an owning concept.
	ErrMissingConceptId = errors.New("designation has no concept id")

	// ErrNegativeConceptCount indicates a negative concept count.
	ErrNegativeConceptCount = errors.New("concept count cannot be negative")
)
