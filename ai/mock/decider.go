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


package mock

import (
	"context"
	"sync"

	"github.com/poiesic/resolvit/ai"
)

// MockDecider is a test double for ai.Decider.
// It allows custom behavior injection via the DecideFunc field.
type MockDecider struct {
	// DecideFunc is called by Decide if set.
	// If nil, the default behavior picks the first candidate hit and
	// declares unresolved when there are none.
	DecideFunc func(ctx context.Context, request *ai.DecisionRequest) (*ai.Decision, error)

	// Placeholders may be decided concurrently, so the counter is guarded.
	mu        sync.Mutex
	callCount int
}

var _ ai.Decider = (*MockDecider)(nil)

// NewMockDecider creates a mock decider with default behavior.
// Note: returns concrete type to allow test assertions via CallCount().
func NewMockDecider() *MockDecider {
	return &MockDecider{}
}

// Decide returns the injected behavior's decision, or by default picks the
// first candidate hit.
func (m *MockDecider) Decide(ctx context.Context, request *ai.DecisionRequest) (*ai.Decision, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.DecideFunc != nil {
		return m.DecideFunc(ctx, request)
	}

	if len(request.Hits) == 0 {
		return &ai.Decision{
			Action: ai.ActionUnresolved,
			Reason: "no candidate hits",
		}, nil
	}

	best := request.Hits[0]
	return &ai.Decision{
		Action:  ai.ActionPick,
		System:  best.System,
		Code:    best.Code,
		Display: best.Display,
	}, nil
}

// CallCount returns the number of times Decide was called.
func (m *MockDecider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and the custom function.
func (m *MockDecider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.DecideFunc = nil
}
