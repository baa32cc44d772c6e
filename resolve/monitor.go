package resolve

import (
	"github.com/poiesic/resolvit/ai"
	"github.com/poiesic/resolvit/core"
	"github.com/poiesic/resolvit/search"
)

// ResolveMonitor provides hooks to observe the resolution process.
// Implement this interface to track intermediate steps and outcomes while a
// batch resolves.
type ResolveMonitor interface {
	Start(ref, pointer, seedQuery string)
	AfterSearch(ref, pointer, query string, result *search.GuidedResult)
	DecisionReceived(ref, pointer string, decision *ai.Decision)
	PickAccepted(ref, pointer string, hit *core.Hit)
	PickRejected(ref, pointer, system, code string)
	Finish(ref, pointer string, failure *core.ResolutionFailure)
}

// noopMonitor is a no-op implementation of ResolveMonitor
type noopMonitor struct{}

var _ ResolveMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_, _, _ string) {}

func (n *noopMonitor) AfterSearch(_, _, _ string, _ *search.GuidedResult) {}

func (n *noopMonitor) DecisionReceived(_, _ string, _ *ai.Decision) {}

func (n *noopMonitor) PickAccepted(_, _ string, _ *core.Hit) {}

func (n *noopMonitor) PickRejected(_, _, _, _ string) {}

func (n *noopMonitor) Finish(_, _ string, _ *core.ResolutionFailure) {}
