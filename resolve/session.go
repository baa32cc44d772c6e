package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/poiesic/resolvit/ai"
	"github.com/poiesic/resolvit/core"
	"github.com/poiesic/resolvit/search"
	"github.com/poiesic/resolvit/storage"
)

// sampleHitLimit bounds how many hits an attempt record keeps. Failure
// reports stay readable even when a query matched half the vocabulary.
const sampleHitLimit = 3

// keySeparator keeps ref, pointer, iteration, and request bytes from
// running into each other inside the cache key preimage.
const keySeparator = "\x1f"

// session runs the search-decide loop for a single placeholder. Each
// iteration searches the index, asks the decider, and acts on its answer
// until a pick is accepted, the placeholder is declared unresolved, or the
// iteration budget runs out.
type session struct {
	searcher     *search.Searcher
	decider      ai.Decider
	decisions    storage.DecisionRepository
	capabilities *core.Capabilities
	monitor      ResolveMonitor
	logger       *slog.Logger

	maxIterations int
	maxHits       int

	ref         string
	placeholder *core.Placeholder
	node        map[string]any
}

// run drives the loop. It returns nil when the placeholder resolved and a
// failure record otherwise. The node is mutated only on success.
func (s *session) run(ctx context.Context) *core.ResolutionFailure {
	query := s.placeholder.SeedQuery()
	s.monitor.Start(s.ref, s.placeholder.Pointer, query)

	var attempts []*core.Attempt
	var attemptedQueries []string

	for iteration := 0; iteration < s.maxIterations; iteration++ {
		remaining := s.maxIterations - iteration

		result := s.searcher.SearchWithGuidance(ctx, query, search.SearchOptions{
			Systems: s.placeholder.PotentialSystems,
		})
		s.monitor.AfterSearch(s.ref, s.placeholder.Pointer, query, result)

		attemptedQueries = append(attemptedQueries, query)
		attempt := &core.Attempt{
			Query:      query,
			Systems:    result.Scope,
			HitCount:   result.Count,
			SampleHits: sampleHits(result.Hits),
		}
		attempts = append(attempts, attempt)

		request := &ai.DecisionRequest{
			Path:             s.placeholder.Path,
			Display:          strings.Join(s.placeholder.PotentialDisplays, ", "),
			Systems:          result.Scope,
			Capabilities:     s.capabilities,
			AttemptedQueries: append([]string(nil), attemptedQueries...),
			RemainingTurns:   remaining,
			Guidance:         result.Guidance,
			Hits:             capHits(result.Hits, s.maxHits),
		}

		decision := s.decide(ctx, iteration, request)
		if decision == nil {
			attempt.Decision = "no decision this turn"
			continue
		}
		s.monitor.DecisionReceived(s.ref, s.placeholder.Pointer, decision)

		switch decision.Action {
		case ai.ActionPick:
			hit := findHit(result.Hits, decision.System, decision.Code)
			if hit == nil {
				attempt.Decision = fmt.Sprintf("rejected pick %s|%s", decision.System, decision.Code)
				s.monitor.PickRejected(s.ref, s.placeholder.Pointer, decision.System, decision.Code)
				s.logger.Debug("pick did not match any hit",
					"ref", s.ref,
					"pointer", s.placeholder.Pointer,
					"system", decision.System,
					"code", decision.Code)
				continue
			}

			display := decision.Display
			if display == "" {
				display = hit.Display
			}
			applyPick(s.node, hit.System, hit.Code, display)
			attempt.Decision = fmt.Sprintf("picked %s|%s", hit.System, hit.Code)
			s.monitor.PickAccepted(s.ref, s.placeholder.Pointer, hit)
			s.monitor.Finish(s.ref, s.placeholder.Pointer, nil)
			return nil

		case ai.ActionSearch:
			if remaining == 1 {
				// The final turn must pick or give up, so a search
				// counts as no decision.
				attempt.Decision = "search disallowed on final turn"
				continue
			}
			next := strings.Join(decision.Terms, " ")
			if attemptedBefore(attemptedQueries, next) {
				attempt.Decision = fmt.Sprintf("repeated query %q", next)
				return s.fail(attempts, "repeat_query")
			}
			attempt.Decision = fmt.Sprintf("search %q", next)
			query = next

		case ai.ActionUnresolved:
			attempt.Decision = "unresolved: " + decision.Reason
			return s.fail(attempts, decision.Reason)

		default:
			attempt.Decision = "no decision this turn"
			s.logger.Warn("decider returned unknown action",
				"ref", s.ref,
				"pointer", s.placeholder.Pointer,
				"action", decision.Action)
		}
	}

	reason := "no_valid_pick"
	if last := attemptedQueries[len(attemptedQueries)-1]; strings.TrimSpace(last) == "" {
		reason = "empty_query"
	}
	return s.fail(attempts, reason)
}

// decide consults the decision cache when one is configured, falling back to
// a live decider call. Fresh decisions are written back to the cache so a
// replayed run answers from storage instead.
func (s *session) decide(ctx context.Context, iteration int, request *ai.DecisionRequest) *ai.Decision {
	requestJSON, err := json.Marshal(request)
	if err != nil {
		s.logger.Warn("marshaling decision request failed",
			"pointer", s.placeholder.Pointer, "err", err)
	}
	cacheable := s.decisions != nil && err == nil

	var key core.ID
	if cacheable {
		key = decisionKey(s.ref, s.placeholder.Pointer, iteration, requestJSON)
		if cached := s.cachedDecision(ctx, key); cached != nil {
			return cached
		}
	}

	decision, err := s.decider.Decide(ctx, request)
	if err != nil {
		s.logger.Warn("decider call failed",
			"ref", s.ref,
			"pointer", s.placeholder.Pointer,
			"err", err)
		return nil
	}

	if cacheable {
		if payload, err := json.Marshal(decision); err == nil {
			if err := s.decisions.SaveDecision(ctx, key, payload); err != nil {
				s.logger.Warn("caching decision failed", "err", err)
			}
		}
	}

	return decision
}

func (s *session) cachedDecision(ctx context.Context, key core.ID) *ai.Decision {
	payload, err := s.decisions.GetDecision(ctx, key)
	if err != nil {
		s.logger.Warn("reading decision cache failed", "err", err)
		return nil
	}
	if payload == nil {
		return nil
	}

	var decision ai.Decision
	if err := json.Unmarshal(payload, &decision); err != nil {
		s.logger.Warn("cached decision is unreadable", "err", err)
		return nil
	}
	if err := decision.Validate(); err != nil {
		s.logger.Warn("cached decision is invalid", "err", err)
		return nil
	}

	s.logger.Debug("decision replayed from cache",
		"ref", s.ref, "pointer", s.placeholder.Pointer)
	return &decision
}

func (s *session) fail(attempts []*core.Attempt, reason string) *core.ResolutionFailure {
	failure := &core.ResolutionFailure{
		Resource:      s.ref,
		Pointer:       s.placeholder.Pointer,
		Attempts:      attempts,
		FailureReason: reason,
	}
	s.monitor.Finish(s.ref, s.placeholder.Pointer, failure)
	return failure
}

// decisionKey derives the cache key for one decider consultation. The
// iteration index keeps otherwise identical requests from colliding across
// turns.
func decisionKey(ref, pointer string, iteration int, requestJSON []byte) core.ID {
	return core.IDFromContent(ref + keySeparator + pointer + keySeparator +
		strconv.Itoa(iteration) + keySeparator + string(requestJSON))
}

func findHit(hits []*core.Hit, system, code string) *core.Hit {
	for _, hit := range hits {
		if hit.System == system && hit.Code == code {
			return hit
		}
	}
	return nil
}

func attemptedBefore(attempted []string, query string) bool {
	for _, prior := range attempted {
		if strings.EqualFold(prior, query) {
			return true
		}
	}
	return false
}

func sampleHits(hits []*core.Hit) []*core.Hit {
	if len(hits) <= sampleHitLimit {
		return hits
	}
	return hits[:sampleHitLimit]
}

func capHits(hits []*core.Hit, limit int) []*core.Hit {
	if limit <= 0 || len(hits) <= limit {
		return hits
	}
	return hits[:limit]
}
