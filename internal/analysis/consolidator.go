package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"fundscope/internal/domain"
	"fundscope/internal/port"
)

// IdentityKey is the attribute that marks a JSON object as a fund
// record and drives duplicate detection.
const IdentityKey = "Fund Manager"

// MergePolicy decides how a flat, possibly-duplicated fund list becomes
// a canonical one. The production policy delegates to the completion
// provider; tests plug deterministic implementations.
type MergePolicy interface {
	Merge(ctx context.Context, funds []domain.Fund) ([]domain.Fund, error)
}

// MergePolicyFunc adapts a function to the MergePolicy interface.
type MergePolicyFunc func(ctx context.Context, funds []domain.Fund) ([]domain.Fund, error)

func (f MergePolicyFunc) Merge(ctx context.Context, funds []domain.Fund) ([]domain.Fund, error) {
	return f(ctx, funds)
}

// Consolidator flattens fund records out of a reduced analysis tree and
// merges duplicates through its policy. It is the only component
// allowed to drop or combine fund records.
type Consolidator struct {
	policy MergePolicy
	logger *log.Logger
}

func NewConsolidator(policy MergePolicy, logger *log.Logger) *Consolidator {
	if logger == nil {
		logger = log.Default()
	}
	return &Consolidator{policy: policy, logger: logger}
}

// NewCompleterMergePolicy returns the production policy: one completion
// call carrying the full fund list and the dedup prompt.
func NewCompleterMergePolicy(completer port.Completer) MergePolicy {
	return MergePolicyFunc(func(ctx context.Context, funds []domain.Fund) ([]domain.Fund, error) {
		payload, err := json.MarshalIndent(funds, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("serializing fund list: %w", err)
		}
		raw, err := completer.Complete(ctx, FundDedupSystemPrompt,
			"Document Name: fund_data.json\n\n"+string(payload))
		if err != nil {
			return nil, err
		}
		return normalizeFunds(raw)
	})
}

// ExtractEntities walks the reduced tree and returns every object
// carrying the identity key, wherever it sits: a single result, a
// chunked wrapper, or nested deeper inside a result payload.
// Duplicates are preserved.
func ExtractEntities(result *domain.FolderAnalysis) []domain.Fund {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil
	}
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil
	}

	var funds []domain.Fund
	collectFunds(tree, &funds)
	return funds
}

func collectFunds(node any, funds *[]domain.Fund) {
	switch v := node.(type) {
	case map[string]any:
		if _, ok := v[IdentityKey]; ok {
			*funds = append(*funds, domain.Fund(v))
			return
		}
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			collectFunds(v[key], funds)
		}
	case []any:
		for _, item := range v {
			collectFunds(item, funds)
		}
	}
}

// Consolidate merges the funds extracted from the reduced tree into one
// canonical list. A failed merge degrades to the unconsolidated list so
// callers always get the salvageable data.
func (c *Consolidator) Consolidate(ctx context.Context, result *domain.FolderAnalysis) domain.ConsolidatedResult {
	funds := ExtractEntities(result)
	if len(funds) == 0 {
		c.logger.Printf("[WARN] analysis: no fund records found in reduced tree")
		return domain.ConsolidatedResult{Funds: []domain.Fund{}}
	}

	proxy := countIdentityLabels(result)
	c.logger.Printf("[INFO] analysis: consolidating %d fund records (proxy estimate %d)", len(funds), proxy)

	merged, err := c.policy.Merge(ctx, funds)
	if err != nil {
		c.logger.Printf("[WARN] analysis: consolidation failed, returning unconsolidated list: %v", err)
		return domain.ConsolidatedResult{Funds: funds}
	}

	if proxy > 0 && len(merged) < proxy/5 {
		c.logger.Printf("[WARN] analysis: consolidation returned %d funds against a proxy estimate of %d; records may have been dropped", len(merged), proxy)
	}
	return domain.ConsolidatedResult{Funds: merged}
}

// countIdentityLabels counts occurrences of the quoted identity key in
// the serialized tree. Duplicates inflate the count, so it is only a
// ceiling estimate.
func countIdentityLabels(result *domain.FolderAnalysis) int {
	raw, err := json.Marshal(result)
	if err != nil {
		return 0
	}
	return strings.Count(string(raw), `"`+IdentityKey+`"`)
}

// fundShape distinguishes the response forms the model is known to
// produce for the consolidation call.
type fundShape int

const (
	shapeWrapped fundShape = iota // {"analysis": [...]}
	shapeList                     // bare array
	shapeObject                   // bare single object
	shapeUnknown
)

func classifyShape(raw json.RawMessage) fundShape {
	trimmed := strings.TrimSpace(string(raw))
	switch {
	case strings.HasPrefix(trimmed, "["):
		return shapeList
	case strings.HasPrefix(trimmed, "{"):
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(raw, &probe); err != nil {
			return shapeUnknown
		}
		if inner, ok := probe["analysis"]; ok && strings.HasPrefix(strings.TrimSpace(string(inner)), "[") {
			return shapeWrapped
		}
		return shapeObject
	default:
		return shapeUnknown
	}
}

// normalizeFunds folds the tolerated response shapes into a flat list.
// An unrecognized shape is not an error: it becomes a single-element
// list carrying the raw response.
func normalizeFunds(raw json.RawMessage) ([]domain.Fund, error) {
	switch classifyShape(raw) {
	case shapeWrapped:
		var wrapped struct {
			Funds []domain.Fund `json:"analysis"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("decoding wrapped fund list: %w", err)
		}
		return wrapped.Funds, nil
	case shapeList:
		var funds []domain.Fund
		if err := json.Unmarshal(raw, &funds); err != nil {
			return nil, fmt.Errorf("decoding fund list: %w", err)
		}
		return funds, nil
	case shapeObject:
		var fund domain.Fund
		if err := json.Unmarshal(raw, &fund); err != nil {
			return nil, fmt.Errorf("decoding fund object: %w", err)
		}
		return []domain.Fund{fund}, nil
	default:
		log.Printf("[WARN] analysis: unrecognized consolidation response shape, keeping raw payload")
		return []domain.Fund{{"raw_response": string(raw)}}, nil
	}
}
