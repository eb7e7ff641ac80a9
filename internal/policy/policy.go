// Package policy combines classification, similarity and risk into the final
// auto-resolve-vs-escalate decision with its explainability trace.
package policy

import (
	"fmt"
	"strings"

	"github.com/spec-kit/triage-engine/internal/domain"
)

// Input is the snapshot a decision is computed from. Decide is a pure
// function of it; nothing time- or network-dependent feeds the decision.
type Input struct {
	TicketID         string
	Classification   domain.ClassificationResult
	Similarity       domain.SimilarityResult
	Risk             domain.RiskAssessment
	BusinessCritical bool
	Degraded         bool
}

// Policy holds the auto-resolve thresholds.
type Policy struct {
	MinConfidence int
	MinSimilarity int
}

// New builds a policy; non-positive thresholds fall back to the defaults
// (confidence 80, similarity 65).
func New(minConfidence, minSimilarity int) Policy {
	if minConfidence <= 0 {
		minConfidence = 80
	}
	if minSimilarity <= 0 {
		minSimilarity = 65
	}
	return Policy{MinConfidence: minConfidence, MinSimilarity: minSimilarity}
}

// Decide evaluates the rules in order, first match wins:
//
//  1. business critical            -> escalate, regardless of confidence
//  2. confidence >= MinConfidence and SLA risk low and similarity >= MinSimilarity -> auto-resolve
//  3. otherwise                    -> escalate
//
// The decision path is a fixed-order sequence of template strings embedding
// the computed values, so the trace is reproducible from the inputs. The
// caller stamps ProducedAt.
func (p Policy) Decide(in Input) domain.DecisionRecord {
	record := domain.DecisionRecord{
		TicketID:         in.TicketID,
		Category:         in.Classification.Category,
		Confidence:       in.Classification.Confidence,
		SimilarityScore:  in.Similarity.Aggregate,
		SLARisk:          in.Risk.SLARisk,
		RSIScore:         in.Risk.RSIScore,
		BusinessCritical: in.BusinessCritical,
		MatchedKeywords:  in.Classification.MatchedKeywords,
		SimilarTickets:   in.Similarity.Matches,
	}

	path := []string{
		fmt.Sprintf("Ticket classified: %s (confidence: %d%%)", record.Category, record.Confidence),
	}
	if in.Degraded {
		path = append(path, "Degraded analysis: safe defaults substituted, decision biased toward escalation")
	}
	path = append(path,
		fmt.Sprintf("Similarity search: %d matches found (avg: %d%%)", len(in.Similarity.Matches), record.SimilarityScore),
		fmt.Sprintf("SLA risk assessed: %s", strings.ToUpper(string(record.SLARisk))),
		fmt.Sprintf("Business critical: %s", yesNo(in.BusinessCritical)),
		fmt.Sprintf("RSI score: %d", record.RSIScore),
	)

	switch {
	case in.BusinessCritical:
		record.FinalAction = domain.ActionEscalate
		path = append(path,
			"Business critical flag forces human review",
			"Decision: ESCALATE TO HUMAN")
	case record.Confidence >= p.MinConfidence &&
		record.SLARisk == domain.SLARiskLow &&
		record.SimilarityScore >= p.MinSimilarity:
		record.FinalAction = domain.ActionAutoResolve
		path = append(path, "Decision: AUTO RESOLVE")
	default:
		record.FinalAction = domain.ActionEscalate
		path = append(path, "Decision: ESCALATE TO HUMAN")
	}

	record.DecisionPath = path
	return record
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}
