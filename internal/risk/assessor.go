// Package risk derives SLA risk and the Resolution Stability Index from
// similarity results and ticket metadata.
package risk

import (
	"math"
	"strings"

	"github.com/spec-kit/triage-engine/internal/domain"
)

// Params are the tunable RSI coefficients. The contract is monotonicity:
// higher aggregate similarity and more consistent matches never decrease RSI.
type Params struct {
	Baseline         int
	SimilarityWeight int
	ConsistencyBonus int // per consistent match
	ConsistencyCap   int
	ConsistencyFloor int // minimum similarity for a match to count as consistent
	VarianceWeight   float64
}

// DefaultParams mirror the shipped configuration defaults.
func DefaultParams() Params {
	return Params{
		Baseline:         20,
		SimilarityWeight: 60,
		ConsistencyBonus: 4,
		ConsistencyCap:   20,
		ConsistencyFloor: 60,
		VarianceWeight:   0.5,
	}
}

// scopeSignals mark descriptions whose blast radius exceeds a single user.
var scopeSignals = []string{
	"entire", "all users", "everyone", "office-wide", "site-wide",
	"whole office", "all-hands", "production", "outage", "multiple users",
	"customer-facing", "revenue",
}

// Assessor derives RiskAssessments. Zero-value params are replaced by defaults.
type Assessor struct {
	params Params
}

// NewAssessor builds an assessor with the given coefficients.
func NewAssessor(params Params) *Assessor {
	if params.SimilarityWeight == 0 {
		params = DefaultParams()
	}
	return &Assessor{params: params}
}

// Assess applies the SLA risk rule table and the RSI formula.
//
// SLA risk, exhaustive in rule order:
//  1. businessCritical or priority critical  -> high
//  2. priority high or a scope signal present -> medium
//  3. otherwise                               -> low
func (a *Assessor) Assess(ticket *domain.Ticket, sim domain.SimilarityResult) domain.RiskAssessment {
	return domain.RiskAssessment{
		SLARisk:  a.slaRisk(ticket),
		RSIScore: a.rsi(sim),
	}
}

func (a *Assessor) slaRisk(ticket *domain.Ticket) domain.SLARisk {
	switch {
	case ticket.BusinessCritical, ticket.Priority == domain.TicketPriorityCritical:
		return domain.SLARiskHigh
	case ticket.Priority == domain.TicketPriorityHigh, a.hasScopeSignal(ticket):
		return domain.SLARiskMedium
	default:
		return domain.SLARiskLow
	}
}

func (a *Assessor) hasScopeSignal(ticket *domain.Ticket) bool {
	text := strings.ToLower(ticket.Description + " " + ticket.Department)
	for _, signal := range scopeSignals {
		if strings.Contains(text, signal) {
			return true
		}
	}
	return false
}

// rsi = clamp(0, 100, baseline + similarity bonus + consistency bonus - variance penalty).
func (a *Assessor) rsi(sim domain.SimilarityResult) int {
	p := a.params

	similarityBonus := float64(p.SimilarityWeight) * float64(sim.Aggregate) / 100

	consistent := 0
	for _, m := range sim.Matches {
		if m.Similarity >= p.ConsistencyFloor {
			consistent++
		}
	}
	consistencyBonus := consistent * p.ConsistencyBonus
	if consistencyBonus > p.ConsistencyCap {
		consistencyBonus = p.ConsistencyCap
	}

	penalty := p.VarianceWeight * stddev(sim.Matches)

	score := float64(p.Baseline) + similarityBonus + float64(consistencyBonus) - penalty
	return clamp(int(math.Round(score)))
}

func stddev(matches []domain.SimilarTicketRef) float64 {
	if len(matches) < 2 {
		return 0
	}
	mean := 0.0
	for _, m := range matches {
		mean += float64(m.Similarity)
	}
	mean /= float64(len(matches))

	variance := 0.0
	for _, m := range matches {
		d := float64(m.Similarity) - mean
		variance += d * d
	}
	variance /= float64(len(matches))
	return math.Sqrt(variance)
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
