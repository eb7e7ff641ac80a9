package policy

import (
	"reflect"
	"strings"
	"testing"

	"github.com/spec-kit/triage-engine/internal/domain"
)

func autoResolvableInput() Input {
	return Input{
		TicketID: "TF-1001",
		Classification: domain.ClassificationResult{
			Category:        domain.CategoryPasswordReset,
			Confidence:      94,
			MatchedKeywords: []string{"password", "reset"},
		},
		Similarity: domain.SimilarityResult{
			Aggregate: 91,
			Matches: []domain.SimilarTicketRef{
				{ID: "TF-0021", Similarity: 94},
				{ID: "TF-0045", Similarity: 88},
			},
		},
		Risk: domain.RiskAssessment{SLARisk: domain.SLARiskLow, RSIScore: 89},
	}
}

func TestDecide_AutoResolve(t *testing.T) {
	t.Parallel()

	p := New(80, 65)
	record := p.Decide(autoResolvableInput())

	if record.FinalAction != domain.ActionAutoResolve {
		t.Fatalf("finalAction = %s, want %s", record.FinalAction, domain.ActionAutoResolve)
	}
	last := record.DecisionPath[len(record.DecisionPath)-1]
	if last != "Decision: AUTO RESOLVE" {
		t.Errorf("last path step = %q, want %q", last, "Decision: AUTO RESOLVE")
	}
}

func TestDecide_BusinessCriticalAlwaysEscalates(t *testing.T) {
	t.Parallel()

	in := autoResolvableInput()
	in.BusinessCritical = true

	p := New(80, 65)
	record := p.Decide(in)

	if record.FinalAction != domain.ActionEscalate {
		t.Fatalf("finalAction = %s, want %s", record.FinalAction, domain.ActionEscalate)
	}
	joined := strings.Join(record.DecisionPath, "\n")
	if !strings.Contains(joined, "Business critical flag forces human review") {
		t.Errorf("path missing business-critical step:\n%s", joined)
	}
	if record.DecisionPath[len(record.DecisionPath)-1] != "Decision: ESCALATE TO HUMAN" {
		t.Errorf("last path step = %q, want escalation", record.DecisionPath[len(record.DecisionPath)-1])
	}
}

func TestDecide_EscalatesWhenAnyConditionFails(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Input)
	}{
		{"confidence below threshold", func(in *Input) { in.Classification.Confidence = 79 }},
		{"similarity below threshold", func(in *Input) { in.Similarity.Aggregate = 64 }},
		{"sla risk medium", func(in *Input) { in.Risk.SLARisk = domain.SLARiskMedium }},
		{"sla risk high", func(in *Input) { in.Risk.SLARisk = domain.SLARiskHigh }},
	}

	p := New(80, 65)
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := autoResolvableInput()
			tt.mutate(&in)
			record := p.Decide(in)
			if record.FinalAction != domain.ActionEscalate {
				t.Errorf("finalAction = %s, want %s", record.FinalAction, domain.ActionEscalate)
			}
		})
	}
}

func TestDecide_ThresholdsAreInclusive(t *testing.T) {
	t.Parallel()

	in := autoResolvableInput()
	in.Classification.Confidence = 80
	in.Similarity.Aggregate = 65

	p := New(80, 65)
	record := p.Decide(in)
	if record.FinalAction != domain.ActionAutoResolve {
		t.Errorf("finalAction = %s, want auto-resolve at exact thresholds", record.FinalAction)
	}
}

func TestDecide_PathOrderAndValues(t *testing.T) {
	t.Parallel()

	p := New(80, 65)
	record := p.Decide(autoResolvableInput())

	want := []string{
		"Ticket classified: Password Reset (confidence: 94%)",
		"Similarity search: 2 matches found (avg: 91%)",
		"SLA risk assessed: LOW",
		"Business critical: NO",
		"RSI score: 89",
		"Decision: AUTO RESOLVE",
	}
	if !reflect.DeepEqual(record.DecisionPath, want) {
		t.Errorf("decisionPath = %#v, want %#v", record.DecisionPath, want)
	}
}

func TestDecide_DegradedBiasesToEscalation(t *testing.T) {
	t.Parallel()

	in := Input{
		TicketID:       "TF-2002",
		Classification: domain.ClassificationResult{Category: domain.CategoryOther, Confidence: 0},
		Risk:           domain.RiskAssessment{SLARisk: domain.SLARiskLow, RSIScore: 20},
		Degraded:       true,
	}

	p := New(80, 65)
	record := p.Decide(in)

	if record.FinalAction != domain.ActionEscalate {
		t.Fatalf("finalAction = %s, want %s", record.FinalAction, domain.ActionEscalate)
	}
	if record.DecisionPath[1] != "Degraded analysis: safe defaults substituted, decision biased toward escalation" {
		t.Errorf("path[1] = %q, want degraded marker", record.DecisionPath[1])
	}
}

func TestDecide_Deterministic(t *testing.T) {
	t.Parallel()

	p := New(80, 65)
	first := p.Decide(autoResolvableInput())
	for i := 0; i < 10; i++ {
		got := p.Decide(autoResolvableInput())
		if !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d diverged: got %+v, want %+v", i, got, first)
		}
	}
}
