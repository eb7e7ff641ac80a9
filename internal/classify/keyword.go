package classify

import (
	"context"
	"strings"

	"github.com/spec-kit/triage-engine/internal/domain"
)

// otherConfidence is the fixed confidence for the "Other" fallback. It sits
// below the auto-resolve threshold so an unrecognized ticket can never be
// auto-resolved on classification alone.
const otherConfidence = 55

// Term is a weighted trigger term. Multi-word terms are matched as phrases,
// single words against the token set.
type Term struct {
	Word   string
	Weight int
}

// Profile is one category's trigger terms. Profiles are evaluated in slice
// order; equal scores resolve to the earlier profile (ordered by historical
// ticket volume, most common first).
type Profile struct {
	Category string
	Terms    []Term
}

// KeywordClassifier scores tickets by weighted trigger-term overlap,
// normalized to 0-100.
type KeywordClassifier struct {
	profiles []Profile
	floor    int
}

// NewKeywordClassifier builds a classifier over the default profiles. Tickets
// whose best score falls below floor classify as "Other".
func NewKeywordClassifier(floor int) *KeywordClassifier {
	return NewKeywordClassifierWithProfiles(DefaultProfiles(), floor)
}

// NewKeywordClassifierWithProfiles builds a classifier over custom profiles.
func NewKeywordClassifierWithProfiles(profiles []Profile, floor int) *KeywordClassifier {
	if floor <= 0 {
		floor = 25
	}
	return &KeywordClassifier{profiles: profiles, floor: floor}
}

// Classify scores title+description against every profile and selects the
// highest-scoring category, earliest profile winning ties.
func (k *KeywordClassifier) Classify(_ context.Context, title, description string) (domain.ClassificationResult, error) {
	text := normalize(title + " " + description)
	tokens := tokenSet(text)

	best := domain.ClassificationResult{Category: domain.CategoryOther}
	for _, profile := range k.profiles {
		score := 0
		var matched []string
		for _, term := range profile.Terms {
			if termMatches(term.Word, text, tokens) {
				score += term.Weight
				matched = append(matched, term.Word)
			}
		}
		if score > 100 {
			score = 100
		}
		if score > best.Confidence {
			best = domain.ClassificationResult{
				Category:        profile.Category,
				Confidence:      score,
				MatchedKeywords: matched,
			}
		}
	}

	if best.Confidence < k.floor {
		return domain.ClassificationResult{
			Category:        domain.CategoryOther,
			Confidence:      otherConfidence,
			MatchedKeywords: best.MatchedKeywords,
		}, nil
	}
	return best, nil
}

func termMatches(term, text string, tokens map[string]struct{}) bool {
	if strings.ContainsAny(term, " -") {
		return strings.Contains(text, term)
	}
	_, ok := tokens[term]
	return ok
}

// normalize lowercases and strips punctuation except intra-word hyphens.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return b.String()
}

func tokenSet(normalized string) map[string]struct{} {
	fields := strings.Fields(normalized)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[strings.Trim(f, "-")] = struct{}{}
	}
	return set
}

// DefaultProfiles returns the built-in category profiles in priority order.
func DefaultProfiles() []Profile {
	return []Profile{
		{Category: domain.CategoryPasswordReset, Terms: []Term{
			{"password", 40}, {"reset", 30}, {"active directory", 15}, {"ad", 10},
			{"unlock", 15}, {"credentials", 10}, {"expired", 10}, {"self-service", 10}, {"login", 5},
		}},
		{Category: domain.CategoryAccessRequest, Terms: []Term{
			{"access", 40}, {"permission", 25}, {"provision", 15}, {"role", 15},
			{"read-only", 10}, {"request", 10}, {"account", 10}, {"okta", 10},
		}},
		{Category: domain.CategorySoftwareInstall, Terms: []Term{
			{"install", 35}, {"software", 25}, {"update", 15}, {"upgrade", 15},
			{"application", 10}, {"crash", 15}, {"license", 10}, {"version", 5},
		}},
		{Category: domain.CategoryNetworkIssue, Terms: []Term{
			{"network", 35}, {"wifi", 30}, {"wi-fi", 30}, {"ethernet", 15},
			{"dns", 15}, {"dhcp", 15}, {"access point", 10}, {"connectivity", 15}, {"outage", 10},
		}},
		{Category: domain.CategoryVPNProblem, Terms: []Term{
			{"vpn", 45}, {"tunnel", 20}, {"disconnect", 20}, {"split-tunneling", 10},
			{"remote", 10}, {"gateway", 10},
		}},
		{Category: domain.CategoryEmailIssue, Terms: []Term{
			{"email", 35}, {"outlook", 25}, {"mailbox", 20}, {"exchange", 15},
			{"smtp", 15}, {"calendar", 10}, {"sync", 10}, {"spam", 10},
		}},
		{Category: domain.CategoryHardwareFailure, Terms: []Term{
			{"hardware", 30}, {"laptop", 25}, {"macbook", 20}, {"disk", 15},
			{"monitor", 10}, {"battery", 15}, {"printer", 15}, {"device", 10},
		}},
		{Category: domain.CategoryDatabaseError, Terms: []Term{
			{"database", 40}, {"sql", 25}, {"postgresql", 20}, {"db", 15},
			{"query", 15}, {"replication", 10}, {"cpu", 10},
		}},
		{Category: domain.CategorySecurityAlert, Terms: []Term{
			{"security", 35}, {"breach", 30}, {"phishing", 25}, {"malware", 25},
			{"suspicious", 20}, {"compromise", 20}, {"hack", 20}, {"mfa", 15},
		}},
	}
}
