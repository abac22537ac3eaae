package agentspec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	s := Default()
	s.Profile.Name = "Tax Helper"
	s.Profile.Description = "Answers tax questions."
	assert.Empty(t, Validate(s))
}

func TestValidateCollectsAllViolations(t *testing.T) {
	s := Spec{} // zero value fails nearly every rule
	got := Validate(s)

	fields := map[string]bool{}
	for _, v := range got {
		fields[v.Field] = true
	}
	for _, want := range []string{
		"profile.name",
		"profile.description",
		"profile.category",
		"model.provider",
		"model.modelId",
		"model.maxTokens",
		"knowledge.topK",
		"behavior.baseTone",
		"guardrails.categoryPolicy",
		"pricing.planType",
		"limits.maxMessagesPerDay",
	} {
		assert.True(t, fields[want], "expected violation for %s", want)
	}
}

func TestValidateFieldRules(t *testing.T) {
	base := Default()
	base.Profile.Name = "Coach"
	base.Profile.Description = "A coach."

	cases := []struct {
		name   string
		mutate func(*Spec)
		field  string
	}{
		{"temperature above 1", func(s *Spec) { s.Model.Temperature = 1.5 }, "model.temperature"},
		{"temperature below 0", func(s *Spec) { s.Model.Temperature = -0.1 }, "model.temperature"},
		{"unknown category", func(s *Spec) { s.Profile.Category = "astrology" }, "profile.category"},
		{"unknown tone", func(s *Spec) { s.Behavior.BaseTone = "sassy" }, "behavior.baseTone"},
		{"unknown provider", func(s *Spec) { s.Model.Provider = "anthropic" }, "model.provider"},
		{"negative price", func(s *Spec) { s.Pricing.MonthlyPriceUSD = -1 }, "pricing.monthlyPriceUsd"},
		{"negative trial", func(s *Spec) { s.Pricing.TrialMessages = -1 }, "pricing.trialMessages"},
		{"zero daily cap", func(s *Spec) { s.Limits.MaxMessagesPerDay = 0 }, "limits.maxMessagesPerDay"},
		{"zero topK", func(s *Spec) { s.Knowledge.TopK = 0 }, "knowledge.topK"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := base
			tc.mutate(&s)
			got := Validate(s)
			require.Len(t, got, 1)
			assert.Equal(t, tc.field, got[0].Field)
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	s := Default()
	s.Profile.Name = "Realtor Bot"
	s.Profile.Description = "Knows the local market."
	s.Profile.Category = CategoryRealEstate

	raw, err := json.Marshal(s)
	require.NoError(t, err)

	got, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse([]byte("{not json"))
	assert.Error(t, err)
}
