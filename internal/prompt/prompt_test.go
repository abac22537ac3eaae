package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/returnaddress/returnaddress-backend/internal/agentspec"
)

func baseSpec() agentspec.Spec {
	s := agentspec.Default()
	s.Profile.Name = "Fit Coach"
	s.Profile.Description = "Helps with training plans"
	s.Profile.Category = agentspec.CategoryFitness
	return s
}

func TestAssembleIsDeterministic(t *testing.T) {
	in := Input{
		Spec:        baseSpec(),
		CreatorName: "coach-carla",
		Snippets:    []string{"squat twice a week", "deload every fourth week"},
		UserMessage: "How often should I squat?",
	}
	first := Assemble(in)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Assemble(in))
	}
}

func TestAssembleParagraphOrder(t *testing.T) {
	s := baseSpec()
	s.Behavior.AdditionalInstructions = "Never recommend supplements."
	s.Guardrails.DisallowedTopics = []string{"medical diagnosis", "doping"}

	out := Assemble(Input{Spec: s, CreatorName: "coach-carla", UserMessage: "hi"})
	paras := strings.Split(out.System, "\n\n")
	require.Len(t, paras, 6)

	assert.Equal(t, "You are Fit Coach. Helps with training plans.", paras[0])
	assert.Equal(t, "Follow this style: Be direct and concise in your responses.", paras[1])
	assert.Equal(t, "Follow these constraints: Never recommend supplements.", paras[2])
	assert.Equal(t, "Obey these rules:\n- Do not violate: medical diagnosis, doping", paras[3])
	assert.Contains(t, paras[4], "Category policy: default")
	assert.Contains(t, paras[5], "built from coach-carla's materials")
}

func TestAssembleTaxSensitiveDisclaimer(t *testing.T) {
	s := baseSpec()
	s.Profile.Name = "Tax Pro"
	s.Profile.Description = "Answers US tax questions"
	s.Profile.Category = agentspec.CategoryTax
	s.Guardrails.CategoryPolicy = agentspec.PolicySensitive

	out := Assemble(Input{Spec: s, CreatorName: "taxdad", UserMessage: "hi"})
	paras := strings.Split(out.System, "\n\n")

	// Strict disclaimer leads the prompt for sensitive tax agents.
	assert.True(t, strings.HasPrefix(paras[0], "IMPORTANT: This agent provides information in a sensitive domain."))
	assert.Contains(t, out.System, "Category policy: sensitive")
	assert.NotContains(t, out.System, "Category policy: default")
}

func TestAssembleGenericSensitiveDisclaimer(t *testing.T) {
	s := baseSpec()
	s.Guardrails.CategoryPolicy = agentspec.PolicySensitive // fitness is not a strict category

	out := Assemble(Input{Spec: s, UserMessage: "hi"})
	assert.True(t, strings.HasPrefix(out.System, "This agent handles sensitive information."))
}

func TestAssembleDisclosure(t *testing.T) {
	s := baseSpec()

	withName := Assemble(Input{Spec: s, CreatorName: "coach-carla", UserMessage: "hi"})
	assert.Contains(t, withName.System, "built from coach-carla's materials")

	anon := Assemble(Input{Spec: s, UserMessage: "hi"})
	assert.Contains(t, anon.System, "built from the creator's materials")

	s.Guardrails.ShowDisclosure = false
	off := Assemble(Input{Spec: s, CreatorName: "coach-carla", UserMessage: "hi"})
	assert.NotContains(t, off.System, "built from")
}

func TestAssembleContextPrefix(t *testing.T) {
	s := baseSpec()

	plain := Assemble(Input{Spec: s, UserMessage: "How often should I squat?"})
	assert.Equal(t, "How often should I squat?", plain.User)

	withCtx := Assemble(Input{
		Spec:        s,
		Snippets:    []string{"squat twice a week", "deload every fourth week"},
		UserMessage: "How often should I squat?",
	})
	assert.Equal(t,
		"Context:\n- squat twice a week\n- deload every fourth week\n\nUser: How often should I squat?",
		withCtx.User)
}

func TestAssembleUnknownToneOmitted(t *testing.T) {
	s := baseSpec()
	s.Behavior.BaseTone = "sassy"

	out := Assemble(Input{Spec: s, UserMessage: "hi"})
	assert.NotContains(t, out.System, "\n\n\n")
	assert.NotContains(t, out.System, "Follow this style")
}
