// Package prompt builds the system and user messages for an agent
// invocation. Assembly is pure: the same spec, creator name, snippets, and
// user message always produce byte-identical output.
package prompt

import (
	"fmt"
	"strings"

	"github.com/returnaddress/returnaddress-backend/internal/agentspec"
)

// Input carries everything assembly depends on. No clocks, no randomness.
type Input struct {
	Spec        agentspec.Spec
	CreatorName string
	Snippets    []string
	UserMessage string
}

// Output is the assembled message pair handed to the model client.
type Output struct {
	System string
	User   string
}

const (
	strictSensitiveDisclaimer = "IMPORTANT: This agent provides information in a sensitive domain. " +
		"You are an AI assistant, not a licensed professional. " +
		"Always advise users to consult with qualified professionals for official advice, " +
		"legal matters, tax preparation, medical diagnoses, or financial decisions. " +
		"Your responses are informational only and do not constitute professional advice."

	genericSensitiveDisclaimer = "This agent handles sensitive information. Be extra cautious and respectful. " +
		"Always remind users that you are an AI assistant and not a licensed professional."

	sensitivePolicyRule = "- Category policy: sensitive (This means you must be extra cautious, " +
		"always recommend consulting professionals, and never provide definitive legal, " +
		"medical, or financial advice without disclaimers.)"

	defaultPolicyRule = "- Category policy: default (Standard AI assistant guidelines apply.)"
)

var toneInstructions = map[string]string{
	agentspec.ToneDirect:   "Follow this style: Be direct and concise in your responses.",
	agentspec.ToneFriendly: "Follow this style: Be warm, friendly, and conversational.",
	agentspec.ToneFormal:   "Follow this style: Be professional and formal in your communication style.",
}

// Categories that get the strict professional-advice disclaimer when the
// sensitive policy is on.
var strictCategories = map[string]bool{
	"tax":    true,
	"legal":  true,
	"health": true,
}

// Assemble builds the system prompt paragraph by paragraph in a fixed order
// and prefixes the user message with retrieval context when snippets exist.
func Assemble(in Input) Output {
	spec := in.Spec
	var parts []string

	if spec.Guardrails.CategoryPolicy == agentspec.PolicySensitive {
		if strictCategories[spec.Profile.Category] {
			parts = append(parts, strictSensitiveDisclaimer)
		} else {
			parts = append(parts, genericSensitiveDisclaimer)
		}
	}

	parts = append(parts, fmt.Sprintf("You are %s. %s.", spec.Profile.Name, spec.Profile.Description))

	parts = append(parts, toneInstructions[spec.Behavior.BaseTone])

	if spec.Behavior.AdditionalInstructions != "" {
		parts = append(parts, "Follow these constraints: "+spec.Behavior.AdditionalInstructions)
	}

	if len(spec.Guardrails.DisallowedTopics) > 0 {
		parts = append(parts, "Obey these rules:\n- Do not violate: "+strings.Join(spec.Guardrails.DisallowedTopics, ", "))
	}

	if spec.Guardrails.CategoryPolicy == agentspec.PolicySensitive {
		parts = append(parts, sensitivePolicyRule)
	} else {
		parts = append(parts, defaultPolicyRule)
	}

	if spec.Guardrails.ShowDisclosure {
		creator := in.CreatorName
		if creator == "" {
			creator = "the creator"
		}
		parts = append(parts, fmt.Sprintf(
			"Always remind the user you are an AI assistant built from %s's materials, "+
				"not a licensed professional unless explicitly stated. "+
				"Responses are generated and should be verified for accuracy.", creator))
	}

	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}

	user := in.UserMessage
	if len(in.Snippets) > 0 {
		var ctx strings.Builder
		for i, s := range in.Snippets {
			if i > 0 {
				ctx.WriteString("\n")
			}
			ctx.WriteString("- ")
			ctx.WriteString(s)
		}
		user = fmt.Sprintf("Context:\n%s\n\nUser: %s", ctx.String(), in.UserMessage)
	}

	return Output{
		System: strings.Join(nonEmpty, "\n\n"),
		User:   user,
	}
}
