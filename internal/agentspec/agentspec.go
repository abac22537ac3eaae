// Package agentspec defines the versioned agent configuration document,
// its validation rules, and the default template new agents start from.
package agentspec

import (
	"encoding/json"
	"fmt"
)

const (
	CategoryTax        = "tax"
	CategoryFitness    = "fitness"
	CategoryCoaching   = "coaching"
	CategoryBusiness   = "business"
	CategoryRealEstate = "real_estate"
	CategoryOther      = "other"

	ToneDirect   = "direct"
	ToneFriendly = "friendly"
	ToneFormal   = "formal"

	PolicyDefault   = "default"
	PolicySensitive = "sensitive"

	ProviderOpenAI = "openai"

	PlanSubscription = "subscription"
)

type Profile struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

type Model struct {
	Provider    string  `json:"provider"`
	ModelID     string  `json:"modelId"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"maxTokens"`
}

type Knowledge struct {
	Enabled bool     `json:"enabled"`
	FileIDs []string `json:"fileIds"`
	TopK    int      `json:"topK"`
}

type Behavior struct {
	BaseTone               string `json:"baseTone"`
	AdditionalInstructions string `json:"additionalInstructions,omitempty"`
}

type Guardrails struct {
	ShowDisclosure   bool     `json:"showDisclosure"`
	DisallowedTopics []string `json:"disallowedTopics"`
	CategoryPolicy   string   `json:"categoryPolicy"`
}

type Pricing struct {
	PlanType        string  `json:"planType"`
	MonthlyPriceUSD float64 `json:"monthlyPriceUsd"`
	TrialMessages   int     `json:"trialMessages"`
}

type Limits struct {
	MaxMessagesPerDay int `json:"maxMessagesPerDay"`
}

// Spec is the full configuration document for one agent version. Stored as
// jsonb; every write path validates before persisting.
type Spec struct {
	Profile    Profile    `json:"profile"`
	Model      Model      `json:"model"`
	Knowledge  Knowledge  `json:"knowledge"`
	Behavior   Behavior   `json:"behavior"`
	Guardrails Guardrails `json:"guardrails"`
	Pricing    Pricing    `json:"pricing"`
	Limits     Limits     `json:"limits"`
}

// Violation names one failed validation rule. Field is the dotted JSON path,
// Rule a short human-readable description of what was expected.
type Violation struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

func (v Violation) String() string { return fmt.Sprintf("%s: %s", v.Field, v.Rule) }

var categories = map[string]bool{
	CategoryTax:        true,
	CategoryFitness:    true,
	CategoryCoaching:   true,
	CategoryBusiness:   true,
	CategoryRealEstate: true,
	CategoryOther:      true,
}

var tones = map[string]bool{
	ToneDirect:   true,
	ToneFriendly: true,
	ToneFormal:   true,
}

// Validate checks every field and returns the full list of violations so a
// creator can fix a whole form in one pass. An empty slice means the spec is
// acceptable.
func Validate(s Spec) []Violation {
	var out []Violation
	add := func(field, rule string) {
		out = append(out, Violation{Field: field, Rule: rule})
	}

	if s.Profile.Name == "" {
		add("profile.name", "must not be empty")
	}
	if s.Profile.Description == "" {
		add("profile.description", "must not be empty")
	}
	if !categories[s.Profile.Category] {
		add("profile.category", "must be one of tax, fitness, coaching, business, real_estate, other")
	}

	if s.Model.Provider != ProviderOpenAI {
		add("model.provider", `must be "openai"`)
	}
	if s.Model.ModelID == "" {
		add("model.modelId", "must not be empty")
	}
	if s.Model.Temperature < 0 || s.Model.Temperature > 1 {
		add("model.temperature", "must be between 0 and 1")
	}
	if s.Model.MaxTokens <= 0 {
		add("model.maxTokens", "must be greater than 0")
	}

	if s.Knowledge.TopK <= 0 {
		add("knowledge.topK", "must be greater than 0")
	}

	if !tones[s.Behavior.BaseTone] {
		add("behavior.baseTone", "must be one of direct, friendly, formal")
	}

	if s.Guardrails.CategoryPolicy != PolicyDefault && s.Guardrails.CategoryPolicy != PolicySensitive {
		add("guardrails.categoryPolicy", "must be one of default, sensitive")
	}

	if s.Pricing.PlanType != PlanSubscription {
		add("pricing.planType", `must be "subscription"`)
	}
	if s.Pricing.MonthlyPriceUSD < 0 {
		add("pricing.monthlyPriceUsd", "must not be negative")
	}
	if s.Pricing.TrialMessages < 0 {
		add("pricing.trialMessages", "must not be negative")
	}

	if s.Limits.MaxMessagesPerDay < 1 {
		add("limits.maxMessagesPerDay", "must be at least 1")
	}

	return out
}

// Default returns the template new agents start from.
func Default() Spec {
	return Spec{
		Profile: Profile{
			Category: CategoryOther,
		},
		Model: Model{
			Provider:    ProviderOpenAI,
			ModelID:     "gpt-4.1-mini",
			Temperature: 0.7,
			MaxTokens:   2000,
		},
		Knowledge: Knowledge{
			Enabled: false,
			FileIDs: []string{},
			TopK:    5,
		},
		Behavior: Behavior{
			BaseTone: ToneDirect,
		},
		Guardrails: Guardrails{
			ShowDisclosure:   true,
			DisallowedTopics: []string{},
			CategoryPolicy:   PolicyDefault,
		},
		Pricing: Pricing{
			PlanType:        PlanSubscription,
			MonthlyPriceUSD: 0,
			TrialMessages:   5,
		},
		Limits: Limits{
			MaxMessagesPerDay: 50,
		},
	}
}

// Parse decodes a stored spec payload.
func Parse(raw []byte) (Spec, error) {
	var s Spec
	if err := json.Unmarshal(raw, &s); err != nil {
		return Spec{}, fmt.Errorf("decode agent spec: %w", err)
	}
	return s, nil
}
