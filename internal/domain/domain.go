// Package domain aggregates the persisted entity types so callers can
// import a single package as "types".
package domain

import (
	"github.com/returnaddress/returnaddress-backend/internal/domain/agent"
	"github.com/returnaddress/returnaddress-backend/internal/domain/billing"
	"github.com/returnaddress/returnaddress-backend/internal/domain/convo"
	"github.com/returnaddress/returnaddress-backend/internal/domain/user"
)

type (
	User      = user.User
	UserToken = user.UserToken

	Agent          = agent.Agent
	AgentSpec      = agent.SpecVersion
	KnowledgeChunk = agent.KnowledgeChunk

	Subscription = billing.Subscription

	Message  = convo.Message
	UsageLog = convo.UsageLog
)

const (
	AuthProviderPassword  = user.AuthProviderPassword
	AuthProviderAnonymous = user.AuthProviderAnonymous

	AgentStatusDraft     = agent.StatusDraft
	AgentStatusPublished = agent.StatusPublished
	AgentStatusSuspended = agent.StatusSuspended

	SubscriptionActive   = billing.StatusActive
	SubscriptionTrialing = billing.StatusTrialing
	SubscriptionPastDue  = billing.StatusPastDue
	SubscriptionCanceled = billing.StatusCanceled

	RoleUser      = convo.RoleUser
	RoleAssistant = convo.RoleAssistant
)
