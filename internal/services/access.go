package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/returnaddress/returnaddress-backend/internal/agentspec"
	"github.com/returnaddress/returnaddress-backend/internal/data/repos"
	"github.com/returnaddress/returnaddress-backend/internal/observability"
	"github.com/returnaddress/returnaddress-backend/internal/platform/apierr"
	"github.com/returnaddress/returnaddress-backend/internal/platform/logger"
)

const (
	burstWindow      = 10 * time.Minute
	burstMaxRequests = 60
	dailyWindow      = 24 * time.Hour
)

// AccessDecision records how an admitted invocation got through the gate.
type AccessDecision struct {
	Subscribed bool
	IsTrial    bool
}

// AccessService decides whether a caller may invoke an agent right now.
// Checks run in a fixed order: subscription, lifetime trial budget, 24 hour
// cap, burst window. Counting is read-then-act without locks, so concurrent
// requests can slightly over-admit; per caller that is acceptable.
type AccessService interface {
	Check(ctx context.Context, agentID uuid.UUID, callerID string, userID *uuid.UUID, spec agentspec.Spec) (*AccessDecision, error)
}

type accessService struct {
	log       *logger.Logger
	subRepo   repos.SubscriptionRepo
	msgRepo   repos.MessageRepo
	usageRepo repos.UsageLogRepo
	metrics   *observability.Metrics
}

func NewAccessService(
	log *logger.Logger,
	subRepo repos.SubscriptionRepo,
	msgRepo repos.MessageRepo,
	usageRepo repos.UsageLogRepo,
	metrics *observability.Metrics,
) AccessService {
	serviceLog := log.With("service", "AccessService")
	return &accessService{
		log:       serviceLog,
		subRepo:   subRepo,
		msgRepo:   msgRepo,
		usageRepo: usageRepo,
		metrics:   metrics,
	}
}

func (as *accessService) Check(ctx context.Context, agentID uuid.UUID, callerID string, userID *uuid.UUID, spec agentspec.Spec) (*AccessDecision, error) {
	decision := &AccessDecision{}

	// Anonymous callers can never hold a subscription.
	if userID != nil {
		_, err := as.subRepo.GetActiveForUserAgent(ctx, nil, *userID, agentID)
		switch {
		case err == nil:
			decision.Subscribed = true
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return nil, fmt.Errorf("check subscription: %w", err)
		}
	}

	if !decision.Subscribed {
		lifetime, err := as.msgRepo.CountUserMessages(ctx, nil, agentID, callerID)
		if err != nil {
			return nil, fmt.Errorf("count trial messages: %w", err)
		}
		if lifetime >= int64(spec.Pricing.TrialMessages) {
			as.metrics.IncGateDecision("subscription_required")
			return nil, apierr.New(http.StatusPaymentRequired, "subscription_required",
				fmt.Errorf("trial budget of %d messages exhausted", spec.Pricing.TrialMessages))
		}
		decision.IsTrial = true
	}

	now := time.Now()

	daily, err := as.msgRepo.CountUserMessagesSince(ctx, nil, agentID, callerID, now.Add(-dailyWindow))
	if err != nil {
		return nil, fmt.Errorf("count daily messages: %w", err)
	}
	if daily >= int64(spec.Limits.MaxMessagesPerDay) {
		as.metrics.IncGateDecision("limit_reached")
		return nil, apierr.New(http.StatusTooManyRequests, "limit_reached",
			fmt.Errorf("daily cap of %d messages reached", spec.Limits.MaxMessagesPerDay))
	}

	burst, err := as.usageRepo.CountByCallerSince(ctx, nil, agentID, callerID, now.Add(-burstWindow))
	if err != nil {
		return nil, fmt.Errorf("count burst window: %w", err)
	}
	if burst >= burstMaxRequests {
		as.metrics.IncGateDecision("rate_limited")
		return nil, apierr.New(http.StatusTooManyRequests, "rate_limited",
			fmt.Errorf("more than %d requests in %s", burstMaxRequests, burstWindow))
	}

	if decision.Subscribed {
		as.metrics.IncGateDecision("admitted_subscription")
	} else {
		as.metrics.IncGateDecision("admitted_trial")
	}
	return decision, nil
}
