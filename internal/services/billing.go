package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"gorm.io/gorm"

	"github.com/returnaddress/returnaddress-backend/internal/agentspec"
	"github.com/returnaddress/returnaddress-backend/internal/clients/stripepay"
	"github.com/returnaddress/returnaddress-backend/internal/data/repos"
	types "github.com/returnaddress/returnaddress-backend/internal/domain"
	"github.com/returnaddress/returnaddress-backend/internal/platform/apierr"
	"github.com/returnaddress/returnaddress-backend/internal/platform/logger"
)

type BillingConfig struct {
	AppBaseURL     string
	PlatformFeeBps int
}

type BillingService interface {
	Subscribe(ctx context.Context, userID uuid.UUID, slug string) (string, error)
	ConnectOnboard(ctx context.Context, userID uuid.UUID) (string, error)
	HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error
}

type billingService struct {
	log       *logger.Logger
	cfg       BillingConfig
	stripeAPI stripepay.Client
	userRepo  repos.UserRepo
	agentRepo repos.AgentRepo
	specRepo  repos.SpecRepo
	subRepo   repos.SubscriptionRepo
}

func NewBillingService(
	log *logger.Logger,
	cfg BillingConfig,
	stripeAPI stripepay.Client,
	userRepo repos.UserRepo,
	agentRepo repos.AgentRepo,
	specRepo repos.SpecRepo,
	subRepo repos.SubscriptionRepo,
) BillingService {
	serviceLog := log.With("service", "BillingService")
	return &billingService{
		log:       serviceLog,
		cfg:       cfg,
		stripeAPI: stripeAPI,
		userRepo:  userRepo,
		agentRepo: agentRepo,
		specRepo:  specRepo,
		subRepo:   subRepo,
	}
}

// Subscribe starts a checkout session for the published agent and returns
// the hosted checkout URL.
func (bs *billingService) Subscribe(ctx context.Context, userID uuid.UUID, slug string) (string, error) {
	agent, err := bs.agentRepo.GetPublishedBySlug(ctx, nil, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apierr.New(http.StatusNotFound, "agent_not_found", fmt.Errorf("no published agent %q", slug))
		}
		return "", fmt.Errorf("load agent: %w", err)
	}

	owner, err := bs.userRepo.GetByID(ctx, nil, agent.OwnerID)
	if err != nil {
		return "", fmt.Errorf("load owner: %w", err)
	}
	if owner.StripeAccountID == "" {
		return "", apierr.New(http.StatusBadRequest, "creator_payout_unavailable",
			errors.New("creator has no payout account"))
	}

	if _, err := bs.subRepo.GetActiveForUserAgent(ctx, nil, userID, agent.ID); err == nil {
		return "", apierr.New(http.StatusBadRequest, "already_subscribed",
			errors.New("an active subscription already exists"))
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("check subscription: %w", err)
	}

	specRow, err := bs.specRepo.GetActive(ctx, nil, agent.ID)
	if err != nil {
		return "", apierr.New(http.StatusInternalServerError, "agent_config_error", err)
	}
	spec, err := agentspec.Parse(specRow.Payload)
	if err != nil {
		return "", apierr.New(http.StatusInternalServerError, "agent_config_error", err)
	}

	subscriber, err := bs.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return "", fmt.Errorf("load subscriber: %w", err)
	}
	customerID := subscriber.StripeCustomerID
	if customerID == "" {
		customerID, err = bs.stripeAPI.CreateCustomer(ctx, subscriber.Email, userID.String())
		if err != nil {
			return "", fmt.Errorf("create customer: %w", err)
		}
		if err := bs.userRepo.SetStripeCustomerID(ctx, nil, userID, customerID); err != nil {
			return "", fmt.Errorf("persist customer id: %w", err)
		}
	}

	url, err := bs.stripeAPI.CreateSubscriptionCheckout(ctx, stripepay.CheckoutParams{
		CustomerID:         customerID,
		AgentName:          spec.Profile.Name,
		MonthlyPriceUSD:    spec.Pricing.MonthlyPriceUSD,
		PlatformFeePercent: float64(bs.cfg.PlatformFeeBps) / 100,
		DestinationAccount: owner.StripeAccountID,
		AgentID:            agent.ID.String(),
		UserID:             userID.String(),
		SuccessURL:         bs.cfg.AppBaseURL + "/agents/" + slug + "?subscribed=1",
		CancelURL:          bs.cfg.AppBaseURL + "/agents/" + slug,
	})
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return url, nil
}

// ConnectOnboard ensures the creator has an Express account and returns a
// fresh onboarding link.
func (bs *billingService) ConnectOnboard(ctx context.Context, userID uuid.UUID) (string, error) {
	u, err := bs.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}

	accountID := u.StripeAccountID
	if accountID == "" {
		accountID, err = bs.stripeAPI.CreateExpressAccount(ctx, u.Email)
		if err != nil {
			return "", fmt.Errorf("create express account: %w", err)
		}
		if err := bs.userRepo.SetStripeAccountID(ctx, nil, userID, accountID); err != nil {
			return "", fmt.Errorf("persist account id: %w", err)
		}
	}

	url, err := bs.stripeAPI.AccountOnboardingLink(ctx, accountID,
		bs.cfg.AppBaseURL+"/creator/payouts?refresh=1",
		bs.cfg.AppBaseURL+"/creator/payouts?complete=1",
	)
	if err != nil {
		return "", fmt.Errorf("create onboarding link: %w", err)
	}
	return url, nil
}

// HandleWebhook verifies the signature and applies the event. Events we
// cannot correlate are logged and acknowledged so Stripe stops retrying.
func (bs *billingService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := bs.stripeAPI.ConstructEvent(payload, sigHeader)
	if err != nil {
		return apierr.New(http.StatusBadRequest, "invalid_signature", err)
	}

	switch event.Type {
	case "checkout.session.completed":
		return bs.handleCheckoutCompleted(ctx, event)
	case "customer.subscription.updated":
		return bs.handleSubscriptionUpdated(ctx, event)
	case "customer.subscription.deleted":
		return bs.handleSubscriptionDeleted(ctx, event)
	case "invoice.payment_failed":
		return bs.handlePaymentFailed(ctx, event)
	default:
		return nil
	}
}

func (bs *billingService) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return apierr.New(http.StatusBadRequest, "invalid_payload", err)
	}
	if sess.Subscription == nil || sess.Subscription.ID == "" {
		bs.log.Warn("checkout session without subscription id", "event_id", event.ID)
		return nil
	}

	sub, err := bs.stripeAPI.GetSubscription(ctx, sess.Subscription.ID)
	if err != nil {
		return fmt.Errorf("retrieve subscription: %w", err)
	}

	meta := sub.Metadata
	if len(meta) == 0 {
		meta = sess.Metadata
	}
	return bs.upsertFromStripe(ctx, sub, meta, event.ID)
}

func (bs *billingService) handleSubscriptionUpdated(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return apierr.New(http.StatusBadRequest, "invalid_payload", err)
	}
	return bs.upsertFromStripe(ctx, &sub, sub.Metadata, event.ID)
}

func (bs *billingService) handleSubscriptionDeleted(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return apierr.New(http.StatusBadRequest, "invalid_payload", err)
	}
	if err := bs.subRepo.UpdateStatusByStripeID(ctx, nil, sub.ID, types.SubscriptionCanceled, nil); err != nil {
		return fmt.Errorf("mark canceled: %w", err)
	}
	return nil
}

func (bs *billingService) handlePaymentFailed(ctx context.Context, event stripe.Event) error {
	var inv stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
		return apierr.New(http.StatusBadRequest, "invalid_payload", err)
	}
	if inv.Subscription == nil || inv.Subscription.ID == "" {
		bs.log.Warn("payment_failed invoice without subscription id", "event_id", event.ID)
		return nil
	}
	if err := bs.subRepo.UpdateStatusByStripeID(ctx, nil, inv.Subscription.ID, types.SubscriptionPastDue, nil); err != nil {
		return fmt.Errorf("mark past_due: %w", err)
	}
	return nil
}

// upsertFromStripe converges the local row on the event's subscription,
// keyed by the Stripe subscription id. Replays and out-of-order deliveries
// land on the same row.
func (bs *billingService) upsertFromStripe(ctx context.Context, sub *stripe.Subscription, meta map[string]string, eventID string) error {
	agentID, err := uuid.Parse(meta["agentId"])
	if err != nil {
		// Without correlating metadata there is nothing to attach this to;
		// acknowledge so Stripe does not retry forever.
		bs.log.Warn("subscription event without usable agentId metadata", "event_id", eventID)
		return nil
	}
	userID, err := uuid.Parse(meta["userId"])
	if err != nil {
		bs.log.Warn("subscription event without usable userId metadata", "event_id", eventID)
		return nil
	}

	customerID := ""
	if sub.Customer != nil {
		customerID = sub.Customer.ID
	}

	var periodEnd *time.Time
	if sub.CurrentPeriodEnd > 0 {
		t := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
		periodEnd = &t
	}

	if _, err := bs.subRepo.UpsertByStripeID(ctx, nil, &types.Subscription{
		UserID:               userID,
		AgentID:              agentID,
		StripeSubscriptionID: sub.ID,
		StripeCustomerID:     customerID,
		Status:               string(sub.Status),
		CurrentPeriodEnd:     periodEnd,
	}); err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}
