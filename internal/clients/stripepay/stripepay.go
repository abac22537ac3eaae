// Package stripepay wraps the Stripe API surface the billing service needs:
// customers, Connect Express accounts, subscription checkout with a platform
// fee, and webhook signature verification.
package stripepay

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/account"
	"github.com/stripe/stripe-go/v79/accountlink"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/customer"
	"github.com/stripe/stripe-go/v79/subscription"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/returnaddress/returnaddress-backend/internal/platform/envutil"
	"github.com/returnaddress/returnaddress-backend/internal/platform/logger"
)

type CheckoutParams struct {
	CustomerID         string
	AgentName          string
	MonthlyPriceUSD    float64
	PlatformFeePercent float64
	DestinationAccount string
	AgentID            string
	UserID             string
	SuccessURL         string
	CancelURL          string
}

type Client interface {
	CreateCustomer(ctx context.Context, email string, userID string) (string, error)
	CreateExpressAccount(ctx context.Context, email string) (string, error)
	AccountOnboardingLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error)
	CreateSubscriptionCheckout(ctx context.Context, p CheckoutParams) (string, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error)
	ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error)
}

type client struct {
	webhookSecret string
	log           *logger.Logger
}

func NewClient(baseLog *logger.Logger) (Client, error) {
	secretKey := envutil.String("STRIPE_SECRET_KEY", "")
	if secretKey == "" {
		return nil, errors.New("STRIPE_SECRET_KEY is not set")
	}
	stripe.Key = secretKey

	return &client{
		webhookSecret: envutil.String("STRIPE_WEBHOOK_SECRET", ""),
		log:           baseLog.With("client", "StripeClient"),
	}, nil
}

func (c *client) CreateCustomer(ctx context.Context, email string, userID string) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Metadata: map[string]string{
			"userId": userID,
		},
	}
	params.Context = ctx

	cust, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}
	return cust.ID, nil
}

func (c *client) CreateExpressAccount(ctx context.Context, email string) (string, error) {
	params := &stripe.AccountParams{
		Type:  stripe.String(string(stripe.AccountTypeExpress)),
		Email: stripe.String(email),
	}
	params.Context = ctx

	acct, err := account.New(params)
	if err != nil {
		return "", fmt.Errorf("create express account: %w", err)
	}
	return acct.ID, nil
}

func (c *client) AccountOnboardingLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String("account_onboarding"),
	}
	params.Context = ctx

	link, err := accountlink.New(params)
	if err != nil {
		return "", fmt.Errorf("create account link: %w", err)
	}
	return link.URL, nil
}

// CreateSubscriptionCheckout builds a subscription checkout priced inline
// from the agent's spec and routes funds to the creator's account minus the
// platform fee. Returns the hosted checkout URL.
func (c *client) CreateSubscriptionCheckout(ctx context.Context, p CheckoutParams) (string, error) {
	unitAmount := int64(p.MonthlyPriceUSD * 100)

	params := &stripe.CheckoutSessionParams{
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer: stripe.String(p.CustomerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyUSD)),
					UnitAmount: stripe.Int64(unitAmount),
					Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
						Interval: stripe.String("month"),
					},
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(p.AgentName),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			ApplicationFeePercent: stripe.Float64(p.PlatformFeePercent),
			TransferData: &stripe.CheckoutSessionSubscriptionDataTransferDataParams{
				Destination: stripe.String(p.DestinationAccount),
			},
			Metadata: map[string]string{
				"agentId": p.AgentID,
				"userId":  p.UserID,
			},
		},
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
	}
	params.Context = ctx
	params.Metadata = map[string]string{
		"agentId": p.AgentID,
		"userId":  p.UserID,
	}

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

func (c *client) GetSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	sub, err := subscription.Get(subscriptionID, params)
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return sub, nil
}

func (c *client) ConstructEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	if c.webhookSecret == "" {
		return stripe.Event{}, errors.New("STRIPE_WEBHOOK_SECRET is not set")
	}
	return webhook.ConstructEventWithOptions(
		payload,
		sigHeader,
		c.webhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
}
