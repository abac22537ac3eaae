package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/returnaddress/returnaddress-backend/internal/agentspec"
	"github.com/returnaddress/returnaddress-backend/internal/data/repos"
	types "github.com/returnaddress/returnaddress-backend/internal/domain"
	"github.com/returnaddress/returnaddress-backend/internal/platform/apierr"
	"github.com/returnaddress/returnaddress-backend/internal/platform/logger"
)

// AgentDetail is the creator view of one agent.
type AgentDetail struct {
	Agent            *types.Agent   `json:"agent"`
	Spec             agentspec.Spec `json:"spec"`
	SpecVersion      int            `json:"spec_version"`
	HasStripeAccount bool           `json:"has_stripe_account"`
}

// MarketplaceEntry is the public view of a published agent.
type MarketplaceEntry struct {
	Slug        string  `json:"slug"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	AvatarURL   string  `json:"avatar_url,omitempty"`
	PriceUSD    float64 `json:"monthly_price_usd"`
	Creator     string  `json:"creator"`
}

// AgentAnalytics summarizes an agent for its creator.
type AgentAnalytics struct {
	Subscribers    int64 `json:"subscribers"`
	Messages30d    int64 `json:"messages_30d"`
	TokensUsed30d  int64 `json:"tokens_used_30d"`
}

type AgentService interface {
	Create(ctx context.Context, ownerID uuid.UUID, spec agentspec.Spec) (*types.Agent, []agentspec.Violation, error)
	Update(ctx context.Context, ownerID, agentID uuid.UUID, spec agentspec.Spec) ([]agentspec.Violation, error)
	Get(ctx context.Context, ownerID, agentID uuid.UUID) (*AgentDetail, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*AgentDetail, error)
	Marketplace(ctx context.Context) ([]*MarketplaceEntry, error)
	PublicProfile(ctx context.Context, slug string) (*MarketplaceEntry, error)
	Publish(ctx context.Context, ownerID, agentID uuid.UUID) error
	Unpublish(ctx context.Context, ownerID, agentID uuid.UUID) error
	Suspend(ctx context.Context, agentID uuid.UUID) error
	Analytics(ctx context.Context, ownerID, agentID uuid.UUID) (*AgentAnalytics, error)
}

type agentService struct {
	db        *gorm.DB
	log       *logger.Logger
	userRepo  repos.UserRepo
	agentRepo repos.AgentRepo
	specRepo  repos.SpecRepo
	subRepo   repos.SubscriptionRepo
	msgRepo   repos.MessageRepo
	usageRepo repos.UsageLogRepo
}

func NewAgentService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	agentRepo repos.AgentRepo,
	specRepo repos.SpecRepo,
	subRepo repos.SubscriptionRepo,
	msgRepo repos.MessageRepo,
	usageRepo repos.UsageLogRepo,
) AgentService {
	serviceLog := log.With("service", "AgentService")
	return &agentService{
		db:        db,
		log:       serviceLog,
		userRepo:  userRepo,
		agentRepo: agentRepo,
		specRepo:  specRepo,
		subRepo:   subRepo,
		msgRepo:   msgRepo,
		usageRepo: usageRepo,
	}
}

var slugStripRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases, replaces runs of non-alphanumerics with single
// hyphens, and trims hyphens from both ends.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugStripRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// buildSlug derives "<owner id prefix>-<slugified name>" and, when taken,
// disambiguates with a unix-millis suffix.
func (svc *agentService) buildSlug(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, name string) (string, error) {
	base := fmt.Sprintf("%.8s-%s", ownerID.String(), Slugify(name))

	taken, err := svc.agentRepo.SlugExists(ctx, tx, base)
	if err != nil {
		return "", fmt.Errorf("check slug: %w", err)
	}
	if !taken {
		return base, nil
	}
	return fmt.Sprintf("%s-%d", base, time.Now().UnixMilli()), nil
}

func (svc *agentService) Create(ctx context.Context, ownerID uuid.UUID, spec agentspec.Spec) (*types.Agent, []agentspec.Violation, error) {
	if violations := agentspec.Validate(spec); len(violations) > 0 {
		return nil, violations, nil
	}

	payload, err := json.Marshal(spec)
	if err != nil {
		return nil, nil, fmt.Errorf("encode spec: %w", err)
	}

	var created *types.Agent
	txErr := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		slug, err := svc.buildSlug(ctx, tx, ownerID, spec.Profile.Name)
		if err != nil {
			return err
		}

		agent := &types.Agent{
			ID:      uuid.New(),
			OwnerID: ownerID,
			Slug:    slug,
			Status:  types.AgentStatusDraft,
		}
		if _, err := svc.agentRepo.Create(ctx, tx, agent); err != nil {
			return fmt.Errorf("create agent: %w", err)
		}

		if _, err := svc.specRepo.Create(ctx, tx, &types.AgentSpec{
			ID:       uuid.New(),
			AgentID:  agent.ID,
			Version:  1,
			Payload:  datatypes.JSON(payload),
			IsActive: true,
		}); err != nil {
			return fmt.Errorf("create spec v1: %w", err)
		}

		created = agent
		return nil
	})
	if txErr != nil {
		return nil, nil, txErr
	}

	svc.log.Info("agent created", "agent_id", created.ID.String(), "owner_id", ownerID.String(), "slug", created.Slug)
	return created, nil, nil
}

func (svc *agentService) Update(ctx context.Context, ownerID, agentID uuid.UUID, spec agentspec.Spec) ([]agentspec.Violation, error) {
	if violations := agentspec.Validate(spec); len(violations) > 0 {
		return violations, nil
	}

	if _, err := svc.ownedAgent(ctx, ownerID, agentID); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("encode spec: %w", err)
	}

	// Append version N+1 and flip the active flag in one transaction so a
	// concurrent invocation always sees exactly one active version.
	txErr := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		max, err := svc.specRepo.MaxVersion(ctx, tx, agentID)
		if err != nil {
			return fmt.Errorf("max version: %w", err)
		}
		if err := svc.specRepo.DeactivateAll(ctx, tx, agentID); err != nil {
			return fmt.Errorf("deactivate versions: %w", err)
		}
		if _, err := svc.specRepo.Create(ctx, tx, &types.AgentSpec{
			ID:       uuid.New(),
			AgentID:  agentID,
			Version:  max + 1,
			Payload:  datatypes.JSON(payload),
			IsActive: true,
		}); err != nil {
			return fmt.Errorf("create spec v%d: %w", max+1, err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return nil, nil
}

func (svc *agentService) Get(ctx context.Context, ownerID, agentID uuid.UUID) (*AgentDetail, error) {
	agent, err := svc.ownedAgent(ctx, ownerID, agentID)
	if err != nil {
		return nil, err
	}
	return svc.detail(ctx, agent)
}

func (svc *agentService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*AgentDetail, error) {
	agents, err := svc.agentRepo.ListByOwner(ctx, nil, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}

	out := make([]*AgentDetail, 0, len(agents))
	for _, a := range agents {
		d, err := svc.detail(ctx, a)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (svc *agentService) Marketplace(ctx context.Context) ([]*MarketplaceEntry, error) {
	agents, err := svc.agentRepo.ListPublished(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list published agents: %w", err)
	}

	out := make([]*MarketplaceEntry, 0, len(agents))
	for _, a := range agents {
		entry, err := svc.entry(ctx, a)
		if err != nil {
			svc.log.Warn("skipping agent with unreadable spec", "agent_id", a.ID.String(), "error", err)
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func (svc *agentService) PublicProfile(ctx context.Context, slug string) (*MarketplaceEntry, error) {
	agent, err := svc.agentRepo.GetPublishedBySlug(ctx, nil, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.New(http.StatusNotFound, "agent_not_found", fmt.Errorf("no published agent %q", slug))
		}
		return nil, fmt.Errorf("load agent: %w", err)
	}
	return svc.entry(ctx, agent)
}

func (svc *agentService) Publish(ctx context.Context, ownerID, agentID uuid.UUID) error {
	agent, err := svc.ownedAgent(ctx, ownerID, agentID)
	if err != nil {
		return err
	}
	if agent.Status == types.AgentStatusSuspended {
		return apierr.New(http.StatusConflict, "agent_suspended", errors.New("suspended agents cannot be republished"))
	}

	owner, err := svc.userRepo.GetByID(ctx, nil, ownerID)
	if err != nil {
		return fmt.Errorf("load owner: %w", err)
	}
	if owner.StripeAccountID == "" {
		return apierr.New(http.StatusBadRequest, "payout_account_required",
			errors.New("connect a payout account before publishing"))
	}

	return svc.agentRepo.UpdateStatus(ctx, nil, agentID, types.AgentStatusPublished)
}

func (svc *agentService) Unpublish(ctx context.Context, ownerID, agentID uuid.UUID) error {
	agent, err := svc.ownedAgent(ctx, ownerID, agentID)
	if err != nil {
		return err
	}
	if agent.Status == types.AgentStatusSuspended {
		return apierr.New(http.StatusConflict, "agent_suspended", errors.New("suspended agents cannot be modified"))
	}
	return svc.agentRepo.UpdateStatus(ctx, nil, agentID, types.AgentStatusDraft)
}

// Suspend is admin-only and one-way: there is no un-suspend path.
func (svc *agentService) Suspend(ctx context.Context, agentID uuid.UUID) error {
	if _, err := svc.agentRepo.GetByID(ctx, nil, agentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.New(http.StatusNotFound, "agent_not_found", err)
		}
		return fmt.Errorf("load agent: %w", err)
	}
	svc.log.Warn("agent suspended", "agent_id", agentID.String())
	return svc.agentRepo.UpdateStatus(ctx, nil, agentID, types.AgentStatusSuspended)
}

func (svc *agentService) Analytics(ctx context.Context, ownerID, agentID uuid.UUID) (*AgentAnalytics, error) {
	if _, err := svc.ownedAgent(ctx, ownerID, agentID); err != nil {
		return nil, err
	}

	subscribers, err := svc.subRepo.CountActiveByAgent(ctx, nil, agentID)
	if err != nil {
		return nil, fmt.Errorf("count subscribers: %w", err)
	}

	since := time.Now().Add(-30 * 24 * time.Hour)
	messages, err := svc.msgRepo.CountByAgentSince(ctx, nil, agentID, since)
	if err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}
	tokens, err := svc.usageRepo.SumTokensByAgentSince(ctx, nil, agentID, since)
	if err != nil {
		return nil, fmt.Errorf("sum tokens: %w", err)
	}

	return &AgentAnalytics{
		Subscribers:   subscribers,
		Messages30d:   messages,
		TokensUsed30d: tokens,
	}, nil
}

func (svc *agentService) ownedAgent(ctx context.Context, ownerID, agentID uuid.UUID) (*types.Agent, error) {
	agent, err := svc.agentRepo.GetByID(ctx, nil, agentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.New(http.StatusNotFound, "agent_not_found", err)
		}
		return nil, fmt.Errorf("load agent: %w", err)
	}
	if agent.OwnerID != ownerID {
		return nil, apierr.New(http.StatusForbidden, "not_agent_owner", errors.New("agent belongs to another creator"))
	}
	return agent, nil
}

func (svc *agentService) detail(ctx context.Context, agent *types.Agent) (*AgentDetail, error) {
	specRow, err := svc.specRepo.GetActive(ctx, nil, agent.ID)
	if err != nil {
		return nil, fmt.Errorf("load active spec: %w", err)
	}
	spec, err := agentspec.Parse(specRow.Payload)
	if err != nil {
		return nil, err
	}

	owner, err := svc.userRepo.GetByID(ctx, nil, agent.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("load owner: %w", err)
	}

	return &AgentDetail{
		Agent:            agent,
		Spec:             spec,
		SpecVersion:      specRow.Version,
		HasStripeAccount: owner.StripeAccountID != "",
	}, nil
}

func (svc *agentService) entry(ctx context.Context, agent *types.Agent) (*MarketplaceEntry, error) {
	specRow, err := svc.specRepo.GetActive(ctx, nil, agent.ID)
	if err != nil {
		return nil, fmt.Errorf("load active spec: %w", err)
	}
	spec, err := agentspec.Parse(specRow.Payload)
	if err != nil {
		return nil, err
	}

	creator := ""
	if owner, err := svc.userRepo.GetByID(ctx, nil, agent.OwnerID); err == nil {
		if owner.Handle != nil && *owner.Handle != "" {
			creator = *owner.Handle
		} else {
			creator = owner.Name
		}
	}

	return &MarketplaceEntry{
		Slug:        agent.Slug,
		Name:        spec.Profile.Name,
		Description: spec.Profile.Description,
		Category:    spec.Profile.Category,
		AvatarURL:   spec.Profile.AvatarURL,
		PriceUSD:    spec.Pricing.MonthlyPriceUSD,
		Creator:     creator,
	}, nil
}
