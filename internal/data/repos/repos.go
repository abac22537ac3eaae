package repos

import (
	"github.com/returnaddress/returnaddress-backend/internal/data/repos/agent"
	"github.com/returnaddress/returnaddress-backend/internal/data/repos/auth"
	"github.com/returnaddress/returnaddress-backend/internal/data/repos/billing"
	"github.com/returnaddress/returnaddress-backend/internal/data/repos/convo"
	"github.com/returnaddress/returnaddress-backend/internal/data/repos/user"
	"github.com/returnaddress/returnaddress-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo

type AgentRepo = agent.AgentRepo
type SpecRepo = agent.SpecRepo
type KnowledgeRepo = agent.KnowledgeRepo

type SubscriptionRepo = billing.SubscriptionRepo

type MessageRepo = convo.MessageRepo
type UsageLogRepo = convo.UsageLogRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}

func NewAgentRepo(db *gorm.DB, baseLog *logger.Logger) AgentRepo {
	return agent.NewAgentRepo(db, baseLog)
}
func NewSpecRepo(db *gorm.DB, baseLog *logger.Logger) SpecRepo {
	return agent.NewSpecRepo(db, baseLog)
}
func NewKnowledgeRepo(db *gorm.DB, baseLog *logger.Logger) KnowledgeRepo {
	return agent.NewKnowledgeRepo(db, baseLog)
}

func NewSubscriptionRepo(db *gorm.DB, baseLog *logger.Logger) SubscriptionRepo {
	return billing.NewSubscriptionRepo(db, baseLog)
}

func NewMessageRepo(db *gorm.DB, baseLog *logger.Logger) MessageRepo {
	return convo.NewMessageRepo(db, baseLog)
}
func NewUsageLogRepo(db *gorm.DB, baseLog *logger.Logger) UsageLogRepo {
	return convo.NewUsageLogRepo(db, baseLog)
}
