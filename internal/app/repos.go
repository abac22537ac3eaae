package app

import (
	"gorm.io/gorm"

	"github.com/returnaddress/returnaddress-backend/internal/data/repos"
	"github.com/returnaddress/returnaddress-backend/internal/platform/logger"
)

type Repos struct {
	User         repos.UserRepo
	UserToken    repos.UserTokenRepo
	Agent        repos.AgentRepo
	Spec         repos.SpecRepo
	Knowledge    repos.KnowledgeRepo
	Subscription repos.SubscriptionRepo
	Message      repos.MessageRepo
	UsageLog     repos.UsageLogRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:         repos.NewUserRepo(db, log),
		UserToken:    repos.NewUserTokenRepo(db, log),
		Agent:        repos.NewAgentRepo(db, log),
		Spec:         repos.NewSpecRepo(db, log),
		Knowledge:    repos.NewKnowledgeRepo(db, log),
		Subscription: repos.NewSubscriptionRepo(db, log),
		Message:      repos.NewMessageRepo(db, log),
		UsageLog:     repos.NewUsageLogRepo(db, log),
	}
}
