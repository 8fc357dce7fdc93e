package middleware

import (
	"context"
	"turnover/config"
	"turnover/internal/database"
	"turnover/internal/repositories"
	"turnover/internal/types"

	logger "github.com/Bparsons0904/goLogger"
)

type TokenValidator interface {
	ValidateToken(ctx context.Context, raw string) (*types.TokenInfo, error)
}

type Middleware struct {
	DB       database.DB
	userRepo repositories.UserRepository
	auth     TokenValidator
	Config   config.Config
	log      logger.Logger
}

func New(
	db database.DB,
	config config.Config,
	repos repositories.Repository,
	auth TokenValidator,
) Middleware {
	return Middleware{
		DB:       db,
		userRepo: repos.User,
		auth:     auth,
		Config:   config,
		log:      logger.New("middleware"),
	}
}
