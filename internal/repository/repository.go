package repository

import (
	"context"

	"github.com/sakif/birthday-board/internal/model"
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type UserRepository interface {
	Upsert(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetTokens(ctx context.Context, id string) (TokenPair, error)
}

type ContactRepository interface {
	UpsertBatch(ctx context.Context, userID string, contacts []model.Contact) error
	ListByUser(ctx context.Context, userID string) ([]model.Contact, error)
}
