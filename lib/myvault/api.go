package myvault

import (
	"context"
	"time"

	"github.com/MarcGrol/basketcheckout/lib/mystore"
)

const (
	CurrentToken = "currentToken"
)

// Token is a provider access-token obtained on behalf of the merchant.
type Token struct {
	ProviderName string
	ClientID     string
	CreatedAt    time.Time
	LastModified *time.Time
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

func TokenUID(providerName string) string {
	return CurrentToken + "_" + providerName
}

//go:generate mockgen -source=api.go -package myvault -destination vault_mock.go VaultReader
type VaultReader[T any] interface {
	Get(c context.Context, uid string) (T, bool, error)
}

type VaultReadWriter[T any] interface {
	RunInTransaction(c context.Context, f func(c context.Context) error) error
	Get(c context.Context, uid string) (T, bool, error)
	Put(c context.Context, uid string, value T) error
}

func New[T any](c context.Context) (VaultReadWriter[T], func(), error) {
	return mystore.New[T](c)
}
