package identity

import (
	"context"
	"log"

	"github.com/artemk/movebid/internal/cache"
	apperrors "github.com/artemk/movebid/internal/errors"
	"github.com/artemk/movebid/internal/models"
	"github.com/artemk/movebid/internal/repository"
)

// Provider is the identity-collaborator boundary consumed by the core.
// Authenticate resolves a (userID, token) pair to a user record, or fails
// with Unauthorized. userID may be empty, in which case the token subject is
// trusted as-is.
type Provider interface {
	Authenticate(ctx context.Context, userID, token string) (*models.User, error)
}

// IsDriver dispatches on the user role variant.
func IsDriver(u *models.User) bool {
	return u != nil && u.IsDriver()
}

func IsRequester(u *models.User) bool {
	return u != nil && u.IsRequester()
}

type storeProvider struct {
	signer         *Signer
	userRepo       repository.UserRepository
	principalCache cache.PrincipalCache
}

// NewStoreProvider verifies tokens locally and resolves subjects against the
// user store. principalCache may be nil.
func NewStoreProvider(signer *Signer, userRepo repository.UserRepository, principalCache cache.PrincipalCache) Provider {
	return &storeProvider{
		signer:         signer,
		userRepo:       userRepo,
		principalCache: principalCache,
	}
}

func (p *storeProvider) Authenticate(ctx context.Context, userID, token string) (*models.User, error) {
	claims, err := p.signer.Parse(token)
	if err != nil {
		return nil, err
	}

	if userID != "" && userID != claims.Subject {
		return nil, apperrors.Unauthorized("token does not belong to this user")
	}

	if p.principalCache != nil {
		if user, err := p.principalCache.Get(ctx, token); err == nil && user != nil {
			if claims.Role == "" || claims.Role == user.Role {
				return user, nil
			}
			// The cached record no longer matches the token; drop it and
			// re-resolve from the store.
			p.evict(ctx, token)
		}
	}

	user, err := p.userRepo.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		p.evict(ctx, token)
		return nil, apperrors.Unauthorized("unknown user")
	}

	// A stale role claim means the token no longer matches the record.
	if claims.Role != "" && claims.Role != user.Role {
		p.evict(ctx, token)
		return nil, apperrors.Unauthorized("token role mismatch")
	}

	if p.principalCache != nil {
		if err := p.principalCache.Set(ctx, token, user); err != nil {
			log.Printf("failed to cache principal: %v", err)
		}
	}

	return user, nil
}

func (p *storeProvider) evict(ctx context.Context, token string) {
	if p.principalCache == nil {
		return
	}
	if err := p.principalCache.Invalidate(ctx, token); err != nil {
		log.Printf("failed to invalidate principal: %v", err)
	}
}
