package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"files-manager/backend/common"
	"files-manager/backend/library/kv"
	"files-manager/backend/model"

	"github.com/google/uuid"
)

// AuthService resolves request credentials to users and manages session
// tokens. Lookups returning (nil, nil) mean "no identity"; a non-nil error
// means a backing store could not answer.
type AuthService struct {
	users  model.UserStore
	tokens kv.Store
	ttl    time.Duration
}

func NewAuthService(users model.UserStore, tokens kv.Store) *AuthService {
	return &AuthService{users: users, tokens: tokens, ttl: common.TokenTTL}
}

func tokenKey(token string) string {
	return common.AuthKeyPrefix + token
}

// parseBasicAuth splits "Basic base64(email:password)" on the first colon.
func parseBasicAuth(header string) (email, password string, ok bool) {
	scheme, payload, found := strings.Cut(header, " ")
	if !found || scheme != "Basic" || payload == "" {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", "", false
	}
	return strings.Cut(string(decoded), ":")
}

// UserFromBasic authenticates an Authorization header.
func (s *AuthService) UserFromBasic(ctx context.Context, header string) (*model.User, error) {
	email, password, ok := parseBasicAuth(header)
	if !ok {
		return nil, nil
	}
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if !common.ValidatePasswordAndHash(password, user.Password) {
		return nil, nil
	}
	return user, nil
}

// UserFromToken resolves an X-Token value. A token pointing at a user that
// no longer exists resolves to no identity and is left to expire.
func (s *AuthService) UserFromToken(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, nil
	}
	userID, ok, err := s.tokens.Get(ctx, tokenKey(token))
	if err != nil {
		return nil, fmt.Errorf("read session token: %w", err)
	}
	if !ok {
		return nil, nil
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return user, nil
}

// IssueToken mints a new session token for user.
func (s *AuthService) IssueToken(ctx context.Context, user *model.User) (string, error) {
	token := uuid.NewString()
	if err := s.tokens.Set(ctx, tokenKey(token), user.ID, s.ttl); err != nil {
		return "", fmt.Errorf("store session token: %w", err)
	}
	return token, nil
}

// RevokeToken deletes a session token. Revoking an unknown token is a no-op.
func (s *AuthService) RevokeToken(ctx context.Context, token string) error {
	if err := s.tokens.Del(ctx, tokenKey(token)); err != nil {
		return fmt.Errorf("delete session token: %w", err)
	}
	return nil
}
