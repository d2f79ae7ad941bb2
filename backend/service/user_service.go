package service

import (
	"context"
	"errors"

	"files-manager/backend/common"
	fmerrors "files-manager/backend/common/errors"
	"files-manager/backend/library/queue"
	"files-manager/backend/model"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

var validate = validator.New()

type UserService struct {
	users model.UserStore
	jobs  queue.Dispatcher
}

func NewUserService(users model.UserStore, jobs queue.Dispatcher) *UserService {
	return &UserService{users: users, jobs: jobs}
}

// Register creates an account and queues its welcome mail. A failed enqueue
// is logged; the account is kept.
func (s *UserService) Register(ctx context.Context, email, password string) (*model.User, error) {
	if email == "" {
		return nil, fmerrors.Invalid(fmerrors.MsgMissingEmail)
	}
	if password == "" {
		return nil, fmerrors.Invalid(fmerrors.MsgMissingPassword)
	}
	if err := validate.Var(email, "email"); err != nil {
		return nil, fmerrors.Invalid(fmerrors.MsgInvalidEmail)
	}
	if len(password) > maxPasswordBytes {
		return nil, fmerrors.Invalid(fmerrors.MsgPasswordTooLong)
	}

	_, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return nil, fmerrors.Invalid(fmerrors.MsgAlreadyExist)
	}
	if !errors.Is(err, model.ErrNotFound) {
		return nil, fmerrors.Internal(err)
	}

	hash, err := common.Password2Hash(password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, fmerrors.Invalid(fmerrors.MsgPasswordTooLong)
	}
	if err != nil {
		return nil, fmerrors.Internal(err)
	}
	user := &model.User{Email: email, Password: hash}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, model.ErrDuplicate) {
			return nil, fmerrors.Invalid(fmerrors.MsgAlreadyExist)
		}
		return nil, fmerrors.Internal(err)
	}

	if err := queue.EnqueueWelcomeEmail(ctx, s.jobs, user.ID); err != nil {
		common.SysError("failed to enqueue welcome email",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}
	return user, nil
}
