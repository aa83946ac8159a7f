package pos

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/talkincode/toughpos/internal/domain"
	"github.com/talkincode/toughpos/pkg/common"
)

// UserService manages operator accounts. Passwords only ever leave this
// package as bcrypt hashes, and the hash never leaves at all.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Register creates an account, rejecting duplicate emails.
func (s *UserService) Register(ctx context.Context, email, password, name string) (*domain.SysUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.Wrap(ErrValidation, "a valid email is required")
	}
	if len(password) < 6 {
		return nil, errors.Wrap(ErrValidation, "password must be at least 6 characters")
	}

	var exists int64
	if err := s.db.WithContext(ctx).Model(&domain.SysUser{}).
		Where("email = ?", email).Count(&exists).Error; err != nil {
		return nil, err
	}
	if exists > 0 {
		return nil, errors.Wrap(ErrConflict, "user with this email already exists")
	}

	hash, err := common.HashPassword(password)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &domain.SysUser{
		ID:        common.UUIDint64(),
		Email:     email,
		Password:  hash,
		Name:      strings.TrimSpace(name),
		Status:    common.ENABLED,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	s.Log(user.ID, user.Email, "register", "account created")
	return user, nil
}

// Authenticate verifies credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.SysUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var user domain.SysUser
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrap(ErrUnauthorized, "invalid email or password")
		}
		return nil, err
	}
	if user.Status != common.ENABLED || !common.CheckPassword(user.Password, password) {
		return nil, errors.Wrap(ErrUnauthorized, "invalid email or password")
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(&domain.SysUser{}).
		Where("id = ?", user.ID).Update("last_login", now).Error; err != nil {
		zap.L().Warn("failed to record last login", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	user.LastLogin = now
	s.Log(user.ID, user.Email, "login", "login ok")
	return &user, nil
}

// GetUser returns a user by id.
func (s *UserService) GetUser(ctx context.Context, id int64) (*domain.SysUser, error) {
	var user domain.SysUser
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrap(ErrNotFound, "user not found")
		}
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates name and/or email, keeping email uniqueness.
func (s *UserService) UpdateUser(ctx context.Context, id int64, email, name *string) (*domain.SysUser, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if email != nil {
		newEmail := strings.ToLower(strings.TrimSpace(*email))
		if newEmail != user.Email {
			var exists int64
			if err := s.db.WithContext(ctx).Model(&domain.SysUser{}).
				Where("email = ? AND id != ?", newEmail, id).Count(&exists).Error; err != nil {
				return nil, err
			}
			if exists > 0 {
				return nil, errors.Wrap(ErrConflict, "email already in use")
			}
			user.Email = newEmail
		}
	}
	if name != nil {
		user.Name = strings.TrimSpace(*name)
	}
	user.UpdatedAt = time.Now()

	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, err
	}
	s.Log(user.ID, user.Email, "update", "account updated")
	return user, nil
}

// DeleteUser removes an account.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&domain.SysUser{}, id).Error; err != nil {
		return err
	}
	s.Log(user.ID, user.Email, "delete", "account removed")
	return nil
}

// Log writes an audit row; failures are logged, never propagated.
func (s *UserService) Log(userID int64, email, action, remark string) {
	err := s.db.Create(&domain.SysUserLog{
		ID:      common.UUIDint64(),
		UserID:  userID,
		Email:   email,
		Action:  action,
		Remark:  remark,
		OptTime: time.Now(),
	}).Error
	if err != nil {
		zap.L().Warn("failed to write user log", zap.String("action", action), zap.Error(err))
	}
}
