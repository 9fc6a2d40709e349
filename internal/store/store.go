// Package store is the data-access layer for users, verification codes,
// issues and solutions.
package store

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"supportdesk/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "could not get sql handle")
	}
	return sqlDB.PingContext(ctx)
}

// CreateUserWithCode inserts a user and its first verification code in one
// transaction, so a failed registration leaves nothing behind.
func (s *Store) CreateUserWithCode(ctx context.Context, user *models.User, code *models.VerificationCode) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return wrap(err, "could not create user")
		}
		if err := tx.Create(code).Error; err != nil {
			return wrap(err, "could not save verification code")
		}
		return nil
	})
}

// LatestCode returns the newest code row matching email and code exactly.
func (s *Store) LatestCode(ctx context.Context, email, code string) (*models.VerificationCode, error) {
	var vc models.VerificationCode
	err := s.db.WithContext(ctx).
		Where("email = ? AND code = ?", email, code).
		Order("id DESC").
		First(&vc).Error
	if err != nil {
		return nil, wrap(err, "could not fetch verification code")
	}
	return &vc, nil
}

// ConsumeCode marks the owning user verified and deletes every code issued
// to that email. It fails with ErrNotFound if the code was already consumed
// or no user has the email.
func (s *Store) ConsumeCode(ctx context.Context, vc *models.VerificationCode) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.VerificationCode{}, vc.ID)
		if res.Error != nil {
			return wrap(res.Error, "could not consume verification code")
		}
		if res.RowsAffected == 0 {
			return errors.Wrap(ErrNotFound, "verification code already used")
		}

		res = tx.Model(&models.User{}).Where("email = ?", vc.Email).Update("verified", true)
		if res.Error != nil {
			return wrap(res.Error, "could not mark user verified")
		}
		if res.RowsAffected == 0 {
			return errors.Wrap(ErrNotFound, "no user for verification code")
		}

		if err := tx.Where("email = ?", vc.Email).Delete(&models.VerificationCode{}).Error; err != nil {
			return wrap(err, "could not clear verification codes")
		}
		return nil
	})
}

// PurgeCodesBefore deletes codes created before t and returns how many went.
func (s *Store) PurgeCodesBefore(ctx context.Context, t time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("created_at < ?", t).Delete(&models.VerificationCode{})
	if res.Error != nil {
		return 0, wrap(res.Error, "could not purge verification codes")
	}
	return res.RowsAffected, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, wrap(err, "could not fetch user")
	}
	return &user, nil
}

func (s *Store) VerifiedUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ? AND verified = ?", email, true).
		First(&user).Error
	if err != nil {
		return nil, wrap(err, "could not fetch user")
	}
	return &user, nil
}

// ProfileUpdate holds the user-editable contact fields. A nil field is
// stored as NULL. ProfilePhoto is left unchanged when nil.
type ProfileUpdate struct {
	Address      *string
	Telephone    *string
	HomeAddress  *string
	ProfilePhoto *string
}

func (s *Store) UpdateProfile(ctx context.Context, email string, p ProfileUpdate) error {
	updates := map[string]any{
		"address":      p.Address,
		"telephone":    p.Telephone,
		"home_address": p.HomeAddress,
	}
	if p.ProfilePhoto != nil {
		updates["profile_photo"] = *p.ProfilePhoto
	}

	res := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Updates(updates)
	if res.Error != nil {
		return wrap(res.Error, "could not update user")
	}
	if res.RowsAffected == 0 {
		return errors.Wrap(ErrNotFound, "could not update user")
	}
	return nil
}

func (s *Store) CreateIssue(ctx context.Context, issue *models.Issue) error {
	if err := s.db.WithContext(ctx).Create(issue).Error; err != nil {
		return wrap(err, "could not create issue")
	}
	return nil
}

// ListSolutions returns every solution in insertion order.
func (s *Store) ListSolutions(ctx context.Context) ([]models.Solution, error) {
	solutions := make([]models.Solution, 0)
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&solutions).Error; err != nil {
		return nil, wrap(err, "could not list solutions")
	}
	return solutions, nil
}

func (s *Store) CreateSolutions(ctx context.Context, solutions []models.Solution) error {
	if len(solutions) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&solutions).Error; err != nil {
		return wrap(err, "could not create solutions")
	}
	return nil
}

// wrap maps driver errors onto the package sentinels and adds context.
func wrap(err error, msg string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.Wrap(ErrNotFound, msg)
	case isDuplicate(err):
		return errors.Wrap(ErrDuplicate, msg+": "+err.Error())
	default:
		return errors.Wrap(err, msg)
	}
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
