// Package verification issues, delivers and consumes email verification
// codes.
package verification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"

	"supportdesk/internal/models"
	"supportdesk/internal/monitoring"
	"supportdesk/internal/store"
	"supportdesk/internal/utils"
)

var (
	ErrInvalidCode     = errors.New("invalid verification code")
	ErrTooManyAttempts = errors.New("too many verification attempts")
)

const (
	DefaultTTL = 15 * time.Minute

	emailSubject = "Account Verification Code"
)

type Mailer interface {
	Send(to, subject, body string) error
}

// Limiter throttles verification attempts per email.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

type Service struct {
	store   *store.Store
	mailer  Mailer
	limiter Limiter
	log     *slog.Logger
	ttl     time.Duration
	now     func() time.Time

	wg sync.WaitGroup
}

type Option func(*Service)

// WithLimiter enables attempt limiting.
func WithLimiter(l Limiter) Option {
	return func(s *Service) { s.limiter = l }
}

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(st *store.Store, mailer Mailer, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:  st,
		mailer: mailer,
		log:    log,
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Register stores user together with a fresh code and emails the code.
// Delivery happens in the background; its failure does not fail Register.
func (s *Service) Register(ctx context.Context, user *models.User) error {
	code, err := utils.GenerateVerificationCode(utils.VerificationCodeBytes)
	if err != nil {
		return errors.Wrap(err, "could not generate verification code")
	}

	var email string
	if user.Email != nil {
		email = *user.Email
	}
	vc := &models.VerificationCode{
		Email:     email,
		Code:      code,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.CreateUserWithCode(ctx, user, vc); err != nil {
		return err
	}

	if email != "" {
		s.Dispatch(email, code)
	}
	return nil
}

// Verify checks code for email and, on success, marks the user verified and
// consumes every outstanding code for that email.
func (s *Service) Verify(ctx context.Context, email, code string) error {
	if s.limiter != nil {
		ok, err := s.limiter.Allow(ctx, email)
		if err != nil {
			s.log.WarnContext(ctx, "verification limiter unavailable", "error", err)
		} else if !ok {
			return ErrTooManyAttempts
		}
	}

	vc, err := s.store.LatestCode(ctx, email, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidCode
		}
		return err
	}
	if vc.Expired(s.now(), s.ttl) {
		return ErrInvalidCode
	}

	if err := s.store.ConsumeCode(ctx, vc); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidCode
		}
		return err
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, email); err != nil {
			s.log.WarnContext(ctx, "could not reset verification attempts", "error", err)
		}
	}
	return nil
}

// Dispatch emails code to the address without blocking the caller.
func (s *Service) Dispatch(email, code string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		body := fmt.Sprintf("Your verification code is: %s\nThis code will expire in %d minutes.", code, int(s.ttl/time.Minute))
		err := s.mailer.Send(email, emailSubject, body)
		monitoring.RecordVerificationEmail(err)
		if err != nil {
			s.log.Error("error sending verification email", "email", email, "error", err)
			return
		}
		s.log.Info("verification email sent", "email", email)
	}()
}

// Wait blocks until every dispatched email has been attempted.
func (s *Service) Wait() {
	s.wg.Wait()
}

// PurgeExpired deletes codes older than the TTL.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.store.PurgeCodesBefore(ctx, s.now().UTC().Add(-s.ttl))
}

// Run purges expired codes every interval until ctx is done.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.PurgeExpired(ctx)
			if err != nil {
				s.log.ErrorContext(ctx, "purge verification codes", "error", err)
				continue
			}
			if n > 0 {
				s.log.InfoContext(ctx, "purged expired verification codes", "count", n)
			}
		}
	}
}
