package verification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supportdesk/internal/logging"
	"supportdesk/internal/models"
	"supportdesk/internal/store"
	"supportdesk/internal/testutil"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fakeLimiter struct {
	mu       sync.Mutex
	max      int
	attempts map[string]int
	resets   int
	err      error
}

func (l *fakeLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	l.attempts[key]++
	return l.attempts[key] <= l.max, nil
}

func (l *fakeLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, key)
	l.resets++
	return nil
}

func newTestService(t *testing.T, opts ...Option) (*Service, *store.Store, *testutil.Mailer, *fakeClock) {
	t.Helper()
	st := store.New(testutil.NewDB(t))
	mailer := &testutil.Mailer{}
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return NewService(st, mailer, logging.Discard(), opts...), st, mailer, clock
}

func register(t *testing.T, s *Service, username, email string) {
	t.Helper()
	user := &models.User{Username: testutil.Ptr(username), Password: "hash", Email: testutil.Ptr(email)}
	require.NoError(t, s.Register(context.Background(), user))
	s.Wait()
}

func TestRegister_SendsCode(t *testing.T) {
	s, st, mailer, _ := newTestService(t)
	register(t, s, "alice", "alice@x.com")

	msgs := mailer.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "alice@x.com", msgs[0].To)
	assert.Equal(t, "Account Verification Code", msgs[0].Subject)

	code := mailer.LastCode(t, "alice@x.com")
	assert.Len(t, code, 6)

	_, err := st.LatestCode(context.Background(), "alice@x.com", code)
	assert.NoError(t, err)
}

func TestRegister_MailFailureIsNotFatal(t *testing.T) {
	s, st, mailer, _ := newTestService(t)
	mailer.Err = errors.New("smtp down")

	register(t, s, "alice", "alice@x.com")

	_, err := st.UserByEmail(context.Background(), "alice@x.com")
	assert.NoError(t, err)
}

func TestVerify_SingleUse(t *testing.T) {
	s, st, mailer, _ := newTestService(t)
	ctx := context.Background()
	register(t, s, "alice", "alice@x.com")
	code := mailer.LastCode(t, "alice@x.com")

	assert.ErrorIs(t, s.Verify(ctx, "alice@x.com", "000000"), ErrInvalidCode)
	require.NoError(t, s.Verify(ctx, "alice@x.com", code))
	assert.ErrorIs(t, s.Verify(ctx, "alice@x.com", code), ErrInvalidCode)

	user, err := st.UserByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.True(t, user.Verified)
}

func TestVerify_Expired(t *testing.T) {
	s, st, mailer, clock := newTestService(t, WithTTL(10*time.Minute))
	ctx := context.Background()
	register(t, s, "alice", "alice@x.com")
	code := mailer.LastCode(t, "alice@x.com")

	clock.Advance(11 * time.Minute)
	assert.ErrorIs(t, s.Verify(ctx, "alice@x.com", code), ErrInvalidCode)

	user, err := st.UserByEmail(ctx, "alice@x.com")
	require.NoError(t, err)
	assert.False(t, user.Verified)
}

func TestVerify_WithinTTL(t *testing.T) {
	s, _, mailer, clock := newTestService(t, WithTTL(10*time.Minute))
	register(t, s, "alice", "alice@x.com")
	code := mailer.LastCode(t, "alice@x.com")

	clock.Advance(9 * time.Minute)
	assert.NoError(t, s.Verify(context.Background(), "alice@x.com", code))
}

func TestVerify_Limiter(t *testing.T) {
	limiter := &fakeLimiter{max: 2, attempts: map[string]int{}}
	s, _, mailer, _ := newTestService(t, WithLimiter(limiter))
	ctx := context.Background()
	register(t, s, "alice", "alice@x.com")
	code := mailer.LastCode(t, "alice@x.com")

	assert.ErrorIs(t, s.Verify(ctx, "alice@x.com", "bad"), ErrInvalidCode)
	assert.ErrorIs(t, s.Verify(ctx, "alice@x.com", "bad"), ErrInvalidCode)
	assert.ErrorIs(t, s.Verify(ctx, "alice@x.com", code), ErrTooManyAttempts)
}

func TestVerify_LimiterResetOnSuccess(t *testing.T) {
	limiter := &fakeLimiter{max: 5, attempts: map[string]int{}}
	s, _, mailer, _ := newTestService(t, WithLimiter(limiter))
	register(t, s, "alice", "alice@x.com")

	require.NoError(t, s.Verify(context.Background(), "alice@x.com", mailer.LastCode(t, "alice@x.com")))
	assert.Equal(t, 1, limiter.resets)
}

func TestVerify_LimiterErrorFailsOpen(t *testing.T) {
	limiter := &fakeLimiter{max: 1, attempts: map[string]int{}, err: errors.New("redis down")}
	s, _, mailer, _ := newTestService(t, WithLimiter(limiter))
	register(t, s, "alice", "alice@x.com")

	assert.NoError(t, s.Verify(context.Background(), "alice@x.com", mailer.LastCode(t, "alice@x.com")))
}

func TestPurgeExpired(t *testing.T) {
	s, st, mailer, clock := newTestService(t, WithTTL(time.Minute))
	ctx := context.Background()
	register(t, s, "alice", "alice@x.com")
	code := mailer.LastCode(t, "alice@x.com")

	n, err := s.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	clock.Advance(time.Hour)
	n, err = s.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = st.LatestCode(ctx, "alice@x.com", code)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRun_StopsOnCancel(t *testing.T) {
	s, _, _, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Millisecond)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
