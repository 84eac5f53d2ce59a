// Package accounts owns user credentials: registration, password
// verification and identity lookup.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/validation"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrInvalidCredentials is the single answer for an unknown email and for a
// wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

type UserStore interface {
	Create(ctx context.Context, in user.NewUser) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Check(hash, plain string) error
}

// Recorder receives auth outcomes, e.g. for metrics.
type Recorder interface {
	AuthAttempt(op, result string)
}

type noopRecorder struct{}

func (noopRecorder) AuthAttempt(string, string) {}

type Service struct {
	users    UserStore
	hasher   PasswordHasher
	recorder Recorder
	tracer   trace.Tracer

	dummyOnce sync.Once
	dummyHash string
}

func NewService(users UserStore, hasher PasswordHasher) *Service {
	return &Service{
		users:    users,
		hasher:   hasher,
		recorder: noopRecorder{},
		tracer:   otel.Tracer("github.com/geocoder89/taskhub/internal/accounts"),
	}
}

func (s *Service) WithRecorder(r Recorder) *Service {
	if r != nil {
		s.recorder = r
	}
	return s
}

// Register stores a new user with a freshly hashed password.
func (s *Service) Register(ctx context.Context, reg validation.Registration) (user.User, error) {
	ctx, span := s.tracer.Start(ctx, "accounts.Register")
	defer span.End()

	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		s.fail(span, "register", err)
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.Create(ctx, user.NewUser{
		Email:        reg.Email,
		PasswordHash: hash,
		Name:         reg.Name,
	})
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			s.recorder.AuthAttempt("register", "duplicate")
			span.SetAttributes(attribute.String("auth.result", "duplicate"))
			return user.User{}, err
		}
		s.fail(span, "register", err)
		return user.User{}, fmt.Errorf("create user: %w", err)
	}

	s.recorder.AuthAttempt("register", "ok")
	span.SetAttributes(attribute.String("user.id", u.ID))

	return u, nil
}

// Verify checks credentials. Unknown emails still pay for one bcrypt
// comparison so both failure paths look the same from outside.
func (s *Service) Verify(ctx context.Context, creds validation.Credentials) (user.User, error) {
	ctx, span := s.tracer.Start(ctx, "accounts.Verify")
	defer span.End()

	u, err := s.users.GetByEmail(ctx, creds.Email)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			s.fail(span, "login", err)
			return user.User{}, fmt.Errorf("find user: %w", err)
		}

		_ = s.hasher.Check(s.timingHash(), creds.Password)
		s.rejected(span, "login")
		return user.User{}, ErrInvalidCredentials
	}

	if err := s.hasher.Check(u.PasswordHash, creds.Password); err != nil {
		s.rejected(span, "login")
		return user.User{}, ErrInvalidCredentials
	}

	s.recorder.AuthAttempt("login", "ok")
	span.SetAttributes(attribute.String("user.id", u.ID))

	return u, nil
}

// Lookup resolves a user id carried by a verified token.
func (s *Service) Lookup(ctx context.Context, id string) (user.User, error) {
	ctx, span := s.tracer.Start(ctx, "accounts.Lookup")
	defer span.End()

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "lookup failed")
		}
		return user.User{}, err
	}

	return u, nil
}

// ChangePassword re-hashes explicitly when the password is set. Tokens issued
// before the change stay valid until they expire.
func (s *Service) ChangePassword(ctx context.Context, userID string, change validation.PasswordChange) error {
	ctx, span := s.tracer.Start(ctx, "accounts.ChangePassword")
	defer span.End()

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			s.rejected(span, "change_password")
			return ErrInvalidCredentials
		}
		s.fail(span, "change_password", err)
		return fmt.Errorf("find user: %w", err)
	}

	if err := s.hasher.Check(u.PasswordHash, change.Current); err != nil {
		s.rejected(span, "change_password")
		return ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(change.Next)
	if err != nil {
		s.fail(span, "change_password", err)
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePasswordHash(ctx, u.ID, hash); err != nil {
		s.fail(span, "change_password", err)
		return fmt.Errorf("update password: %w", err)
	}

	s.recorder.AuthAttempt("change_password", "ok")

	return nil
}

func (s *Service) timingHash() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("taskhub-timing-placeholder")
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

func (s *Service) rejected(span trace.Span, op string) {
	s.recorder.AuthAttempt(op, "rejected")
	span.SetAttributes(attribute.String("auth.result", "rejected"))
}

func (s *Service) fail(span trace.Span, op string, err error) {
	s.recorder.AuthAttempt(op, "error")
	span.RecordError(err)
	span.SetStatus(codes.Error, op+" failed")
}
