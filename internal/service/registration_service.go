package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"mergington-be/internal/domain"
	"mergington-be/internal/observability"
	"mergington-be/internal/repository"
)

// ActivityRegistrationService handles signups and unregistrations.
// Each write holds the activity's lock and runs inside one store
// transaction so capacity can never be exceeded.
type ActivityRegistrationService struct {
	repo     repository.ActivityRepository
	locker   Locker
	validate *validator.Validate
	logger   *zap.Logger
}

func NewRegistrationService(repo repository.ActivityRepository, locker Locker, logger *zap.Logger) *ActivityRegistrationService {
	if locker == nil {
		locker = NewLocalLocker()
	}
	return &ActivityRegistrationService{
		repo:     repo,
		locker:   locker,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// SignUp checks, in order, that the activity exists, that the student is not
// already registered and that a spot is left, then adds the student
func (s *ActivityRegistrationService) SignUp(ctx context.Context, activityName, email string) (*domain.Confirmation, error) {
	reg, err := s.registration(activityName, email)
	if err != nil {
		observability.RecordSignup(outcomeFor(err))
		return nil, err
	}

	err = s.withActivityLock(ctx, reg.ActivityName, func() error {
		return s.repo.WithinTx(ctx, func(tx repository.RegistrationTx) error {
			activity, err := tx.LockActivity(ctx, reg.ActivityName)
			if err != nil {
				return err
			}
			if activity == nil {
				return domain.ErrActivityNotFound
			}

			registered, err := tx.IsRegistered(ctx, reg.ActivityName, reg.Email)
			if err != nil {
				return err
			}
			if registered {
				return domain.ErrAlreadyRegistered
			}

			count, err := tx.CountParticipants(ctx, reg.ActivityName)
			if err != nil {
				return err
			}
			if count >= activity.MaxParticipants {
				return domain.ErrActivityFull
			}

			return tx.AddParticipant(ctx, reg.ActivityName, reg.Email)
		})
	})

	observability.RecordSignup(outcomeFor(err))
	if err != nil {
		s.logResult("Signup", reg, err)
		return nil, err
	}

	s.logger.Info("Student signed up",
		zap.String("activity", reg.ActivityName),
		zap.String("email", reg.Email))

	confirmation := domain.SignedUp(reg)
	return &confirmation, nil
}

// Unregister checks that the activity exists and the student is registered,
// then removes the student
func (s *ActivityRegistrationService) Unregister(ctx context.Context, activityName, email string) (*domain.Confirmation, error) {
	reg, err := s.registration(activityName, email)
	if err != nil {
		observability.RecordUnregister(outcomeFor(err))
		return nil, err
	}

	err = s.withActivityLock(ctx, reg.ActivityName, func() error {
		return s.repo.WithinTx(ctx, func(tx repository.RegistrationTx) error {
			activity, err := tx.LockActivity(ctx, reg.ActivityName)
			if err != nil {
				return err
			}
			if activity == nil {
				return domain.ErrActivityNotFound
			}

			registered, err := tx.IsRegistered(ctx, reg.ActivityName, reg.Email)
			if err != nil {
				return err
			}
			if !registered {
				return domain.ErrNotRegistered
			}

			return tx.RemoveParticipant(ctx, reg.ActivityName, reg.Email)
		})
	})

	observability.RecordUnregister(outcomeFor(err))
	if err != nil {
		s.logResult("Unregister", reg, err)
		return nil, err
	}

	s.logger.Info("Student unregistered",
		zap.String("activity", reg.ActivityName),
		zap.String("email", reg.Email))

	confirmation := domain.Unregistered(reg)
	return &confirmation, nil
}

// registration checks the input. The email is kept exactly as given; a
// blank activity name can never match a stored activity.
func (s *ActivityRegistrationService) registration(activityName, email string) (domain.Registration, error) {
	reg := domain.Registration{ActivityName: activityName, Email: email}

	err := s.validate.Struct(reg)
	if err == nil {
		return reg, nil
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return reg, domain.ErrActivityNotFound
	}
	return reg, fmt.Errorf("failed to validate registration: %w", err)
}

func (s *ActivityRegistrationService) withActivityLock(ctx context.Context, activityName string, fn func() error) error {
	start := time.Now()
	unlock, err := s.locker.Acquire(ctx, activityName)
	observability.ObserveLockWait(time.Since(start).Seconds())
	if err != nil {
		return err
	}
	defer unlock()

	return fn()
}

func (s *ActivityRegistrationService) logResult(op string, reg domain.Registration, err error) {
	fields := []zap.Field{
		zap.String("activity", reg.ActivityName),
		zap.String("email", reg.Email),
		zap.Error(err),
	}

	if isRejection(err) {
		s.logger.Info(op+" rejected", fields...)
		return
	}
	s.logger.Error(op+" failed", fields...)
}

func isRejection(err error) bool {
	switch outcomeFor(err) {
	case observability.OutcomeError, observability.OutcomeLockTimeout:
		return false
	default:
		return true
	}
}

func outcomeFor(err error) string {
	switch {
	case err == nil:
		return observability.OutcomeSuccess
	case errors.Is(err, domain.ErrActivityNotFound):
		return observability.OutcomeNotFound
	case errors.Is(err, domain.ErrAlreadyRegistered):
		return observability.OutcomeAlreadyRegistered
	case errors.Is(err, domain.ErrActivityFull):
		return observability.OutcomeFull
	case errors.Is(err, domain.ErrNotRegistered):
		return observability.OutcomeNotRegistered
	case errors.Is(err, domain.ErrLockTimeout):
		return observability.OutcomeLockTimeout
	default:
		return observability.OutcomeError
	}
}
