package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tarpaulin-edu/course-service/internal/config"
	"github.com/tarpaulin-edu/course-service/internal/events"
	"github.com/tarpaulin-edu/course-service/internal/repositories"
	"github.com/tarpaulin-edu/course-service/internal/validator"
)

// serviceManager implements ServiceManager.
type serviceManager struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	oidc      config.OIDCConfig

	authService       AuthService
	userService       UserService
	courseService     CourseService
	enrollmentService EnrollmentService
	avatarService     AvatarService
	rosterService     RosterService

	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

func NewServiceManager(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, oidc config.OIDCConfig) ServiceManager {
	return &serviceManager{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		oidc:      oidc,
	}
}

func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("initializing service manager")

	sm.authService = NewAuthService(sm.oidc, sm.logger, sm.validator)
	sm.userService = NewUserService(sm.repo, sm.logger)
	sm.courseService = NewCourseService(sm.repo, sm.logger, sm.validator, sm.publisher)
	sm.enrollmentService = NewEnrollmentService(sm.repo, sm.logger, sm.publisher)
	sm.avatarService = NewAvatarService(sm.repo, sm.logger)
	sm.rosterService = NewRosterService(sm.repo, sm.logger)

	sm.initialized = true
	sm.logger.Info("service manager initialized")
	return nil
}

func (sm *serviceManager) mustBeInitialized() {
	if !sm.initialized {
		panic("service manager not initialized")
	}
}

func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.authService
}

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.userService
}

func (sm *serviceManager) Course() CourseService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.courseService
}

func (sm *serviceManager) Enrollment() EnrollmentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.enrollmentService
}

func (sm *serviceManager) Avatar() AvatarService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.avatarService
}

func (sm *serviceManager) Roster() RosterService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.rosterService
}

func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}
	return sm.repo.Ping(ctx)
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("shutting down service manager")

	if sm.publisher != nil {
		if err := sm.publisher.Close(); err != nil {
			sm.logger.Error("failed to close event publisher", "error", err)
		}
	}

	sm.shutdown = true
	return nil
}
