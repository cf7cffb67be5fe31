package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/UniPortal-2026/submission-service/internal/cache"
	"github.com/UniPortal-2026/submission-service/internal/config"
	"github.com/UniPortal-2026/submission-service/internal/events"
	"github.com/UniPortal-2026/submission-service/internal/mailer"
	"github.com/UniPortal-2026/submission-service/internal/models"
	"github.com/UniPortal-2026/submission-service/internal/repositories"
	"github.com/UniPortal-2026/submission-service/internal/storage"
	"github.com/UniPortal-2026/submission-service/internal/validator"
)

// Dependencies bundles everything the services need; main wires it once.
type Dependencies struct {
	Repo      repositories.Repository
	FileStore storage.FileStore
	Publisher events.EventPublisher
	Mailer    mailer.Mailer
	OTPCache  *cache.CacheHelper
	Logger    *slog.Logger
	Validator *validator.Validator
	Config    *config.Config
}

type serviceManager struct {
	deps Dependencies

	authService         AuthService
	assignmentService   AssignmentService
	reviewService       ReviewService
	notificationService NotificationService
	userService         UserService
	departmentService   DepartmentService
	reportService       ReportService

	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

func NewServiceManager(deps Dependencies) ServiceManager {
	return &serviceManager{deps: deps}
}

func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.deps.Logger.Info("initializing service manager")

	d := sm.deps
	appName := d.Config.Email.AppName

	sm.authService = NewAuthService(d.Repo, d.Logger, d.Validator, d.OTPCache, d.Mailer, d.Config.JWT, appName)
	sm.assignmentService = NewAssignmentService(d.Repo, d.FileStore, d.Publisher, d.Mailer, d.Logger, d.Validator)
	sm.reviewService = NewReviewService(d.Repo, d.Publisher, d.Mailer, d.Logger, d.Validator)
	sm.notificationService = NewNotificationService(d.Repo, d.Logger)
	sm.userService = NewUserService(d.Repo, d.Publisher, d.Mailer, d.Logger, d.Validator, appName)
	sm.departmentService = NewDepartmentService(d.Repo, d.Logger, d.Validator)
	sm.reportService = NewReportService(d.Repo, d.Logger)

	if err := sm.seedAdmin(ctx); err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	sm.initialized = true
	sm.deps.Logger.Info("service manager initialized")
	return nil
}

// seedAdmin creates the bootstrap administrator on first start so a fresh
// deployment is never locked out.
func (sm *serviceManager) seedAdmin(ctx context.Context) error {
	cfg := sm.deps.Config
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		sm.deps.Logger.Warn("admin seed skipped, ADMIN_EMAIL or ADMIN_PASSWORD not set")
		return nil
	}

	exists, err := sm.deps.Repo.User().ExistsByEmail(ctx, nil, cfg.AdminEmail)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcryptCost)
	if err != nil {
		return err
	}
	admin := &models.User{
		FullName:     "Administrator",
		Email:        cfg.AdminEmail,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := sm.deps.Repo.User().Create(ctx, nil, admin); err != nil {
		return err
	}

	sm.deps.Logger.Info("bootstrap admin created", "user_id", admin.ID)
	return nil
}

func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.authService
}

func (sm *serviceManager) Assignment() AssignmentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.assignmentService
}

func (sm *serviceManager) Review() ReviewService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.reviewService
}

func (sm *serviceManager) Notification() NotificationService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.notificationService
}

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.userService
}

func (sm *serviceManager) Department() DepartmentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.departmentService
}

func (sm *serviceManager) Report() ReportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.reportService
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.deps.Logger.Info("shutting down service manager")

	if err := sm.deps.Publisher.Close(); err != nil {
		sm.deps.Logger.Error("failed to close event publisher", "error", err)
	}

	if repoManager, ok := sm.deps.Repo.(repositories.RepositoryManager); ok {
		if err := repoManager.Shutdown(ctx); err != nil {
			sm.deps.Logger.Error("failed to shutdown repository manager", "error", err)
		}
	}

	sm.shutdown = true
	sm.deps.Logger.Info("service manager shut down")
	return nil
}
