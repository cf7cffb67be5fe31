package repositories

import "context"

// Repository bundles all entity repositories behind one handle.
type Repository interface {
	User() UserRepository
	Assignment() AssignmentRepository
	Notification() NotificationRepository
	Department() DepartmentRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager owns repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
