package constants

const (
	// Context keys set by the auth middleware
	ContextKeyUserID   = "user_id"
	ContextKeyUserRole = "user_role"
	ContextKeyTask     = "task"

	MinPageSize         = 1
	DefaultPageSize     = 10
	DefaultMyTasksLimit = 5
	MaxPageSize         = 100

	DefaultNotificationLimit = 50
	MaxNotificationLimit     = 100

	MinPasswordLength = 8

	TokenIssuer = "ems-api"

	MaxAIGeneratedTasks = 20
)
