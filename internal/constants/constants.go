package constants

const (
	// Context / session keys
	ContextKeyUserID    = "user_id"
	ContextKeyPrincipal = "principal"
	ContextKeyRequestID = "request_id"

	SessionCookieName = "intern_session"

	// Credentials
	MinPasswordLength = 8

	// Pagination
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// Intern profile defaults
	DefaultInternStatus = "Active"

	// Task progress bounds
	MinProgress = 0
	MaxProgress = 100

	MaxAIGeneratedTasks = 20

	// DueDateLayout is the wire format of task due dates.
	DueDateLayout = "2006-01-02"
)
