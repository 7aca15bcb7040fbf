package constants

// Context and session keys
const (
	ContextKeyUserID    = "user_id"
	ContextKeyRequestID = "request_id"
	SessionCookieName   = "task_session"
	HeaderRequestID     = "X-Request-ID"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Activity feed and live delivery
const (
	MaxActivityFeedSize  = 200
	DefaultLiveQueueSize = 1024
	LiveMessageType      = "send_notification"
	UserTopicPrefix      = "user_"
)
