package constants

type ContextKey string

const (
	RequestIDKey  ContextKey = "request_id"
	UserIDKey     ContextKey = "user_id"
	SessionKeyKey ContextKey = "session_key"
)

// SessionCookieName 匿名購物車的 session cookie
const SessionCookieName = "cart_session"
