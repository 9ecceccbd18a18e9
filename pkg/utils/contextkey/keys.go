package contextkey

// key is unexported so no other package can collide with these
// context values.
type key string

const (
	TraceID   key = "trace_id"
	RequestID key = "request_id"
	UserID    key = "user_id"
)
