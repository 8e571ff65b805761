package middlewares

// gin context keys shared with handlers and the request logger.
const (
	CtxRequestID = "request_id"
	CtxUserID    = "auth.user_id"
	CtxRole      = "auth.role"
	CtxJobID     = "job_id"
	CtxOrderID   = "order_id"
)
