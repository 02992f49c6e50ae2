package core

import "context"

type contextKey string

const (
	ctxKeyClientIP contextKey = "client_ip"
	ctxKeyUserUID  contextKey = "user_uid"
)

// ContextWithClientIP records the caller's address for logging.
func ContextWithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ctxKeyClientIP, ip)
}

// ContextWithUserUID records the campaign-service user the request acts for.
func ContextWithUserUID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, ctxKeyUserUID, uid)
}

func ClientIPFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyClientIP).(string); ok {
		return v
	}
	return ""
}

// UserUIDFromContext returns the user set by ContextWithUserUID, or "".
func UserUIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyUserUID).(string); ok {
		return v
	}
	return ""
}
