package middleware

import "context"

type contextKey string

const (
	ctxOperatorID contextKey = "operator_id"
	ctxTenantID   contextKey = "tenant_id"
	ctxRole       contextKey = "actor_role"
)

func OperatorIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxOperatorID).(string); ok {
		return v
	}
	return ""
}

func TenantIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxTenantID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// WithOperatorID injects the operator identifier into the context.
func WithOperatorID(ctx context.Context, operatorID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxOperatorID, operatorID)
}

// WithTenantID injects the tenant identifier into the context.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxTenantID, tenantID)
}

// WithRole injects the operator role into the context.
func WithRole(ctx context.Context, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRole, role)
}
