package tenancy

import "context"

type ctxKey string

const (
	tenantKey  ctxKey = "agenda.tenant_id"
	profileKey ctxKey = "agenda.profile_id"
)

// WithTenantID stores the tenant id in context.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantKey, tenantID)
}

// TenantIDFromContext extracts the tenant id if present.
func TenantIDFromContext(ctx context.Context) (string, bool) {
	val := ctx.Value(tenantKey)
	if val == nil {
		return "", false
	}
	tenantID, ok := val.(string)
	return tenantID, ok && tenantID != ""
}

// WithProfileID stores the profile id in context.
func WithProfileID(ctx context.Context, profileID string) context.Context {
	return context.WithValue(ctx, profileKey, profileID)
}

// ProfileIDFromContext extracts the profile id if present.
func ProfileIDFromContext(ctx context.Context) (string, bool) {
	val := ctx.Value(profileKey)
	if val == nil {
		return "", false
	}
	profileID, ok := val.(string)
	return profileID, ok && profileID != ""
}
