package common

import "context"

type ctxKey string

const staffIDKey ctxKey = "staff_id"

// WithStaffID returns a context carrying the authenticated staff user id.
func WithStaffID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, staffIDKey, id)
}

// StaffIDFromContext extracts the staff user id set by the auth middleware.
func StaffIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(staffIDKey).(string)
	return id, ok && id != ""
}
