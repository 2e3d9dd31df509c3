package logging

import (
	"context"
	"maps"
	"strings"
)

type fieldsKey struct{}

// ContextWithFields annotates ctx with request-scoped log fields. Values
// already on ctx are kept unless fields overrides the same key.
func ContextWithFields(ctx context.Context, fields map[string]any) context.Context {
	if ctx == nil || len(fields) == 0 {
		return ctx
	}
	merged := ContextFields(ctx)
	if merged == nil {
		merged = make(map[string]any, len(fields))
	}
	maps.Copy(merged, fields)
	return context.WithValue(ctx, fieldsKey{}, merged)
}

// ContextWithAccount tags ctx with the signed-in account.
func ContextWithAccount(ctx context.Context, accountID string) context.Context {
	if strings.TrimSpace(accountID) == "" {
		return ctx
	}
	return ContextWithFields(ctx, map[string]any{fieldAccountID: accountID})
}

// ContextWithRequestID tags ctx with the router's request id.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	if strings.TrimSpace(requestID) == "" {
		return ctx
	}
	return ContextWithFields(ctx, map[string]any{fieldRequestID: requestID})
}

// ContextFields returns a copy of the fields attached to ctx.
func ContextFields(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(fieldsKey{}).(map[string]any)
	if len(fields) == 0 {
		return nil
	}
	return maps.Clone(fields)
}

// RequestID returns the request id stored by ContextWithRequestID.
func RequestID(ctx context.Context) string {
	id, _ := ContextFields(ctx)[fieldRequestID].(string)
	return id
}
