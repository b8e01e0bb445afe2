package types

import (
	"context"
)

// ContextKey is a type for the keys of values stored in the context
type ContextKey string

const (
	CtxRequestID      ContextKey = "ctx_request_id"
	CtxOrganizationID ContextKey = "ctx_organization_id"
	CtxUserID         ContextKey = "ctx_user_id"
	CtxJWT            ContextKey = "ctx_jwt"

	// Default values
	DefaultUserID = "00000000-0000-0000-0000-000000000000"
)

func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(CtxUserID).(string); ok {
		return userID
	}
	return ""
}

func GetOrganizationID(ctx context.Context) string {
	if orgID, ok := ctx.Value(CtxOrganizationID).(string); ok {
		return orgID
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}
	return ""
}

// GetJWT returns the caller's bearer token, forwarded as-is to the Billing API
func GetJWT(ctx context.Context) string {
	if jwt, ok := ctx.Value(CtxJWT).(string); ok {
		return jwt
	}
	return ""
}

// SetOrganizationID sets the organization ID in the context
func SetOrganizationID(ctx context.Context, orgID string) context.Context {
	return context.WithValue(ctx, CtxOrganizationID, orgID)
}

// SetJWT sets the bearer token in the context
func SetJWT(ctx context.Context, jwt string) context.Context {
	return context.WithValue(ctx, CtxJWT, jwt)
}
