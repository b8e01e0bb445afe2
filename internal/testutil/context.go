package testutil

import (
	"context"

	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/types"
)

const (
	TestOrganizationID = "org_test"
	TestJWT            = "test-jwt"
)

func SetupContext() context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, types.CtxUserID, types.DefaultUserID)
	ctx = context.WithValue(ctx, types.CtxRequestID, types.GenerateUUID())
	ctx = types.SetOrganizationID(ctx, TestOrganizationID)
	ctx = types.SetJWT(ctx, TestJWT)
	return ctx
}
