package controllers

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	json "github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/rabnra2016/issue-tracker-mvp/internal/api/authenticator"
	"github.com/rabnra2016/issue-tracker-mvp/internal/api/response"
	"github.com/valyala/fasthttp"
)

// requestContext returns a baseline context for handlers. fasthttp does not provide
// a standard context, so we start from Background for downstream calls.
func requestContext(_ *fasthttp.RequestCtx) context.Context {
	return context.Background()
}

func parseBody(ctx *fasthttp.RequestCtx, target any) error {
	body := ctx.PostBody()
	if len(body) == 0 {
		return errors.New("request body is empty")
	}

	return json.Unmarshal(body, target)
}

func writeError(ctx *fasthttp.RequestCtx, stdCtx context.Context, message string, err error) {
	response.NewResponse[any](stdCtx, message, nil).WithError(err).Write(ctx)
}

func writeOK(ctx *fasthttp.RequestCtx, stdCtx context.Context, message string, data any) {
	response.NewResponse(stdCtx, message, data).Write(ctx)
}

// currentUserID extracts the authenticated caller's id stored by the auth
// middleware.
func currentUserID(ctx *fasthttp.RequestCtx) (uuid.UUID, error) {
	claims, ok := ctx.UserValue("userClaims").(*authenticator.UserClaims)
	if !ok || claims == nil {
		return uuid.Nil, errors.New("no user claims")
	}

	return uuid.Parse(claims.UserID)
}

func pathParam(ctx *fasthttp.RequestCtx, key string) (string, error) {
	val := ctx.UserValue(key)
	if val == nil {
		return "", fmt.Errorf("%s is required", key)
	}

	return fmt.Sprint(val), nil
}

func pathParamUUID(ctx *fasthttp.RequestCtx, key string) (uuid.UUID, error) {
	val, err := pathParam(ctx, key)
	if err != nil {
		return uuid.Nil, err
	}

	return uuid.Parse(val)
}

func requireUUIDQuery(ctx *fasthttp.RequestCtx, key string) (uuid.UUID, error) {
	raw := ctx.QueryArgs().Peek(key)
	if len(raw) == 0 {
		return uuid.Nil, fmt.Errorf("%s parameter is required", key)
	}

	return uuid.ParseBytes(raw)
}

func optionalUUIDQuery(ctx *fasthttp.RequestCtx, key string) (*uuid.UUID, error) {
	raw := ctx.QueryArgs().Peek(key)
	if len(raw) == 0 {
		return nil, nil
	}

	id, err := uuid.ParseBytes(raw)
	if err != nil {
		return nil, err
	}

	return &id, nil
}

func stringQuery(ctx *fasthttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func intQuery(ctx *fasthttp.RequestCtx, key string, defaultValue int) int {
	raw := ctx.QueryArgs().Peek(key)
	if len(raw) == 0 {
		return defaultValue
	}

	val, err := strconv.Atoi(string(raw))
	if err != nil {
		return defaultValue
	}

	return val
}
