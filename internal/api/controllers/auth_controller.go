package controllers

import (
	"errors"

	"github.com/fasthttp/router"
	"github.com/rabnra2016/issue-tracker-mvp/internal/api/authenticator"
	"github.com/rabnra2016/issue-tracker-mvp/internal/perrors"
	"github.com/rabnra2016/issue-tracker-mvp/internal/services"
	user2 "github.com/rabnra2016/issue-tracker-mvp/internal/services/user"
	"github.com/valyala/fasthttp"
)

// AuthResponse is the envelope returned by signup and login.
type AuthResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

func RegisterAuthRoutes(r *router.Router, svc *services.Services, auth *authenticator.Authenticator) {
	// Sign up with email/password
	r.POST("/api/auth/signup", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		var req user2.SignupRequest
		if err := parseBody(ctx, &req); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}

		if req.Email == "" || req.Password == "" || req.Name == "" {
			writeError(ctx, stdCtx, "Name, email and password are required", perrors.NewErrInvalidRequest("Name, email and password are required", errors.New("missing signup fields")))
			return
		}

		u, err := svc.User.Signup(stdCtx, &req)
		if err != nil {
			switch {
			case errors.Is(err, user2.ErrEmailTaken):
				writeError(ctx, stdCtx, "Email already registered", perrors.NewErrConflict("Email already registered", err))
			default:
				writeError(ctx, stdCtx, "Failed to sign up", perrors.NewErrInternalServerError("Failed to sign up", err))
			}
			return
		}

		token, err := auth.GenerateToken(u.ID, u.Email, u.Name)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to generate token", perrors.NewErrInternalServerError("Failed to generate token", err))
			return
		}

		writeOK(ctx, stdCtx, "Signed up successfully", AuthResponse{
			Token:  token,
			UserID: u.ID.String(),
			Email:  u.Email,
			Name:   u.Name,
		})
	})

	// Login with email/password
	r.POST("/api/auth/login", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		var req user2.LoginRequest
		if err := parseBody(ctx, &req); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}

		if req.Email == "" || req.Password == "" {
			writeError(ctx, stdCtx, "Email and password are required", perrors.NewErrInvalidRequest("Email and password are required", errors.New("missing credentials")))
			return
		}

		u, err := svc.User.Authenticate(stdCtx, req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, user2.ErrInvalidCredentials):
				writeError(ctx, stdCtx, "Invalid credentials", perrors.NewErrUnauthorized("Invalid credentials", err))
			default:
				writeError(ctx, stdCtx, "Failed to log in", perrors.NewErrInternalServerError("Failed to log in", err))
			}
			return
		}

		token, err := auth.GenerateToken(u.ID, u.Email, u.Name)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to generate token", perrors.NewErrInternalServerError("Failed to generate token", err))
			return
		}

		writeOK(ctx, stdCtx, "Logged in successfully", AuthResponse{
			Token:  token,
			UserID: u.ID.String(),
			Email:  u.Email,
			Name:   u.Name,
		})
	})

	// Get current user info
	r.GET("/api/auth/me", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		userID, err := currentUserID(ctx)
		if err != nil {
			writeError(ctx, stdCtx, "Unauthorized", perrors.NewErrUnauthorized("Unauthorized", err))
			return
		}

		u, err := svc.User.GetByID(stdCtx, userID)
		if err != nil {
			writeError(ctx, stdCtx, "Failed to get user", perrors.NewErrInternalServerError("Failed to get user", err))
			return
		}

		writeOK(ctx, stdCtx, "User retrieved successfully", u)
	})
}
