package controllers

import (
	"errors"
	"strings"

	"github.com/fasthttp/router"
	"github.com/google/uuid"
	"github.com/rabnra2016/issue-tracker-mvp/internal/perrors"
	"github.com/rabnra2016/issue-tracker-mvp/internal/services"
	issue2 "github.com/rabnra2016/issue-tracker-mvp/internal/services/issue"
	"github.com/rabnra2016/issue-tracker-mvp/internal/services/member"
	project2 "github.com/rabnra2016/issue-tracker-mvp/internal/services/project"
	"github.com/valyala/fasthttp"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func RegisterIssueRoutes(r *router.Router, svc *services.Services) {
	// Create issue
	r.POST("/api/issues", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		userID, err := currentUserID(ctx)
		if err != nil {
			writeError(ctx, stdCtx, "Unauthorized", perrors.NewErrUnauthorized("Unauthorized", err))
			return
		}

		var body issue2.CreateIssueRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}

		if err := validateIssuePayload(&body); err != nil {
			writeError(ctx, stdCtx, err.Error(), perrors.NewErrInvalidRequest(err.Error(), err))
			return
		}

		created, err := svc.Issue.Create(stdCtx, &body, userID)
		if err != nil {
			switch {
			case errors.Is(err, project2.ErrProjectNotFound):
				writeError(ctx, stdCtx, "Project not found", perrors.NewErrNotFound("Project not found", err))
			case errors.Is(err, member.ErrAccessDenied):
				writeError(ctx, stdCtx, "Access denied", perrors.NewErrForbidden("Access denied", err))
			default:
				writeError(ctx, stdCtx, "Failed to create issue", perrors.NewErrInternalServerError("Failed to create issue", err))
			}
			return
		}

		writeOK(ctx, stdCtx, "Issue created successfully", created)
	})

	// List issues with filters, pagination and sorting
	r.GET("/api/issues", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		userID, err := currentUserID(ctx)
		if err != nil {
			writeError(ctx, stdCtx, "Unauthorized", perrors.NewErrUnauthorized("Unauthorized", err))
			return
		}

		filter, err := parseIssueFilter(ctx)
		if err != nil {
			writeError(ctx, stdCtx, "Invalid filter", perrors.NewErrInvalidRequest("Invalid filter", err))
			return
		}

		page, err := svc.Issue.List(stdCtx, *filter, userID)
		if err != nil {
			switch {
			case errors.Is(err, member.ErrAccessDenied):
				writeError(ctx, stdCtx, "Access denied", perrors.NewErrForbidden("Access denied", err))
			default:
				writeError(ctx, stdCtx, "Failed to list issues", perrors.NewErrInternalServerError("Failed to list issues", err))
			}
			return
		}

		writeOK(ctx, stdCtx, "Issues retrieved successfully", page)
	})

	// Get issue
	r.GET("/api/issues/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		userID, err := currentUserID(ctx)
		if err != nil {
			writeError(ctx, stdCtx, "Unauthorized", perrors.NewErrUnauthorized("Unauthorized", err))
			return
		}

		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		i, err := svc.Issue.Get(stdCtx, id, userID)
		if err != nil {
			switch {
			case errors.Is(err, issue2.ErrIssueNotFound):
				writeError(ctx, stdCtx, "Issue not found", perrors.NewErrNotFound("Issue not found", err))
			case errors.Is(err, member.ErrAccessDenied):
				writeError(ctx, stdCtx, "Access denied", perrors.NewErrForbidden("Access denied", err))
			default:
				writeError(ctx, stdCtx, "Failed to get issue", perrors.NewErrInternalServerError("Failed to get issue", err))
			}
			return
		}

		writeOK(ctx, stdCtx, "Issue retrieved successfully", i)
	})

	// Update issue
	r.PUT("/api/issues/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		userID, err := currentUserID(ctx)
		if err != nil {
			writeError(ctx, stdCtx, "Unauthorized", perrors.NewErrUnauthorized("Unauthorized", err))
			return
		}

		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		var body issue2.UpdateIssueRequest
		if err := parseBody(ctx, &body); err != nil {
			writeError(ctx, stdCtx, "Invalid request body", perrors.NewErrInvalidRequest("Invalid request body", err))
			return
		}

		if body.Status != nil && !body.Status.Valid() {
			writeError(ctx, stdCtx, "Invalid status", perrors.NewErrInvalidRequest("Invalid status", errors.New("unknown status")))
			return
		}
		if body.Priority != nil && !body.Priority.Valid() {
			writeError(ctx, stdCtx, "Invalid priority", perrors.NewErrInvalidRequest("Invalid priority", errors.New("unknown priority")))
			return
		}

		updated, err := svc.Issue.Update(stdCtx, id, &body, userID)
		if err != nil {
			switch {
			case errors.Is(err, issue2.ErrIssueNotFound):
				writeError(ctx, stdCtx, "Issue not found", perrors.NewErrNotFound("Issue not found", err))
			case errors.Is(err, member.ErrAccessDenied):
				writeError(ctx, stdCtx, "Access denied", perrors.NewErrForbidden("Access denied", err))
			case errors.Is(err, issue2.ErrVersionConflict):
				writeError(ctx, stdCtx, "Issue was modified concurrently", perrors.NewErrConflict("Issue was modified concurrently", err))
			default:
				writeError(ctx, stdCtx, "Failed to update issue", perrors.NewErrInternalServerError("Failed to update issue", err))
			}
			return
		}

		writeOK(ctx, stdCtx, "Issue updated successfully", updated)
	})

	// Delete issue
	r.DELETE("/api/issues/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		userID, err := currentUserID(ctx)
		if err != nil {
			writeError(ctx, stdCtx, "Unauthorized", perrors.NewErrUnauthorized("Unauthorized", err))
			return
		}

		id, err := pathParamUUID(ctx, "id")
		if err != nil {
			writeError(ctx, stdCtx, "Invalid ID format", perrors.NewErrInvalidRequest("Invalid ID format", err))
			return
		}

		if err := svc.Issue.Delete(stdCtx, id, userID); err != nil {
			switch {
			case errors.Is(err, issue2.ErrIssueNotFound):
				writeError(ctx, stdCtx, "Issue not found", perrors.NewErrNotFound("Issue not found", err))
			case errors.Is(err, member.ErrAccessDenied):
				writeError(ctx, stdCtx, "Access denied", perrors.NewErrForbidden("Access denied", err))
			default:
				writeError(ctx, stdCtx, "Failed to delete issue", perrors.NewErrInternalServerError("Failed to delete issue", err))
			}
			return
		}

		ctx.SetStatusCode(fasthttp.StatusNoContent)
	})
}

func validateIssuePayload(body *issue2.CreateIssueRequest) error {
	if strings.TrimSpace(body.Title) == "" {
		return errors.New("title is required")
	}
	if body.ProjectID == uuid.Nil {
		return errors.New("projectId is required")
	}
	if body.Status != nil && !body.Status.Valid() {
		return errors.New("unknown status")
	}
	if body.Priority != nil && !body.Priority.Valid() {
		return errors.New("unknown priority")
	}
	return nil
}

// parseIssueFilter reads the listing query parameters, applying the
// documented defaults: page 0, size 20, sorted by createdAt descending.
func parseIssueFilter(ctx *fasthttp.RequestCtx) (*issue2.Filter, error) {
	projectID, err := requireUUIDQuery(ctx, "projectId")
	if err != nil {
		return nil, err
	}

	f := &issue2.Filter{
		ProjectID: projectID,
		Search:    stringQuery(ctx, "search"),
		Page:      intQuery(ctx, "page", 0),
		Size:      intQuery(ctx, "size", defaultPageSize),
		SortBy:    stringQuery(ctx, "sortBy"),
		SortDesc:  !strings.EqualFold(stringQuery(ctx, "sortDir"), "ASC"),
	}

	if f.Page < 0 {
		f.Page = 0
	}
	if f.Size <= 0 || f.Size > maxPageSize {
		f.Size = defaultPageSize
	}
	if f.SortBy == "" {
		f.SortBy = "createdAt"
	}

	if raw := stringQuery(ctx, "status"); raw != "" {
		status := issue2.Status(raw)
		if !status.Valid() {
			return nil, errors.New("unknown status")
		}
		f.Status = &status
	}

	if raw := stringQuery(ctx, "priority"); raw != "" {
		priority := issue2.Priority(raw)
		if !priority.Valid() {
			return nil, errors.New("unknown priority")
		}
		f.Priority = &priority
	}

	assigneeID, err := optionalUUIDQuery(ctx, "assigneeId")
	if err != nil {
		return nil, err
	}
	f.AssigneeID = assigneeID

	return f, nil
}
