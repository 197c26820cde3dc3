package server

import (
	"net/http"

	"github.com/Kapsk2801/Lost-Found/internal/model"
	"github.com/Kapsk2801/Lost-Found/internal/server/serializer"
	"github.com/Kapsk2801/Lost-Found/internal/service"
	"github.com/labstack/echo/v4"
)

type (
	// claim contains all claim handlers.
	claim struct {
		claims *service.ClaimService
	}

	rejectParams struct {
		Reason string `json:"reason"`
	}
)

// Submit claims the given item for the current user.
// It renders 201 when a claim is created and 200 when the user already had a pending claim on the item.
func (h *claim) Submit(c echo.Context) error {
	submission, err := h.claims.Submit(c.Param("id"), currentUser(c))
	if err != nil {
		return err
	}

	status := http.StatusOK
	if submission.Created {
		status = http.StatusCreated
	}
	return c.JSON(status, serializer.Submission(submission, currentUser(c)))
}

// Mine renders the claims of the current user.
func (h *claim) Mine(c echo.Context) error {
	claims, err := h.claims.UserClaims(currentUser(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"claims": serializer.Claims(claims),
	})
}

// List renders the claims to triage, pending ones by default.
// status=all renders every claim.
func (h *claim) List(c echo.Context) error {
	status := c.QueryParam("status")
	switch status {
	case "":
		status = model.ClaimStatusPending
	case "all":
		status = ""
	}

	claims, err := h.claims.ClaimsByStatus(status)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"claims": serializer.ClaimsWithItem(claims, currentUser(c)),
	})
}

// Approve approves the given claim.
func (h *claim) Approve(c echo.Context) error {
	return h.resolve(c, service.DecisionApprove, "")
}

// Reject rejects the given claim with an optional reason.
func (h *claim) Reject(c echo.Context) error {
	var params rejectParams
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&params); err != nil {
			return err
		}
	}
	return h.resolve(c, service.DecisionReject, params.Reason)
}

func (h *claim) resolve(c echo.Context, decision, reason string) error {
	resolution, err := h.claims.Resolve(c.Param("id"), decision, reason, currentUser(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, serializer.Resolution(resolution, currentUser(c)))
}
