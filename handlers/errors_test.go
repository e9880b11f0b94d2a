package handlers

import (
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/studentportal/portal-api/services"
)

func statusFor(t *testing.T, err error) int {
	t.Helper()

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return MapServiceError(c, err)
	})

	resp, testErr := app.Test(httptest.NewRequest("GET", "/", nil))
	if testErr != nil {
		t.Fatalf("request failed: %v", testErr)
	}
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestMapServiceError(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
	}{
		{services.ErrNotFound, fiber.StatusNotFound},
		{services.ErrNotAllowed, fiber.StatusForbidden},
		{services.ErrLinkNotFound, fiber.StatusNotFound},
		{services.ErrProfileAlreadyExists, fiber.StatusConflict},
		{services.ErrDuplicateLink, fiber.StatusConflict},
		{services.ErrAlreadyApproved, fiber.StatusConflict},
		{services.ErrInvalidGrade, fiber.StatusUnprocessableEntity},
		{services.ErrSubjectCountMismatch, fiber.StatusUnprocessableEntity},
		{services.ErrUnknownSubject, fiber.StatusUnprocessableEntity},
		{services.ErrEmptyMessage, fiber.StatusUnprocessableEntity},
		{services.ErrNotEligible, fiber.StatusForbidden},
		{services.ErrNotAMember, fiber.StatusForbidden},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			if got := statusFor(t, tc.err); got != tc.wantStatus {
				t.Errorf("expected status %d, got %d", tc.wantStatus, got)
			}
		})
	}

	t.Run("wrapped errors still map", func(t *testing.T) {
		wrapped := fmt.Errorf("context: %w", services.ErrInvalidGrade)
		if got := statusFor(t, wrapped); got != fiber.StatusUnprocessableEntity {
			t.Errorf("expected status 422, got %d", got)
		}
	})
}
