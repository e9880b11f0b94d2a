package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/studentportal/portal-api/services"
	"github.com/studentportal/portal-api/utils/response"
)

// serviceErrorCodes maps domain errors to stable response codes
var serviceErrorCodes = map[error]string{
	services.ErrInvalidGrade:         "INVALID_GRADE",
	services.ErrSubjectCountMismatch: "SUBJECT_COUNT_MISMATCH",
	services.ErrUnknownSubject:       "UNKNOWN_SUBJECT",
	services.ErrNoSubjectsSelected:   "NO_SUBJECTS_SELECTED",
	services.ErrTooManySubjects:      "TOO_MANY_SUBJECTS",
	services.ErrProfileAlreadyExists: "PROFILE_ALREADY_EXISTS",
	services.ErrAlreadyApproved:      "ALREADY_APPROVED",
	services.ErrLinkNotFound:         "LINK_NOT_FOUND",
	services.ErrNotEligible:          "NOT_ELIGIBLE",
	services.ErrNotAMember:           "NOT_A_MEMBER",
	services.ErrEmptyMessage:         "EMPTY_MESSAGE",
	services.ErrDuplicateLink:        "DUPLICATE_LINK",
}

// MapServiceError translates a workflow/rule-engine error into the
// standard response envelope. Unknown errors become a 500; the caller
// may retry those, never the tagged ones.
func MapServiceError(c *fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrNotFound) {
		return response.NotFound(c, "Resource not found")
	}
	if errors.Is(err, services.ErrNotAllowed) {
		return response.Forbidden(c, "Operation not allowed")
	}

	for sentinel, code := range serviceErrorCodes {
		if !errors.Is(err, sentinel) {
			continue
		}
		switch {
		case services.IsConflict(sentinel):
			return response.Error(c, fiber.StatusConflict, sentinel.Error(), code)
		case services.IsValidation(sentinel):
			return response.UnprocessableEntity(c, sentinel.Error(), code)
		case errors.Is(sentinel, services.ErrLinkNotFound):
			return response.Error(c, fiber.StatusNotFound, sentinel.Error(), code)
		default:
			return response.Error(c, fiber.StatusForbidden, sentinel.Error(), code)
		}
	}

	return response.InternalServerError(c, "Something went wrong")
}
