package services

import "errors"

// Domain errors returned by the enrollment rules and workflow services.
// Handlers map these to HTTP responses with errors.Is; anything else is
// treated as a persistence failure.
var (
	ErrInvalidGrade         = errors.New("grade must be between 4 and 12")
	ErrSubjectCountMismatch = errors.New("grades 10 to 12 must select exactly 4 subjects")
	ErrUnknownSubject       = errors.New("one or more selected subjects are invalid")
	ErrNoSubjectsSelected   = errors.New("at least one subject must be selected")
	ErrTooManySubjects      = errors.New("too many subjects selected")
	ErrProfileAlreadyExists = errors.New("profile already exists for this user")
	ErrAlreadyApproved      = errors.New("subject link is already approved")
	ErrLinkNotFound         = errors.New("tutor subject link not found")
	ErrNotEligible          = errors.New("not eligible to join this channel")
	ErrNotAMember           = errors.New("not a member of this channel")
	ErrEmptyMessage         = errors.New("message text must not be empty")
	ErrDuplicateLink        = errors.New("link already exists")
	ErrNotFound             = errors.New("record not found")
	ErrNotAllowed           = errors.New("caller is not allowed to perform this action")
)

// IsConflict reports whether err is one of the duplicate/conflict errors
func IsConflict(err error) bool {
	return errors.Is(err, ErrProfileAlreadyExists) ||
		errors.Is(err, ErrAlreadyApproved) ||
		errors.Is(err, ErrDuplicateLink)
}

// IsValidation reports whether err is an enrollment validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidGrade) ||
		errors.Is(err, ErrSubjectCountMismatch) ||
		errors.Is(err, ErrUnknownSubject) ||
		errors.Is(err, ErrNoSubjectsSelected) ||
		errors.Is(err, ErrTooManySubjects) ||
		errors.Is(err, ErrEmptyMessage)
}
