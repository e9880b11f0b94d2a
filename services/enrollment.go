package services

import (
	"time"

	"github.com/studentportal/portal-api/model"
)

// SeniorSubjectCount is how many subjects a grade 10-12 student must pick
const SeniorSubjectCount = 4

// DefaultMaxTutorSubjects caps how many subjects a tutor can register for
const DefaultMaxTutorSubjects = 4

// NormalizedEnrollment is the validated outcome of an enrollment request:
// the final subject set plus derived flags. Nothing is persisted here;
// the profile service applies it transactionally.
type NormalizedEnrollment struct {
	SubjectIDs             []uint
	CanJoinSubjectChannels bool
	Age                    int
}

// ValidateStudentEnrollment checks a student enrollment or edit request
// against the grade rules and returns the normalized subject set.
//
// Grades 10-12 must select exactly SeniorSubjectCount distinct subjects,
// each present in available. Grades 4-9 have no choice: the client
// selection is ignored and the full available set for the grade is
// assigned. Any other grade is rejected.
//
// The can-join-subject-channels flag is derived from age at `today`,
// using the exact birthday rule: the year difference is decremented if
// the birthday has not yet been reached this year.
func ValidateStudentEnrollment(grade int, dateOfBirth time.Time, selectedSubjectIDs []uint, available []model.Subject, today time.Time) (*NormalizedEnrollment, error) {
	if grade < model.MinGrade || grade > model.MaxGrade {
		return nil, ErrInvalidGrade
	}

	var subjectIDs []uint
	if grade >= model.MinSeniorGrade {
		distinct := dedupe(selectedSubjectIDs)
		if len(distinct) != SeniorSubjectCount || len(distinct) != len(selectedSubjectIDs) {
			return nil, ErrSubjectCountMismatch
		}
		if !allKnown(distinct, available) {
			return nil, ErrUnknownSubject
		}
		subjectIDs = distinct
	} else {
		// Junior grades get the whole catalog for their grade, regardless
		// of what the client sent.
		subjectIDs = make([]uint, 0, len(available))
		for _, s := range available {
			subjectIDs = append(subjectIDs, s.ID)
		}
	}

	age := ageAt(dateOfBirth, today)

	return &NormalizedEnrollment{
		SubjectIDs:             subjectIDs,
		CanJoinSubjectChannels: age >= 12,
		Age:                    age,
	}, nil
}

// ValidateTutorEnrollment checks a tutor's subject selection. maxSubjects
// caps the selection; pass 0 to use DefaultMaxTutorSubjects.
func ValidateTutorEnrollment(selectedSubjectIDs []uint, available []model.Subject, maxSubjects int) (*NormalizedEnrollment, error) {
	if maxSubjects <= 0 {
		maxSubjects = DefaultMaxTutorSubjects
	}

	distinct := dedupe(selectedSubjectIDs)
	if len(distinct) == 0 {
		return nil, ErrNoSubjectsSelected
	}
	if len(distinct) > maxSubjects {
		return nil, ErrTooManySubjects
	}
	if !allKnown(distinct, available) {
		return nil, ErrUnknownSubject
	}

	return &NormalizedEnrollment{SubjectIDs: distinct}, nil
}

// ageAt computes full years between dob and today, decrementing when the
// birthday has not yet been reached in today's year.
func ageAt(dob, today time.Time) int {
	age := today.Year() - dob.Year()
	anniversary := dob.AddDate(age, 0, 0)
	if anniversary.After(today) {
		age--
	}
	return age
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func allKnown(ids []uint, available []model.Subject) bool {
	known := make(map[uint]struct{}, len(available))
	for _, s := range available {
		known[s.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return false
		}
	}
	return true
}
