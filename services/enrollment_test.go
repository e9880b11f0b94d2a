package services

import (
	"errors"
	"testing"
	"time"

	"github.com/studentportal/portal-api/model"
)

func subjectsForGrade(grade int, count int) []model.Subject {
	subjects := make([]model.Subject, 0, count)
	for i := 1; i <= count; i++ {
		subjects = append(subjects, model.Subject{
			ID:    uint(grade*100 + i),
			Name:  "Subject",
			Grade: grade,
		})
	}
	return subjects
}

func TestValidateStudentEnrollmentGradeBounds(t *testing.T) {
	dob := time.Date(2012, 5, 1, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	available := subjectsForGrade(4, 5)

	for _, grade := range []int{0, 1, 3, 13, 99, -1} {
		_, err := ValidateStudentEnrollment(grade, dob, nil, available, today)
		if !errors.Is(err, ErrInvalidGrade) {
			t.Errorf("grade %d: expected ErrInvalidGrade, got %v", grade, err)
		}
	}

	for grade := model.MinGrade; grade <= model.MaxGrade; grade++ {
		catalog := subjectsForGrade(grade, 5)
		var selection []uint
		if grade >= model.MinSeniorGrade {
			selection = []uint{catalog[0].ID, catalog[1].ID, catalog[2].ID, catalog[3].ID}
		}
		if _, err := ValidateStudentEnrollment(grade, dob, selection, catalog, today); err != nil {
			t.Errorf("grade %d: unexpected error %v", grade, err)
		}
	}
}

func TestValidateStudentEnrollmentSeniorSubjectCount(t *testing.T) {
	dob := time.Date(2009, 1, 15, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	catalog := subjectsForGrade(11, 7)
	ids := func(n int) []uint {
		out := make([]uint, 0, n)
		for i := 0; i < n; i++ {
			out = append(out, catalog[i].ID)
		}
		return out
	}

	cases := []struct {
		name      string
		selection []uint
		wantErr   error
	}{
		{"none selected", nil, ErrSubjectCountMismatch},
		{"three selected", ids(3), ErrSubjectCountMismatch},
		{"five selected", ids(5), ErrSubjectCountMismatch},
		{"four selected", ids(4), nil},
		{"duplicates collapse below four", []uint{catalog[0].ID, catalog[0].ID, catalog[1].ID, catalog[2].ID}, ErrSubjectCountMismatch},
		{"unknown subject id", []uint{catalog[0].ID, catalog[1].ID, catalog[2].ID, 9999}, ErrUnknownSubject},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ValidateStudentEnrollment(11, dob, tc.selection, catalog, today)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(result.SubjectIDs) != SeniorSubjectCount {
				t.Errorf("expected %d subjects, got %d", SeniorSubjectCount, len(result.SubjectIDs))
			}
		})
	}
}

func TestValidateStudentEnrollmentJuniorAutoAssign(t *testing.T) {
	dob := time.Date(2016, 3, 10, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	catalog := subjectsForGrade(6, 5)

	// Whatever the client selects, a junior student gets the full grade
	// catalog.
	selections := [][]uint{
		nil,
		{catalog[0].ID},
		{catalog[0].ID, catalog[1].ID, 9999},
	}

	for _, selection := range selections {
		result, err := ValidateStudentEnrollment(6, dob, selection, catalog, today)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.SubjectIDs) != len(catalog) {
			t.Fatalf("expected %d subjects, got %d", len(catalog), len(result.SubjectIDs))
		}
		for i, s := range catalog {
			if result.SubjectIDs[i] != s.ID {
				t.Errorf("subject %d: expected id %d, got %d", i, s.ID, result.SubjectIDs[i])
			}
		}
	}
}

func TestValidateStudentEnrollmentAgeGate(t *testing.T) {
	today := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	catalog := subjectsForGrade(7, 5)

	cases := []struct {
		name    string
		dob     time.Time
		wantAge int
		canJoin bool
	}{
		{"twelfth birthday today", time.Date(2014, 8, 31, 0, 0, 0, 0, time.UTC), 12, true},
		{"twelfth birthday tomorrow", time.Date(2014, 9, 1, 0, 0, 0, 0, time.UTC), 11, false},
		{"well over twelve", time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), 16, true},
		{"well under twelve", time.Date(2017, 12, 25, 0, 0, 0, 0, time.UTC), 8, false},
		{"birthday later this year", time.Date(2014, 12, 1, 0, 0, 0, 0, time.UTC), 11, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ValidateStudentEnrollment(7, tc.dob, nil, catalog, today)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Age != tc.wantAge {
				t.Errorf("expected age %d, got %d", tc.wantAge, result.Age)
			}
			if result.CanJoinSubjectChannels != tc.canJoin {
				t.Errorf("expected CanJoinSubjectChannels=%v, got %v", tc.canJoin, result.CanJoinSubjectChannels)
			}
		})
	}
}

func TestValidateTutorEnrollment(t *testing.T) {
	catalog := subjectsForGrade(10, 7)

	t.Run("empty selection rejected", func(t *testing.T) {
		_, err := ValidateTutorEnrollment(nil, catalog, 0)
		if !errors.Is(err, ErrNoSubjectsSelected) {
			t.Fatalf("expected ErrNoSubjectsSelected, got %v", err)
		}
	})

	t.Run("over the cap rejected", func(t *testing.T) {
		selection := []uint{catalog[0].ID, catalog[1].ID, catalog[2].ID, catalog[3].ID, catalog[4].ID}
		_, err := ValidateTutorEnrollment(selection, catalog, 0)
		if !errors.Is(err, ErrTooManySubjects) {
			t.Fatalf("expected ErrTooManySubjects, got %v", err)
		}
	})

	t.Run("unknown subject rejected", func(t *testing.T) {
		_, err := ValidateTutorEnrollment([]uint{9999}, catalog, 0)
		if !errors.Is(err, ErrUnknownSubject) {
			t.Fatalf("expected ErrUnknownSubject, got %v", err)
		}
	})

	t.Run("duplicates are collapsed", func(t *testing.T) {
		selection := []uint{catalog[0].ID, catalog[0].ID, catalog[1].ID}
		result, err := ValidateTutorEnrollment(selection, catalog, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.SubjectIDs) != 2 {
			t.Errorf("expected 2 distinct subjects, got %d", len(result.SubjectIDs))
		}
	})

	t.Run("custom cap", func(t *testing.T) {
		selection := []uint{catalog[0].ID, catalog[1].ID}
		if _, err := ValidateTutorEnrollment(selection, catalog, 1); !errors.Is(err, ErrTooManySubjects) {
			t.Fatalf("expected ErrTooManySubjects, got %v", err)
		}
		if _, err := ValidateTutorEnrollment(selection, catalog, 2); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestAgeAtLeapYear(t *testing.T) {
	// Feb 29 birthday: the anniversary lands on Mar 1 in non-leap years,
	// so the age flips on Mar 1.
	dob := time.Date(2012, 2, 29, 0, 0, 0, 0, time.UTC)

	if got := ageAt(dob, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)); got != 12 {
		t.Errorf("day before non-leap anniversary: expected 12, got %d", got)
	}
	if got := ageAt(dob, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)); got != 13 {
		t.Errorf("non-leap anniversary: expected 13, got %d", got)
	}
}
