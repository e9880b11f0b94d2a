package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/studentportal/portal-api/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestContext holds the resources shared by the service integration
// tests. The tests run against a real Postgres: set
// RUN_INTEGRATION_TESTS=true and the usual DB_* variables.
type TestContext struct {
	db *gorm.DB

	profileService  *ProfileService
	approvalService *ApprovalService
	chatService     *ChatService
}

func setupTestContext(t *testing.T) *TestContext {
	t.Helper()

	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}

	host := os.Getenv("DB_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("DB_PORT")
	if port == "" {
		port = "5432"
	}
	dbName := os.Getenv("TEST_DB_NAME")
	if dbName == "" {
		dbName = "portal_test"
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		host, os.Getenv("DB_USER_NAME"), os.Getenv("DB_PASSWORD"), dbName, port)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Student{},
		&model.Tutor{},
		&model.Subject{},
		&model.StudentSubject{},
		&model.TutorSubject{},
		&model.ChatChannel{},
		&model.UserChatChannel{},
		&model.ChatMessage{},
	); err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}

	// Wipe rows from previous runs, children first.
	for _, m := range []interface{}{
		&model.ChatMessage{},
		&model.UserChatChannel{},
		&model.ChatChannel{},
		&model.StudentSubject{},
		&model.TutorSubject{},
		&model.Student{},
		&model.Tutor{},
		&model.Subject{},
		&model.User{},
	} {
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(m).Error; err != nil {
			t.Fatalf("failed to clean test table: %v", err)
		}
	}

	return &TestContext{
		db:              db,
		profileService:  NewProfileService(db),
		approvalService: NewApprovalService(db),
		chatService:     NewChatService(db),
	}
}

func (tc *TestContext) createUser(t *testing.T, email string, role model.UserRole) *model.User {
	t.Helper()
	user := &model.User{
		FullName:     "Test User",
		Email:        email,
		PasswordHash: "x",
		Role:         role,
		Status:       model.StatusActive,
	}
	if err := tc.db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func (tc *TestContext) createSubjects(t *testing.T, grade, count int) []model.Subject {
	t.Helper()
	subjects := make([]model.Subject, 0, count)
	for i := 1; i <= count; i++ {
		s := model.Subject{Name: fmt.Sprintf("Subject %d-%d", grade, i), Grade: grade}
		if err := tc.db.Create(&s).Error; err != nil {
			t.Fatalf("failed to create subject: %v", err)
		}
		subjects = append(subjects, s)
	}
	return subjects
}

func subjectIDs(subjects []model.Subject) []uint {
	ids := make([]uint, 0, len(subjects))
	for _, s := range subjects {
		ids = append(ids, s.ID)
	}
	return ids
}

func TestStudentProfileLifecycle(t *testing.T) {
	tc := setupTestContext(t)
	ctx := context.Background()

	juniorCatalog := tc.createSubjects(t, 6, 5)
	seniorCatalog := tc.createSubjects(t, 11, 7)

	t.Run("junior auto-assignment", func(t *testing.T) {
		user := tc.createUser(t, "junior@test.local", model.RoleStudent)
		student, err := tc.profileService.RegisterStudentProfile(ctx, StudentEnrollmentRequest{
			UserID:             user.ID,
			Grade:              6,
			DateOfBirth:        time.Date(2016, 4, 1, 0, 0, 0, 0, time.UTC),
			SelectedSubjectIDs: []uint{juniorCatalog[0].ID}, // ignored
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var links []model.StudentSubject
		if err := tc.db.Where("student_id = ?", student.ID).Find(&links).Error; err != nil {
			t.Fatalf("failed to load links: %v", err)
		}
		if len(links) != len(juniorCatalog) {
			t.Errorf("expected %d subject links, got %d", len(juniorCatalog), len(links))
		}
		if student.CanJoinSubjectChannels {
			t.Error("a ten year old should not be allowed into subject channels")
		}
	})

	t.Run("senior must pick exactly four", func(t *testing.T) {
		user := tc.createUser(t, "senior@test.local", model.RoleStudent)
		req := StudentEnrollmentRequest{
			UserID:             user.ID,
			Grade:              11,
			DateOfBirth:        time.Date(2009, 4, 1, 0, 0, 0, 0, time.UTC),
			SelectedSubjectIDs: subjectIDs(seniorCatalog[:3]),
		}
		if _, err := tc.profileService.RegisterStudentProfile(ctx, req); !errors.Is(err, ErrSubjectCountMismatch) {
			t.Fatalf("expected ErrSubjectCountMismatch, got %v", err)
		}

		req.SelectedSubjectIDs = subjectIDs(seniorCatalog[:4])
		student, err := tc.profileService.RegisterStudentProfile(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !student.CanJoinSubjectChannels {
			t.Error("a seventeen year old should be allowed into subject channels")
		}
	})

	t.Run("second profile for same user rejected", func(t *testing.T) {
		user := tc.createUser(t, "dup@test.local", model.RoleStudent)
		req := StudentEnrollmentRequest{
			UserID:      user.ID,
			Grade:       6,
			DateOfBirth: time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC),
		}
		if _, err := tc.profileService.RegisterStudentProfile(ctx, req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := tc.profileService.RegisterStudentProfile(ctx, req); !errors.Is(err, ErrProfileAlreadyExists) {
			t.Fatalf("expected ErrProfileAlreadyExists, got %v", err)
		}
	})

	t.Run("grade change rebuilds subject set", func(t *testing.T) {
		user := tc.createUser(t, "mover@test.local", model.RoleStudent)
		if _, err := tc.profileService.RegisterStudentProfile(ctx, StudentEnrollmentRequest{
			UserID:      user.ID,
			Grade:       6,
			DateOfBirth: time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC),
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		student, err := tc.profileService.UpdateStudentProfile(ctx, StudentEnrollmentRequest{
			UserID:             user.ID,
			Grade:              11,
			DateOfBirth:        time.Date(2013, 1, 1, 0, 0, 0, 0, time.UTC),
			SelectedSubjectIDs: subjectIDs(seniorCatalog[:4]),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var links []model.StudentSubject
		if err := tc.db.Where("student_id = ?", student.ID).Find(&links).Error; err != nil {
			t.Fatalf("failed to load links: %v", err)
		}
		if len(links) != SeniorSubjectCount {
			t.Errorf("expected %d subject links after grade change, got %d", SeniorSubjectCount, len(links))
		}
	})
}

func TestTutorApprovalWorkflow(t *testing.T) {
	tc := setupTestContext(t)
	ctx := context.Background()

	catalog := tc.createSubjects(t, 10, 5)
	user := tc.createUser(t, "tutor@test.local", model.RoleTutor)

	tutor, err := tc.profileService.RegisterTutorProfile(ctx, TutorEnrollmentRequest{
		UserID:             user.ID,
		GradeBand:          model.GradeBandSenior,
		SelectedSubjectIDs: subjectIDs(catalog[:2]),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("links start unapproved", func(t *testing.T) {
		approved, err := tc.approvalService.IsApprovedForSubject(ctx, tutor.ID, catalog[0].ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if approved {
			t.Error("a fresh tutor-subject link must not be approved")
		}
	})

	t.Run("non-admin cannot approve", func(t *testing.T) {
		if _, err := tc.approvalService.ApproveSubject(ctx, false, tutor.ID, catalog[0].ID); !errors.Is(err, ErrNotAllowed) {
			t.Fatalf("expected ErrNotAllowed, got %v", err)
		}
	})

	t.Run("admin approval flips the flag once", func(t *testing.T) {
		link, err := tc.approvalService.ApproveSubject(ctx, true, tutor.ID, catalog[0].ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !link.Approved {
			t.Fatal("link should be approved")
		}

		// Approving again is a no-op, not an error.
		if _, err := tc.approvalService.ApproveSubject(ctx, true, tutor.ID, catalog[0].ID); err != nil {
			t.Fatalf("repeat approval should be idempotent, got %v", err)
		}
	})

	t.Run("approving a missing link fails", func(t *testing.T) {
		if _, err := tc.approvalService.ApproveSubject(ctx, true, tutor.ID, catalog[4].ID); !errors.Is(err, ErrLinkNotFound) {
			t.Fatalf("expected ErrLinkNotFound, got %v", err)
		}
	})

	t.Run("re-request of an approved subject fails", func(t *testing.T) {
		if _, err := tc.approvalService.RequestSubjectApproval(ctx, tutor.ID, catalog[0].ID); !errors.Is(err, ErrAlreadyApproved) {
			t.Fatalf("expected ErrAlreadyApproved, got %v", err)
		}
	})

	t.Run("pending list excludes approved links", func(t *testing.T) {
		pending, err := tc.approvalService.ListPendingApprovals(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, link := range pending {
			if link.Approved {
				t.Error("pending list contains an approved link")
			}
			if link.TutorID == tutor.ID && link.SubjectID == catalog[0].ID {
				t.Error("approved link still listed as pending")
			}
		}
	})
}

func TestChatMembershipRules(t *testing.T) {
	tc := setupTestContext(t)
	ctx := context.Background()

	catalog := tc.createSubjects(t, 10, 5)

	gradeChannel := model.ChatChannel{Grade: 10}
	if err := tc.db.Create(&gradeChannel).Error; err != nil {
		t.Fatalf("failed to create channel: %v", err)
	}
	subjectChannel := model.ChatChannel{Grade: 10, SubjectID: &catalog[0].ID}
	if err := tc.db.Create(&subjectChannel).Error; err != nil {
		t.Fatalf("failed to create channel: %v", err)
	}

	studentUser := tc.createUser(t, "chat-student@test.local", model.RoleStudent)
	if _, err := tc.profileService.RegisterStudentProfile(ctx, StudentEnrollmentRequest{
		UserID:             studentUser.ID,
		Grade:              10,
		DateOfBirth:        time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC),
		SelectedSubjectIDs: subjectIDs(catalog[:4]),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	youngUser := tc.createUser(t, "chat-young@test.local", model.RoleStudent)
	if _, err := tc.profileService.RegisterStudentProfile(ctx, StudentEnrollmentRequest{
		UserID:      youngUser.ID,
		Grade:       4,
		DateOfBirth: time.Now().UTC().AddDate(-9, 0, 0),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tutorUser := tc.createUser(t, "chat-tutor@test.local", model.RoleTutor)
	tutor, err := tc.profileService.RegisterTutorProfile(ctx, TutorEnrollmentRequest{
		UserID:             tutorUser.ID,
		GradeBand:          model.GradeBandSenior,
		SelectedSubjectIDs: []uint{catalog[0].ID},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("eligible student joins and posts", func(t *testing.T) {
		if err := tc.chatService.JoinChannel(ctx, studentUser.ID, subjectChannel.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		msg, err := tc.chatService.PostMessage(ctx, studentUser.ID, subjectChannel.ID, "  hello  ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if msg.SentAt.IsZero() {
			t.Error("message timestamp must be server-assigned")
		}

		// Joining again is a no-op.
		if err := tc.chatService.JoinChannel(ctx, studentUser.ID, subjectChannel.ID); err != nil {
			t.Fatalf("repeat join should be idempotent, got %v", err)
		}
	})

	t.Run("underage student rejected", func(t *testing.T) {
		if err := tc.chatService.JoinChannel(ctx, youngUser.ID, subjectChannel.ID); !errors.Is(err, ErrNotEligible) {
			t.Fatalf("expected ErrNotEligible, got %v", err)
		}
	})

	t.Run("wrong grade rejected", func(t *testing.T) {
		otherChannel := model.ChatChannel{Grade: 4}
		if err := tc.db.Create(&otherChannel).Error; err != nil {
			t.Fatalf("failed to create channel: %v", err)
		}
		if err := tc.chatService.JoinChannel(ctx, studentUser.ID, otherChannel.ID); !errors.Is(err, ErrNotEligible) {
			t.Fatalf("expected ErrNotEligible, got %v", err)
		}
	})

	t.Run("tutor needs an approved link", func(t *testing.T) {
		if err := tc.chatService.JoinChannel(ctx, tutorUser.ID, subjectChannel.ID); !errors.Is(err, ErrNotEligible) {
			t.Fatalf("expected ErrNotEligible before approval, got %v", err)
		}

		if _, err := tc.approvalService.ApproveSubject(ctx, true, tutor.ID, catalog[0].ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if err := tc.chatService.JoinChannel(ctx, tutorUser.ID, subjectChannel.ID); err != nil {
			t.Fatalf("expected join to succeed after approval, got %v", err)
		}
	})

	t.Run("non-member cannot post or read", func(t *testing.T) {
		outsider := tc.createUser(t, "chat-outsider@test.local", model.RoleStudent)
		if _, err := tc.chatService.PostMessage(ctx, outsider.ID, subjectChannel.ID, "hi"); !errors.Is(err, ErrNotAMember) {
			t.Fatalf("expected ErrNotAMember, got %v", err)
		}
		if _, err := tc.chatService.ListMessages(ctx, outsider.ID, subjectChannel.ID, 10); !errors.Is(err, ErrNotAMember) {
			t.Fatalf("expected ErrNotAMember, got %v", err)
		}
	})

	t.Run("blank message rejected", func(t *testing.T) {
		if _, err := tc.chatService.PostMessage(ctx, studentUser.ID, subjectChannel.ID, "   "); !errors.Is(err, ErrEmptyMessage) {
			t.Fatalf("expected ErrEmptyMessage, got %v", err)
		}
	})

	t.Run("leave then post fails", func(t *testing.T) {
		if err := tc.chatService.LeaveChannel(ctx, studentUser.ID, subjectChannel.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := tc.chatService.PostMessage(ctx, studentUser.ID, subjectChannel.ID, "hi"); !errors.Is(err, ErrNotAMember) {
			t.Fatalf("expected ErrNotAMember, got %v", err)
		}
		if err := tc.chatService.LeaveChannel(ctx, studentUser.ID, subjectChannel.ID); !errors.Is(err, ErrNotAMember) {
			t.Fatalf("expected ErrNotAMember on double leave, got %v", err)
		}
	})
}

func TestGradeChannelUniqueness(t *testing.T) {
	tc := setupTestContext(t)

	catalog := tc.createSubjects(t, 9, 2)

	gradeWide := model.ChatChannel{Grade: 9}
	if err := tc.db.Create(&gradeWide).Error; err != nil {
		t.Fatalf("failed to create grade channel: %v", err)
	}

	duplicate := model.ChatChannel{Grade: 9}
	if err := tc.db.Create(&duplicate).Error; !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected duplicate key on second grade-wide channel, got %v", err)
	}

	subjectChannel := model.ChatChannel{Grade: 9, SubjectID: &catalog[0].ID}
	if err := tc.db.Create(&subjectChannel).Error; err != nil {
		t.Fatalf("subject channel should coexist with the grade channel: %v", err)
	}

	duplicateSubject := model.ChatChannel{Grade: 9, SubjectID: &catalog[0].ID}
	if err := tc.db.Create(&duplicateSubject).Error; !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected duplicate key on repeated subject channel, got %v", err)
	}

	otherSubject := model.ChatChannel{Grade: 9, SubjectID: &catalog[1].ID}
	if err := tc.db.Create(&otherSubject).Error; err != nil {
		t.Fatalf("channel for a different subject should be allowed: %v", err)
	}
}
