package cron

import (
	"context"
	"log"
	"time"

	"github.com/studentportal/portal-api/model"
	"github.com/studentportal/portal-api/utils/auth"
)

// CleanupExpiredTokens removes blacklist entries whose tokens have
// already expired on their own
func (m *CronManager) CleanupExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	blacklist := auth.NewBlacklistService(m.db)
	removed, err := blacklist.CleanupExpiredTokens(ctx)
	if err != nil {
		log.Printf("[CRON] token cleanup failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("[CRON] removed %d expired blacklist entries", removed)
	}
}

// staleApprovalAge is how long a link may sit unapproved before it is
// flagged for admin attention
const staleApprovalAge = 7 * 24 * time.Hour

// ReportStaleApprovals logs tutor-subject links that have been waiting
// on approval for too long
func (m *CronManager) ReportStaleApprovals() {
	cutoff := time.Now().Add(-staleApprovalAge)

	var links []model.TutorSubject
	err := m.db.
		Preload("Subject").
		Where("approved = ? AND date_registered < ?", false, cutoff).
		Find(&links).Error
	if err != nil {
		log.Printf("[CRON] stale approval check failed: %v", err)
		return
	}

	if len(links) == 0 {
		return
	}

	log.Printf("[CRON] %d tutor-subject links awaiting approval for over %s", len(links), staleApprovalAge)
	for _, link := range links {
		log.Printf("[CRON]   tutor %d -> subject %q (grade %d), requested %s",
			link.TutorID, link.Subject.Name, link.Subject.Grade, link.DateRegistered.Format(time.RFC3339))
	}
}
