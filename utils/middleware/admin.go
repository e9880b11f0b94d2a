package middleware

import (
	"encoding/json"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/studentportal/portal-api/model"
	"github.com/studentportal/portal-api/utils/response"
	"gorm.io/gorm"
)

// RequireAdmin ensures the authenticated user has the admin role
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := GetUser(c)
		if !ok {
			return response.Unauthorized(c, "Authentication required")
		}

		if user.Role != model.RoleAdmin {
			return response.Forbidden(c, "Admin access required")
		}

		c.Locals("adminUser", user)
		return c.Next()
	}
}

// AdminAuditLog records an audit trail entry for an admin action. The
// audited resource is snapshotted before the handler runs so the entry
// carries both the previous state and the submitted change.
func AdminAuditLog(db *gorm.DB, action, resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminUser, ok := c.Locals("adminUser").(*model.User)
		if !ok {
			return c.Next()
		}

		var resourceID uint
		for _, param := range []string{"id", "tutorId"} {
			if id := c.Params(param); id != "" {
				if parsedID, err := strconv.ParseUint(id, 10, 32); err == nil {
					resourceID = uint(parsedID)
				}
				break
			}
		}

		oldValue := auditOldValue(db, c, resource)
		newValue := auditBodySnapshot(c.Method(), c.Body())

		err := c.Next()

		entry := model.AdminAuditLog{
			AdminID:     adminUser.ID,
			Action:      action,
			Resource:    resource,
			ResourceID:  resourceID,
			OldValue:    oldValue,
			NewValue:    newValue,
			IPAddress:   c.IP(),
			UserAgent:   c.Get("User-Agent"),
			Description: c.Method() + " " + c.Path(),
		}
		if createErr := db.Create(&entry).Error; createErr != nil {
			log.Printf("Failed to record audit entry for %s %s: %v", action, resource, createErr)
		}

		return err
	}
}

// auditBodySnapshot copies the request body for methods that carry a
// resource representation. Non-JSON bodies are dropped rather than
// stored in the JSONB column.
func auditBodySnapshot(method string, body []byte) []byte {
	switch method {
	case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch:
		if json.Valid(body) {
			return append([]byte(nil), body...)
		}
	}
	return nil
}

// auditOldValue loads the audited resource as it stands before the
// handler mutates it. A missing record yields a null snapshot.
func auditOldValue(db *gorm.DB, c *fiber.Ctx, resource string) []byte {
	switch resource {
	case "user":
		id := c.Params("id")
		if id == "" {
			return nil
		}
		var user model.User
		if err := db.First(&user, "id = ?", id).Error; err != nil {
			return nil
		}
		snapshot, err := json.Marshal(&user)
		if err != nil {
			return nil
		}
		return snapshot
	case "tutor_subject":
		tutorID := c.Params("tutorId")
		subjectID := c.Params("subjectId")
		if tutorID == "" || subjectID == "" {
			return nil
		}
		var link model.TutorSubject
		if err := db.First(&link, "tutor_id = ? AND subject_id = ?", tutorID, subjectID).Error; err != nil {
			return nil
		}
		snapshot, err := json.Marshal(&link)
		if err != nil {
			return nil
		}
		return snapshot
	}
	return nil
}
