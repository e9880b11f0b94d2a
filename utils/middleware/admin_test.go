package middleware

import (
	"bytes"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestAuditBodySnapshot(t *testing.T) {
	payload := []byte(`{"status":"blocked"}`)

	tests := []struct {
		name   string
		method string
		body   []byte
		want   []byte
	}{
		{"patch captures body", fiber.MethodPatch, payload, payload},
		{"post captures body", fiber.MethodPost, payload, payload},
		{"put captures body", fiber.MethodPut, payload, payload},
		{"get ignores body", fiber.MethodGet, payload, nil},
		{"delete ignores body", fiber.MethodDelete, payload, nil},
		{"invalid json dropped", fiber.MethodPatch, []byte("not json"), nil},
		{"empty body dropped", fiber.MethodPatch, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := auditBodySnapshot(tt.method, tt.body)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("auditBodySnapshot(%s) = %q, want %q", tt.method, got, tt.want)
			}
		})
	}
}

func TestAuditBodySnapshotCopies(t *testing.T) {
	body := []byte(`{"role":"tutor"}`)
	snapshot := auditBodySnapshot(fiber.MethodPatch, body)

	// Fiber reuses the request buffer after the handler returns, so the
	// snapshot must not alias it.
	body[2] = 'X'
	if !bytes.Equal(snapshot, []byte(`{"role":"tutor"}`)) {
		t.Errorf("snapshot aliases the request body: %q", snapshot)
	}
}
