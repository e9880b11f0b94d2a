package chat

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/studentportal/portal-api/handlers"
	"github.com/studentportal/portal-api/services"
	"github.com/studentportal/portal-api/utils/middleware"
	"github.com/studentportal/portal-api/utils/response"
	"github.com/studentportal/portal-api/utils/validation"
)

// ChatHandler handles channel membership and messaging
type ChatHandler struct {
	chatService *services.ChatService
	validator   *validation.Validator
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		validator:   validation.NewValidator(),
	}
}

// PostMessageRequest represents a message post body
type PostMessageRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// ListChannels handles GET /api/v1/channels
func (h *ChatHandler) ListChannels(c *fiber.Ctx) error {
	channels, err := h.chatService.ListChannels(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch channels")
	}

	return response.Success(c, channels)
}

// Join handles POST /api/v1/channels/:id/join
func (h *ChatHandler) Join(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	channelID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid channel id")
	}

	if err := h.chatService.JoinChannel(c.Context(), userID, uint(channelID)); err != nil {
		return handlers.MapServiceError(c, err)
	}

	return response.SuccessWithMessage(c, "Joined channel", nil)
}

// Leave handles POST /api/v1/channels/:id/leave
func (h *ChatHandler) Leave(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	channelID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid channel id")
	}

	if err := h.chatService.LeaveChannel(c.Context(), userID, uint(channelID)); err != nil {
		return handlers.MapServiceError(c, err)
	}

	return response.NoContent(c)
}

// PostMessage handles POST /api/v1/channels/:id/messages
func (h *ChatHandler) PostMessage(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	channelID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid channel id")
	}

	var req PostMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	message, err := h.chatService.PostMessage(c.Context(), userID, uint(channelID), req.Text)
	if err != nil {
		return handlers.MapServiceError(c, err)
	}

	return response.Created(c, message)
}

// ListMessages handles GET /api/v1/channels/:id/messages
func (h *ChatHandler) ListMessages(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	channelID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid channel id")
	}

	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	messages, err := h.chatService.ListMessages(c.Context(), userID, uint(channelID), limit)
	if err != nil {
		return handlers.MapServiceError(c, err)
	}

	return response.Success(c, messages)
}
