package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rideshare/internal/domain"
	"rideshare/internal/service"
)

// MessageHandler handles HTTP requests for conversations and messages.
type MessageHandler struct {
	messagingService *service.MessagingService
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(messagingService *service.MessagingService) *MessageHandler {
	return &MessageHandler{messagingService: messagingService}
}

// StartConversationRequest is the HTTP request body for opening a thread.
type StartConversationRequest struct {
	OtherID string `json:"other_id"`
	RideID  string `json:"ride_id,omitempty"`
}

// ConversationResponse is the HTTP representation of a conversation.
type ConversationResponse struct {
	ID            string `json:"id"`
	RideID        string `json:"ride_id,omitempty"`
	UserA         string `json:"user_a"`
	UserB         string `json:"user_b"`
	CreatedAt     string `json:"created_at"`
	LastMessageAt string `json:"last_message_at"`
}

// MessageResponse is the HTTP representation of a message.
type MessageResponse struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id"`
	Body           string `json:"body"`
	SentAt         string `json:"sent_at"`
	ReadAt         string `json:"read_at,omitempty"`
}

func conversationResponse(conv *domain.Conversation) ConversationResponse {
	return ConversationResponse{
		ID:            conv.ID,
		RideID:        conv.RideID,
		UserA:         conv.UserA,
		UserB:         conv.UserB,
		CreatedAt:     conv.CreatedAt.Format(timeFormat),
		LastMessageAt: conv.LastMessageAt.Format(timeFormat),
	}
}

func messageResponse(msg *domain.Message) MessageResponse {
	return MessageResponse{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		Body:           msg.Body,
		SentAt:         msg.SentAt.Format(timeFormat),
		ReadAt:         formatTime(msg.ReadAt),
	}
}

// StartConversation handles POST /v1/conversations
func (h *MessageHandler) StartConversation(c *gin.Context) {
	var req StartConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	conv, err := h.messagingService.StartConversation(c.Request.Context(), service.StartConversationRequest{
		RideID:  req.RideID,
		UserID:  userID(c),
		OtherID: req.OtherID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, conversationResponse(conv))
}

// ListConversations handles GET /v1/conversations
func (h *MessageHandler) ListConversations(c *gin.Context) {
	convs, err := h.messagingService.ListConversations(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]ConversationResponse, 0, len(convs))
	for _, conv := range convs {
		response = append(response, conversationResponse(conv))
	}
	respondJSON(c, http.StatusOK, response)
}

// SendMessageRequest is the HTTP request body for sending a message.
type SendMessageRequest struct {
	Body string `json:"body"`
}

// SendMessage handles POST /v1/conversations/:id/messages
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	msg, err := h.messagingService.SendMessage(c.Request.Context(), service.SendMessageRequest{
		ConversationID: c.Param("id"),
		SenderID:       userID(c),
		Body:           req.Body,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, messageResponse(msg))
}

// ListMessages handles GET /v1/conversations/:id/messages
func (h *MessageHandler) ListMessages(c *gin.Context) {
	msgs, err := h.messagingService.ListMessages(c.Request.Context(), c.Param("id"), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]MessageResponse, 0, len(msgs))
	for _, msg := range msgs {
		response = append(response, messageResponse(msg))
	}
	respondJSON(c, http.StatusOK, response)
}

// MarkRead handles POST /v1/conversations/:id/read
func (h *MessageHandler) MarkRead(c *gin.Context) {
	if err := h.messagingService.MarkRead(c.Request.Context(), c.Param("id"), userID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
