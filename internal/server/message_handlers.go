package server

import (
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SendMessage handles POST /api/messages/:userId
func (s *Server) SendMessage(c *fiber.Ctx) error {
	receiverID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}
	var in service.SendMessageInput
	if err := parseBody(c, &in); err != nil {
		return nil
	}
	in.SenderID, in.ReceiverID = callerID(c), receiverID

	msg, err := s.messageService.Send(c.UserContext(), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respond(c, fiber.StatusCreated, "Message sent successfully", "data", msg)
}

// GetThread handles GET /api/messages/:userId
func (s *Server) GetThread(c *fiber.Ctx) error {
	otherID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}
	page := parsePagination(c)
	messages, err := s.messageService.Thread(c.UserContext(), callerID(c), otherID, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return respond(c, fiber.StatusOK, "Messages retrieved successfully", "data", messages)
}

// GetOtherSenders handles GET /api/messages/sentMessages
// @Summary Senders the caller does not follow
// @Description Distinct users who messaged the caller, excluding anyone the caller follows, in order of first message.
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{message=string,senders=[]models.Sender,count=int}
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /messages/sentMessages [get]
func (s *Server) GetOtherSenders(c *fiber.Ctx) error {
	senders, err := s.messageService.OtherSenders(c.UserContext(), callerID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return sendersResponse(c, senders)
}

// GetAllSenders handles GET /api/messages/senders
func (s *Server) GetAllSenders(c *fiber.Ctx) error {
	senders, err := s.messageService.AllSenders(c.UserContext(), callerID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return sendersResponse(c, senders)
}

func sendersResponse(c *fiber.Ctx, senders []models.Sender) error {
	if senders == nil {
		senders = []models.Sender{}
	}
	return c.JSON(fiber.Map{
		"message": "Senders retrieved successfully",
		"senders": senders,
		"count":   len(senders),
	})
}
