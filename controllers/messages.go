package controllers

import (
	"time"

	"schooladmin_go/database"
	"schooladmin_go/middleware"
	"schooladmin_go/models"
	"schooladmin_go/services/websocket"
	"schooladmin_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type MessageController struct {
	Hub *websocket.Hub
}

// MessageRequest represents the create body
type MessageRequest struct {
	Subject      string `json:"subject"`
	Body         string `json:"body" validate:"required"`
	Type         string `json:"type"`
	RecipientIDs []uint `json:"recipient_ids" validate:"required,min=1"`
}

var messageTypes = map[string]bool{
	"Notification": true,
	"Message":      true,
	"Alert":        true,
}

// GetMessages lists messages the caller sent or received
func (mc *MessageController) GetMessages(c *fiber.Ctx) error {
	user := currentUser(c)

	box := c.Query("box", "inbox")

	query := database.DB.Model(&models.Message{}).
		Preload("Sender").Preload("Recipients").Preload("ReadBy")

	if box == "sent" {
		query = query.Where("sender_id = ?", user.ID)
	} else {
		query = query.Where(
			"id IN (SELECT message_id FROM message_recipients WHERE user_id = ?)", user.ID)
	}

	var messages []models.Message
	if err := query.Order("sent_at DESC, id DESC").Find(&messages).Error; err != nil {
		return errServer(c, "Failed to fetch messages")
	}

	dtos := make([]utils.MessageDTO, 0, len(messages))
	for _, m := range messages {
		dtos = append(dtos, utils.ToMessageDTO(m))
	}

	return c.JSON(fiber.Map{
		"messages": dtos,
	})
}

// GetMessage returns one message; only the sender and recipients may read
func (mc *MessageController) GetMessage(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid message ID")
	}

	var message models.Message
	if err := database.DB.
		Preload("Sender").Preload("Recipients").Preload("ReadBy").
		First(&message, id).Error; err != nil {
		return errNotFound(c, "Message")
	}

	user := currentUser(c)
	if !mc.canAccess(&message, user) {
		return errForbidden(c)
	}

	return c.JSON(fiber.Map{
		"message": utils.ToMessageDTO(message),
	})
}

func (mc *MessageController) canAccess(message *models.Message, user *models.User) bool {
	if user.HasRole("admin") || message.SenderID == user.ID {
		return true
	}
	for _, r := range message.Recipients {
		if r.ID == user.ID {
			return true
		}
	}
	return false
}

// SendMessage creates a message and pushes it to online recipients
func (mc *MessageController) SendMessage(c *fiber.Ctx) error {
	var req MessageRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}
	if verrs := utils.ValidateStruct(req); verrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "fields": verrs})
	}

	msgType := req.Type
	if msgType == "" {
		msgType = "Message"
	}
	if !messageTypes[msgType] {
		return errBadRequest(c, "Invalid type. Must be one of: Notification, Message, Alert")
	}

	var recipients []models.User
	if err := database.DB.Find(&recipients, req.RecipientIDs).Error; err != nil || len(recipients) != len(req.RecipientIDs) {
		return errNotFound(c, "Recipient")
	}

	user := currentUser(c)

	message := models.Message{
		SenderID: user.ID,
		Subject:  req.Subject,
		Body:     req.Body,
		SentAt:   time.Now(),
		Type:     msgType,
		Status:   "Sent",
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&message).Error; err != nil {
			return err
		}
		return tx.Model(&message).Association("Recipients").Replace(recipients)
	})
	if err != nil {
		return errServer(c, "Failed to send message")
	}

	database.DB.Preload("Sender").Preload("Recipients").Preload("ReadBy").First(&message, message.ID)
	dto := utils.ToMessageDTO(message)

	if mc.Hub != nil {
		mc.Hub.BroadcastToUsers(req.RecipientIDs, websocket.Envelope{
			Type: "message",
			Data: dto,
		})
	}

	middleware.LogActivity(c, "CREATE", "messages", message.ID, fiber.Map{
		"subject":    message.Subject,
		"recipients": len(req.RecipientIDs),
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Message sent successfully",
		"data":    dto,
	})
}

// MarkRead records the caller as having read the message
func (mc *MessageController) MarkRead(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid message ID")
	}

	var message models.Message
	if err := database.DB.Preload("Recipients").Preload("ReadBy").First(&message, id).Error; err != nil {
		return errNotFound(c, "Message")
	}

	user := currentUser(c)
	if !mc.canAccess(&message, user) {
		return errForbidden(c)
	}

	for _, r := range message.ReadBy {
		if r.ID == user.ID {
			return c.JSON(fiber.Map{"message": "Message already marked as read"})
		}
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&message).Association("ReadBy").Append(user); err != nil {
			return err
		}
		return tx.Model(&message).Update("status", "Read").Error
	})
	if err != nil {
		return errServer(c, "Failed to mark message as read")
	}

	return c.JSON(fiber.Map{
		"message": "Message marked as read",
	})
}

// DeleteMessage removes a message; only the sender or an admin may delete
func (mc *MessageController) DeleteMessage(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid message ID")
	}

	var message models.Message
	if err := database.DB.First(&message, id).Error; err != nil {
		return errNotFound(c, "Message")
	}

	user := currentUser(c)
	if !user.HasRole("admin") && message.SenderID != user.ID {
		return errForbidden(c)
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM message_recipients WHERE message_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM message_reads WHERE message_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&message).Error
	})
	if err != nil {
		return errServer(c, "Failed to delete message")
	}

	middleware.LogActivity(c, "DELETE", "messages", id, nil)

	return c.JSON(fiber.Map{
		"message": "Message deleted successfully",
	})
}
