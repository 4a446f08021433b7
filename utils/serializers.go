package utils

import (
	"strings"
	"time"

	"schooladmin_go/models"
)

// Compact representations used across APIs
type UserShort struct {
	ID       uint   `json:"id"`
	Username string `json:"username,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

type MessageDTO struct {
	ID         uint        `json:"id"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	Subject    string      `json:"subject"`
	Body       string      `json:"body"`
	Type       string      `json:"type"`
	Status     string      `json:"status"`
	SentAt     time.Time   `json:"sent_at"`
	Sender     UserShort   `json:"sender"`
	Recipients []UserShort `json:"recipients"`
	ReadBy     []uint      `json:"read_by"`
}

// ToUserShort maps a user to its compact form. Falls back to the email
// local-part when the profile carries no full name.
func ToUserShort(u models.User) UserShort {
	name := u.FullName
	if name == "" {
		name = u.Username
	}
	if name == "" && u.Email != "" {
		parts := strings.Split(u.Email, "@")
		name = parts[0]
	}
	return UserShort{ID: u.ID, Username: u.Username, FullName: name}
}

// ToMessageDTO maps a models.Message to the compact DTO.
// Assumptions: caller has preloaded Sender, Recipients and ReadBy.
func ToMessageDTO(m models.Message) MessageDTO {
	recipients := make([]UserShort, 0, len(m.Recipients))
	for _, r := range m.Recipients {
		recipients = append(recipients, ToUserShort(r))
	}

	readBy := make([]uint, 0, len(m.ReadBy))
	for _, r := range m.ReadBy {
		readBy = append(readBy, r.ID)
	}

	return MessageDTO{
		ID:         m.ID,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
		Subject:    m.Subject,
		Body:       m.Body,
		Type:       m.Type,
		Status:     m.Status,
		SentAt:     m.SentAt,
		Sender:     ToUserShort(m.Sender),
		Recipients: recipients,
		ReadBy:     readBy,
	}
}
