package utils

import (
	"testing"

	"schooladmin_go/models"
)

func TestToUserShort(t *testing.T) {
	tests := []struct {
		name string
		user models.User
		want string
	}{
		{
			name: "full name preferred",
			user: models.User{Username: "jdoe", FullName: "Jane Doe", Email: "jane@example.com"},
			want: "Jane Doe",
		},
		{
			name: "falls back to username",
			user: models.User{Username: "jdoe", Email: "jane@example.com"},
			want: "jdoe",
		},
		{
			name: "falls back to email local part",
			user: models.User{Email: "jane@example.com"},
			want: "jane",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := ToUserShort(tc.user)
			if got.FullName != tc.want {
				t.Fatalf("FullName = %q, want %q", got.FullName, tc.want)
			}
		})
	}
}

func TestToMessageDTO(t *testing.T) {
	sender := models.User{BaseModel: models.BaseModel{ID: 1}, Username: "admin"}
	recipient := models.User{BaseModel: models.BaseModel{ID: 2}, Username: "guardian1"}
	reader := models.User{BaseModel: models.BaseModel{ID: 2}}

	msg := models.Message{
		BaseModel:  models.BaseModel{ID: 10},
		SenderID:   1,
		Subject:    "Overdue invoice reminder",
		Body:       "Invoice INV-ABC is overdue.",
		Type:       "Notification",
		Status:     "Sent",
		Sender:     sender,
		Recipients: []models.User{recipient},
		ReadBy:     []models.User{reader},
	}

	dto := ToMessageDTO(msg)

	if dto.ID != 10 || dto.Subject != "Overdue invoice reminder" {
		t.Fatalf("unexpected DTO header: %+v", dto)
	}
	if dto.Sender.ID != 1 || dto.Sender.Username != "admin" {
		t.Fatalf("unexpected sender: %+v", dto.Sender)
	}
	if len(dto.Recipients) != 1 || dto.Recipients[0].ID != 2 {
		t.Fatalf("unexpected recipients: %+v", dto.Recipients)
	}
	if len(dto.ReadBy) != 1 || dto.ReadBy[0] != 2 {
		t.Fatalf("unexpected read-by list: %+v", dto.ReadBy)
	}
}

func TestToMessageDTOEmptyAssociations(t *testing.T) {
	dto := ToMessageDTO(models.Message{BaseModel: models.BaseModel{ID: 3}})
	if dto.Recipients == nil || len(dto.Recipients) != 0 {
		t.Fatalf("expected empty non-nil recipients, got %v", dto.Recipients)
	}
	if dto.ReadBy == nil || len(dto.ReadBy) != 0 {
		t.Fatalf("expected empty non-nil read-by, got %v", dto.ReadBy)
	}
}
