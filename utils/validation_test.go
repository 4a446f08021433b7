package utils

import "testing"

type sampleRequest struct {
	Name   string  `json:"name" validate:"required"`
	Email  string  `json:"email" validate:"omitempty,email"`
	Amount float64 `json:"amount" validate:"gte=0"`
	Status string  `json:"status" validate:"omitempty,oneof=confirmed rejected"`
}

func TestValidateStructValid(t *testing.T) {
	req := sampleRequest{Name: "Tuition", Email: "billing@example.com", Amount: 100}
	if errs := ValidateStruct(req); errs != nil {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidateStructErrors(t *testing.T) {
	tests := []struct {
		name  string
		req   sampleRequest
		field string
	}{
		{
			name:  "missing required field",
			req:   sampleRequest{Amount: 10},
			field: "name",
		},
		{
			name:  "invalid email",
			req:   sampleRequest{Name: "x", Email: "not-an-email"},
			field: "email",
		},
		{
			name:  "negative amount",
			req:   sampleRequest{Name: "x", Amount: -5},
			field: "amount",
		},
		{
			name:  "bad enum value",
			req:   sampleRequest{Name: "x", Status: "pending"},
			field: "status",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			errs := ValidateStruct(tc.req)
			if errs == nil {
				t.Fatalf("expected validation errors")
			}
			if _, ok := errs[tc.field]; !ok {
				t.Fatalf("expected error for field %q, got %v", tc.field, errs)
			}
		})
	}
}
