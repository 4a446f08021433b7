package controllers

import (
	"time"

	"schooladmin_go/database"
	"schooladmin_go/middleware"
	"schooladmin_go/models"
	"schooladmin_go/services/cascade"
	"schooladmin_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type HostelController struct{}

// HostelRequest represents the hostel create/update body
type HostelRequest struct {
	Name     string `json:"name" validate:"required"`
	Warden   string `json:"warden"`
	Capacity int    `json:"capacity" validate:"gte=0"`
	Address  string `json:"address"`
}

// RoomAssignmentRequest represents the assignment create body
type RoomAssignmentRequest struct {
	HostelID   uint   `json:"hostel_id" validate:"required"`
	RoomNumber string `json:"room_number" validate:"required"`
	StudentID  uint   `json:"student_id" validate:"required"`
	BedNumber  string `json:"bed_number"`
	Remarks    string `json:"remarks"`
}

// GetHostels returns all hostels
func (hc *HostelController) GetHostels(c *fiber.Ctx) error {
	var hostels []models.Hostel
	if err := database.DB.Order("name").Find(&hostels).Error; err != nil {
		return errServer(c, "Failed to fetch hostels")
	}

	return c.JSON(fiber.Map{
		"hostels": hostels,
	})
}

// GetHostel returns one hostel with its active room assignments
func (hc *HostelController) GetHostel(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid hostel ID")
	}

	var hostel models.Hostel
	if err := database.DB.First(&hostel, id).Error; err != nil {
		return errNotFound(c, "Hostel")
	}

	var assignments []models.RoomAssignment
	if err := database.DB.
		Where("hostel_id = ? AND status = ?", id, "Active").
		Preload("Student").
		Order("room_number").
		Find(&assignments).Error; err != nil {
		return errServer(c, "Failed to fetch assignments")
	}

	return c.JSON(fiber.Map{
		"hostel":      hostel,
		"assignments": assignments,
	})
}

// CreateHostel creates a new hostel
func (hc *HostelController) CreateHostel(c *fiber.Ctx) error {
	var req HostelRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}
	if verrs := utils.ValidateStruct(req); verrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "fields": verrs})
	}

	var existing models.Hostel
	if err := database.DB.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		return errConflict(c, "Hostel already exists")
	}

	hostel := models.Hostel{
		Name:     req.Name,
		Warden:   req.Warden,
		Capacity: req.Capacity,
		Address:  req.Address,
	}
	if err := database.DB.Create(&hostel).Error; err != nil {
		return errServer(c, "Failed to create hostel")
	}

	middleware.LogActivity(c, "CREATE", "hostels", hostel.ID, fiber.Map{
		"name": hostel.Name,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Hostel created successfully",
		"hostel":  hostel,
	})
}

// UpdateHostel updates a hostel
func (hc *HostelController) UpdateHostel(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid hostel ID")
	}

	var hostel models.Hostel
	if err := database.DB.First(&hostel, id).Error; err != nil {
		return errNotFound(c, "Hostel")
	}

	var req HostelRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}

	if req.Name != "" && req.Name != hostel.Name {
		var existing models.Hostel
		if err := database.DB.Where("name = ? AND id <> ?", req.Name, id).First(&existing).Error; err == nil {
			return errConflict(c, "Hostel already exists")
		}
		hostel.Name = req.Name
	}
	if req.Warden != "" {
		hostel.Warden = req.Warden
	}
	if req.Capacity > 0 {
		hostel.Capacity = req.Capacity
	}
	if req.Address != "" {
		hostel.Address = req.Address
	}

	if err := database.DB.Save(&hostel).Error; err != nil {
		return errServer(c, "Failed to update hostel")
	}

	middleware.LogActivity(c, "UPDATE", "hostels", hostel.ID, fiber.Map{
		"name": hostel.Name,
	})

	return c.JSON(fiber.Map{
		"message": "Hostel updated successfully",
		"hostel":  hostel,
	})
}

// DeleteHostel removes a hostel and its room assignments
func (hc *HostelController) DeleteHostel(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid hostel ID")
	}

	var hostel models.Hostel
	if err := database.DB.First(&hostel, id).Error; err != nil {
		return errNotFound(c, "Hostel")
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		return cascade.DeleteHostel(tx, id)
	})
	if err != nil {
		return errServer(c, "Failed to delete hostel")
	}

	middleware.LogActivity(c, "DELETE", "hostels", id, fiber.Map{
		"name": hostel.Name,
	})

	return c.JSON(fiber.Map{
		"message": "Hostel deleted successfully",
	})
}

// GetRoomAssignments lists room assignments with optional filters
func (hc *HostelController) GetRoomAssignments(c *fiber.Ctx) error {
	query := database.DB.Model(&models.RoomAssignment{}).
		Preload("Hostel").Preload("Student")

	if hostelID := c.Query("hostel_id"); hostelID != "" {
		query = query.Where("hostel_id = ?", hostelID)
	}
	if studentID := c.Query("student_id"); studentID != "" {
		query = query.Where("student_id = ?", studentID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var assignments []models.RoomAssignment
	if err := query.Find(&assignments).Error; err != nil {
		return errServer(c, "Failed to fetch room assignments")
	}

	return c.JSON(fiber.Map{
		"assignments": assignments,
	})
}

// CreateRoomAssignment assigns a student to a hostel room
func (hc *HostelController) CreateRoomAssignment(c *fiber.Ctx) error {
	var req RoomAssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}
	if verrs := utils.ValidateStruct(req); verrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "fields": verrs})
	}

	var hostel models.Hostel
	if err := database.DB.First(&hostel, req.HostelID).Error; err != nil {
		return errNotFound(c, "Hostel")
	}
	var student models.Student
	if err := database.DB.First(&student, req.StudentID).Error; err != nil {
		return errNotFound(c, "Student")
	}

	var existing models.RoomAssignment
	if err := database.DB.
		Where("student_id = ? AND status = ?", req.StudentID, "Active").
		First(&existing).Error; err == nil {
		return errConflict(c, "Student already has an active room assignment")
	}

	if hostel.Capacity > 0 {
		var active int64
		database.DB.Model(&models.RoomAssignment{}).
			Where("hostel_id = ? AND status = ?", req.HostelID, "Active").
			Count(&active)
		if active >= int64(hostel.Capacity) {
			return errConflict(c, "Hostel is at capacity")
		}
	}

	now := time.Now()
	assignment := models.RoomAssignment{
		HostelID:     req.HostelID,
		RoomNumber:   req.RoomNumber,
		StudentID:    req.StudentID,
		BedNumber:    req.BedNumber,
		AssignedDate: &now,
		Status:       "Active",
		Remarks:      req.Remarks,
	}
	if err := database.DB.Create(&assignment).Error; err != nil {
		return errServer(c, "Failed to create room assignment")
	}

	database.DB.Preload("Hostel").Preload("Student").First(&assignment, assignment.ID)

	middleware.LogActivity(c, "CREATE", "room_assignments", assignment.ID, fiber.Map{
		"hostel_id":  req.HostelID,
		"student_id": req.StudentID,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Room assignment created successfully",
		"assignment": assignment,
	})
}

// UpdateRoomAssignment updates room/bed or deactivates an assignment
func (hc *HostelController) UpdateRoomAssignment(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid assignment ID")
	}

	var assignment models.RoomAssignment
	if err := database.DB.First(&assignment, id).Error; err != nil {
		return errNotFound(c, "Room assignment")
	}

	var req struct {
		RoomNumber string `json:"room_number"`
		BedNumber  string `json:"bed_number"`
		Status     string `json:"status"`
		Remarks    string `json:"remarks"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}

	if req.RoomNumber != "" {
		assignment.RoomNumber = req.RoomNumber
	}
	if req.BedNumber != "" {
		assignment.BedNumber = req.BedNumber
	}
	if req.Status != "" {
		if req.Status != "Active" && req.Status != "Inactive" {
			return errBadRequest(c, "Invalid status. Must be Active or Inactive")
		}
		assignment.Status = req.Status
	}
	if req.Remarks != "" {
		assignment.Remarks = req.Remarks
	}

	if err := database.DB.Save(&assignment).Error; err != nil {
		return errServer(c, "Failed to update room assignment")
	}

	middleware.LogActivity(c, "UPDATE", "room_assignments", id, nil)

	return c.JSON(fiber.Map{
		"message":    "Room assignment updated successfully",
		"assignment": assignment,
	})
}

// DeleteRoomAssignment removes an assignment
func (hc *HostelController) DeleteRoomAssignment(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid assignment ID")
	}

	var assignment models.RoomAssignment
	if err := database.DB.First(&assignment, id).Error; err != nil {
		return errNotFound(c, "Room assignment")
	}

	if err := database.DB.Delete(&assignment).Error; err != nil {
		return errServer(c, "Failed to delete room assignment")
	}

	middleware.LogActivity(c, "DELETE", "room_assignments", id, nil)

	return c.JSON(fiber.Map{
		"message": "Room assignment deleted successfully",
	})
}
