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

type TransportController struct{}

// BusRequest represents the bus create/update body
type BusRequest struct {
	BusNumber   string `json:"bus_number" validate:"required"`
	DriverName  string `json:"driver_name"`
	DriverPhone string `json:"driver_phone"`
	Capacity    int    `json:"capacity" validate:"gte=0"`
	Route       string `json:"route"`
}

// BusAssignmentRequest represents the assignment create body
type BusAssignmentRequest struct {
	BusID           uint   `json:"bus_id" validate:"required"`
	StudentID       uint   `json:"student_id" validate:"required"`
	PickupLocation  string `json:"pickup_location"`
	DropoffLocation string `json:"dropoff_location"`
	Remarks         string `json:"remarks"`
}

// GetBuses returns all buses
func (tc *TransportController) GetBuses(c *fiber.Ctx) error {
	var buses []models.Bus
	if err := database.DB.Order("bus_number").Find(&buses).Error; err != nil {
		return errServer(c, "Failed to fetch buses")
	}

	return c.JSON(fiber.Map{
		"buses": buses,
	})
}

// GetBus returns one bus with its active assignments
func (tc *TransportController) GetBus(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid bus ID")
	}

	var bus models.Bus
	if err := database.DB.First(&bus, id).Error; err != nil {
		return errNotFound(c, "Bus")
	}

	var assignments []models.BusAssignment
	if err := database.DB.
		Where("bus_id = ? AND status = ?", id, "Active").
		Preload("Student").
		Find(&assignments).Error; err != nil {
		return errServer(c, "Failed to fetch assignments")
	}

	return c.JSON(fiber.Map{
		"bus":         bus,
		"assignments": assignments,
	})
}

// CreateBus creates a new bus
func (tc *TransportController) CreateBus(c *fiber.Ctx) error {
	var req BusRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}
	if verrs := utils.ValidateStruct(req); verrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "fields": verrs})
	}

	var existing models.Bus
	if err := database.DB.Where("bus_number = ?", req.BusNumber).First(&existing).Error; err == nil {
		return errConflict(c, "Bus number already exists")
	}

	bus := models.Bus{
		BusNumber:   req.BusNumber,
		DriverName:  req.DriverName,
		DriverPhone: req.DriverPhone,
		Capacity:    req.Capacity,
		Route:       req.Route,
	}
	if err := database.DB.Create(&bus).Error; err != nil {
		return errServer(c, "Failed to create bus")
	}

	middleware.LogActivity(c, "CREATE", "buses", bus.ID, fiber.Map{
		"bus_number": bus.BusNumber,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Bus created successfully",
		"bus":     bus,
	})
}

// UpdateBus updates a bus
func (tc *TransportController) UpdateBus(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid bus ID")
	}

	var bus models.Bus
	if err := database.DB.First(&bus, id).Error; err != nil {
		return errNotFound(c, "Bus")
	}

	var req BusRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}

	if req.BusNumber != "" && req.BusNumber != bus.BusNumber {
		var existing models.Bus
		if err := database.DB.Where("bus_number = ? AND id <> ?", req.BusNumber, id).First(&existing).Error; err == nil {
			return errConflict(c, "Bus number already exists")
		}
		bus.BusNumber = req.BusNumber
	}
	if req.DriverName != "" {
		bus.DriverName = req.DriverName
	}
	if req.DriverPhone != "" {
		bus.DriverPhone = req.DriverPhone
	}
	if req.Capacity > 0 {
		bus.Capacity = req.Capacity
	}
	if req.Route != "" {
		bus.Route = req.Route
	}

	if err := database.DB.Save(&bus).Error; err != nil {
		return errServer(c, "Failed to update bus")
	}

	middleware.LogActivity(c, "UPDATE", "buses", bus.ID, fiber.Map{
		"bus_number": bus.BusNumber,
	})

	return c.JSON(fiber.Map{
		"message": "Bus updated successfully",
		"bus":     bus,
	})
}

// DeleteBus removes a bus and its assignments
func (tc *TransportController) DeleteBus(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid bus ID")
	}

	var bus models.Bus
	if err := database.DB.First(&bus, id).Error; err != nil {
		return errNotFound(c, "Bus")
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		return cascade.DeleteBus(tx, id)
	})
	if err != nil {
		return errServer(c, "Failed to delete bus")
	}

	middleware.LogActivity(c, "DELETE", "buses", id, fiber.Map{
		"bus_number": bus.BusNumber,
	})

	return c.JSON(fiber.Map{
		"message": "Bus deleted successfully",
	})
}

// GetBusAssignments lists assignments with optional filters
func (tc *TransportController) GetBusAssignments(c *fiber.Ctx) error {
	query := database.DB.Model(&models.BusAssignment{}).
		Preload("Bus").Preload("Student")

	if busID := c.Query("bus_id"); busID != "" {
		query = query.Where("bus_id = ?", busID)
	}
	if studentID := c.Query("student_id"); studentID != "" {
		query = query.Where("student_id = ?", studentID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var assignments []models.BusAssignment
	if err := query.Find(&assignments).Error; err != nil {
		return errServer(c, "Failed to fetch bus assignments")
	}

	return c.JSON(fiber.Map{
		"assignments": assignments,
	})
}

// CreateBusAssignment assigns a student to a bus
func (tc *TransportController) CreateBusAssignment(c *fiber.Ctx) error {
	var req BusAssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}
	if verrs := utils.ValidateStruct(req); verrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Validation failed", "fields": verrs})
	}

	var bus models.Bus
	if err := database.DB.First(&bus, req.BusID).Error; err != nil {
		return errNotFound(c, "Bus")
	}
	var student models.Student
	if err := database.DB.First(&student, req.StudentID).Error; err != nil {
		return errNotFound(c, "Student")
	}

	var existing models.BusAssignment
	if err := database.DB.
		Where("student_id = ? AND status = ?", req.StudentID, "Active").
		First(&existing).Error; err == nil {
		return errConflict(c, "Student already has an active bus assignment")
	}

	if bus.Capacity > 0 {
		var active int64
		database.DB.Model(&models.BusAssignment{}).
			Where("bus_id = ? AND status = ?", req.BusID, "Active").
			Count(&active)
		if active >= int64(bus.Capacity) {
			return errConflict(c, "Bus is at capacity")
		}
	}

	now := time.Now()
	assignment := models.BusAssignment{
		BusID:           req.BusID,
		StudentID:       req.StudentID,
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
		AssignedDate:    &now,
		Status:          "Active",
		Remarks:         req.Remarks,
	}
	if err := database.DB.Create(&assignment).Error; err != nil {
		return errServer(c, "Failed to create bus assignment")
	}

	database.DB.Preload("Bus").Preload("Student").First(&assignment, assignment.ID)

	middleware.LogActivity(c, "CREATE", "bus_assignments", assignment.ID, fiber.Map{
		"bus_id":     req.BusID,
		"student_id": req.StudentID,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Bus assignment created successfully",
		"assignment": assignment,
	})
}

// UpdateBusAssignment updates locations or deactivates an assignment
func (tc *TransportController) UpdateBusAssignment(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid assignment ID")
	}

	var assignment models.BusAssignment
	if err := database.DB.First(&assignment, id).Error; err != nil {
		return errNotFound(c, "Bus assignment")
	}

	var req struct {
		PickupLocation  string `json:"pickup_location"`
		DropoffLocation string `json:"dropoff_location"`
		Status          string `json:"status"`
		Remarks         string `json:"remarks"`
	}
	if err := c.BodyParser(&req); err != nil {
		return errBadRequest(c, "Invalid request body")
	}

	if req.PickupLocation != "" {
		assignment.PickupLocation = req.PickupLocation
	}
	if req.DropoffLocation != "" {
		assignment.DropoffLocation = req.DropoffLocation
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
		return errServer(c, "Failed to update bus assignment")
	}

	middleware.LogActivity(c, "UPDATE", "bus_assignments", id, nil)

	return c.JSON(fiber.Map{
		"message":    "Bus assignment updated successfully",
		"assignment": assignment,
	})
}

// DeleteBusAssignment removes an assignment
func (tc *TransportController) DeleteBusAssignment(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return errBadRequest(c, "Invalid assignment ID")
	}

	var assignment models.BusAssignment
	if err := database.DB.First(&assignment, id).Error; err != nil {
		return errNotFound(c, "Bus assignment")
	}

	if err := database.DB.Delete(&assignment).Error; err != nil {
		return errServer(c, "Failed to delete bus assignment")
	}

	middleware.LogActivity(c, "DELETE", "bus_assignments", id, nil)

	return c.JSON(fiber.Map{
		"message": "Bus assignment deleted successfully",
	})
}
