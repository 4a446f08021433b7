package seeders

import (
	"log"

	"schooladmin_go/database"
	"schooladmin_go/models"
	"schooladmin_go/utils"
)

// SeedAll runs all seeders
func SeedAll() {
	log.Println("Starting database seeding...")

	SeedRoles()
	SeedAdminUser()
	SeedGradeScale()
	SeedFeeCategories()

	log.Println("Database seeding completed successfully!")
}

// SeedRoles seeds the roles table
func SeedRoles() {
	var count int64
	database.DB.Model(&models.Role{}).Count(&count)
	if count > 0 {
		log.Println("Roles already seeded, skipping...")
		return
	}

	roles := []models.Role{
		{Name: "admin", Description: "Full access to every resource"},
		{Name: "teacher", Description: "Class, assessment, grade and attendance management"},
		{Name: "student", Description: "Read-only access to own records"},
		{Name: "guardian", Description: "Read-only access to ward records"},
		{Name: "finance", Description: "Invoice and payment management"},
	}

	for _, role := range roles {
		if err := database.DB.Create(&role).Error; err != nil {
			log.Printf("Error seeding role %s: %v", role.Name, err)
		}
	}

	log.Println("Roles seeded successfully")
}

// SeedAdminUser seeds the initial admin account
func SeedAdminUser() {
	var count int64
	database.DB.Model(&models.User{}).Count(&count)
	if count > 0 {
		log.Println("Users already seeded, skipping...")
		return
	}

	hashedPassword, _ := utils.HashPassword("admin123")

	var adminRole models.Role
	if err := database.DB.Where("name = ?", "admin").First(&adminRole).Error; err != nil {
		log.Printf("Error loading admin role: %v", err)
		return
	}

	admin := models.User{
		Username: "admin",
		Email:    "admin@schooladmin.local",
		Password: hashedPassword,
		FullName: "System Administrator",
		IsActive: true,
		Roles:    []models.Role{adminRole},
	}
	if err := database.DB.Create(&admin).Error; err != nil {
		log.Printf("Error seeding admin user: %v", err)
		return
	}

	log.Println("Admin user seeded successfully")
}

// SeedGradeScale seeds the default letter grade bands
func SeedGradeScale() {
	var count int64
	database.DB.Model(&models.GradeScale{}).Count(&count)
	if count > 0 {
		log.Println("Grade scale already seeded, skipping...")
		return
	}

	scale := []models.GradeScale{
		{Grade: "A", MinScore: 90, MaxScore: 100, Remark: "Excellent"},
		{Grade: "B", MinScore: 80, MaxScore: 89.99, Remark: "Very Good"},
		{Grade: "C", MinScore: 70, MaxScore: 79.99, Remark: "Good"},
		{Grade: "D", MinScore: 60, MaxScore: 69.99, Remark: "Fair"},
		{Grade: "E", MinScore: 50, MaxScore: 59.99, Remark: "Pass"},
		{Grade: "F", MinScore: 0, MaxScore: 49.99, Remark: "Fail"},
	}

	for _, band := range scale {
		if err := database.DB.Create(&band).Error; err != nil {
			log.Printf("Error seeding grade band %s: %v", band.Grade, err)
		}
	}

	log.Println("Grade scale seeded successfully")
}

// SeedFeeCategories seeds the common fee categories
func SeedFeeCategories() {
	var count int64
	database.DB.Model(&models.FeeCategory{}).Count(&count)
	if count > 0 {
		log.Println("Fee categories already seeded, skipping...")
		return
	}

	categories := []models.FeeCategory{
		{Name: "Tuition", Description: "Termly tuition fee", Amount: 50000, IsRecurring: true},
		{Name: "Transport", Description: "School bus service", Amount: 10000, IsRecurring: true},
		{Name: "Boarding", Description: "Hostel accommodation", Amount: 25000, IsRecurring: true},
		{Name: "Registration", Description: "One-time admission fee", Amount: 5000},
	}

	for _, category := range categories {
		if err := database.DB.Create(&category).Error; err != nil {
			log.Printf("Error seeding fee category %s: %v", category.Name, err)
		}
	}

	log.Println("Fee categories seeded successfully")
}
