package controllers

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"schooladmin_go/database"
	"schooladmin_go/middleware"
	"schooladmin_go/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// StudentImportController handles importing student rosters from CSV/XLSX
type StudentImportController struct{}

// POST /api/import/students
// Multipart form with file field: file
//
// Expected columns: AdmissionNumber, FirstName, LastName, Class. Optional:
// Gender, Email, Phone, DateOfBirth (2006-01-02). The class is matched by
// name and must already exist.
func (ic *StudentImportController) Import(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cannot open file"})
	}
	defer file.Close()

	filename := strings.ToLower(fileHeader.Filename)
	var rows [][]string
	var parseErr error

	if strings.HasSuffix(filename, ".csv") {
		rows, parseErr = readCSV(file)
	} else if strings.HasSuffix(filename, ".xlsx") || strings.HasSuffix(filename, ".xls") {
		// Save to OS temp folder for excelize to open
		tmpDir, _ := os.MkdirTemp("", "saxls-")
		tmp := filepath.Join(tmpDir, fmt.Sprintf("%d_%s", time.Now().UnixNano(), sanitizeFilename(fileHeader.Filename)))
		if err := c.SaveFile(fileHeader, tmp); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "failed to buffer upload"})
		}
		rows, parseErr = readXLSX(tmp)
		// Best-effort cleanup
		_ = os.Remove(tmp)
	} else {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unsupported file type (csv, xlsx)"})
	}
	if parseErr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": parseErr.Error()})
	}

	if len(rows) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is empty"})
	}

	header := rows[0]
	col := buildColumnIndex(header)
	required := []string{"AdmissionNumber", "FirstName", "LastName", "Class"}
	for _, r := range required {
		if _, ok := col[r]; !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": fmt.Sprintf("missing column: %s", r)})
		}
	}

	created := 0
	skipped := 0
	var errorsList []string

	// Class names are resolved once per file
	classByName := map[string]uint{}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		for i := 1; i < len(rows); i++ {
			r := rows[i]
			get := func(key string) string {
				if idx, ok := col[key]; ok && idx < len(r) {
					return strings.TrimSpace(r[idx])
				}
				return ""
			}

			admission := get("AdmissionNumber")
			firstName := get("FirstName")
			lastName := get("LastName")
			className := get("Class")
			if admission == "" || firstName == "" || lastName == "" || className == "" {
				skipped++
				errorsList = append(errorsList, fmt.Sprintf("row %d: missing required fields", i+1))
				continue
			}

			classID, ok := classByName[className]
			if !ok {
				var class models.Class
				if err := tx.Where("name = ?", className).First(&class).Error; err != nil {
					skipped++
					errorsList = append(errorsList, fmt.Sprintf("row %d: class %q not found", i+1, className))
					continue
				}
				classID = class.ID
				classByName[className] = classID
			}

			var existing models.Student
			if err := tx.Where("admission_number = ?", admission).First(&existing).Error; err == nil {
				skipped++
				errorsList = append(errorsList, fmt.Sprintf("row %d: admission number %s already exists", i+1, admission))
				continue
			}

			student := models.Student{
				AdmissionNumber: admission,
				FirstName:       firstName,
				LastName:        lastName,
				Gender:          get("Gender"),
				Email:           get("Email"),
				Phone:           get("Phone"),
				ClassID:         &classID,
				IsActive:        true,
			}

			if dob := get("DateOfBirth"); dob != "" {
				if t, err := time.Parse("2006-01-02", dob); err == nil {
					student.DateOfBirth = &t
				} else {
					errorsList = append(errorsList, fmt.Sprintf("row %d: bad DateOfBirth %q, ignored", i+1, dob))
				}
			}

			if err := tx.Create(&student).Error; err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	middleware.LogActivity(c, "CREATE", "students", 0, fiber.Map{
		"action":  "bulk_import",
		"file":    fileHeader.Filename,
		"created": created,
		"skipped": skipped,
	})

	return c.JSON(fiber.Map{
		"message": "Import completed",
		"created": created,
		"skipped": skipped,
		"errors":  errorsList,
	})
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	// Use first sheet
	sht := f.GetSheetName(0)
	if sht == "" {
		sht = "Sheet1"
	}
	data, err := f.GetRows(sht)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func buildColumnIndex(header []string) map[string]int {
	m := map[string]int{}
	for i, h := range header {
		key := strings.TrimSpace(h)
		m[key] = i
	}
	return m
}

func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "..", "_")
	return name
}
