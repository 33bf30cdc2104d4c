package staff

import (
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/akshayaportal/services-backend/db"
	"github.com/akshayaportal/services-backend/middleware"
	"github.com/akshayaportal/services-backend/models"
	"github.com/akshayaportal/services-backend/utils"
)

const (
	documentUploadDir = "uploads/documents"
	maxDocumentSize   = 5 * 1024 * 1024 // 5 MB
)

var allowedDocumentExtensions = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".doc":  true,
	".docx": true,
}

func validateDocument(file *multipart.FileHeader) error {
	if file.Size > maxDocumentSize {
		return errors.New("File too large. Maximum size is 5MB")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedDocumentExtensions[ext] {
		return errors.New("Invalid file type. Allowed types: pdf, jpg, jpeg, png, doc, docx")
	}
	return nil
}

// UploadDocument attaches a result document to an appointment. Files land on
// local disk under uploads/documents with a collision-proof name.
func UploadDocument(c *fiber.Ctx) error {
	authUser := c.Locals("authUser").(middleware.AuthUser)

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid appointment ID",
		})
	}

	file, err := c.FormFile("document")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "No document provided",
		})
	}

	if err := validateDocument(file); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	var appointment models.Appointment
	query := centerScoped(c, db.DB.Where("appointments.id = ?", id))
	if err := query.Preload("Service").First(&appointment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Appointment not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch appointment",
			"error":   err.Error(),
		})
	}

	if err := os.MkdirAll(documentUploadDir, 0o755); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to prepare upload directory",
			"error":   err.Error(),
		})
	}

	docID := uuid.NewString()
	storedName := fmt.Sprintf("%d-%s-%s", appointment.ID, docID, filepath.Base(file.Filename))
	storedPath := filepath.Join(documentUploadDir, storedName)

	if err := c.SaveFile(file, storedPath); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to save document",
			"error":   err.Error(),
		})
	}

	isPublic := c.FormValue("isPublic", "true") != "false"

	document := models.ResultDocument{
		ID:           docID,
		Name:         storedName,
		OriginalName: file.Filename,
		ContentType:  file.Header.Get("Content-Type"),
		Size:         file.Size,
		URL:          "/" + documentUploadDir + "/" + storedName,
		UploadedByID: authUser.UserID,
		UploadedAt:   utils.Now(),
		IsPublic:     isPublic,
	}
	appointment.ResultDocuments = append(appointment.ResultDocuments, document)

	if err := db.DB.Save(&appointment).Error; err != nil {
		// Roll back the file so disk and database stay consistent.
		if removeErr := os.Remove(storedPath); removeErr != nil {
			logrus.WithError(removeErr).WithField("path", storedPath).Warn("Failed to remove orphaned upload")
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to attach document",
			"error":   err.Error(),
		})
	}

	if isPublic {
		go utils.NotifyUser(appointment.UserID, "appointment",
			"New document available",
			"A document has been uploaded for your "+appointment.Service.Name+" appointment.",
			models.JSONMap{"appointmentId": appointment.ID, "documentId": docID})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Document uploaded successfully",
		"data":    document,
	})
}

// GetDocuments lists every document attached to an appointment.
func GetDocuments(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid appointment ID",
		})
	}

	var appointment models.Appointment
	query := centerScoped(c, db.DB.Where("appointments.id = ?", id))
	if err := query.First(&appointment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Appointment not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch documents",
			"error":   err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    appointment.ResultDocuments,
	})
}

// DeleteDocument removes a document record and its file from disk.
func DeleteDocument(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid appointment ID",
		})
	}
	docID := c.Params("docId")

	var appointment models.Appointment
	query := centerScoped(c, db.DB.Where("appointments.id = ?", id))
	if err := query.First(&appointment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Appointment not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to fetch appointment",
			"error":   err.Error(),
		})
	}

	var removed *models.ResultDocument
	remaining := make(models.ResultDocumentList, 0, len(appointment.ResultDocuments))
	for _, doc := range appointment.ResultDocuments {
		if doc.ID == docID {
			d := doc
			removed = &d
			continue
		}
		remaining = append(remaining, doc)
	}
	if removed == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Document not found",
		})
	}

	appointment.ResultDocuments = remaining
	if err := db.DB.Save(&appointment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to delete document",
			"error":   err.Error(),
		})
	}

	storedPath := filepath.Join(documentUploadDir, removed.Name)
	if err := os.Remove(storedPath); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).WithField("path", storedPath).Warn("Failed to remove document file")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Document deleted successfully",
	})
}
