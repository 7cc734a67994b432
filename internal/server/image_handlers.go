package server

import (
	"io"

	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UploadImage handles POST /api/images (multipart field "image").
// @Summary Upload an image
// @Description Stores the image as WebP with its longer edge at most 1080px.
// @Tags images
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Image file"
// @Success 201 {object} object{message=string,url=string,image=service.StoredImage}
// @Failure 400 {object} models.ErrorResponse
// @Router /images [post]
func (s *Server) UploadImage(c *fiber.Ctx) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, models.NewValidationError("No file uploaded"))
	}
	f, err := fh.Open()
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}
	defer func() { _ = f.Close() }()

	// one byte over the limit is enough for the service to reject it
	content, err := io.ReadAll(io.LimitReader(f, service.DefaultImageMaxUploadBytes+1))
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	stored, err := s.imageService.Upload(c.UserContext(), service.UploadImageInput{
		UserID:      callerID(c),
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Content:     content,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Image uploaded successfully",
		"url":     stored.URL,
		"image":   stored,
	})
}
