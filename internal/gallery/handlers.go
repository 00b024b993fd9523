package gallery

import (
	"errors"

	"backend-velohub/internal/auth"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/uploads", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			FileName string `json:"file_name"`
		}
		_ = c.BodyParser(&body)
		return c.JSON(svc.PresignUpload(auth.UserID(c), body.FileName))
	})

	r.Post("/events/:eventID/photos", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			URL     string `json:"photo_url"`
			Caption string `json:"caption"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		photo, err := svc.AddPhoto(c.Context(), c.Params("eventID"), auth.UserID(c), body.URL, body.Caption)
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(photo)
	})

	r.Get("/events/:eventID/photos", func(c *fiber.Ctx) error {
		photos, err := svc.Photos(c.Context(), c.Params("eventID"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(photos)
	})

	r.Delete("/photos/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.DeletePhoto(c.Context(), c.Params("id"), auth.UserID(c), auth.IsAdmin(c)); err != nil {
			return httpError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrMissing):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
