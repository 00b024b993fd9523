package admin

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the admin panel. guards run in order before every route,
// normally the JWT middleware followed by an admin role check.
func RegisterRoutes(r fiber.Router, svc *Service, guards ...fiber.Handler) {
	for _, g := range guards {
		r.Use(g)
	}

	r.Get("/members", func(c *fiber.Ctx) error {
		members, err := svc.Members(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(members)
	})

	r.Put("/members/:id/role", func(c *fiber.Ctx) error {
		var body struct {
			Role string `json:"role"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		err := svc.SetRole(c.Context(), c.Params("id"), body.Role)
		switch {
		case errors.Is(err, ErrInvalidRole):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case errors.Is(err, ErrNotFound):
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		case err != nil:
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/stats", func(c *fiber.Ctx) error {
		stats, err := svc.Stats(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(stats)
	})
}
