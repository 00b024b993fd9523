package strava

import (
	"errors"

	"backend-velohub/internal/auth"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/token", authMiddleware, func(c *fiber.Ctx) error {
		var tok Token
		if err := c.BodyParser(&tok); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := svc.Connect(c.Context(), auth.UserID(c), tok); err != nil {
			return httpError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/stats/:athleteID", authMiddleware, func(c *fiber.Ctx) error {
		stats, err := svc.Stats(c.Context(), auth.UserID(c), c.Params("athleteID"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(stats)
	})
}

func httpError(err error) error {
	var se *StatusError
	switch {
	case errors.Is(err, ErrNotConnected):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrNoCache):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	case errors.As(err, &se):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	default:
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
}
