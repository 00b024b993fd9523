package event

import (
	"errors"

	"backend-velohub/internal/auth"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req Event
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		req.CreatedBy = auth.UserID(c)
		if req.Title == "" || req.StartsAt.IsZero() || req.CreatedBy == "" {
			return fiber.NewError(fiber.StatusBadRequest, "title and starts_at required")
		}
		ev, err := svc.CreateEvent(c.Context(), req)
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(ev)
	})

	r.Get("/", func(c *fiber.Ctx) error {
		events, err := svc.Upcoming(c.Context(), c.QueryInt("limit", 50))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(events)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		ev, err := svc.GetEvent(c.Context(), c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(ev)
	})

	r.Put("/:id", authMiddleware, func(c *fiber.Ctx) error {
		var req Event
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		ev, err := svc.UpdateEvent(c.Context(), c.Params("id"), auth.UserID(c), auth.IsAdmin(c), req)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(ev)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.DeleteEvent(c.Context(), c.Params("id"), auth.UserID(c), auth.IsAdmin(c)); err != nil {
			return httpError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/:id/rsvp", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			Status string `json:"status"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		userID := auth.UserID(c)
		if userID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing user")
		}
		rsvp, err := svc.RSVP(c.Context(), c.Params("id"), userID, body.Status)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(rsvp)
	})

	r.Get("/:id/rsvps", func(c *fiber.Ctx) error {
		rsvps, err := svc.RSVPs(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(rsvps)
	})
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInvalidLocation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
