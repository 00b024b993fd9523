package route

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"backend-velohub/internal/analyzer"
	"backend-velohub/internal/auth"
	"backend-velohub/internal/gpx"
	"backend-velohub/internal/shared/geo"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/analyze", func(c *fiber.Ctx) error {
		raw, err := uploadBody(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		metrics, err := svc.Analyze(c.Context(), raw)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(metrics)
	})

	r.Post("/analyze/points", func(c *fiber.Ctx) error {
		var body struct {
			Points []gpx.Coordinate `json:"points"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		metrics, err := svc.AnalyzeCoordinates(body.Points)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(metrics)
	})

	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		userID := auth.UserID(c)
		if userID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing user")
		}
		raw, err := uploadBody(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		req := ImportRequest{
			UploadedBy:  userID,
			Name:        c.FormValue("name"),
			Description: c.FormValue("description"),
			GPX:         raw,
		}
		if eventID := c.FormValue("event_id"); eventID != "" {
			req.EventID = &eventID
		}
		route, err := svc.Import(c.Context(), req)
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(route)
	})

	r.Get("/", func(c *fiber.Ctx) error {
		routes, err := svc.List(c.Context(), c.Query("event_id"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(routes)
	})

	r.Get("/nearby", func(c *fiber.Ctx) error {
		lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
		lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
		if errLat != nil || errLon != nil {
			return fiber.NewError(fiber.StatusBadRequest, "lat and lon required")
		}
		if !geo.ValidCoordinate(lat, lon) {
			return fiber.NewError(fiber.StatusBadRequest, "lat or lon out of range")
		}
		radius := 25.0
		if v := c.Query("radius_km"); v != "" {
			parsed, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid radius_km")
			}
			radius = parsed
		}
		routes, err := svc.Nearby(c.Context(), lat, lon, radius)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(routes)
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		route, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(route)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), c.Params("id"), auth.UserID(c), auth.IsAdmin(c)); err != nil {
			return httpError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/:id/profile", func(c *fiber.Ctx) error {
		profile, err := svc.Profile(c.Context(), c.Params("id"), c.QueryInt("max", 0))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(profile)
	})

	r.Get("/:id/chart", func(c *fiber.Ctx) error {
		route, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		profile, err := svc.Profile(c.Context(), route.ID, c.QueryInt("max", 0))
		if err != nil {
			return httpError(err)
		}
		page, err := renderProfileChart(route, profile)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Send(page)
	})
}

func renderProfileChart(route Route, profile []analyzer.ProfilePoint) ([]byte, error) {
	x := make([]string, 0, len(profile))
	y := make([]opts.LineData, 0, len(profile))
	for _, p := range profile {
		x = append(x, strconv.FormatFloat(p.DistanceKm, 'f', 1, 64))
		y = append(y, opts.LineData{Value: p.ElevationM})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: route.Name, Width: "100%", Height: "420px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    route.Name,
			Subtitle: fmt.Sprintf("%.1f km, %.0f m climbing, %s", route.DistanceKm, route.ElevationGainM, route.Difficulty),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "km", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "m"}),
	)
	line.SetXAxis(x).
		AddSeries("elevation", y,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true), ShowSymbol: opts.Bool(false)}),
			charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(0.3)}),
		)

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}

// uploadBody takes the multipart "file" field when present, otherwise the raw body.
func uploadBody(c *fiber.Ctx) ([]byte, error) {
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(f)
	}
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("gpx file required")
	}
	return append([]byte(nil), body...), nil
}

func httpError(err error) error {
	switch {
	case errors.Is(err, gpx.ErrTooFewPoints):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, gpx.ErrMalformed), errors.Is(err, gpx.ErrInvalidCoordinate), errors.Is(err, ErrInvalidRadius):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
