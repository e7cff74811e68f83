package httpapi

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/weather-voice/internal/store"
)

var validate = validator.New()

const defaultRunsLimit = 20

// RunHistory is the read side of the run store.
type RunHistory interface {
	Latest(kind store.RunKind) (store.RunRecord, error)
	List(kind store.RunKind, limit int) []store.RunRecord
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, history RunHistory, gatherer prometheus.Gatherer) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	v1 := app.Group("/api/v1")

	v1.Get("/runs", func(c *fiber.Ctx) error {
		var req runsQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		return c.JSON(fiber.Map{
			"kind": req.Kind,
			"runs": history.List(store.RunKind(req.Kind), req.Limit),
		})
	})

	v1.Get("/runs/latest", func(c *fiber.Ctx) error {
		var req runsQuery
		req.Kind = c.Query("kind")
		if err := validate.StructPartial(req, "Kind"); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		rec, err := history.Latest(store.RunKind(req.Kind))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no runs recorded")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read run history")
		}
		return c.JSON(rec)
	})
}

// runsQuery holds query parameters for the runs endpoints.
type runsQuery struct {
	Kind  string `validate:"omitempty,oneof=briefing dispatch"`
	Limit int    `validate:"min=1,max=50"`
}

func (q *runsQuery) bind(c *fiber.Ctx) error {
	q.Kind = c.Query("kind")
	q.Limit = defaultRunsLimit

	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return errors.New("limit must be an integer")
		}
		q.Limit = n
	}
	return nil
}
