package event

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageSize = 100
	maxPageSize     = 1000
)

// Handler pages through the event log over HTTP.
type Handler struct {
	log Log
}

func NewHandler(log Log) *Handler {
	return &Handler{log: log}
}

// List serves GET /events?from=<seq>&limit=<n>.
func (h *Handler) List(c *fiber.Ctx) error {
	from, err := strconv.ParseUint(c.Query("from", "0"), 10, 64)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "from must be a non-negative integer")
	}
	limit := c.QueryInt("limit", defaultPageSize)
	if limit <= 0 || limit > maxPageSize {
		return fiber.NewError(http.StatusBadRequest, "limit must be between 1 and "+strconv.Itoa(maxPageSize))
	}
	records, err := h.log.List(c.UserContext(), from, limit)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	if records == nil {
		records = []Record{}
	}
	next := from
	if len(records) > 0 {
		next = records[len(records)-1].Seq + 1
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"records": records,
		"next":    next,
	})
}
