package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jmerino/hiddengems/internal/core/domain"
)

// gemRequest is the write payload shared by create and update. Position is
// only honoured on create; a gem never moves after it is placed.
type gemRequest struct {
	Position    domain.GeoPoint `json:"position"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Tags        []domain.Tag    `json:"tags"`
	Price       domain.Price    `json:"price"`
}

func (r gemRequest) fields() domain.GemFields {
	return domain.GemFields{
		Name:        r.Name,
		Description: r.Description,
		Tags:        r.Tags,
		Price:       r.Price,
	}
}

// CreateGemHandler adds a gem at the given position.
func CreateGemHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req gemRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		gem, err := deps.Gems.Add(c.Context(), req.Position, req.fields())
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(gem)
	}
}

// UpdateGemHandler replaces the editable fields of an existing gem.
func UpdateGemHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params("id"), 10, 64)
		if err != nil {
			return errBadRequest(c, "gem id must be a positive integer")
		}

		var req gemRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		gem, err := deps.Gems.Update(c.Context(), id, req.fields())
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(gem)
	}
}

// DeleteGemHandler removes a gem. The delete confirmation prompt belongs
// to the client; a request landing here is already confirmed.
func DeleteGemHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := strconv.ParseUint(c.Params("id"), 10, 64)
		if err != nil {
			return errBadRequest(c, "gem id must be a positive integer")
		}

		if _, err := deps.Gems.Remove(c.Context(), id); err != nil {
			return writeDomainError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// writeDomainError maps domain sentinels onto the API error envelope.
func writeDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrGemNotFound):
		return errNotFound(c, err.Error())
	case errors.Is(err, domain.ErrEmptyName),
		errors.Is(err, domain.ErrInvalidTag),
		errors.Is(err, domain.ErrInvalidPrice):
		return errUnprocessable(c, err.Error())
	default:
		return errInternal(c, err.Error())
	}
}
