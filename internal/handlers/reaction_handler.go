package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"pocketlog/internal/models"
	"pocketlog/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ReactionHandler serves daily mood reactions.
type ReactionHandler struct {
	reactionService *services.ReactionService
}

func NewReactionHandler(reactionService *services.ReactionService) *ReactionHandler {
	return &ReactionHandler{reactionService: reactionService}
}

func (h *ReactionHandler) RegisterRoutes(router fiber.Router) {
	reactions := router.Group("/reaction")
	reactions.Post("/reaction", h.HandleSubmit)
	reactions.Get("/reactions/by-month", h.HandleByMonth)
	reactions.Get("/reactions", h.HandleByRange)
}

// HandleSubmit records ?reactionType= for ?date=, optionally linked to ?spendingId=.
func (h *ReactionHandler) HandleSubmit(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	date, err := queryDate(c, "date")
	if err != nil {
		return respondError(c, err)
	}
	reactionType := models.ReactionType(strings.ToUpper(c.Query("reactionType")))

	var spendingID *uint
	if raw := c.Query("spendingId"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return respondError(c, fmt.Errorf("%w: spendingId must be a positive integer", services.ErrValidation))
		}
		id := uint(n)
		spendingID = &id
	}

	if err := h.reactionService.Submit(me, date, reactionType, spendingID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":      "Reaction saved",
		"date":         date.Format(models.DateLayout),
		"reactionType": reactionType,
	})
}

func (h *ReactionHandler) HandleByMonth(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	month, err := queryMonth(c, "month")
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.reactionService.ListByMonth(me, month)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"month":     month.Format(models.MonthLayout),
		"reactions": list,
	})
}

func (h *ReactionHandler) HandleByRange(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	start, err := queryDate(c, "start")
	if err != nil {
		return respondError(c, err)
	}
	end, err := queryDate(c, "end")
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.reactionService.ListByDateRange(me, start, end)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}
