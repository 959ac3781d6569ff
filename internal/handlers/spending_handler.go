package handlers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"pocketlog/internal/models"
	"pocketlog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// SpendingHandler handles HTTP requests for the ledger and monthly goals.
type SpendingHandler struct {
	spendingService *services.SpendingService
	goalService     *services.GoalService
	validate        *validator.Validate
}

// NewSpendingHandler creates a new SpendingHandler.
func NewSpendingHandler(spendingService *services.SpendingService, goalService *services.GoalService) *SpendingHandler {
	return &SpendingHandler{
		spendingService: spendingService,
		goalService:     goalService,
		validate:        validator.New(),
	}
}

// RegisterRoutes registers the ledger and goal routes with the Fiber app.
func (h *SpendingHandler) RegisterRoutes(router fiber.Router) {
	spending := router.Group("/spending")
	spending.Post("/create", h.HandleCreate)
	spending.Put("/update", h.HandleUpdate)
	spending.Delete("/delete", h.HandleDelete)
	spending.Get("/detail", h.HandleDetail)
	spending.Get("/list", h.HandleListByDate)
	spending.Post("/list", h.HandleListByDate)
	spending.Get("/range", h.HandleListByRange)
	spending.Get("/sum", h.HandleSum)
	spending.Get("/current", h.HandleCurrent)
	spending.Post("/current", h.HandleCurrent)
	spending.Get("/today", h.HandleToday)
	spending.Get("/date", h.HandleSumForDate)
	spending.Post("/:id/reactions", h.HandleReact)

	spending.Put("/goal", h.HandleSetGoal)
	spending.Get("/goal", h.HandleGetGoal)
	spending.Post("/goal", h.HandleUpdateGoal)
	spending.Post("/goal/expense", h.HandleRecordExpense)
	spending.Get("/goal/status", h.HandleBudgetStatus)
}

// UpdateSpendingRequest is the body of PUT /spending/update. Absent fields are left unchanged.
type UpdateSpendingRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Description *string          `json:"description" validate:"omitempty,max=255"`
	Note        *string          `json:"note"`
	Images      *[]string        `json:"images"`
}

// ReactRequest is the body of POST /spending/:id/reactions.
type ReactRequest struct {
	ReactionType string `json:"reactionType" validate:"required"`
}

// ExpenseRequest is the body of POST /spending/goal/expense.
type ExpenseRequest struct {
	Date   string          `json:"date" validate:"required"`
	Amount decimal.Decimal `json:"amount"`
}

// HandleCreate accepts multipart fields date, amount, description, note and zero or more images.
func (h *SpendingHandler) HandleCreate(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}

	date, err := models.ParseDate(c.FormValue("date"))
	if err != nil {
		return respondError(c, fmt.Errorf("%w: date must be YYYY-MM-DD", services.ErrValidation))
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(c.FormValue("amount")))
	if err != nil {
		return respondError(c, fmt.Errorf("%w: amount must be a decimal number", services.ErrValidation))
	}

	in := services.CreateSpendingInput{
		Date:        date,
		Amount:      amount,
		Description: c.FormValue("description"),
		Note:        c.FormValue("note"),
	}
	if form, err := c.MultipartForm(); err == nil {
		for _, fh := range form.File["images"] {
			data, err := readUpload(fh)
			if err != nil {
				return respondError(c, err)
			}
			in.Media = append(in.Media, services.Media{Filename: fh.Filename, Data: data})
		}
	}

	spending, err := h.spendingService.Create(me, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(spending.Summary())
}

func (h *SpendingHandler) HandleUpdate(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := queryUint(c, "spendingId")
	if err != nil {
		return respondError(c, err)
	}

	var req UpdateSpendingRequest
	if err := c.BodyParser(&req); err != nil {
		return validationFailed(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	spending, err := h.spendingService.Update(me, id, services.UpdateSpendingInput{
		Amount:      req.Amount,
		Description: req.Description,
		Note:        req.Note,
		Images:      req.Images,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(spending.Summary())
}

func (h *SpendingHandler) HandleDelete(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := queryUint(c, "spendingId")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.spendingService.Delete(me, id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": fmt.Sprintf("Spending %d deleted", id)})
}

func (h *SpendingHandler) HandleDetail(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := queryUint(c, "spendingId")
	if err != nil {
		return respondError(c, err)
	}
	spending, err := h.spendingService.GetByID(me, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(spending.Summary())
}

func (h *SpendingHandler) HandleListByDate(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	date, err := queryDate(c, "date")
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.spendingService.ListByDate(me, date)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"date":      date.Format(models.DateLayout),
		"spendings": summaries(list),
	})
}

func (h *SpendingHandler) HandleListByRange(c *fiber.Ctx) error {
	me, start, end, err := h.rangeParams(c)
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.spendingService.ListByDateRange(me, start, end)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summaries(list))
}

func (h *SpendingHandler) HandleSum(c *fiber.Ctx) error {
	me, start, end, err := h.rangeParams(c)
	if err != nil {
		return respondError(c, err)
	}
	total, err := h.spendingService.SumAmountInRange(me, start, end)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"start": start.Format(models.DateLayout),
		"end":   end.Format(models.DateLayout),
		"total": total,
	})
}

// HandleCurrent returns the ledger total of a month.
func (h *SpendingHandler) HandleCurrent(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	month, err := queryMonth(c, "month")
	if err != nil {
		return respondError(c, err)
	}
	current, err := h.goalService.CurrentSpendingForMonth(me, month)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"month":           month.Format(models.MonthLayout),
		"currentSpending": current,
	})
}

func (h *SpendingHandler) HandleToday(c *fiber.Ctx) error {
	return h.sumForDate(c, models.Day(time.Now().UTC()))
}

func (h *SpendingHandler) HandleSumForDate(c *fiber.Ctx) error {
	date, err := queryDate(c, "date")
	if err != nil {
		return respondError(c, err)
	}
	return h.sumForDate(c, date)
}

func (h *SpendingHandler) sumForDate(c *fiber.Ctx, date time.Time) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	total, err := h.spendingService.SumForDate(me, date)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"date":  date.Format(models.DateLayout),
		"total": total,
	})
}

// HandleReact lets any signed-in user annotate an entry.
func (h *SpendingHandler) HandleReact(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return respondError(c, fmt.Errorf("%w: spending id must be a positive integer", services.ErrValidation))
	}

	var req ReactRequest
	if err := c.BodyParser(&req); err != nil {
		return validationFailed(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	spending, err := h.spendingService.AddOrUpdateReaction(uint(id), me, models.ReactionType(strings.ToUpper(req.ReactionType)))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"spendingId": spending.ID,
		"reactions":  spending.ReactionMap(),
	})
}

// HandleSetGoal sets the target of a month from ?goal=.
func (h *SpendingHandler) HandleSetGoal(c *fiber.Ctx) error {
	return h.upsertGoal(c, "goal")
}

// HandleUpdateGoal changes the target of a month from ?newGoal=.
func (h *SpendingHandler) HandleUpdateGoal(c *fiber.Ctx) error {
	return h.upsertGoal(c, "newGoal")
}

func (h *SpendingHandler) upsertGoal(c *fiber.Ctx, amountKey string) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	target, err := decimal.NewFromString(c.Query(amountKey))
	if err != nil {
		return respondError(c, fmt.Errorf("%w: %s must be a decimal number", services.ErrValidation, amountKey))
	}
	month, err := queryMonth(c, "month")
	if err != nil {
		return respondError(c, err)
	}

	goal, err := h.goalService.SetOrUpdateGoal(me, month, target)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"month":           goal.GoalDate.Format(models.MonthLayout),
		"monthlyGoal":     goal.MonthlyGoal,
		"currentSpending": goal.CurrentSpending,
	})
}

func (h *SpendingHandler) HandleGetGoal(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	month, err := queryMonth(c, "month")
	if err != nil {
		return respondError(c, err)
	}
	target, err := h.goalService.GetGoal(me, month)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"month":       month.Format(models.MonthLayout),
		"monthlyGoal": target,
	})
}

func (h *SpendingHandler) HandleRecordExpense(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	var req ExpenseRequest
	if err := c.BodyParser(&req); err != nil {
		return validationFailed(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}
	date, err := models.ParseDate(req.Date)
	if err != nil {
		return respondError(c, fmt.Errorf("%w: date must be YYYY-MM-DD", services.ErrValidation))
	}

	goal, err := h.goalService.RecordExpenseAgainstGoal(me, date, req.Amount)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"month":           goal.GoalDate.Format(models.MonthLayout),
		"monthlyGoal":     goal.MonthlyGoal,
		"currentSpending": goal.CurrentSpending,
	})
}

func (h *SpendingHandler) HandleBudgetStatus(c *fiber.Ctx) error {
	me, err := currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	month, err := queryMonth(c, "month")
	if err != nil {
		return respondError(c, err)
	}
	status, err := h.goalService.BudgetStatus(me, month)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(status)
}

func (h *SpendingHandler) rangeParams(c *fiber.Ctx) (int64, time.Time, time.Time, error) {
	me, err := currentUser(c)
	if err != nil {
		return 0, time.Time{}, time.Time{}, err
	}
	start, err := queryDate(c, "start")
	if err != nil {
		return 0, time.Time{}, time.Time{}, err
	}
	end, err := queryDate(c, "end")
	if err != nil {
		return 0, time.Time{}, time.Time{}, err
	}
	return me, start, end, nil
}

func summaries(list []models.Spending) []models.SpendingSummary {
	out := make([]models.SpendingSummary, 0, len(list))
	for i := range list {
		out = append(out, list[i].Summary())
	}
	return out
}
