package handler

import (
	"context"

	budgetapp "github.com/ddmpress/backend/internal/application/budget"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BudgetHandler handles budget-related API endpoints
type BudgetHandler struct {
	BaseHandler
	budgetService *budgetapp.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *budgetapp.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// Create godoc
// @Summary      Create a new draft budget
// @Tags         budgets
// @Accept       json
// @Produce      json
// @Param        request body budgetapp.CreateBudgetRequest true "Budget creation request"
// @Success      201 {object} dto.Response
// @Router       /budgets [post]
func (h *BudgetHandler) Create(c *gin.Context) {
	var req budgetapp.CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	budget, err := h.budgetService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, budget)
}

// Get godoc
// @Summary      Get a budget by ID
// @Tags         budgets
// @Produce      json
// @Param        id path string true "Budget ID"
// @Success      200 {object} dto.Response
// @Router       /budgets/{id} [get]
func (h *BudgetHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid budget ID")
		return
	}

	budget, err := h.budgetService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, budget)
}

// List godoc
// @Summary      List budgets
// @Tags         budgets
// @Produce      json
// @Success      200 {object} dto.Response
// @Router       /budgets [get]
func (h *BudgetHandler) List(c *gin.Context) {
	var filter budgetapp.BudgetListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	budgets, total, err := h.budgetService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, budgets, total, page, pageSize)
}

// AddItem adds a line item to a draft budget
func (h *BudgetHandler) AddItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid budget ID")
		return
	}

	var req budgetapp.AddBudgetItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	budget, err := h.budgetService.AddItem(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, budget)
}

// RemoveItem removes a line item from a draft budget
func (h *BudgetHandler) RemoveItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid budget ID")
		return
	}
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return
	}

	budget, err := h.budgetService.RemoveItem(c.Request.Context(), id, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, budget)
}

// SetPaymentPlan sets the installment plan on a draft budget
func (h *BudgetHandler) SetPaymentPlan(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid budget ID")
		return
	}

	var req budgetapp.SetPaymentPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	budget, err := h.budgetService.SetPaymentPlan(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, budget)
}

// Send godoc
// @Summary      Send a budget to the client
// @Description  Stamps the display number and moves the budget to sent
// @Tags         budgets
// @Produce      json
// @Param        id path string true "Budget ID"
// @Success      200 {object} dto.Response
// @Router       /budgets/{id}/send [post]
func (h *BudgetHandler) Send(c *gin.Context) {
	h.transition(c, h.budgetService.Send)
}

// Approve godoc
// @Summary      Approve a sent budget
// @Description  Marks the budget approved; the conversion cascade runs
// @Description  asynchronously off the BudgetApproved event
// @Tags         budgets
// @Produce      json
// @Param        id path string true "Budget ID"
// @Success      200 {object} dto.Response
// @Router       /budgets/{id}/approve [post]
func (h *BudgetHandler) Approve(c *gin.Context) {
	h.transition(c, h.budgetService.Approve)
}

// Reject rejects a sent budget
func (h *BudgetHandler) Reject(c *gin.Context) {
	h.transition(c, h.budgetService.Reject)
}

// Expire expires a sent budget
func (h *BudgetHandler) Expire(c *gin.Context) {
	h.transition(c, h.budgetService.Expire)
}

func (h *BudgetHandler) transition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*budgetapp.BudgetResponse, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid budget ID")
		return
	}

	budget, err := fn(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, budget)
}
