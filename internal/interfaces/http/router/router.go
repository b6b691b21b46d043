// Package router wires the HTTP handlers onto the gin engine.
package router

import (
	"github.com/ddmpress/backend/internal/interfaces/http/handler"
	"github.com/ddmpress/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers bundles all HTTP handlers for route registration
type Handlers struct {
	Budget  *handler.BudgetHandler
	Client  *handler.ClientHandler
	Project *handler.ProjectHandler
	Invoice *handler.InvoiceHandler
	System  *handler.SystemHandler
	Outbox  *handler.OutboxHandler
}

// Setup registers all routes under /api/v1
func Setup(engine *gin.Engine, h Handlers) {
	middleware.SetupValidator()

	api := engine.Group("/api/v1")

	budgets := api.Group("/budgets")
	{
		budgets.POST("", h.Budget.Create)
		budgets.GET("", h.Budget.List)
		budgets.GET("/:id", h.Budget.Get)
		budgets.POST("/:id/items", h.Budget.AddItem)
		budgets.DELETE("/:id/items/:itemId", h.Budget.RemoveItem)
		budgets.PUT("/:id/payment-plan", h.Budget.SetPaymentPlan)
		budgets.POST("/:id/send", h.Budget.Send)
		budgets.POST("/:id/approve", h.Budget.Approve)
		budgets.POST("/:id/reject", h.Budget.Reject)
		budgets.POST("/:id/expire", h.Budget.Expire)
	}

	clients := api.Group("/clients")
	{
		clients.POST("", h.Client.Create)
		clients.GET("", h.Client.List)
		clients.GET("/:id", h.Client.Get)
		clients.GET("/by-number/:number", h.Client.GetByNumber)
		clients.PUT("/:id", h.Client.Update)
		clients.POST("/:id/deactivate", h.Client.Deactivate)
		clients.POST("/:id/activate", h.Client.Activate)
	}

	projects := api.Group("/projects")
	{
		projects.GET("", h.Project.List)
		projects.GET("/:id", h.Project.Get)
		projects.GET("/by-budget/:budgetId", h.Project.GetByBudget)
		projects.POST("/:id/catalog-code", h.Project.EnsureCatalogCode)
		projects.POST("/:id/start-production", h.Project.StartProduction)
		projects.POST("/:id/publish", h.Project.Publish)
		projects.POST("/:id/archive", h.Project.Archive)
	}

	invoices := api.Group("/invoices")
	{
		invoices.GET("/pending", h.Invoice.ListPending)
		invoices.GET("/:id", h.Invoice.Get)
		invoices.GET("/by-order/:orderId", h.Invoice.ListByOrder)
		invoices.GET("/by-project/:projectId", h.Invoice.ListByProject)
		invoices.POST("/:id/pay", h.Invoice.MarkPaid)
		invoices.POST("/:id/cancel", h.Invoice.Cancel)
	}

	api.GET("/orders/:id", h.Invoice.GetOrder)

	system := api.Group("/system")
	{
		system.GET("/info", h.System.GetSystemInfo)
		system.GET("/health", h.System.Health)
		system.GET("/outbox/stats", h.Outbox.GetStats)
		system.GET("/outbox/dead", h.Outbox.GetDeadLetterEntries)
		system.POST("/outbox/dead/:id/retry", h.Outbox.RetryDeadLetterEntry)
	}
}
