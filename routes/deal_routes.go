package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/profiradce/profiradce_backend/controllers"
	"github.com/profiradce/profiradce_backend/middleware"
)

// RegisterDealRoutes sets up the deal pipeline and commission routes. All of
// them require a specialist session.
func RegisterDealRoutes(e *echo.Echo, dealController *controllers.DealController, commissionController *controllers.CommissionController) {
	r := e.Group("/api")
	r.Use(middleware.JWTMiddleware())
	r.Use(middleware.RequireUserType("specialist"))

	// Deal pipeline
	r.POST("/deals", dealController.CreateDeal)
	r.GET("/deals", dealController.GetDeals)
	r.GET("/deals/:id", dealController.GetDeal)
	r.PUT("/deals/:id/status", dealController.UpdateDealStatus)
	r.PUT("/deals/:id/value", dealController.SetDealValue)
	r.PUT("/deals/:id/close", dealController.CloseDeal)
	r.PUT("/deals/:id/reopen", dealController.ReopenDeal)
	r.POST("/deals/:id/notes", dealController.AddNote)

	// Commissions
	r.GET("/commissions", commissionController.GetCommissions)
	r.GET("/commissions/stats", commissionController.GetCommissionStats)
	r.POST("/commissions/:id/pay", commissionController.PayCommission)
	r.POST("/payments/confirm", commissionController.ConfirmPayment)

	// Admin commission management
	admin := e.Group("/api/admin")
	admin.Use(middleware.JWTMiddleware())
	admin.Use(middleware.RequireUserType("admin"))
	admin.POST("/commissions/:id/invoice", commissionController.InvoiceCommission)
	admin.POST("/commissions/:id/waive", commissionController.WaiveCommission)
}
