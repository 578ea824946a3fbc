package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"

	"vedaBack/internal/models"
)

func (app *application) JWTMiddlewareWithRole(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return app.JWTMiddleware(next, requiredRole)
	}
}

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders, makeResponseJSON)
	customerAuthMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(models.RoleCustomer))
	companyAuthMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(models.RoleCompany))
	adminAuthMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(models.RoleAdmin))

	mux := pat.New()

	// Requests
	mux.Post("/request", customerAuthMiddleware.ThenFunc(app.requestHandler.CreateRequest))
	mux.Get("/request/:id", customerAuthMiddleware.ThenFunc(app.requestHandler.GetRequest))
	mux.Put("/request/:id/status", customerAuthMiddleware.ThenFunc(app.requestHandler.UpdateRequestStatus))
	mux.Get("/request/:id/offers", customerAuthMiddleware.ThenFunc(app.offerHandler.ListOffersByRequest))
	mux.Post("/request/:request_id/offer/:offer_id/accept", customerAuthMiddleware.ThenFunc(app.offerHandler.AcceptOffer))

	// Offers
	mux.Post("/offer", companyAuthMiddleware.ThenFunc(app.offerHandler.CreateOffer))
	mux.Get("/offer/:id", companyAuthMiddleware.ThenFunc(app.offerHandler.GetOffer))
	mux.Del("/offer/:id", companyAuthMiddleware.ThenFunc(app.offerHandler.WithdrawOffer))

	// Pricing
	mux.Get("/pricing/request/:id", companyAuthMiddleware.ThenFunc(app.pricingHandler.QuoteRequest))

	// Credits
	mux.Get("/credits/balance", companyAuthMiddleware.ThenFunc(app.creditHandler.GetBalance))
	mux.Get("/credits/transactions", companyAuthMiddleware.ThenFunc(app.creditHandler.ListTransactions))
	mux.Post("/credits/purchase", companyAuthMiddleware.ThenFunc(app.creditHandler.PurchaseCredits))

	// Admin
	mux.Get("/admin/company/:id", adminAuthMiddleware.ThenFunc(app.creditHandler.GetCompany))
	mux.Post("/admin/company/:id/credits", adminAuthMiddleware.ThenFunc(app.creditHandler.AdjustCredits))
	mux.Put("/admin/request/:id/credit_cost", adminAuthMiddleware.ThenFunc(app.requestHandler.SetAdminCreditCost))
	mux.Post("/admin/refund_sweep", adminAuthMiddleware.ThenFunc(app.sweepHandler.RunRefundSweep))

	// Device tokens
	mux.Post("/device_token", companyAuthMiddleware.ThenFunc(app.deviceTokenHandler.SaveToken))

	return mux
}
