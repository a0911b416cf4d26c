package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/cinesafe/cinesafe-backend/internal/handlers"
)

func SetupRoutes(r *chi.Mux) {
	// Auth routes
	r.Post("/api/auth/register", handlers.Register)
	r.Post("/api/auth/login", handlers.Login)
	r.Post("/api/auth/logout", handlers.Logout)
	r.Get("/api/auth/me", handlers.GetMe)

	// Profile routes
	r.Get("/api/users/profile", handlers.GetUserProfile)
	r.Put("/api/users/profile", handlers.UpdateProfile)
	r.Get("/api/users/quota", handlers.GetQuotaStatus)
	r.Get("/api/users/rankings", handlers.GetRankings)
	r.Get("/api/users/search", handlers.SearchUsers)

	// Equipment routes
	r.Post("/api/equipment", handlers.AddEquipment)
	r.Get("/api/equipment", handlers.GetMyEquipment)
	r.Put("/api/equipment", handlers.UpdateEquipment)
	r.Delete("/api/equipment", handlers.DeleteEquipment)
	r.Get("/api/equipment/check-serial", handlers.CheckSerial)

	// Theft routes
	r.Post("/api/theft/report", handlers.ReportTheft)
	r.Post("/api/theft/recover", handlers.RecoverEquipment)
	r.Get("/api/theft/safety-map", handlers.GetSafetyMap)

	// Marketplace routes (public browsing)
	r.Get("/api/marketplace/rentals", handlers.GetRentalListings)
	r.Get("/api/marketplace/sales", handlers.GetSaleListings)
	r.Post("/api/marketplace/interest", handlers.SendInterest)
	r.Post("/api/marketplace/stolen-found", handlers.SendStolenFoundAlert)

	// Transfer routes
	r.Post("/api/transfers", handlers.RequestTransfer)
	r.Delete("/api/transfers", handlers.CancelTransfer)
	r.Post("/api/transfers/accept", handlers.AcceptTransfer)

	// Notification routes
	r.Get("/api/notifications", handlers.GetNotifications)
	r.Put("/api/notifications/read", handlers.MarkNotificationRead)
	r.Delete("/api/notifications", handlers.DeleteNotification)
	r.Put("/api/notifications/schedule-expiry", handlers.ScheduleNotificationExpiry)

	// Trusted network routes
	r.Post("/api/network/request", handlers.SendConnectionRequest)
	r.Post("/api/network/accept", handlers.AcceptConnection)
	r.Delete("/api/network", handlers.RemoveConnection)
	r.Get("/api/network", handlers.GetConnections)

	// Stats routes
	r.Get("/api/stats/me", handlers.GetUserStats)
	r.Get("/api/stats/global", handlers.GetGlobalStats)

	// Location routes (IBGE proxy, public)
	r.Get("/api/locations/ufs", handlers.GetUFs)
	r.Get("/api/locations/ufs/{uf}/cities", handlers.GetCities)

	// File upload routes
	r.Post("/api/upload", handlers.UploadImage)

	// Admin routes
	r.Get("/api/admin/users", handlers.AdminListUsers)
	r.Put("/api/admin/users/block", handlers.AdminToggleBlock)
	r.Put("/api/admin/users/role", handlers.AdminToggleRole)
	r.Delete("/api/admin/users", handlers.AdminDeleteUser)
	r.Put("/api/admin/unblock-ip", handlers.UnblockIP)
}
