package http

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"tripsplit/internal/delivery/http/controllers"
	"tripsplit/internal/delivery/http/middleware"
	"tripsplit/internal/domain"
	"tripsplit/internal/metrics"
)

// Controllers groups the handlers the router dispatches to.
type Controllers struct {
	Auth         *controllers.AuthController
	User         *controllers.UserController
	Trip         *controllers.TripController
	Membership   *controllers.MembershipController
	Expense      *controllers.ExpenseController
	Stats        *controllers.StatsController
	Notification *controllers.NotificationController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, verifier domain.TokenVerifier, m *metrics.Metrics, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /auth/signup", c.Auth.SignUp)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)

	// Users
	mux.HandleFunc("GET /users/me", auth(c.User.GetMe))
	mux.HandleFunc("PATCH /users/me", auth(c.User.UpdateMe))

	// Trips
	mux.HandleFunc("GET /trips/me", auth(c.Trip.ListMyTrips))
	mux.HandleFunc("POST /trips", auth(c.Trip.CreateTrip))
	mux.HandleFunc("GET /trips/{tripID}", auth(c.Trip.GetTrip))
	mux.HandleFunc("PATCH /trips/{tripID}", auth(c.Trip.UpdateTrip))
	mux.HandleFunc("DELETE /trips/{tripID}", auth(c.Trip.DeleteTrip))
	mux.HandleFunc("GET /trips/{tripID}/summary", auth(c.Stats.TripSummary))

	// Membership
	mux.HandleFunc("GET /trips/{tripID}/participants", auth(c.Membership.ListParticipants))
	mux.HandleFunc("DELETE /participants/{participantID}", auth(c.Membership.RemoveParticipant))
	mux.HandleFunc("PATCH /participants/{participantID}/role", auth(c.Membership.UpdateParticipantRole))
	mux.HandleFunc("GET /trips/{tripID}/invitations", auth(c.Membership.ListTripInvitations))
	mux.HandleFunc("POST /trips/{tripID}/invitations", auth(c.Membership.CreateInvitation))
	mux.HandleFunc("GET /invitations/me", auth(c.Membership.ListMyInvitations))
	mux.HandleFunc("POST /invitations/{invitationID}/accept", auth(c.Membership.AcceptInvitation))
	mux.HandleFunc("DELETE /invitations/{invitationID}", auth(c.Membership.DeleteInvitation))

	// Expenses
	mux.HandleFunc("GET /trips/{tripID}/expenses", auth(c.Expense.ListTripExpenses))
	mux.HandleFunc("POST /trips/{tripID}/expenses", auth(c.Expense.CreateExpense))
	mux.HandleFunc("GET /trips/{tripID}/balances", auth(c.Expense.TripBalances))
	mux.HandleFunc("PATCH /expenses/{expenseID}", auth(c.Expense.UpdateExpense))
	mux.HandleFunc("DELETE /expenses/{expenseID}", auth(c.Expense.DeleteExpense))
	mux.HandleFunc("PATCH /splits/{splitID}/paid", auth(c.Expense.MarkSplitPaid))

	// Dashboard and notifications
	mux.HandleFunc("GET /stats/me", auth(c.Stats.MyStats))
	mux.HandleFunc("GET /notifications", auth(c.Notification.ListNotifications))
	mux.HandleFunc("PATCH /notifications/{notificationID}/read", auth(c.Notification.MarkRead))

	// Operations
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry}))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// NewHandler wraps the router with the middleware chain. Metrics sits directly on the
// mux so it can read the matched route pattern.
func NewHandler(mux *http.ServeMux, m *metrics.Metrics, allowedOrigins []string, logger *slog.Logger) http.Handler {
	var h http.Handler = mux
	h = middleware.MetricsMiddleware(m, h)
	h = middleware.CORS(allowedOrigins, h)
	h = middleware.LoggingMiddleware(logger, h)
	return h
}
