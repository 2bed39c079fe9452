package routes

import (
	"net/http"

	"github.com/openclinic/vaccine-scheduler/internal/api/handlers"
	"github.com/openclinic/vaccine-scheduler/internal/api/middleware"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	accountHandler  *handlers.AccountHandler
	scheduleHandler *handlers.ScheduleHandler
	bookingHandler  *handlers.BookingHandler
	vaccineHandler  *handlers.VaccineHandler

	auth func(http.Handler) http.Handler
}

// NewRouter creates a new router
func NewRouter(
	accountHandler *handlers.AccountHandler,
	scheduleHandler *handlers.ScheduleHandler,
	bookingHandler *handlers.BookingHandler,
	vaccineHandler *handlers.VaccineHandler,
	auth func(http.Handler) http.Handler,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		accountHandler:  accountHandler,
		scheduleHandler: scheduleHandler,
		bookingHandler:  bookingHandler,
		vaccineHandler:  vaccineHandler,

		auth: auth,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Account endpoints
	r.mux.HandleFunc("POST /api/accounts", r.accountHandler.Register)
	r.mux.HandleFunc("POST /api/login", r.accountHandler.Login)

	// Schedule endpoints
	r.mux.Handle("GET /api/schedule/{date}", r.protected(r.scheduleHandler.GetSchedule))
	r.mux.Handle("POST /api/availabilities", r.protected(r.scheduleHandler.PublishAvailability))

	// Appointment endpoints
	r.mux.Handle("POST /api/appointments", r.protected(r.bookingHandler.Reserve))
	r.mux.Handle("DELETE /api/appointments/{id}", r.protected(r.bookingHandler.Cancel))
	r.mux.Handle("GET /api/appointments", r.protected(r.scheduleHandler.ListAppointments))

	// Vaccine endpoints
	r.mux.Handle("POST /api/vaccines/{name}/doses", r.protected(r.vaccineHandler.AddDoses))
	r.mux.Handle("GET /api/vaccines/{name}", r.protected(r.vaccineHandler.GetVaccine))

	// Apply global middlewares
	var handler http.Handler = r.mux
	handler = middleware.CORSMiddleware(handler)
	handler = middleware.LoggingMiddleware(handler)

	return handler
}

func (r *Router) protected(h http.HandlerFunc) http.Handler {
	return r.auth(h)
}
