package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"warbler/handlers"
	"warbler/monitoring"
	"warbler/views"
)

// SetupRoutes initializes all the application routes
// The routing logic is isolated here
func SetupRoutes(base *handlers.Base, db handlers.Pinger) http.Handler {
	homeHandler := handlers.NewHomeHandler(base)
	authHandler := handlers.NewAuthHandler(base)
	userHandler := handlers.NewUserHandler(base)
	messageHandler := handlers.NewMessageHandler(base)
	systemHandler := handlers.NewSystemHandler(db)

	router := mux.NewRouter()
	router.Use(monitoring.InstrumentHandler)

	// System routes
	router.PathPrefix("/static/").Handler(views.Static()).Methods("GET", "HEAD")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/health", systemHandler.Health).Methods("GET")

	// Everything below knows who is logged in
	app := router.PathPrefix("/").Subrouter()
	app.Use(base.WithAuth)

	app.HandleFunc("/", homeHandler.Home).Methods("GET")

	// Auth routes
	app.HandleFunc("/signup", authHandler.Signup).Methods("GET", "POST")
	app.HandleFunc("/login", authHandler.Login).Methods("GET", "POST")
	app.HandleFunc("/logout", authHandler.Logout).Methods("GET")

	// User routes
	app.HandleFunc("/users", userHandler.List).Methods("GET")
	app.HandleFunc("/users/profile", base.RequireLogin(userHandler.EditProfile)).Methods("GET", "POST")
	app.HandleFunc("/users/delete", base.RequireLogin(userHandler.Delete)).Methods("POST")
	app.HandleFunc("/users/follow/{id:[0-9]+}", base.RequireLogin(userHandler.Follow)).Methods("POST")
	app.HandleFunc("/users/stop-following/{id:[0-9]+}", base.RequireLogin(userHandler.StopFollowing)).Methods("POST")
	app.HandleFunc("/users/add_like/{id:[0-9]+}", base.RequireLogin(messageHandler.ToggleLike)).Methods("POST")
	app.HandleFunc("/users/{id:[0-9]+}", userHandler.Show).Methods("GET")
	app.HandleFunc("/users/{id:[0-9]+}/following", base.RequireLogin(userHandler.Following)).Methods("GET")
	app.HandleFunc("/users/{id:[0-9]+}/followers", base.RequireLogin(userHandler.Followers)).Methods("GET")
	app.HandleFunc("/users/{id:[0-9]+}/likes", base.RequireLogin(userHandler.Likes)).Methods("GET")

	// Message routes
	app.HandleFunc("/messages/new", base.RequireLogin(messageHandler.New)).Methods("GET", "POST")
	app.HandleFunc("/messages/{id:[0-9]+}", messageHandler.Show).Methods("GET")
	app.HandleFunc("/messages/{id:[0-9]+}/delete", base.RequireLogin(messageHandler.Delete)).Methods("POST")

	router.NotFoundHandler = base.WithAuth(http.HandlerFunc(homeHandler.NotFound))

	return monitoring.AccessLog(handlers.NoCache(router))
}
