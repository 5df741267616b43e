package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/yash-miyani/natours/internal/api/handler"
	"github.com/yash-miyani/natours/internal/api/middleware"
	"github.com/yash-miyani/natours/internal/core/domain"
	"github.com/yash-miyani/natours/internal/core/ports"
	"github.com/yash-miyani/natours/internal/core/service"
	"github.com/yash-miyani/natours/internal/infrastructure/checkout"
	"github.com/yash-miyani/natours/internal/infrastructure/config"
	mongorepo "github.com/yash-miyani/natours/internal/infrastructure/db/mongo"
	"github.com/yash-miyani/natours/internal/infrastructure/images"
)

// Dependencies carries the externally constructed collaborators the router
// wires into handlers.
type Dependencies struct {
	Config  *config.Config
	Log     zerolog.Logger
	DB      *mongo.Database
	Redis   *redis.Client // nil when not configured
	Limiter ports.RateLimiter
	Mailer  ports.Mailer
}

// NewRouter builds the Echo instance: the full hardening pipeline in order,
// then every API and view route.
func NewRouter(deps Dependencies) (*echo.Echo, error) {
	cfg := deps.Config

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.IsProduction(), deps.Log)

	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	e.Renderer = renderer

	// --- Request hardening pipeline (order matters) ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.CORS())
	e.Static("/public", "web/public")
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "SAMEORIGIN",
		ContentSecurityPolicy: "script-src 'self'",
	}))
	if !cfg.IsProduction() {
		e.Use(echomiddleware.Logger())
	}
	e.Use(middleware.RateLimit(deps.Limiter, deps.Log))
	e.Use(echomiddleware.BodyLimit("10K"))
	e.Use(middleware.Sanitize())
	e.Use(middleware.PreventParamPollution())
	e.Use(echomiddleware.Gzip())
	e.Use(middleware.RequestTime())
	e.Use(echoprometheus.NewMiddleware("natours"))

	// --- Repositories ---
	userRepo := mongorepo.NewUserRepository(deps.DB)
	tourRepo := mongorepo.NewTourRepository(deps.DB)
	reviewRepo := mongorepo.NewReviewRepository(deps.DB)
	bookingRepo := mongorepo.NewBookingRepository(deps.DB)

	// --- Services and collaborators ---
	authService := service.NewAuthService(userRepo, deps.Mailer, cfg.JWTSecret, cfg.JWTExpiresIn, cfg.PublicURL, deps.Log)
	checkoutProvider := checkout.NewSessionCreator(checkout.Config{
		BaseURL:    cfg.Checkout.BaseURL,
		SuccessURL: cfg.PublicURL + "/",
	}, deps.Log)
	imageProcessor := images.NewProcessor("web/public/img")

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService, cfg.JWTCookieExpiresDays, cfg.IsProduction(), cfg.PublicURL)
	userHandler := handler.NewUserHandler(userRepo, imageProcessor)
	tourHandler := handler.NewTourHandler(tourRepo, imageProcessor)
	reviewHandler := handler.NewReviewHandler(reviewRepo)
	bookingHandler := handler.NewBookingHandler(bookingRepo, tourRepo, checkoutProvider)
	viewHandler := handler.NewViewHandler(tourRepo, reviewRepo, bookingRepo, bookingHandler)

	protect := middleware.Protect(authService)
	isLoggedIn := middleware.IsLoggedIn(authService)

	// --- Health probes and metrics ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.DB, deps.Redis)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Rendered pages ---
	e.GET("/", viewHandler.Overview, isLoggedIn)
	e.GET("/tour/:slug", viewHandler.Tour, isLoggedIn)
	e.GET("/login", viewHandler.LoginForm, isLoggedIn)
	e.GET("/me", viewHandler.Account, protect)
	e.GET("/my-tours", viewHandler.MyTours, protect)
	e.POST("/submit-user-data", userHandler.UpdateMeForm, protect)
	e.GET("/logout", authHandler.Logout)

	// --- Users ---
	users := e.Group("/api/v1/users")
	users.POST("/signup", authHandler.Signup)
	users.POST("/login", authHandler.Login)
	users.GET("/logout", authHandler.Logout)
	users.POST("/forgotPassword", authHandler.ForgotPassword)
	users.PATCH("/resetPassword/:token", authHandler.ResetPassword)

	usersAuthed := users.Group("", protect)
	usersAuthed.PATCH("/updateMyPassword", authHandler.UpdatePassword)
	usersAuthed.GET("/me", userHandler.GetMe)
	usersAuthed.PATCH("/updateMe", userHandler.UpdateMe)
	usersAuthed.DELETE("/deleteMe", userHandler.DeleteMe)

	usersAdmin := usersAuthed.Group("", middleware.RestrictTo(domain.RoleAdmin))
	usersAdmin.GET("", userHandler.GetAll)
	usersAdmin.POST("", userHandler.CreateUser)
	usersAdmin.GET("/:id", userHandler.GetOne)
	usersAdmin.PATCH("/:id", userHandler.UpdateOne)
	usersAdmin.DELETE("/:id", userHandler.DeleteOne)

	// --- Tours ---
	tours := e.Group("/api/v1/tours")
	tours.GET("/top-5-cheap", tourHandler.TopTours)
	tours.GET("/tour-stats", tourHandler.Stats)
	tours.GET("/monthly-plan/:year", tourHandler.MonthlyPlan,
		protect, middleware.RestrictTo(domain.RoleAdmin, domain.RoleLeadGuide, domain.RoleGuide))
	tours.GET("/tour-within/:distance/center/:latlng/unit/:unit", tourHandler.ToursWithin)
	tours.GET("/distances/:latlng/unit/:unit", tourHandler.Distances)
	tours.GET("", tourHandler.GetAll)
	tours.POST("", tourHandler.CreateOne,
		protect, middleware.RestrictTo(domain.RoleAdmin, domain.RoleLeadGuide))
	tours.GET("/:id", tourHandler.GetOne)
	tours.PATCH("/:id", tourHandler.UpdateTour,
		protect, middleware.RestrictTo(domain.RoleAdmin, domain.RoleLeadGuide))
	tours.DELETE("/:id", tourHandler.DeleteOne,
		protect, middleware.RestrictTo(domain.RoleAdmin, domain.RoleLeadGuide))

	// --- Reviews (flat and nested under tours) ---
	reviews := e.Group("/api/v1/reviews", protect)
	reviews.GET("", reviewHandler.GetAll)
	reviews.POST("", reviewHandler.CreateOne, middleware.RestrictTo(domain.RoleUser))
	reviews.GET("/:id", reviewHandler.GetOne)
	reviews.PATCH("/:id", reviewHandler.UpdateOne, middleware.RestrictTo(domain.RoleUser, domain.RoleAdmin))
	reviews.DELETE("/:id", reviewHandler.DeleteOne, middleware.RestrictTo(domain.RoleUser, domain.RoleAdmin))

	tourReviews := e.Group("/api/v1/tours/:tourId/reviews", protect)
	tourReviews.GET("", reviewHandler.GetAll)
	tourReviews.POST("", reviewHandler.CreateOne, middleware.RestrictTo(domain.RoleUser))

	// --- Bookings ---
	bookings := e.Group("/api/v1/bookings", protect)
	bookings.GET("/checkout-session/:tourId", bookingHandler.CheckoutSession)

	bookingsAdmin := bookings.Group("", middleware.RestrictTo(domain.RoleAdmin, domain.RoleLeadGuide))
	bookingsAdmin.GET("", bookingHandler.GetAll)
	bookingsAdmin.POST("", bookingHandler.CreateOne)
	bookingsAdmin.GET("/:id", bookingHandler.GetOne)
	bookingsAdmin.PATCH("/:id", bookingHandler.UpdateOne)
	bookingsAdmin.DELETE("/:id", bookingHandler.DeleteOne)

	// Catch-all 404, normalized like every other failure.
	e.RouteNotFound("/*", func(c echo.Context) error {
		return domain.NotFound("Can't find " + c.Request().URL.Path + " on this Server!")
	})

	return e, nil
}
