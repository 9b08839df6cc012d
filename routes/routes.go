package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	controller "cabanas/controllers"
	"cabanas/middleware"
)

// SetupRoutes wires every route group onto the app.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	SetupAuthRoutes(app, db)
	SetupAPIRoutes(app, db)
}

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	authLogger := log.New(os.Stdout, "AUTH: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Auth routes group with logging middleware
	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public auth endpoints (no authentication required)
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)
	auth.Post("/refresh", controller.RefreshToken)

	// Protected auth endpoints (require valid JWT)
	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Post("/logout", controller.Logout)
	protectedAuth.Post("/change-password", controller.ChangePassword)
	protectedAuth.Get("/me", controller.GetCurrentUser)
	protectedAuth.Put("/users/:id", controller.UpdateProfile)

	authLogger.Println("Authentication routes initialized successfully")
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB) {
	teamController := controller.NewTeamController(db, log.New(os.Stdout, "TEAM: ", log.LstdFlags))
	storeController := controller.NewStoreController(db, log.New(os.Stdout, "STORE: ", log.LstdFlags))
	cabinController := controller.NewCabinController(db, log.New(os.Stdout, "CABIN: ", log.LstdFlags))
	reviewController := controller.NewReviewController(db, log.New(os.Stdout, "REVIEW: ", log.LstdFlags))
	reservationController := controller.NewReservationController(db, log.New(os.Stdout, "RESERVATION: ", log.LstdFlags))
	taskController := controller.NewTaskController(db, log.New(os.Stdout, "TASK: ", log.LstdFlags))
	nodeController := controller.NewNodeController(db, log.New(os.Stdout, "NODE: ", log.LstdFlags))
	productController := controller.NewProductController(db, log.New(os.Stdout, "PRODUCT: ", log.LstdFlags))
	activityController := controller.NewActivityController(db, log.New(os.Stdout, "ACTIVITY: ", log.LstdFlags))

	// Public endpoints: storefronts and the cabin catalog
	public := app.Group("/public", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	public.Get("/tiendas/:slug", storeController.GetPublicStore)
	public.Get("/tiendas/:id/productos", productController.ListStoreProducts)
	public.Get("/cabanas", cabinController.ListPublicCabins)
	public.Get("/cabanas/:slug", cabinController.GetPublicCabin)
	public.Get("/cabanas/:id/resenas", reviewController.ListCabinReviews)

	// Stripe calls this; signature verification replaces JWT here
	app.Post("/payment/webhook", controller.HandleStripeWebhook)

	// API group with versioning and protection
	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Team routes
	team := api.Group("/teams")
	team.Post("/", teamController.CreateTeam)
	team.Get("/", teamController.GetMyTeams)
	team.Get("/:id", teamController.GetTeam)
	team.Put("/:id", teamController.UpdateTeam)
	team.Delete("/:id", teamController.DeleteTeam)
	team.Get("/:id/members", teamController.GetMembers)
	team.Post("/:id/invitations", teamController.InviteMember)
	team.Post("/:id/leave", teamController.LeaveTeam)
	team.Delete("/:id/members/:userId", teamController.RemoveMember)
	team.Get("/:teamId/cabanas", cabinController.ListTeamCabins)
	team.Get("/:teamId/tasks", taskController.ListTeamTasks)
	team.Get("/:teamId/reservas", reservationController.GetTeamReservations)

	// Invitation routes
	invitation := api.Group("/invitations")
	invitation.Get("/", teamController.GetMyInvitations)
	invitation.Post("/:id/accept", teamController.AcceptInvitation)
	invitation.Post("/:id/reject", teamController.RejectInvitation)

	// Store routes
	store := api.Group("/tiendas")
	store.Post("/", storeController.CreateStore)
	store.Get("/", storeController.GetMyStores)
	store.Get("/:id", storeController.GetStore)
	store.Put("/:id", storeController.UpdateStore)
	store.Delete("/:id", storeController.DeleteStore)
	store.Post("/:id/teams", storeController.AssignTeam)
	store.Delete("/:id/teams/:teamId", storeController.UnassignTeam)

	// Cabin management routes
	cabin := api.Group("/cabanas")
	cabin.Post("/", cabinController.CreateCabin)
	cabin.Put("/:id", cabinController.UpdateCabin)
	cabin.Delete("/:id", cabinController.DeleteCabin)
	cabin.Post("/:id/images", cabinController.AddImage)
	cabin.Put("/:id/images/:imageId/primary", cabinController.SetPrimaryImage)
	cabin.Delete("/:id/images/:imageId", cabinController.DeleteImage)
	cabin.Post("/:id/resenas", reviewController.CreateReview)

	// Review routes
	review := api.Group("/resenas")
	review.Put("/:id", reviewController.UpdateReview)
	review.Delete("/:id", reviewController.DeleteReview)

	// Reservation routes with rate limiting on the booking-heavy paths
	reservation := api.Group("/reservas")
	reservation.Get("/check-availability", middleware.BookingRateLimiter(), reservationController.CheckAvailability)
	reservation.Post("/", middleware.BookingRateLimiter(), reservationController.CreateReservation)
	reservation.Get("/", reservationController.GetMyReservations)
	reservation.Get("/:id", reservationController.GetReservation)
	reservation.Post("/:id/cancel", reservationController.CancelReservation)
	reservation.Post("/:id/pagar", controller.CreateCheckoutSession)

	// WebSocket route for reservation status updates
	app.Get("/api/v1/reservas/status", websocket.New(func(c *websocket.Conn) {
		controller.HandleReservationStatusWS(c)
	}))

	// Task routes
	task := api.Group("/tasks")
	task.Post("/", taskController.CreateTask)
	task.Get("/:id", taskController.GetTask)
	task.Put("/:id", taskController.UpdateTask)
	task.Delete("/:id", taskController.DeleteTask)
	task.Post("/:id/comments", taskController.AddComment)
	task.Delete("/:id/comments/:commentId", taskController.DeleteComment)

	// Node (shared notes) routes
	node := api.Group("/nodes")
	node.Post("/", nodeController.CreateNode)
	node.Get("/roots", nodeController.GetRootNodes)
	node.Get("/search", nodeController.SearchNodes)
	node.Post("/batch-update", nodeController.BatchUpdate)
	node.Get("/:id", nodeController.GetNode)
	node.Put("/:id", nodeController.UpdateNode)
	node.Delete("/:id", nodeController.DeleteNode)
	node.Get("/:id/children", nodeController.GetChildren)
	node.Post("/:id/move", nodeController.MoveNode)
	node.Post("/:id/toggle-complete", nodeController.ToggleComplete)
	node.Post("/:id/share", nodeController.ShareNode)
	node.Get("/:id/share", nodeController.GetShareInfo)
	node.Delete("/:id/share", nodeController.Unshare)

	// Product routes
	product := api.Group("/productos")
	product.Post("/", productController.CreateProduct)
	product.Put("/:id", productController.UpdateProduct)
	product.Delete("/:id", productController.DeleteProduct)

	// Activity and package routes
	activity := api.Group("/activities")
	activity.Post("/", activityController.CreateActivity)
	activity.Get("/", activityController.GetMyActivities)
	activity.Put("/:id", activityController.UpdateActivity)
	activity.Delete("/:id", activityController.DeleteActivity)

	pkg := api.Group("/packages")
	pkg.Post("/", activityController.CreatePackage)
	pkg.Get("/", activityController.GetMyPackages)
	pkg.Put("/:id", activityController.UpdatePackage)
	pkg.Delete("/:id", activityController.DeletePackage)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Route not found",
		})
	})
}
