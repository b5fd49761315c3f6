package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/facility-maintenance/internal/auth"
	"github.com/ukydev/facility-maintenance/internal/db"
	"github.com/ukydev/facility-maintenance/internal/handlers"
	"github.com/ukydev/facility-maintenance/internal/middleware"
	"github.com/ukydev/facility-maintenance/internal/notify"
	"github.com/ukydev/facility-maintenance/internal/pm"
	"github.com/ukydev/facility-maintenance/internal/tasks"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using environment variables")
	}

	store, err := openStore()
	if err != nil {
		log.WithError(err).Fatal("Failed to open storage backend")
	}

	authService, err := auth.NewService()
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize auth service")
	}

	notifier := openNotifier()

	registry := pm.NewRegistry(store.Templates, store.Schedules)
	generator := pm.NewGenerator(store.Templates, store.Schedules, store.Equipment)
	lifecycle := pm.NewLifecycle(store.Schedules)
	tracker := pm.NewTracker(store.Schedules, store.Executions, store.Templates, store.Users)
	evaluator := pm.NewEvaluator(store.Schedules, notifier)
	calculator := pm.NewCalculator(store.Schedules)

	cron := tasks.InitScheduler(tasks.NewSweeper(lifecycle, evaluator))
	defer cron.Stop()

	authHandler := handlers.NewAuthHandler(authService, store.Users)
	templateHandler := handlers.NewTemplateHandler(registry)
	equipmentHandler := handlers.NewEquipmentHandler(store.Equipment)
	scheduleHandler := handlers.NewScheduleHandler(lifecycle, generator, store.Equipment)
	executionHandler := handlers.NewExecutionHandler(tracker)
	reportsHandler := handlers.NewReportsHandler(calculator, lifecycle, evaluator)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	rateLimiter := middleware.NewRateLimitMiddleware()

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("GET /api/auth/profile", authHandler.GetProfile)
	mux.HandleFunc("PUT /api/auth/profile", authHandler.UpdateProfile)
	mux.HandleFunc("POST /api/auth/change-password", authHandler.ChangePassword)

	perm := authMiddleware.RequirePermission
	handle := func(pattern string, mw func(http.Handler) http.Handler, fn http.HandlerFunc) {
		mux.Handle(pattern, mw(fn))
	}

	handle("POST /api/pm/equipment", perm("manage_equipment"), equipmentHandler.Create)
	handle("GET /api/pm/equipment", perm("view_equipment"), equipmentHandler.List)
	handle("GET /api/pm/equipment/{id}", perm("view_equipment"), equipmentHandler.Get)
	handle("PUT /api/pm/equipment/{id}", perm("manage_equipment"), equipmentHandler.Update)
	handle("DELETE /api/pm/equipment/{id}", perm("manage_equipment"), equipmentHandler.Delete)

	handle("POST /api/pm/templates", perm("manage_templates"), templateHandler.Create)
	handle("GET /api/pm/templates", perm("view_templates"), templateHandler.List)
	handle("GET /api/pm/templates/{id}", perm("view_templates"), templateHandler.Get)
	handle("PUT /api/pm/templates/{id}", perm("manage_templates"), templateHandler.Update)
	handle("DELETE /api/pm/templates/{id}", perm("manage_templates"), templateHandler.Delete)

	handle("POST /api/pm/schedules/generate", perm("manage_schedules"), scheduleHandler.Generate)
	handle("GET /api/pm/schedules", perm("view_schedules"), scheduleHandler.List)
	handle("GET /api/pm/schedules/{id}", perm("view_schedules"), scheduleHandler.Get)
	handle("POST /api/pm/schedules/{id}/cancel", perm("manage_schedules"), scheduleHandler.Cancel)
	handle("DELETE /api/pm/schedules/{id}", perm("manage_schedules"), scheduleHandler.Delete)

	handle("POST /api/pm/schedules/{id}/start", perm("start_execution"), executionHandler.Start)
	handle("GET /api/pm/schedules/{id}/execution", perm("view_schedules"), executionHandler.GetBySchedule)
	handle("PUT /api/pm/executions/{id}", perm("update_execution"), executionHandler.Update)
	handle("POST /api/pm/executions/{id}/complete", perm("complete_execution"), executionHandler.Complete)

	handle("GET /api/pm/stats/dashboard", perm("view_stats"), reportsHandler.Dashboard)
	handle("GET /api/pm/stats/compliance", perm("view_stats"), reportsHandler.Compliance)
	handle("POST /api/pm/sweeps/overdue", perm("manage_schedules"), reportsHandler.OverdueSweep)
	handle("POST /api/pm/sweeps/notifications", perm("manage_schedules"), reportsHandler.NotificationSweep)

	chain := authMiddleware.Authenticate(mux)
	chain = rateLimiter.RateLimit(300, 60)(chain)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.WithField("port", port).Info("HTTP server listening")
	log.Fatal(http.ListenAndServe(":"+port, chain))
}

// openStore picks the storage backend. STORAGE_BACKEND=memory runs fully
// in-process for demos and development; anything else connects to MongoDB.
func openStore() (*db.Store, error) {
	if os.Getenv("STORAGE_BACKEND") == "memory" {
		log.Info("Using in-memory storage backend")
		return db.NewMemoryStore(), nil
	}

	client, err := db.ConnectMongo()
	if err != nil {
		return nil, err
	}
	dbName := os.Getenv("MONGO_DATABASE")
	if dbName == "" {
		dbName = "facility_maintenance"
	}
	log.WithField("database", dbName).Info("Connected to MongoDB")
	return db.NewMongoStore(client.Database(dbName)), nil
}

// openNotifier connects to the MQTT broker when one is configured, otherwise
// reminders only go to the log.
func openNotifier() pm.Notifier {
	brokerURL := os.Getenv("MQTT_BROKER_URL")
	if brokerURL == "" {
		log.Info("No MQTT broker configured, reminders go to the log")
		return notify.LogNotifier{}
	}

	clientID := os.Getenv("MQTT_CLIENT_ID")
	if clientID == "" {
		clientID = "facility-maintenance"
	}
	topicPrefix := os.Getenv("MQTT_TOPIC_PREFIX")
	if topicPrefix == "" {
		topicPrefix = "maintenance/notifications"
	}

	notifier, err := notify.NewMQTTNotifier(brokerURL, clientID, topicPrefix)
	if err != nil {
		log.WithError(err).Warn("MQTT connect failed, falling back to log notifier")
		return notify.LogNotifier{}
	}
	log.WithField("broker", brokerURL).Info("Publishing reminders to MQTT")
	return notifier
}
