package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/JethroRendon/Groupify---CC-206-Final-Project/handlers"
	"github.com/JethroRendon/Groupify---CC-206-Final-Project/logging"
	"github.com/JethroRendon/Groupify---CC-206-Final-Project/middleware"
	"github.com/JethroRendon/Groupify---CC-206-Final-Project/repositories"
	"github.com/JethroRendon/Groupify---CC-206-Final-Project/services"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func assignmentDedupWindow() time.Duration {
	raw := os.Getenv("ASSIGNMENT_DEDUP_MS")
	if raw == "" {
		return services.DefaultAssignmentDedupWindow
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ms <= 0 {
		logging.Logger.Warnf("Event ID: CONFIG_WARNING, Description: Invalid ASSIGNMENT_DEDUP_MS %q, using default", raw)
		return services.DefaultAssignmentDedupWindow
	}
	return time.Duration(ms) * time.Millisecond
}

func main() {
	logging.InitLogger()

	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Groupify backend...")
	if err := godotenv.Load(".env"); err != nil {
		logging.Logger.Warnf("Event ID: ENV_LOAD_WARNING, Description: No .env file loaded: %v", err)
	}

	mongoURI := os.Getenv("MONGO_URI")
	mongoDBName := os.Getenv("MONGO_DB_NAME")
	if mongoURI == "" || mongoDBName == "" {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: MONGO_URI and MONGO_DB_NAME must be set.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer client.Disconnect(ctx)

	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", mongoURI)

	db := client.Database(mongoDBName)
	tasksCollection := db.Collection("tasks")
	groupsCollection := db.Collection("groups")
	usersCollection := db.Collection("users")
	notificationsCollection := db.Collection("notifications")
	activitiesCollection := db.Collection("activityLogs")

	usersBreaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "UserLookupCB",
		MaxRequests: 1,
		Timeout:     2 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
		},
	})

	notificationRepo := repositories.NewNotificationRepo(notificationsCollection)
	activityRepo := repositories.NewActivityRepo(activitiesCollection)
	taskRepo := repositories.NewTaskRepo(tasksCollection)
	groupRepo := repositories.NewGroupRepo(groupsCollection)

	userResolver := services.NewUserResolver(usersCollection, usersBreaker)
	notificationService := services.NewNotificationService(notificationRepo)
	dedupCache := services.NewAssignmentDedupCache(assignmentDedupWindow())
	assignmentNotifier := services.NewAssignmentNotifier(notificationService, userResolver, dedupCache)
	defer assignmentNotifier.Close()

	activityService := services.NewActivityService(activityRepo, userResolver)
	taskService := services.NewTaskService(taskRepo, groupRepo, notificationService, activityService, assignmentNotifier, userResolver)
	groupService := services.NewGroupService(groupsCollection, usersCollection, notificationService, userResolver)
	dashboardService := services.NewDashboardService(groupService, taskService, notificationService, activityService, userResolver)

	taskHandler := handlers.NewTaskHandler(taskService)
	groupHandler := handlers.NewGroupHandler(groupService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	activityHandler := handlers.NewActivityHandler(activityService, groupService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"status":"ok"}`)
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.JWTAuthMiddleware)

	api.HandleFunc("/tasks", taskHandler.CreateTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks/my", taskHandler.GetMyTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks/deadlines", taskHandler.GetUpcomingDeadlines).Methods(http.MethodGet)
	api.HandleFunc("/tasks/group/{groupId}", taskHandler.GetTasksByGroup).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{taskId}", taskHandler.GetTask).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{taskId}", taskHandler.UpdateTask).Methods(http.MethodPatch)
	api.HandleFunc("/tasks/{taskId}", taskHandler.DeleteTask).Methods(http.MethodDelete)

	api.HandleFunc("/groups", groupHandler.CreateGroup).Methods(http.MethodPost)
	api.HandleFunc("/groups/my", groupHandler.GetMyGroups).Methods(http.MethodGet)
	api.HandleFunc("/groups/join", groupHandler.JoinGroup).Methods(http.MethodPost)
	api.HandleFunc("/groups/{groupId}", groupHandler.GetGroup).Methods(http.MethodGet)
	api.HandleFunc("/groups/{groupId}", groupHandler.UpdateGroup).Methods(http.MethodPatch)
	api.HandleFunc("/groups/{groupId}", groupHandler.DeleteGroup).Methods(http.MethodDelete)
	api.HandleFunc("/groups/{groupId}/members", groupHandler.GetMembers).Methods(http.MethodGet)
	api.HandleFunc("/groups/{groupId}/leave", groupHandler.LeaveGroup).Methods(http.MethodPost)

	api.HandleFunc("/notifications", notificationHandler.GetMyNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications", notificationHandler.ClearNotifications).Methods(http.MethodDelete)
	api.HandleFunc("/notifications/{id}/read", notificationHandler.MarkNotificationRead).Methods(http.MethodPatch)

	api.HandleFunc("/activities", activityHandler.LogActivity).Methods(http.MethodPost)
	api.HandleFunc("/activities/group/{groupId}", activityHandler.GetActivitiesByGroup).Methods(http.MethodGet)
	api.HandleFunc("/activities/group/{groupId}", activityHandler.ClearActivities).Methods(http.MethodDelete)

	api.HandleFunc("/dashboard/stats", dashboardHandler.GetStats).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/recent-activities", dashboardHandler.GetRecentActivities).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/overview", dashboardHandler.GetOverview).Methods(http.MethodGet)

	corsRouter := enableCORS(r)

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	serverAddress := fmt.Sprintf(":%s", serverPort)
	logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on http://localhost%s", serverAddress)

	if err := http.ListenAndServe(serverAddress, corsRouter); err != nil {
		logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
	}
}
