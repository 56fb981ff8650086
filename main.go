package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"clinicacrm/cache"
	"clinicacrm/database"
	"clinicacrm/handlers"
	"clinicacrm/models"
	"clinicacrm/monitoring"
	repository "clinicacrm/repositories"
	routes "clinicacrm/routes"
	services "clinicacrm/services"
	"clinicacrm/utils"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		username := os.Getenv("MONGO_USERNAME")
		password := os.Getenv("MONGO_PASSWORD")
		cluster := os.Getenv("MONGO_CLUSTER")
		appName := os.Getenv("MONGO_APP_NAME")
		if username == "" || password == "" || cluster == "" || appName == "" {
			log.Fatal("Missing required MongoDB environment variables")
		}
		mongoURI = fmt.Sprintf("mongodb+srv://%s:%s@%s/?retryWrites=true&w=majority&appName=%s",
			username, password, cluster, appName)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("Missing JWT_SECRET environment variable")
	}

	if err := utils.InitSentry(os.Getenv("SENTRY_DSN")); err != nil {
		log.Printf("Warning: sentry disabled: %v", err)
	}
	monitoring.Init()

	client, err := database.Connect(mongoURI)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := client.Disconnect(context.TODO()); err != nil {
			log.Printf("Failed to disconnect from MongoDB: %v", err)
		}
	}()
	fmt.Println("Successfully connected to MongoDB!")

	dbName := os.Getenv("MONGO_DATABASE")
	if dbName == "" {
		dbName = "clinica_crm"
	}
	db := client.Database(dbName)

	fmt.Println("Creating database indexes...")
	if err := database.CreateIndexes(db); err != nil {
		log.Printf("Warning: failed to create indexes: %v", err)
	}

	// The fallback store is optional: without redis the service simply has
	// nowhere to degrade to and remote failures surface as errors.
	fallback := cache.NewFallbackStore(nil)
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		fb, err := cache.NewFallbackStoreFromURL(redisURL)
		if err != nil {
			log.Printf("Warning: fallback store disabled: %v", err)
		} else {
			fallback = fb
			defer fallback.Close()
			fmt.Println("Fallback store connected")
		}
	}

	repo := repository.NewDatastoreRepository(db)
	dataService := services.NewDataService(repo, fallback)
	migrationService := services.NewMigrationService(repo)
	authService := services.NewAuthService(dataService, jwtSecret)

	handler := routes.SetupRoutes(routes.Handlers{
		Auth:           handlers.NewAuthHandler(authService),
		Leads:          handlers.NewLeadHandler(dataService),
		Medicos:        handlers.NewReferenceHandler(dataService, models.CollectionMedicos, "Medico"),
		Especialidades: handlers.NewReferenceHandler(dataService, models.CollectionEspecialidades, "Especialidade"),
		Procedimentos:  handlers.NewReferenceHandler(dataService, models.CollectionProcedimentos, "Procedimento"),
		Tags:           handlers.NewTagHandler(dataService),
		Migrations:     handlers.NewMigrationHandler(migrationService),
	}, jwtSecret)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	fmt.Printf("Server starting on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
