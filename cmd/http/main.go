package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"labreport-service/internal/app/config"
	"labreport-service/internal/app/delivery/http/middlewares"
	"labreport-service/internal/app/delivery/http/routers"
	"labreport-service/internal/app/drivers/database"
	"labreport-service/internal/app/drivers/logger"
	"labreport-service/internal/app/drivers/messaging"
	"labreport-service/internal/app/drivers/storage"
	"labreport-service/internal/app/services/core/reports"
	"labreport-service/internal/app/services/core/session"
	"labreport-service/internal/app/services/fhir_spark/diagnostic_reports"
	"labreport-service/internal/app/services/fhir_spark/encounters"
	"labreport-service/internal/app/services/fhir_spark/medication_requests"
	"labreport-service/internal/app/services/fhir_spark/observations"
	"labreport-service/internal/app/services/fhir_spark/patients"
	"labreport-service/internal/app/services/fhir_spark/practitioner_roles"
	"labreport-service/internal/app/services/fhir_spark/service_requests"
	"labreport-service/internal/app/services/shared/ingestqueue"
	"labreport-service/internal/app/services/shared/redis"
	storageservice "labreport-service/internal/app/services/shared/storage"

	"github.com/go-chi/chi/v5"
)

func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	zapLogger := logger.NewZapLogger(driverConfig, internalConfig)

	location, err := time.LoadLocation(internalConfig.App.Timezone)
	if err != nil {
		log.Fatalf("Error loading location: %v", err)
	}
	time.Local = location

	mongoClient := database.NewMongoDB(driverConfig)
	redisClient := database.NewRedisClient(driverConfig)
	rabbitMQConn := messaging.NewRabbitMQ(driverConfig)
	chiRouter := chi.NewRouter()

	bootstrap := &config.Bootstrap{
		Router:         chiRouter,
		Redis:          redisClient,
		MongoDB:        mongoClient.Database(internalConfig.MongoDB.DbName),
		Logger:         zapLogger,
		RabbitMQ:       rabbitMQConn,
		InternalConfig: internalConfig,
		DriverConfig:   driverConfig,
	}

	bootstrapingTheApp(bootstrap)

	server := &http.Server{
		Addr:    internalConfig.App.Port,
		Handler: chiRouter,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	log.Println("Waiting for pending requests that already received by server to be processed..")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(internalConfig.App.ShutdownTimeoutInSeconds),
	)
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	if err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	err = bootstrap.Shutdown(shutdownCtx)
	if err != nil {
		log.Fatalf("Error while closing application dependencies: %v", err)
	}

	log.Println("Server exiting")
}

func bootstrapingTheApp(bootstrap *config.Bootstrap) {
	// Redis
	redisRepository := redis.NewRedisRepository(bootstrap.Redis)

	// Session
	sessionService := session.NewSessionService(redisRepository)

	// Middlewares
	mw := middlewares.NewMiddlewares(bootstrap.Logger, sessionService, bootstrap.InternalConfig)

	// FHIR clients
	fhirBaseUrl := bootstrap.InternalConfig.FHIR.BaseUrl + "/"
	patientFhirClient := patients.NewPatientFhirClient(fhirBaseUrl, bootstrap.Logger)
	observationFhirClient := observations.NewObservationFhirClient(fhirBaseUrl, bootstrap.Logger)
	encounterFhirClient := encounters.NewEncounterFhirClient(fhirBaseUrl)
	diagnosticReportFhirClient := diagnostic_reports.NewDiagnosticReportFhirClient(fhirBaseUrl)
	serviceRequestFhirClient := service_requests.NewServiceRequestFhirClient(fhirBaseUrl)
	medicationRequestFhirClient := medication_requests.NewMedicationRequestFhirClient(fhirBaseUrl)
	practitionerRoleFhirClient := practitioner_roles.NewPractitionerRoleFhirClient(fhirBaseUrl)

	// Ingestion journal
	journalRepository := reports.NewIngestionJournalMongoRepository(
		bootstrap.MongoDB.Client(),
		bootstrap.InternalConfig.MongoDB.DbName,
	)

	// Report event publisher
	eventPublisher, err := ingestqueue.NewService(
		bootstrap.RabbitMQ,
		bootstrap.Logger,
		bootstrap.InternalConfig.RabbitMQ.ReportEventQueue,
	)
	if err != nil {
		log.Fatalf("Failed to initialize report event publisher: %v", err)
	}

	// Object storage
	minioStorage := storageservice.NewMinioStorage(
		storage.NewMinio(bootstrap.DriverConfig),
		bootstrap.InternalConfig.Minio.BucketName,
		bootstrap.DriverConfig.Minio.UseSSL,
	)

	// Report
	reportUsecase := reports.NewReportUsecase(
		patientFhirClient,
		observationFhirClient,
		encounterFhirClient,
		diagnosticReportFhirClient,
		serviceRequestFhirClient,
		medicationRequestFhirClient,
		practitionerRoleFhirClient,
		journalRepository,
		eventPublisher,
		minioStorage,
		bootstrap.InternalConfig,
		bootstrap.Logger,
	)
	reportController := reports.NewReportController(bootstrap.Logger, reportUsecase, sessionService)

	routers.SetupRoutes(bootstrap.Router, bootstrap.InternalConfig, mw, reportController)
}
