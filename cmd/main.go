/**
 * @description
 * This is the main entry point for the AMS connector. It is responsible for
 * initializing all components of the service: configuration, the AMS HTTP
 * client, the job-queue subscriptions for the validation and settlement
 * workers, and the synchronous HTTP surface. It wires everything together and
 * starts the service.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - internal/api, internal/app, internal/config: Internal packages for the service.
 * - pkg/amsclient: Client for the AMS HTTP API.
 * - pkg/jobqueue: AMQP-backed job-queue contract.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/payflow/ams-fineract-connector/internal/api"
	"github.com/payflow/ams-fineract-connector/internal/app"
	"github.com/payflow/ams-fineract-connector/internal/config"
	"github.com/payflow/ams-fineract-connector/pkg/amsclient"
	"github.com/payflow/ams-fineract-connector/pkg/jobqueue"
)

func main() {
	// Load application configuration from environment variables.
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}
	if cfg.AMSLocalEnabled && cfg.AMSBaseURL == "" {
		log.Fatalf("level=fatal component=bootstrap msg=\"AMS base url must be configured when the integration is enabled\" env=AMS_BASE_URL")
	}

	log.Printf("level=info component=bootstrap msg=\"starting ams connector\" ams=%s ams_enabled=%t port=%s", cfg.AMSName, cfg.AMSLocalEnabled, cfg.ServerPort)

	// Initialize the client for the AMS HTTP API.
	amsClient := amsclient.NewClient(amsclient.Config{
		BaseURL:           cfg.AMSBaseURL,
		ValidationPath:    cfg.AMSValidationPath,
		ConfirmationPath:  cfg.AMSConfirmationPath,
		ClientDetailsPath: cfg.AMSClientDetailsPath,
		TenantID:          cfg.AMSTenantID,
		Timeout:           time.Duration(cfg.AMSTimeoutMs) * time.Millisecond,
	})

	// Initialize the core pipeline service and the worker harness.
	pipeline := app.NewService(amsClient)
	workers := app.NewWorkers(pipeline, cfg.AMSLocalEnabled)

	// Connect to the orchestrator's job queue and subscribe both workers.
	queueClient, err := jobqueue.NewClient(cfg.RabbitMQURL, cfg.JobQueuePrefix, cfg.JobCompletionExchange)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"job queue connection failed\" err=%v", err)
	}
	defer queueClient.Close()
	log.Println("level=info component=bootstrap msg=\"job queue connected\"")

	if err := queueClient.Subscribe(app.ValidationJobType(cfg.AMSName), cfg.WorkerMaxJobs, workers.HandleValidationJob); err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"validation worker subscribe failed\" err=%v", err)
	}
	if err := queueClient.Subscribe(app.SettlementJobType(cfg.AMSName), cfg.WorkerMaxJobs, workers.HandleSettlementJob); err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"settlement worker subscribe failed\" err=%v", err)
	}

	// Set up the HTTP router for the synchronous validate surface.
	handlers := api.NewPayBillHandlers(pipeline, cfg.AMSName, cfg.AMSLocalEnabled)
	router := api.Routes(handlers, cfg.InternalAPIKey)

	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("level=info component=http msg=\"server listening\" addr=%s", serverAddr)

	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=http msg=\"server stopped unexpectedly\" err=%v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("level=info component=http msg=\"shutdown started\"")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=http msg=\"shutdown failed\" err=%v", err)
	}

	log.Println("level=info component=http msg=\"shutdown complete\"")
}
