/*
serve.go - Long-running ingestion server

STARTUP SEQUENCE:
  1. Load .env (if present) and the YAML configuration
  2. Open the ingestion channel; start the engine consumer
  3. Start the chi HTTP listener (one producer handle)
  4. Optionally start the Kafka source (its own producer handle)

SHUTDOWN (SIGINT/SIGTERM):
  1. Stop accepting new connections (30s drain)
  2. Stop the Kafka source, close every producer handle
  3. Wait for the engine to finish the remaining buffered records
  4. Print the final report on stdout, optionally export to SQLite

  The report is also available over GET /api/report once the stream has
  closed; before that the endpoint answers 409.
*/
package cmd

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/PawelBis/transaction-system/api"
	"github.com/PawelBis/transaction-system/config"
	"github.com/PawelBis/transaction-system/ingest"
	"github.com/PawelBis/transaction-system/ledger"
	"github.com/PawelBis/transaction-system/report"
	"github.com/PawelBis/transaction-system/store/sqlite"
)

var serveConfigPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Accept transactions over HTTP (and optionally Kafka) until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveConfigPath, "config", "config.yaml",
		"Path to the YAML configuration file")
}

func runServe() error {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return err
	}

	ch := ledger.NewChannel(cfg.Buffer)
	engine := ledger.NewEngine(ledger.WithOnReject(func(rej ledger.Rejection) {
		log.Printf("rejected %s tx %d (client %d): %v",
			rej.Record.Kind, rej.Record.Tx, rej.Record.Client, rej.Err)
	}))

	// The engine publishes its final snapshot exactly once, after
	// end-of-stream. Until then the API reports the stream as open.
	var (
		mu    sync.Mutex
		final []ledger.AccountSnapshot
		done  bool
	)
	engineDone := make(chan struct{})
	go func() {
		engine.Run(context.Background(), ch)
		mu.Lock()
		final = engine.Snapshot()
		done = true
		mu.Unlock()
		close(engineDone)
	}()

	httpProducer, err := ch.Producer()
	if err != nil {
		return err
	}

	handler := api.NewHandler(httpProducer, func() ([]ledger.AccountSnapshot, bool) {
		mu.Lock()
		defer mu.Unlock()
		return final, done
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Kafka producer, if configured.
	kafkaCtx, stopKafka := context.WithCancel(context.Background())
	defer stopKafka()
	kafkaDone := make(chan struct{})
	if cfg.Kafka.Enabled {
		kafkaProducer, err := ch.Producer()
		if err != nil {
			return err
		}
		source := ingest.NewKafkaSource(ingest.KafkaConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
		})
		go func() {
			defer close(kafkaDone)
			defer kafkaProducer.Close()
			defer source.Close()
			if err := source.Stream(kafkaCtx, kafkaProducer, func(err error) {
				log.Printf("skipping kafka message: %v", err)
			}); err != nil {
				log.Printf("kafka source stopped: %v", err)
			}
		}()
		log.Printf("Kafka source consuming %q from %v", cfg.Kafka.Topic, cfg.Kafka.Brokers)
	} else {
		close(kafkaDone)
	}

	go func() {
		log.Printf("Ingestion listener on :%d", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down, closing the stream...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}

	stopKafka()
	<-kafkaDone
	httpProducer.Close()
	<-engineDone

	log.Println("Stream closed, emitting report")
	if err := report.WriteCSV(os.Stdout, final); err != nil {
		return err
	}
	if cfg.ReportDB != "" {
		store, err := sqlite.New(cfg.ReportDB)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.SaveReport(context.Background(), final); err != nil {
			return err
		}
	}
	return nil
}
