package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	firebase "firebase.google.com/go/v4"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"

	"github.com/expensyapp/expensy/internal/config"
	"github.com/expensyapp/expensy/internal/database"
	"github.com/expensyapp/expensy/internal/docstore"
	"github.com/expensyapp/expensy/internal/ledger"
	"github.com/expensyapp/expensy/internal/mailer"
	"github.com/expensyapp/expensy/internal/splitexpense"
	"github.com/expensyapp/expensy/pkg/logging"
	mw "github.com/expensyapp/expensy/pkg/middleware"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	logging.Setup()

	cfg := config.Load()
	ctx := context.Background()

	// Relational ledger for base expense entries
	db, err := database.NewPostgresConnection(cfg.LedgerDatabaseURL)
	if err != nil {
		slog.Error("failed to connect to ledger database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to ledger database")

	// Firestore document store for split expenses and contacts
	fbApp, err := firebase.NewApp(ctx,
		&firebase.Config{ProjectID: cfg.FirestoreProjectID},
		option.WithCredentialsFile(cfg.FirebaseCredentialsFile),
	)
	if err != nil {
		slog.Error("failed to initialize firebase app", "error", err)
		os.Exit(1)
	}
	fsClient, err := fbApp.Firestore(ctx)
	if err != nil {
		slog.Error("failed to initialize firestore client", "error", err)
		os.Exit(1)
	}
	defer fsClient.Close()
	slog.Info("connected to firestore", "project", cfg.FirestoreProjectID)

	docs := docstore.NewFirestore(fsClient)
	books := ledger.NewRepository(db)
	mail := mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.EmailFrom)

	manager := splitexpense.NewManager(docs, books, mail, splitexpense.Options{
		SendDelay: cfg.NotifySendDelay,
		StatusTTL: cfg.NotifyStatusTTL,
	})
	defer manager.Close()

	splitHandler := splitexpense.NewHandler(manager)

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Identity)

		r.Mount("/splits", splitHandler.Routes())
		r.Mount("/contacts", splitHandler.ContactRoutes())
	})

	slog.Info("server starting", "port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
