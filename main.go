package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crm-backend/internal/auth"
	"crm-backend/internal/config"
	"crm-backend/internal/database"
	"crm-backend/internal/models"
	"crm-backend/internal/routes"
	"crm-backend/internal/seed"
	"crm-backend/internal/services"
	"crm-backend/internal/storage"
)

type stores struct {
	users     database.Table[models.User]
	customers database.Table[models.Customer]
	closer    io.Closer
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func openStores(ctx context.Context, cfg config.Config) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StoreBadger:
		db, err := database.OpenBadger(cfg.BadgerDir)
		if err != nil {
			return nil, err
		}
		if db.InMemory {
			log.Println("[STORE] [INFO] badger running in memory; data is lost on exit")
		} else {
			log.Println("[STORE] [INFO] badger opened at:", cfg.BadgerDir)
		}
		return &stores{
			users:     database.NewBadgerTable[models.User](db, models.UsersTable),
			customers: database.NewBadgerTable[models.Customer](db, models.CustomersTable),
			closer:    db,
		}, nil
	default:
		client, err := database.Connect(ctx, cfg.MongoURI, cfg.StoreTimeout)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.DBName)
		log.Println("[STORE] [INFO] MongoDB connected to:", db.Name())

		if err := database.EnsureIndexes(db, models.UsersTable, models.CustomersTable); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return &stores{
			users:     database.NewMongoTable[models.User](db, models.UsersTable, cfg.StoreTimeout),
			customers: database.NewMongoTable[models.Customer](db, models.CustomersTable, cfg.StoreTimeout),
			closer: closerFunc(func() error {
				ctx, cancel := context.WithTimeout(context.Background(), cfg.StoreTimeout)
				defer cancel()
				return client.Disconnect(ctx)
			}),
		}, nil
	}
}

func openUploader(ctx context.Context, cfg config.Config) (storage.Uploader, string, error) {
	if cfg.StorageDriver == config.StorageLocal {
		log.Println("[UPLOAD] [INFO] storing uploads under:", cfg.UploadDir)
		return storage.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL), cfg.UploadDir, nil
	}

	s3Store, err := storage.NewS3Store(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.StoreTimeout)
	if err != nil {
		return nil, "", err
	}
	log.Println("[UPLOAD] [INFO] storing uploads in bucket:", cfg.S3Bucket)
	return s3Store, "", nil
}

func main() {
	seedOnly := flag.Bool("seed", false, "replace stored data with demo records and exit")
	flag.Parse()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("[CONFIG] [ERROR] ", err)
	}

	ctx := context.Background()
	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatal("[STORE] [ERROR] ", err)
	}
	defer func() {
		if err := st.closer.Close(); err != nil {
			log.Println("[STORE] [ERROR] close failed:", err)
		}
	}()

	if *seedOnly {
		if err := seed.Run(ctx, st.users, st.customers, time.Now()); err != nil {
			log.Println("[SEED] [ERROR]", err)
		}
		return
	}

	uploader, publicDir, err := openUploader(ctx, cfg)
	if err != nil {
		log.Println("[UPLOAD] [ERROR]", err)
		return
	}

	issuer := auth.NewIssuer(cfg.JWTSecret)
	router := routes.SetupRouter(routes.Deps{
		Users:     services.NewUserService(st.users, issuer, uploader),
		Customers: services.NewCustomerService(st.customers, uploader),
		Issuer:    issuer,
		PublicDir: publicDir,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("[SERVER] [INFO] listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[SERVER] [ERROR] ListenAndServe: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("[SERVER] [INFO] shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("[SERVER] [ERROR] forced shutdown:", err)
	}
	log.Println("[SERVER] [INFO] server stopped")
}
