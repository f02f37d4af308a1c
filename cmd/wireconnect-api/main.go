// README: Entry point; loads config, wires services, starts HTTP server and background schedulers.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"wireconnect/internal/config"
	httptransport "wireconnect/internal/http"
	"wireconnect/internal/infra"
	"wireconnect/internal/logger"
	"wireconnect/internal/maps"
	"wireconnect/internal/modules/assignment"
	"wireconnect/internal/modules/client"
	"wireconnect/internal/modules/job"
	"wireconnect/internal/modules/kyc"
	"wireconnect/internal/modules/matching"
	"wireconnect/internal/modules/pricing"
	"wireconnect/internal/modules/technician"
	"wireconnect/internal/notify"
	"wireconnect/internal/session"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	lg := logger.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer redisClient.Close()

	// Messaging is optional: without a broker URL the engine runs with no-op
	// notifier hooks.
	var notifier assignment.Notifier
	if cfg.AMQP.URL != "" {
		conn, ch, err := infra.NewAMQP(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			log.Fatalf("amqp init: %v", err)
		}
		defer conn.Close()
		notifier = notify.NewPublisher(ch, cfg.AMQP.Exchange, lg)
	}

	var geocoder job.Geocoder
	if cfg.Maps.APIKey != "" {
		g, err := maps.NewGeocodeService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
		geocoder = g
	}

	pricingSvc := pricing.NewService(pricing.NewStore(dbPool))

	jobStore := job.NewStore(dbPool)
	jobSvc := job.NewService(jobStore, geocoder, pricingSvc, lg)

	presence := matching.NewPresence(redisClient)
	ranker := matching.NewRanker(presence, cfg.Assign.RadiusKm)

	engine := assignment.NewEngine(jobStore, ranker, notifier, nil, cfg.Assign, lg)

	techSvc := technician.NewService(technician.NewStore(dbPool))
	clientSvc := client.NewService(client.NewStore(dbPool))
	kycSvc := kyc.NewService(kyc.NewStore(dbPool), techSvc, lg)
	sessions := session.NewStore(redisClient, cfg.Session.TTL)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Jobs:     jobSvc,
		Engine:   engine,
		Presence: presence,
		Clients:  clientSvc,
		Techs:    techSvc,
		KYC:      kycSvc,
		Sessions: sessions,
		Logger:   lg,
	})
	server := httptransport.NewServer(cfg.HTTP.Addr, router)

	go engine.RunExpirySweeper(ctx)

	go func() {
		lg.Info("listening", slog.String("addr", cfg.HTTP.Addr))
		if err := server.Run(); err != nil {
			lg.Error("http server", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	lg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		lg.Error("shutdown", slog.String("error", err.Error()))
	}
}
