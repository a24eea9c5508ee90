package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/auth"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/config"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/documents"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/documents/cimjson"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/documents/cimxml"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/documents/ebix"
	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/observability/metrics"
	outgoingapp "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/outgoing/application"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/outgoing/infrastructure/natsbus"
	outgoingpostgres "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/outgoing/infrastructure/postgres"
	outgoinghttp "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/outgoing/interfaces/http"
	resultspostgres "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/results/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)

	registry := documents.NewRegistry(
		cimxml.NewAggregatedMeasureDataWriter(),
		cimxml.NewWholesaleServicesWriter(),
		cimxml.NewRejectAggregatedMeasureDataWriter(),
		cimxml.NewRejectWholesaleSettlementWriter(),
		cimjson.NewAggregatedMeasureDataWriter(),
		cimjson.NewWholesaleServicesWriter(),
		cimjson.NewRejectAggregatedMeasureDataWriter(),
		cimjson.NewRejectWholesaleSettlementWriter(),
		ebix.NewAggregatedMeasureDataWriter(),
		ebix.NewWholesaleServicesWriter(),
		ebix.NewReminderWriter(),
	)

	opts := []outgoingapp.ServiceOption{outgoingapp.WithLogger(logger)}
	if cfg.NATSURL != "" {
		notifier, err := natsbus.Connect(cfg.NATSURL, logger)
		if err != nil {
			logger.Fatalf("nats connect error: %v", err)
		}
		defer notifier.Close()
		opts = append(opts, outgoingapp.WithNotifier(notifier))
	}

	service := outgoingapp.NewService(
		outgoingpostgres.NewMessageStore(db),
		outgoingpostgres.NewBundleStore(db),
		outgoingpostgres.NewArchiveStore(db),
		registry,
		opts...,
	)

	sender, err := market.NewActorNumber(cfg.SenderNumber)
	if err != nil {
		logger.Fatalf("sender number error: %v", err)
	}
	poller, err := outgoingapp.NewPoller(
		service,
		resultspostgres.NewRunStore(db),
		sender,
		cfg.SegmentInterval.Std(),
		cfg.SegmentBatch,
		logger,
	)
	if err != nil {
		logger.Fatalf("poller error: %v", err)
	}
	go poller.Run(context.Background())

	handler, err := outgoinghttp.NewHandler(service)
	if err != nil {
		logger.Fatalf("handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/peek/", handler)
	mux.Handle("/api/v1/dequeue/", handler)
	mux.Handle("/api/v1/bundles/", handler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
