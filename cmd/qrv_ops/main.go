package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/dhawton/log4g"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"qrv_ops/internal/api"
	"qrv_ops/internal/audit"
	"qrv_ops/internal/metadata"
	"qrv_ops/internal/schedule"
	"qrv_ops/internal/simapi"
	"qrv_ops/internal/store"
	"qrv_ops/internal/tracker"
	"qrv_ops/internal/uisink"
	"qrv_ops/internal/validate"
)

var log = log4g.Category("main")

func main() {
	intro := figure.NewFigure("QRV OPS", "", false).Slicify()
	for i := 0; i < len(intro); i++ {
		log.Info(intro[i])
	}

	if _, err := os.Stat(".env"); err == nil {
		log.Info("Found .env, loading")
		if err := godotenv.Load(); err != nil {
			log.Error("Error loading .env file: " + err.Error())
		}
	}
	if getenv("DEBUG", "") != "" {
		log4g.SetLogLevel(log4g.DEBUG)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	apiKey := os.Getenv("SIM_API_KEY")
	if apiKey == "" {
		log.Fatal("SIM_API_KEY is required")
	}
	sim := simapi.New(apiKey, "")

	log.Info("Connecting to database")
	dbPort, _ := strconv.Atoi(getenv("DB_PORT", "5432"))
	db, err := store.Open(ctx, store.Config{
		Host:     getenv("DB_HOST", "localhost"),
		Port:     dbPort,
		Database: getenv("DB_NAME", "qrv"),
		User:     getenv("DB_USER", "qrv"),
		Password: os.Getenv("DB_PASSWORD"),
	})
	if err != nil {
		log.Fatal("database: " + err.Error())
	}
	defer db.Close()

	cache := metadata.New(sim, getenv("METADATA_CACHE_PATH", "metadata.db"))
	if err := cache.LoadAircraft(ctx); err != nil {
		log.Warning("aircraft catalog not loaded yet: " + err.Error())
	}

	partners := store.NewPartnerCatalog(getenv("PARTNER_ROUTES_PATH", "partner_routes.tsv"))

	var sink uisink.Sink
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		ns, err := uisink.ConnectNATS(natsURL)
		if err != nil {
			log.Fatal("nats: " + err.Error())
		}
		defer ns.Close()
		sink = ns
	} else {
		log.Warning("NATS_URL not set, using log sink")
		sink = uisink.NewLogSink()
	}

	engine := validate.NewEngine(sim, db, db, partners, cache)

	channelID := getenv("FLIGHT_TRACKER_CHANNEL_ID", "")
	trk := tracker.New(sim, db, db, cache, sink, channelID)

	var archive *audit.Archive
	if chHost := os.Getenv("CLICKHOUSE_HOST"); chHost != "" {
		chPort, _ := strconv.Atoi(getenv("CLICKHOUSE_PORT", "9000"))
		archive, err = audit.Open(ctx, audit.Config{
			Host:     chHost,
			Port:     chPort,
			Database: getenv("CLICKHOUSE_DB", "qrv"),
			User:     getenv("CLICKHOUSE_USER", "default"),
			Password: os.Getenv("CLICKHOUSE_PASSWORD"),
		})
		if err != nil {
			log.Error("clickhouse unavailable, archive disabled: " + err.Error())
			archive = nil
		} else {
			defer archive.Close()
			if err := archive.CreateSchema(ctx); err != nil {
				log.Error("clickhouse schema: " + err.Error())
			}
			trk.SetFinalizer(archive)
		}
	}

	log.Info("Starting flight tracker")
	tickSeconds, _ := strconv.Atoi(getenv("TRACKER_INTERVAL_SECONDS", "120"))
	trackerTask := schedule.New("flight-tracker", time.Duration(tickSeconds)*time.Second, trk.RunTick)
	if err := trackerTask.Start(ctx); err != nil {
		log.Fatal(err.Error())
	}
	defer trackerTask.Stop()

	log.Info("Creating cron jobs")
	jobs := cron.New()
	jobs.AddFunc("@every 10m", func() { sweepPendingPIREPs(ctx, db, engine, sink, archive, channelID) })
	jobs.AddFunc("@every 24h", func() {
		if err := cache.LoadAircraft(ctx); err != nil {
			log.Warning("catalog refresh: " + err.Error())
		}
	})
	jobs.Start()
	defer jobs.Stop()

	apiPort, _ := strconv.Atoi(getenv("API_PORT", "8080"))
	apiKeys := splitKeys(os.Getenv("API_KEYS"))
	server := api.NewServer(trk, db, engine, api.Config{
		Port:        apiPort,
		AuthEnabled: len(apiKeys) > 0,
		APIKeys:     apiKeys,
	})
	go func() {
		log.Info(fmt.Sprintf("Ops API listening on :%d", apiPort))
		if err := server.Run(); err != nil {
			log.Fatal("ops api: " + err.Error())
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("Shutting down")
}

// sweepPendingPIREPs validates every pending report and posts the verdicts.
func sweepPendingPIREPs(ctx context.Context, db *store.DB, engine *validate.Engine, sink uisink.Sink, archive *audit.Archive, channelID string) {
	pending, err := db.PendingPIREPs(ctx)
	if err != nil {
		log.Error("pending pireps: " + err.Error())
		return
	}
	if len(pending) == 0 {
		return
	}
	log.Info(fmt.Sprintf("Validating %d pending PIREPs", len(pending)))
	for i, p := range pending {
		if i > 0 {
			select {
			case <-time.After(300 * time.Millisecond):
			case <-ctx.Done():
				return
			}
		}
		verdict := engine.Validate(ctx, p)
		report := validate.Report(verdict)
		report.ChannelID = channelID
		if err := sink.PostVerdict(ctx, report); err != nil {
			log.Error(fmt.Sprintf("pirep %d: post verdict: %s", p.ID, err.Error()))
		}
		if archive != nil {
			archive.WriteVerdict(ctx, verdict)
		}
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitKeys(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
