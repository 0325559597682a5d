// pirep_check validates PIREPs from the command line and prints the
// verdicts as JSON. Handy for staff spot checks without going through the
// chat adapter.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/dhawton/log4g"
	"github.com/joho/godotenv"

	"qrv_ops/internal/metadata"
	"qrv_ops/internal/simapi"
	"qrv_ops/internal/store"
	"qrv_ops/internal/validate"
)

var log = log4g.Category("pirep_check")

func main() {
	var (
		id      = flag.Int64("id", 0, "validate one PIREP by id (0 = all pending)")
		pretty  = flag.Bool("pretty", false, "indent the JSON output")
		partner = flag.String("partner", "", "partner route file (default PARTNER_ROUTES_PATH)")
	)
	flag.Parse()

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Error("Error loading .env file: " + err.Error())
		}
	}

	apiKey := os.Getenv("SIM_API_KEY")
	if apiKey == "" {
		log.Fatal("SIM_API_KEY is required")
	}

	ctx := context.Background()

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

	sim := simapi.New(apiKey, "")
	cache := metadata.New(sim, getenv("METADATA_CACHE_PATH", "metadata.db"))

	partnerPath := *partner
	if partnerPath == "" {
		partnerPath = getenv("PARTNER_ROUTES_PATH", "partner_routes.tsv")
	}
	partners := store.NewPartnerCatalog(partnerPath)

	engine := validate.NewEngine(sim, db, db, partners, cache)

	var pireps []store.PIREP
	if *id > 0 {
		p, err := db.PIREPByID(ctx, *id)
		if err != nil {
			log.Fatal("pirep lookup: " + err.Error())
		}
		if p == nil {
			log.Fatal(fmt.Sprintf("no PIREP with id %d", *id))
		}
		pireps = []store.PIREP{*p}
	} else {
		pireps, err = db.PendingPIREPs(ctx)
		if err != nil {
			log.Fatal("pending pireps: " + err.Error())
		}
		if len(pireps) == 0 {
			log.Info("No pending PIREPs")
			return
		}
	}

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	for _, p := range pireps {
		verdict := engine.Validate(ctx, p)
		if err := enc.Encode(verdict); err != nil {
			log.Fatal("encode verdict: " + err.Error())
		}
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
