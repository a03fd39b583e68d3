package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"recovery-backend/internal/app"
	"recovery-backend/internal/config"
	"recovery-backend/internal/db"
	"recovery-backend/internal/models"
	"recovery-backend/internal/repository"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	var limit int
	var urgency string
	var asJSON bool

	flag.IntVar(&limit, "limit", 20, "Maximum number of requests to print")
	flag.StringVar(&urgency, "urgency", "", "Only requests of this urgency (Low, Medium, High, Critical)")
	flag.BoolVar(&asJSON, "json", false, "Print requests as JSON lines")
	flag.Parse()

	if urgency != "" && !isUrgency(urgency) {
		fmt.Printf("❌ Unknown urgency %q, allowed: %s\n", urgency, strings.Join(models.Urgencies, ", "))
		os.Exit(2)
	}

	fmt.Println("📋 Recovery Requests")
	fmt.Println(strings.Repeat("=", 60))

	_ = godotenv.Load()
	cfg, err := config.LoadConfig("")
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	logger := app.NewLogger(config.LogConfig{Level: "warn", Format: cfg.Log.Format})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeoutDuration())
	gw := db.Connect(ctx, cfg.Database, logger)
	cancel()
	if !gw.Available() {
		fmt.Printf("❌ Document store not available: %v\n", gw.Cause())
		os.Exit(1)
	}

	repo := repository.NewRecoveryRequestRepository(gw)
	var requests []*models.RecoveryRequest
	if urgency != "" {
		requests, err = repo.FindByUrgency(context.Background(), models.Urgency(urgency), limit)
	} else {
		requests, err = repo.List(context.Background(), limit)
	}
	_ = gw.Close(context.Background())
	if err != nil {
		fmt.Printf("❌ Failed to list recovery requests: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	for _, r := range requests {
		if asJSON {
			_ = enc.Encode(r)
			continue
		}
		fmt.Printf("%s  %s  %-8s  %-10s  %-18s  %s\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Urgency, r.WalletType, r.IncidentType, r.FullName)
	}
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Total: %d\n", len(requests))
}

func isUrgency(v string) bool {
	for _, u := range models.Urgencies {
		if u == v {
			return true
		}
	}
	return false
}
