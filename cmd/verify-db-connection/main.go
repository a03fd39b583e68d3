package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"recovery-backend/internal/app"
	"recovery-backend/internal/config"
	"recovery-backend/internal/db"
	"recovery-backend/internal/models"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	fmt.Println("🔍 Verifying document store connection...")
	fmt.Println(strings.Repeat("=", 60))

	_ = godotenv.Load()

	cfg, err := config.LoadConfig("")
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	logger := app.NewLogger(config.LogConfig{Level: "warn", Format: cfg.Log.Format})

	fmt.Printf("📋 DATABASE_URL:  %s\n", setOrNot(cfg.Database.URLSet()))
	fmt.Printf("📋 DATABASE_NAME: %s\n", setOrNot(cfg.Database.NameSet()))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeoutDuration())
	gw := db.Connect(ctx, cfg.Database, logger)
	cancel()
	defer gw.Close(context.Background())

	if !gw.Available() {
		fmt.Printf("❌ Document store not available: %v\n", gw.Cause())
		os.Exit(1)
	}
	fmt.Printf("✅ Connected to %s backend\n", gw.BackendName())

	names, err := gw.ListCollectionNames(context.Background())
	if err != nil {
		fmt.Printf("❌ Failed to list collections: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("📋 Collections (%d): %s\n", len(names), strings.Join(names, ", "))

	collection := models.MustCollectionFor(models.EntityRecoveryRequest)
	docs, err := gw.Find(context.Background(), collection, nil, 1)
	if err != nil {
		fmt.Printf("❌ Failed to read %s: %v\n", collection, err)
		os.Exit(1)
	}
	if len(docs) == 0 {
		fmt.Printf("ℹ️  %s is empty\n", collection)
	} else {
		fmt.Printf("✅ Latest %s id: %v\n", collection, docs[0][models.FieldID])
	}
}

func setOrNot(set bool) string {
	if set {
		return "Set"
	}
	return "Not Set"
}
