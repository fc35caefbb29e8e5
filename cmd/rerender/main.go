package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"starchart/config"
	"starchart/services"
	"starchart/storage"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
)

// RerenderConfig enthält nur die Ablage- und Layout-Parameter; eine Datenbank
// wird nicht benötigt.
type RerenderConfig struct {
	config.Storage
	config.Report
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: rerender YYYYMMDD [YYYYMMDD...]")
		os.Exit(2)
	}
	log.Println("Starte Neuaufbau der Reports...")

	_ = godotenv.Load()
	var cfg RerenderConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Fehler beim Laden der Konfiguration: %v", err)
	}

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Fehler beim Öffnen der Ablage: %v", err)
	}

	layout, err := services.NewReportLayout(cfg.Report)
	if err != nil {
		log.Fatalf("Ungültiges Report-Layout: %v", err)
	}
	reports := services.NewReportService(store, layout, zap.NewNop())

	failed := 0
	for _, date := range os.Args[1:] {
		if _, err := services.ParseChartDate(date); err != nil {
			log.Printf("Überspringe %s: %v", date, err)
			failed++
			continue
		}
		report, link, err := reports.Publish(ctx, date)
		if err != nil {
			log.Printf("Fehler beim Rendern von %s: %v", date, err)
			failed++
			continue
		}
		log.Printf("Report %s neu erzeugt (%s, Platz %d)", date, link, report.FocusRank)
	}
	if failed > 0 {
		log.Fatalf("%d von %d Reports fehlgeschlagen", failed, len(os.Args)-1)
	}
	log.Println("Neuaufbau erfolgreich abgeschlossen.")
}
