package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"imputelab/internal/config"
	"imputelab/internal/container"
	"imputelab/internal/report"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	c, err := container.New(appConfig, container.Options{})
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ds, err := c.LoadDataset(ctx)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}

	rep, err := c.Experiment.Run(ctx, ds)
	if err != nil {
		log.Fatalf("Experiment failed: %v", err)
	}

	if err := report.PrintSummary(os.Stdout, rep); err != nil {
		log.Fatalf("Failed to print summary: %v", err)
	}

	if !appConfig.Output.RenderCharts {
		return
	}
	paths, err := c.Renderer(rep.RunID).RenderReport(rep)
	if err != nil {
		log.Fatalf("Failed to render charts: %v", err)
	}
	for _, p := range paths {
		log.Printf("Chart written: %s", p)
	}
}
