package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"

	"mergington-be/internal/config"
	"mergington-be/internal/container"
	"mergington-be/internal/domain"
	"mergington-be/internal/repository"
	"mergington-be/internal/service"
)

const usage = "Usage: migrate [up|seed|drop|reset|status]"

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	store, err := container.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer store.Close()

	if err := run(ctx, os.Args[1], store.Repository, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, command string, repo repository.ActivityRepository, out io.Writer) error {
	switch command {
	case "up":
		if err := repo.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("failed to create tables: %w", err)
		}
		fmt.Fprintln(out, "✅ All tables created successfully")

	case "seed":
		seeded, err := service.Bootstrap(ctx, repo, domain.DefaultSeed, zap.NewNop())
		if err != nil {
			return fmt.Errorf("failed to seed data: %w", err)
		}
		if seeded {
			fmt.Fprintf(out, "✅ Seeded %d activities\n", len(domain.DefaultSeed))
		} else {
			fmt.Fprintln(out, "ℹ️  Activities already present, nothing seeded")
		}

	case "drop":
		if err := repo.DropSchema(ctx); err != nil {
			return fmt.Errorf("failed to drop tables: %w", err)
		}
		fmt.Fprintln(out, "✅ All tables dropped successfully")

	case "reset":
		if err := repo.DropSchema(ctx); err != nil {
			return fmt.Errorf("failed to drop tables: %w", err)
		}
		if _, err := service.Bootstrap(ctx, repo, domain.DefaultSeed, zap.NewNop()); err != nil {
			return fmt.Errorf("failed to reseed: %w", err)
		}
		fmt.Fprintln(out, "✅ Store reset to the default activities")

	case "status":
		return printStatus(ctx, repo, out)

	default:
		return fmt.Errorf("unknown command: %s\n%s", command, usage)
	}
	return nil
}

func printStatus(ctx context.Context, repo repository.ActivityRepository, out io.Writer) error {
	directory, err := repo.ListActivities(ctx)
	if err != nil {
		return fmt.Errorf("failed to read activities: %w", err)
	}

	names := make([]string, 0, len(directory))
	for name := range directory {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(out, "%d activities\n", len(names))
	for _, name := range names {
		details := directory[name]
		fmt.Fprintf(out, "  %-20s %3d/%-3d %s\n", name, len(details.Participants), details.MaxParticipants, details.Schedule)
	}
	return nil
}
