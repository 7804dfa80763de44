package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sydney-stones/rfwidjet-server/internal/domain"
	"github.com/sydney-stones/rfwidjet-server/internal/usage"
)

func main() {
	var (
		idFlag     string
		apiKeyFlag string
		planFlag   string
	)

	flag.StringVar(&idFlag, "id", "", "merchant ID to update (UUID)")
	flag.StringVar(&apiKeyFlag, "api-key", "", "merchant API key to update")
	flag.StringVar(&planFlag, "plan", "starter", "plan to assign (starter, growth, scale)")
	flag.Parse()

	merchantID := strings.TrimSpace(idFlag)
	apiKey := strings.TrimSpace(apiKeyFlag)
	plan := domain.Plan(strings.TrimSpace(strings.ToLower(planFlag)))

	if merchantID == "" && apiKey == "" {
		exitWithError(errors.New("either -id or -api-key must be provided"))
	}
	switch plan {
	case domain.PlanStarter, domain.PlanGrowth, domain.PlanScale:
	default:
		exitWithError(fmt.Errorf("unsupported plan %q", plan))
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	query := `
UPDATE merchants
SET plan = $2,
    updated_at = NOW()
WHERE ($1 = id OR $1 = api_key)
RETURNING id, name, plan;
`
	selector := merchantID
	if selector == "" {
		selector = apiKey
	}

	var (
		updatedID   string
		updatedName string
		updatedPlan string
	)
	if err := pool.QueryRow(ctx, query, selector, plan).Scan(&updatedID, &updatedName, &updatedPlan); err != nil {
		exitWithError(fmt.Errorf("failed to update merchant plan: %w", err))
	}

	fmt.Printf("Merchant %s (%s) updated to plan %s\n", updatedID, updatedName, updatedPlan)
	fmt.Printf("included_quota=%d overage_rate_usd=%.2f\n", domain.Plan(updatedPlan).IncludedQuota(), usage.DefaultOverageRate)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
