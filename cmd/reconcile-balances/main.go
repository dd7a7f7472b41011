package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bsm/redislock"
	"github.com/stockflow/inventory_backend/config"
	"github.com/stockflow/inventory_backend/models"
	"github.com/stockflow/inventory_backend/utils"
)

// Backfill tool: runs the aggregation pass over every counterparty so
// the stored CurrentCredit/CurrentPayable fields match the unpaid
// transaction records. Safe to re-run; one instance at a time when
// redis is configured.
func main() {
	businessID := flag.String("business-id", "", "business id (uuid); empty runs all businesses")
	flag.Parse()

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}

	ctx := context.Background()

	if locker := config.GetRedisLock(); locker != nil {
		lock, err := locker.Obtain(ctx, "lock:reconcile-balances", 10*time.Minute, nil)
		if err == redislock.ErrNotObtained {
			fmt.Fprintln(os.Stderr, "another reconcile run is in progress")
			os.Exit(1)
		} else if err != nil {
			fmt.Fprintf(os.Stderr, "could not obtain lock: %v\n", err)
			os.Exit(1)
		}
		defer lock.Release(ctx)
	}

	// the business listing runs across tenants
	rootCtx := utils.SetSkipTenantScopeInContext(ctx, true)

	var businessIds []string
	if strings.TrimSpace(*businessID) != "" {
		var biz models.Business
		if err := db.WithContext(rootCtx).Where("id = ?", *businessID).First(&biz).Error; err != nil {
			fmt.Fprintf(os.Stderr, "business not found: %v\n", err)
			os.Exit(1)
		}
		businessIds = []string{biz.ID}
	} else {
		if err := db.WithContext(rootCtx).Model(&models.Business{}).Pluck("id", &businessIds).Error; err != nil {
			fmt.Fprintf(os.Stderr, "listing businesses failed: %v\n", err)
			os.Exit(1)
		}
	}

	exitCode := 0
	for _, id := range businessIds {
		bizCtx := utils.SetBusinessIdInContext(ctx, id)
		summary, err := models.ReconcileAllCounterparties(bizCtx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "business %s: %v\n", id, err)
			exitCode = 1
			continue
		}
		fmt.Printf("business %s: %d clients, %d suppliers reconciled (%d errors)\n",
			id, summary.ClientsProcessed, summary.SuppliersProcessed, summary.Errors)
		if summary.Errors > 0 {
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}
