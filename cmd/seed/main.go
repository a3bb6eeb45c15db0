// Command seed loads or erases the reference catalog and a demo account.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	authdomain "propertyhub/internal/auth/domain"
	authRepo "propertyhub/internal/auth/repository"
	propertyRepo "propertyhub/internal/property/repository"
	"propertyhub/pkg/config"
	"propertyhub/pkg/database"

	"github.com/spf13/pflag"
	"gorm.io/gorm"
)

const (
	demoName     = "Demo Seller"
	demoEmail    = "demo@propertyhub.local"
	demoPassword = "password"
)

func main() {
	flagSet := pflag.NewFlagSet("seed", pflag.ContinueOnError)
	importData := flagSet.BoolP("import", "i", false, "create tables and load categories, prices and the demo account")
	eraseData := flagSet.BoolP("erase", "e", false, "drop every table")
	flagSet.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: seed [--import | --erase]")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}
	if *importData == *eraseData {
		flagSet.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	db, err := database.NewConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	defer database.Close(db)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if *eraseData {
		err = erase(db)
	} else {
		err = load(ctx, db)
	}
	if err != nil {
		log.Fatalf("[Seed] %v", err)
	}
	log.Println("[Seed] Done")
}

func load(ctx context.Context, db *gorm.DB) error {
	if err := authRepo.Migrate(db); err != nil {
		return fmt.Errorf("migrate users: %w", err)
	}
	if err := propertyRepo.Migrate(db); err != nil {
		return fmt.Errorf("migrate properties: %w", err)
	}
	if err := propertyRepo.SeedCatalog(ctx, db); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}

	users := authRepo.NewUserRepository(db)
	existing, err := users.FindByEmail(ctx, demoEmail)
	if err != nil {
		return err
	}
	if existing != nil {
		log.Printf("[Seed] Demo account %s already exists", demoEmail)
		return nil
	}

	hash, err := authRepo.HashPassword(demoPassword)
	if err != nil {
		return err
	}
	demo := &authdomain.User{Name: demoName, Email: demoEmail, Password: hash, Confirmed: true}
	if err := users.Create(ctx, demo); err != nil {
		return fmt.Errorf("create demo account: %w", err)
	}
	log.Printf("[Seed] Created demo account %s / %s", demoEmail, demoPassword)
	return nil
}

func erase(db *gorm.DB) error {
	if err := propertyRepo.DropTables(db); err != nil {
		return fmt.Errorf("drop property tables: %w", err)
	}
	if err := db.Migrator().DropTable(&authdomain.User{}); err != nil {
		return fmt.Errorf("drop users: %w", err)
	}
	return nil
}
