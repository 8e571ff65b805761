// Command admin-init applies migrations and creates or promotes the administrator account.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/naturlife/storefront/internal/config"
	"github.com/naturlife/storefront/internal/db"
	"github.com/naturlife/storefront/internal/observability"
	"github.com/spf13/pflag"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	email := pflag.String("email", cfg.AdminEmail, "administrator email")
	password := pflag.String("password", cfg.AdminPassword, "administrator password (min 6 chars)")
	name := pflag.String("name", cfg.AdminName, "administrator display name")
	pflag.Parse()

	log := observability.NewLogger(cfg.Env)

	if *email == "" || len(*password) < 6 {
		fmt.Fprintln(os.Stderr, "admin-init: --email and a --password of at least 6 characters are required")
		pflag.Usage()
		os.Exit(2)
	}

	ctx, cancel := config.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DBURL)
	if err != nil {
		log.Error("connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Error("migrate", "err", err)
		os.Exit(1)
	}

	res, err := db.EnsureAdminUser(ctx, pool, db.AdminSeed{Email: *email, Password: *password, Name: *name})
	if err != nil {
		log.Error("ensure admin", "err", err)
		os.Exit(1)
	}

	log.Info("admin ready", "email", *email, "result", string(res))
}
