package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"ms-servicing/internal/config"
	"ms-servicing/internal/database"
	"ms-servicing/internal/database/migrations"
	"ms-servicing/internal/logger"
	"ms-servicing/internal/models"
	userdb "ms-servicing/internal/users/db"
	users "ms-servicing/internal/users/service"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
)

type options struct {
	driver        string
	dsn           string
	action        string
	version       uint
	noSeed        bool
	adminEmail    string
	adminName     string
	adminPassword string
}

func parseFlags(args []string, cfg *config.Config) (options, error) {
	var opts options
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.StringVar(&opts.driver, "driver", cfg.Database.Driver, "store driver: postgres, sqlite or json")
	fs.StringVar(&opts.dsn, "dsn", "", "override POSTGRES_DSN or SQLITE_PATH")
	fs.StringVarP(&opts.action, "action", "a", "up", "up, down, to, version or files")
	fs.UintVar(&opts.version, "version", migrations.SchemaVersion, "target version for --action=to")
	fs.BoolVar(&opts.noSeed, "no-seed", false, "apply schema migrations only")
	fs.StringVar(&opts.adminEmail, "create-admin", "", "create an Admin account with this email after migrating")
	fs.StringVar(&opts.adminName, "admin-name", "Administrator", "full name for --create-admin")
	fs.StringVar(&opts.adminPassword, "admin-password", "", "password for --create-admin (or ADMIN_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	opts.driver = strings.ToLower(opts.driver)
	if opts.driver == database.DriverJSON {
		opts.driver = database.DriverSQLite
	}
	if opts.adminPassword == "" {
		opts.adminPassword = os.Getenv("ADMIN_PASSWORD")
	}
	if opts.adminEmail != "" && opts.adminPassword == "" {
		return options{}, fmt.Errorf("--create-admin needs --admin-password or ADMIN_PASSWORD")
	}
	return opts, nil
}

func runPostgres(opts options, dsn string, log *logger.Logger) error {
	sqldb, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	runner := migrations.NewRunner(sqldb, migrations.MigrateOptions{SeedData: !opts.noSeed}, log)
	defer runner.Close()

	switch opts.action {
	case "up":
		return runner.RunMigrations()
	case "down":
		return runner.MigrateDown()
	case "to":
		return runner.MigrateTo(opts.version)
	case "version":
		version, dirty, err := runner.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version %d (dirty: %t)\n", version, dirty)
		return nil
	default:
		return fmt.Errorf("unknown action %q", opts.action)
	}
}

func runSQLite(ctx context.Context, opts options, cfg config.DatabaseConfig, log *logger.Logger) error {
	db, err := database.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	switch opts.action {
	case "up":
		return database.CreateSchema(ctx, db)
	case "down":
		return database.DropSchema(ctx, db)
	default:
		return fmt.Errorf("action %q is only supported for postgres", opts.action)
	}
}

func createAdmin(ctx context.Context, opts options, cfg config.DatabaseConfig, log *logger.Logger) error {
	db, err := database.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := users.NewUserService(&userdb.DB{Bun: db}, log)
	admin, err := svc.Signup(ctx, models.SignupRequest{
		FullName: opts.adminName,
		Email:    opts.adminEmail,
		Password: opts.adminPassword,
		Role:     models.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	log.Info("MIGRATE", fmt.Sprintf("✅ Admin %s created with id %d", admin.Email, admin.ID))
	return nil
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.New(os.Stdout)

	opts, err := parseFlags(os.Args[1:], cfg)
	if err != nil {
		log.Fatal("MIGRATE", err.Error())
	}

	if opts.action == "files" {
		names, err := migrations.Files()
		if err != nil {
			log.Fatal("MIGRATE", err.Error())
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return
	}

	dbCfg := cfg.Database
	dbCfg.Driver = opts.driver
	if opts.dsn != "" {
		dbCfg.PostgresDSN = opts.dsn
		dbCfg.SQLitePath = opts.dsn
	}

	ctx := context.Background()
	switch opts.driver {
	case database.DriverPostgres:
		err = runPostgres(opts, dbCfg.PostgresDSN, log)
	case database.DriverSQLite:
		err = runSQLite(ctx, opts, dbCfg, log)
	default:
		err = fmt.Errorf("unsupported driver %q", opts.driver)
	}
	if err != nil {
		log.Fatal("MIGRATE", err.Error())
	}
	log.Info("MIGRATE", fmt.Sprintf("%s completed for %s", opts.action, opts.driver))

	if opts.adminEmail != "" {
		if err := createAdmin(ctx, opts, dbCfg, log); err != nil {
			log.Fatal("MIGRATE", err.Error())
		}
	}
}
