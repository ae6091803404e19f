package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/tableorder/config"
	"github.com/yeremiapane/tableorder/database"
	"github.com/yeremiapane/tableorder/router"
	"github.com/yeremiapane/tableorder/services"
	"github.com/yeremiapane/tableorder/tabletoken"
	"github.com/yeremiapane/tableorder/utils"
	"gorm.io/gorm"
)

var (
	version = "dev"
	cli     struct {
		Serve     ServeCmd     `cmd:"" default:"1" help:"Run the ordering API"`
		Migrate   MigrateCmd   `cmd:"" help:"Create or update the database schema"`
		Seed      SeedCmd      `cmd:"" help:"Create a demo tenant"`
		SignTable SignTableCmd `cmd:"" help:"Print the QR token for a table"`
		Version   kong.VersionFlag
	}
)

type Globals struct {
	Version string
}

func main() {
	utils.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := kong.Parse(&cli,
		kong.Name("tableorder"),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&Globals{Version: version})
	cmd.FatalIfErrorf(err)
}

// openDB loads config, applies the log level and connects.
func openDB() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	utils.SetLogLevel(cfg.LogLevel)

	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

type ServeCmd struct {
	ShutdownTimeout time.Duration `help:"Grace period for in-flight requests." default:"10s"`
}

func (s *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, db, err := openDB()
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("database.Migrate -> %w", err)
	}

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.TableTokenSecret == "" {
		utils.InfoLogger.Warn("TABLE_TOKEN_SECRET not set, only tenants with their own secret can take orders")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.SetupRouter(db, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.InfoLogger.Printf("tableorder %s listening on port %s", globals.Version, cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	utils.InfoLogger.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type MigrateCmd struct{}

func (m *MigrateCmd) Run(ctx context.Context, globals *Globals) error {
	_, db, err := openDB()
	if err != nil {
		return err
	}
	return database.Migrate(db.WithContext(ctx))
}

type SeedCmd struct {
	Tenant        string `help:"Tenant slug." default:"bistro-x"`
	Name          string `help:"Tenant display name." default:"Bistro X"`
	AdminEmail    string `help:"Admin login email." default:"admin@bistro-x.test"`
	AdminPassword string `help:"Admin password." default:"changeme123"`
	Table         string `help:"Label of the demo table." default:"12"`
	Waiter        string `help:"Demo waiter name." default:"Ana"`
	PIN           string `help:"Demo waiter PIN." default:"4821"`
}

func (s *SeedCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, db, err := openDB()
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	opts := database.DefaultSeed()
	opts.TenantSlug = s.Tenant
	opts.TenantName = s.Name
	opts.AdminEmail = s.AdminEmail
	opts.AdminPassword = s.AdminPassword
	opts.Tables = []string{s.Table}
	opts.Waiters = []database.SeedWaiter{{Name: s.Waiter, PIN: s.PIN}}
	opts.HashCost = cfg.BcryptCost
	opts.PINKey = []byte(cfg.PINLookupKey)

	res, err := database.Seed(ctx, db, opts)
	if err != nil {
		return err
	}
	fmt.Printf("tenant %s (id %d)\n", res.Tenant.Slug, res.Tenant.ID)
	fmt.Printf("admin  %s\n", res.Admin.Email)
	for _, t := range res.Tables {
		fmt.Printf("table  %s (id %d)\n", t.Label, t.ID)
	}
	for _, w := range res.Waiters {
		fmt.Printf("waiter %s (id %d)\n", w.Name, w.ID)
	}
	return nil
}

type SignTableCmd struct {
	Tenant string `help:"Tenant slug." required:""`
	Table  uint   `help:"Table id." required:""`
}

func (s *SignTableCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, db, err := openDB()
	if err != nil {
		return err
	}

	tenant, err := services.NewTenantResolver(db).ResolveSlug(ctx, s.Tenant)
	if err != nil {
		return fmt.Errorf("tenant %s -> %w", s.Tenant, err)
	}
	table, err := services.NewTableRegistry(db).Get(ctx, tenant.ID, s.Table)
	if err != nil {
		return fmt.Errorf("table %d -> %w", s.Table, err)
	}

	codec, err := tabletoken.NewKeyring([]byte(cfg.TableTokenSecret)).For(tenant.TokenSecret)
	if err != nil {
		return err
	}
	token := codec.Sign(strconv.FormatUint(uint64(table.ID), 10))

	fmt.Println(token)
	fmt.Printf("%s/t/%s/scan?token=%s\n", cfg.PublicBaseURL, url.PathEscape(tenant.Slug), url.QueryEscape(token))
	return nil
}
