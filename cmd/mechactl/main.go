package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"mechamind.backend/internal/config"
	"mechamind.backend/internal/domain/entities"
	"mechamind.backend/internal/infrastructure/datasources/postgres"
	"mechamind.backend/internal/infrastructure/jobs"
	"mechamind.backend/internal/infrastructure/mail"
	"mechamind.backend/internal/infrastructure/repositories"
	"mechamind.backend/internal/usecases"
	"mechamind.backend/pkg/crypto"
	"mechamind.backend/pkg/logger"
)

var openCtlDB = func(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := postgres.NewConnection(cfg)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

var openCtlSQLDB = func(db *gorm.DB) (io.Closer, error) {
	return db.DB()
}

// ctlRuntime is the database-backed part of the tool.
type ctlRuntime interface {
	SetupAdmin(ctx context.Context, input *entities.AdminSetupInput) (*entities.User, error)
	SetRole(ctx context.Context, input *entities.SetAdminInput) (*entities.User, error)
	PurgeCodes(ctx context.Context, before time.Time) (int64, error)
}

type codeSender interface {
	SendVerificationCode(ctx context.Context, email, code string, ttl time.Duration) error
	Providers() []string
}

type ctlDeps struct {
	loadEnv   func() error
	loadCfg   func() *config.Config
	prepare   func(cfg *config.Config) (ctlRuntime, io.Closer, error)
	newMailer func(cfg config.MailConfig) codeSender
	hash      func(password string) (string, error)
	now       func() time.Time
	in        io.Reader
	out       io.Writer
}

type ctlRuntimeImpl struct {
	admin *usecases.AdminUsecase
	codes *repositories.VerificationRepository
}

func (r ctlRuntimeImpl) SetupAdmin(ctx context.Context, input *entities.AdminSetupInput) (*entities.User, error) {
	return r.admin.Setup(ctx, input)
}

func (r ctlRuntimeImpl) SetRole(ctx context.Context, input *entities.SetAdminInput) (*entities.User, error) {
	return r.admin.SetRole(ctx, input)
}

func (r ctlRuntimeImpl) PurgeCodes(ctx context.Context, before time.Time) (int64, error) {
	return r.codes.DeleteExpired(ctx, before)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func defaultCtlDeps() ctlDeps {
	return ctlDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		prepare: func(cfg *config.Config) (ctlRuntime, io.Closer, error) {
			db, err := openCtlDB(cfg.Database)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to connect db: %w", err)
			}

			sqlDB, err := openCtlSQLDB(db)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to init sql db: %w", err)
			}

			userRepo := repositories.NewUserRepository(db)
			statsRepo := repositories.NewStatsRepository(db)
			return ctlRuntimeImpl{
				admin: usecases.NewAdminUsecase(userRepo, statsRepo, cfg.Security.AdminSecretKey),
				codes: repositories.NewVerificationRepository(db),
			}, sqlDB, nil
		},
		newMailer: func(cfg config.MailConfig) codeSender {
			return mail.NewDispatcherFromConfig(cfg)
		},
		hash: crypto.HashPassword,
		now:  time.Now,
		in:   os.Stdin,
		out:  os.Stdout,
	}
}

func (d ctlDeps) withDefaults() ctlDeps {
	def := defaultCtlDeps()
	if d.loadEnv == nil {
		d.loadEnv = def.loadEnv
	}
	if d.loadCfg == nil {
		d.loadCfg = def.loadCfg
	}
	if d.prepare == nil {
		d.prepare = def.prepare
	}
	if d.newMailer == nil {
		d.newMailer = def.newMailer
	}
	if d.hash == nil {
		d.hash = def.hash
	}
	if d.now == nil {
		d.now = def.now
	}
	if d.in == nil {
		d.in = def.in
	}
	if d.out == nil {
		d.out = def.out
	}
	return d
}

func (d ctlDeps) config() *config.Config {
	if err := d.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := d.loadCfg()
	logger.Init(cfg.Server.Env)
	return cfg
}

func (d ctlDeps) withRuntime(fn func(*config.Config, ctlRuntime) error) error {
	cfg := d.config()
	runtime, closer, err := d.prepare(cfg)
	if err != nil {
		return err
	}
	if closer == nil {
		closer = nopCloser{}
	}
	defer closer.Close()
	return fn(cfg, runtime)
}

func newRootCmd(deps ctlDeps) *cobra.Command {
	deps = deps.withDefaults()

	root := &cobra.Command{
		Use:           "mechactl",
		Short:         "Operator tooling for the MechaMind backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(deps.out)
	root.SetIn(deps.in)

	root.AddCommand(
		newAdminSetupCmd(deps),
		newAdminRoleCmd(deps),
		newHashPasswordCmd(deps),
		newPurgeCodesCmd(deps),
		newSendTestEmailCmd(deps),
	)
	return root
}

func newAdminSetupCmd(deps ctlDeps) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "admin-setup",
		Short: "Create the first admin account or promote an existing user",
		Long: `Bootstraps the admin account with ADMIN_SECRET_KEY from the environment.
Fails when an admin already exists.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				return errors.New("--email is required")
			}
			pw, err := passwordFrom(password, deps.in)
			if err != nil {
				return err
			}
			return deps.withRuntime(func(cfg *config.Config, rt ctlRuntime) error {
				if cfg.Security.AdminSecretKey == "" {
					return errors.New("ADMIN_SECRET_KEY is not set")
				}
				user, err := rt.SetupAdmin(cmd.Context(), &entities.AdminSetupInput{
					Email:     email,
					Password:  pw,
					SecretKey: cfg.Security.AdminSecretKey,
				})
				if err != nil {
					return fmt.Errorf("admin setup failed: %w", err)
				}
				fmt.Fprintf(deps.out, "Admin ready\nUser ID: %s\nEmail:   %s\n", user.ID, user.Email)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email (required)")
	cmd.Flags().StringVar(&password, "password", "", "admin password, read from stdin when omitted")
	return cmd
}

func newAdminRoleCmd(deps ctlDeps) *cobra.Command {
	var email string
	var admin bool
	cmd := &cobra.Command{
		Use:   "admin-role",
		Short: "Grant or revoke admin rights for a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" {
				return errors.New("--email is required")
			}
			return deps.withRuntime(func(_ *config.Config, rt ctlRuntime) error {
				user, err := rt.SetRole(cmd.Context(), &entities.SetAdminInput{Email: email, IsAdmin: &admin})
				if err != nil {
					return fmt.Errorf("role change failed: %w", err)
				}
				fmt.Fprintf(deps.out, "%s isAdmin=%t\n", user.Email, user.IsAdmin)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "user email (required)")
	cmd.Flags().BoolVar(&admin, "admin", true, "grant (true) or revoke (false)")
	return cmd
}

func newHashPasswordCmd(deps ctlDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print the bcrypt hash stored for a password",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			var arg string
			if len(args) == 1 {
				arg = args[0]
			}
			pw, err := passwordFrom(arg, deps.in)
			if err != nil {
				return err
			}
			hash, err := deps.hash(pw)
			if err != nil {
				return err
			}
			fmt.Fprintln(deps.out, hash)
			return nil
		},
	}
}

func newPurgeCodesCmd(deps ctlDeps) *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "purge-codes",
		Short: "Delete expired verification codes and pending signups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if olderThan < 0 {
				return errors.New("--older-than must not be negative")
			}
			return deps.withRuntime(func(_ *config.Config, rt ctlRuntime) error {
				n, err := rt.PurgeCodes(cmd.Context(), deps.now().Add(-olderThan))
				if err != nil {
					return fmt.Errorf("purge failed: %w", err)
				}
				fmt.Fprintf(deps.out, "Purged %d expired verification records\n", n)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", jobs.DefaultRetention, "only purge records expired at least this long ago")
	return cmd
}

func newSendTestEmailCmd(deps ctlDeps) *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "send-test-email",
		Short: "Send a sample verification email through the configured providers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if to == "" {
				return errors.New("--to is required")
			}
			cfg := deps.config()
			mailer := deps.newMailer(cfg.Mail)
			if len(mailer.Providers()) == 0 {
				return mail.ErrNoProviders
			}

			code, err := crypto.GenerateOTP()
			if err != nil {
				return err
			}
			if err := mailer.SendVerificationCode(cmd.Context(), to, code, cfg.OTP.TTL); err != nil {
				return fmt.Errorf("send failed: %w", err)
			}
			fmt.Fprintf(deps.out, "Sent test code %s to %s via %v\n", code, to, mailer.Providers())
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "recipient address (required)")
	return cmd
}

func passwordFrom(flagValue string, in io.Reader) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	var pw string
	if _, err := fmt.Fscanln(in, &pw); err != nil || pw == "" {
		return "", errors.New("password is required")
	}
	return pw, nil
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := newRootCmd(ctlDeps{}).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
