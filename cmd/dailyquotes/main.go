package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"daily_quote_mailer/internal/app"
	"daily_quote_mailer/internal/domain/quote"
	"daily_quote_mailer/internal/domain/user"
	"daily_quote_mailer/internal/infra/config"
	idb "daily_quote_mailer/internal/infra/database"
	"daily_quote_mailer/internal/infra/logger"
	"daily_quote_mailer/internal/infra/scheduler"
	"daily_quote_mailer/internal/infra/smtp"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const serveRunTimeout = 30 * time.Minute

// appEnv is what every subcommand shares once configuration is loaded.
type appEnv struct {
	cfg      *config.AppConfig
	log      *logrus.Logger
	closeLog func() error
}

func main() {
	root, rt := newRootCmd()
	if err := execute(root, rt); err != nil {
		os.Exit(1)
	}
}

// execute runs the command tree and releases the log file whether or not the command failed.
func execute(root *cobra.Command, rt *appEnv) error {
	defer rt.close()
	return root.Execute()
}

func (rt *appEnv) close() {
	if rt.closeLog != nil {
		_ = rt.closeLog()
		rt.closeLog = nil
	}
}

func newRootCmd() (*cobra.Command, *appEnv) {
	rt := &appEnv{}
	var envFile string

	root := &cobra.Command{
		Use:          "dailyquotes",
		Short:        "Daily motivational quote mailer",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return fmt.Errorf("could not load application configuration: %w", err)
			}
			log, closeLog, err := logger.New(cfg)
			if err != nil {
				return fmt.Errorf("could not initialize logger: %w", err)
			}
			rt.cfg, rt.log, rt.closeLog = cfg, log, closeLog
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	root.AddCommand(
		newInitDBCmd(rt),
		newSendCmd(rt),
		newServeCmd(rt),
		newAddQuoteCmd(rt),
		newHistoryCmd(rt),
		newUsersCmd(rt),
	)
	return root, rt
}

func newInitDBCmd(rt *appEnv) *cobra.Command {
	var seedFile string
	cmd := &cobra.Command{
		Use:   "init-db",
		Short: "Create the tables and insert the seed users",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			seeds := app.DefaultSeedUsers()
			if seedFile != "" {
				var err error
				if seeds, err = app.LoadSeedFile(seedFile); err != nil {
					return err
				}
			}

			store, err := idb.Open(ctx, rt.cfg.DatabaseURL, idb.Options{CreateIfMissing: true})
			if err != nil {
				return fmt.Errorf("could not connect to database: %w", err)
			}
			defer store.Close()

			log := rt.log.WithFields(logrus.Fields{"component": "schema", "dialect": store.Dialect()})
			_, err = app.NewSchemaInitializer(store, log).Initialize(ctx, seeds)
			return err
		},
	}
	cmd.Flags().StringVar(&seedFile, "seed-file", "", "YAML file with seed users (default: built-in list)")
	return cmd
}

func newSendCmd(rt *appEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "send",
		Short: "Send today's quote to every eligible user once",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Run-level failures are already logged by the dispatcher and do not change the exit code.
			_, _ = newDispatcher(rt).Run(cmd.Context())
			return nil
		},
	}
}

func newServeCmd(rt *appEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dispatcher every day on CRON_SPEC_DAILY until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			dispatcher := newDispatcher(rt)
			job := func(ctx context.Context) error {
				_, err := dispatcher.Run(ctx)
				return err
			}

			s := scheduler.NewDailyScheduler(job, rt.log.WithField("component", "scheduler"), rt.cfg.CronSpecDaily, serveRunTimeout)
			if err := s.Start(); err != nil {
				return err
			}

			// Graceful shutdown
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit // Block until a signal is received

			rt.log.Info("Shutting down scheduler...")
			s.Stop()
			return nil
		},
	}
}

func newAddQuoteCmd(rt *appEnv) *cobra.Command {
	var text, author, date string
	cmd := &cobra.Command{
		Use:   "add-quote",
		Short: "Store the quote of a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := idb.Open(ctx, rt.cfg.DatabaseURL, idb.Options{})
			if err != nil {
				return fmt.Errorf("could not connect to database: %w", err)
			}
			defer store.Close()

			q, err := app.NewQuoteService(store.Quotes(), store.Deliveries()).AddQuote(ctx, text, author, date)
			if err != nil {
				return err
			}
			rt.log.WithFields(logrus.Fields{"id": q.ID, "date": q.DateFetched}).Info("Quote stored")
			return nil
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "quote text")
	cmd.Flags().StringVar(&author, "author", "", "quote author")
	cmd.Flags().StringVar(&date, "date", quote.DateOf(time.Now()), "date the quote is for (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("text")
	_ = cmd.MarkFlagRequired("author")
	return cmd
}

func newHistoryCmd(rt *appEnv) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the delivery log of a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := idb.Open(ctx, rt.cfg.DatabaseURL, idb.Options{})
			if err != nil {
				return fmt.Errorf("could not connect to database: %w", err)
			}
			defer store.Close()

			entries, err := app.NewQuoteService(store.Quotes(), store.Deliveries()).History(ctx, date)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintf(out, "%s\t%-7s\t%s\n", e.SentAt.Format(time.RFC3339), e.Status, e.Email)
			}
			fmt.Fprintf(out, "%d attempts on %s\n", len(entries), date)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", quote.DateOf(time.Now()), "day to list (YYYY-MM-DD)")
	return cmd
}

func newUsersCmd(rt *appEnv) *cobra.Command {
	var emailAddr string
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List subscribers, or show one with --email",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := idb.Open(ctx, rt.cfg.DatabaseURL, idb.Options{})
			if err != nil {
				return fmt.Errorf("could not connect to database: %w", err)
			}
			defer store.Close()

			svc := app.NewSubscriberService(store.Users())
			var users []*user.User
			if emailAddr != "" {
				u, err := svc.Find(ctx, emailAddr)
				if err != nil {
					return err
				}
				users = []*user.User{u}
			} else if users, err = svc.List(ctx); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, u := range users {
				fmt.Fprintf(out, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Name, u.Status, u.Frequency)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&emailAddr, "email", "", "show only the user with this email")
	return cmd
}

func newDispatcher(rt *appEnv) *app.Dispatcher {
	opener := func(ctx context.Context) (app.Storage, error) {
		store, err := idb.Open(ctx, rt.cfg.DatabaseURL, idb.Options{})
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return app.NewDispatcher(opener, smtp.NewDialer(rt.cfg.SMTP), rt.cfg.SMTP, rt.log.WithField("component", "dispatcher"))
}
