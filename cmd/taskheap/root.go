package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nick-dorsch/taskheap/internal/config"
	"github.com/nick-dorsch/taskheap/internal/logging"
	"github.com/nick-dorsch/taskheap/internal/server"
	"github.com/nick-dorsch/taskheap/internal/session"
	"github.com/nick-dorsch/taskheap/internal/ui"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	cfgFile string
	cfg     *config.Config
	logger  = zap.NewNop()

	// closeLog releases the files behind logger.
	closeLog = func() {}

	// quietConsole keeps log output off the terminal while a full-screen UI runs.
	quietConsole bool
)

// Swapped out in tests.
var (
	runMenu  = ui.RunMenu
	runBoard = ui.RunBoard
)

var rootCmd = &cobra.Command{
	Use:           "taskheap",
	Short:         "A bounded priority queue of tasks with switchable ordering.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		selected, err := runMenu(cfg.Capacity, cfg.Criteria)
		if err != nil {
			return errors.Wrap(err, "menu")
		}
		if selected == "" {
			return nil
		}

		sub, _, err := cmd.Find([]string{selected})
		if err != nil || sub == cmd {
			return errors.Errorf("unknown command: %s", selected)
		}
		if sub.PersistentPreRunE != nil {
			if err := sub.PersistentPreRunE(sub, nil); err != nil {
				return err
			}
		}
		return sub.RunE(sub, nil)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default ~/.taskheap/config.yaml)")
	flags.Int("capacity", 10, "capacity of the default queue")
	flags.String("criteria", "time", "ordering criteria (time|title|level|none)")
	flags.Bool("debug", false, "enable debug logging")
	flags.String("log-dir", "", "directory for JSON log files")
}

var flagKeys = map[string]string{
	"capacity": config.KeyCapacity,
	"criteria": config.KeyCriteria,
	"debug":    config.KeyDebug,
	"log-dir":  config.KeyLogDir,
}

// setup loads the config and builds the logger before any command runs.
func setup(cmd *cobra.Command) error {
	v := viper.New()
	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Root().PersistentFlags().Lookup(flag)); err != nil {
			return errors.Wrapf(err, "bind --%s", flag)
		}
	}

	c, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	cfg = c

	l, cleanup, err := logging.New(logging.Options{Debug: cfg.Debug, Dir: cfg.LogDir, Quiet: quietConsole})
	if err != nil {
		return err
	}
	closeLog()
	logger, closeLog = l, cleanup

	if cfg.File != "" {
		logger.Debug("loaded config", zap.String("file", cfg.File))
	}
	return nil
}

func newSessions() (*session.Manager, error) {
	return session.NewManager(cfg.Capacity, cfg.Criteria, logger)
}

// portFlag prefers an explicit --port over the configured one.
func portFlag(cmd *cobra.Command) string {
	if cmd.Flags().Changed("port") {
		if port, err := cmd.Flags().GetString("port"); err == nil {
			return port
		}
	}
	return cfg.Port
}

// startWeb serves the HTTP API until ctx is done.
func startWeb(ctx context.Context, sessions *session.Manager, port string) {
	srv := server.NewServer(sessions, logger)

	go func() {
		if err := srv.Start(fmt.Sprintf(":%s", port)); err != nil && err != http.ErrServerClosed {
			logger.Error("web server error", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdown(srv)
	}()
}

func shutdown(srv *server.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
