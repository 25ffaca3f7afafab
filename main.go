package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskcal/internal/board"
	"github.com/colonyops/taskcal/internal/commands"
	"github.com/colonyops/taskcal/internal/core/auth"
	"github.com/colonyops/taskcal/internal/core/config"
	"github.com/colonyops/taskcal/internal/core/kv"
	"github.com/colonyops/taskcal/internal/core/logging"
	"github.com/colonyops/taskcal/internal/core/styles"
	"github.com/colonyops/taskcal/internal/data/db"
	"github.com/colonyops/taskcal/internal/data/stores"
	"github.com/colonyops/taskcal/internal/store/jsonfile"
	"github.com/colonyops/taskcal/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, build() reads
	// runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

// stderrLog is the --log-file value that sends logs to stderr.
const stderrLog = "-"

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

// openStore opens the key-value store selected by storage.driver. The
// database is returned so the After hook can close it.
func openStore(cfg *config.Config) (kv.KV, *jsonfile.Store, *db.DB, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		database, err := db.Open(cfg.StorageDir(), db.DefaultOpenOptions())
		if err != nil && stores.IsCorruptionError(err) {
			backup, rerr := stores.RecoverFromCorruption(cfg.StorageDir())
			if rerr != nil {
				return nil, nil, nil, fmt.Errorf("recover database: %w", rerr)
			}
			log.Warn().Err(err).Str("backup", backup).Msg("database was corrupt, starting fresh")
			database, err = db.Open(cfg.StorageDir(), db.DefaultOpenOptions())
		}
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open database: %w", err)
		}
		return stores.NewKVStore(database), nil, database, nil
	default:
		files, err := jsonfile.Open(filepath.Join(cfg.StorageDir(), jsonfile.FileName))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open data file: %w", err)
		}
		return files, files, nil, nil
	}
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		database  *db.DB
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "taskcal",
		Usage:     "A Kanban board with a booking calendar",
		UsageText: "taskcal [global options] command [command options]",
		Description: `taskcal keeps a three-column Kanban board of tasks and a calendar of
bookings. Tasks with a due date appear on the calendar next to manual
bookings, and their booking status follows the task's column.

Run 'taskcal board' to see the board and 'taskcal cal' for the calendar.`,
		Version:               build(),
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("TASKCAL_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/logs/taskcal.log, - for stderr)",
				Sources:     cli.EnvVars("TASKCAL_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("TASKCAL_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("TASKCAL_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			command := c.Args().First()

			// The config command loads the file itself so it can report
			// what is wrong with it.
			cfg := config.DefaultConfig()
			cfg.DataDir = flags.DataDir
			if command != commands.ConfigCommandName {
				loaded, err := config.Load(flags.ConfigPath, flags.DataDir)
				if err != nil {
					return ctx, fmt.Errorf("load config: %w", err)
				}
				cfg = *loaded
			}
			flags.Config = &cfg

			logFile := flags.LogFile
			switch logFile {
			case "":
				logFile = cfg.LogFile()
			case stderrLog:
				logFile = ""
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile, logutils.Rotation{
				MaxSizeMB:  cfg.Log.MaxSizeMB,
				MaxBackups: cfg.Log.MaxBackups,
				MaxAgeDays: cfg.Log.MaxAgeDays,
			})
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger.Hook(logging.ContextHook{})
			logCloser = closer

			ctx = logging.WithCommand(ctx, command)

			// Apply configured theme (validation ensures name is valid)
			palette, _ := styles.GetPalette(cfg.Theme)
			styles.SetTheme(palette)

			if command == commands.ConfigCommandName || command == "" {
				return ctx, nil
			}

			store, files, opened, err := openStore(flags.Config)
			if err != nil {
				return ctx, err
			}
			database = opened
			flags.Store = store
			flags.Files = files

			taskcalBoard, err := board.Open(ctx,
				stores.NewTaskRepository(store),
				stores.NewBookingRepository(store),
				log.Logger,
			)
			if err != nil {
				return ctx, fmt.Errorf("open board: %w", err)
			}
			flags.Board = taskcalBoard

			flags.Auth = auth.NewService(store, stores.Namespace, cfg.Auth.SessionTTL)
			if u, err := flags.Auth.Current(ctx); err == nil {
				ctx = logging.WithUser(ctx, u.Email)
			}

			log.Debug().Ctx(ctx).Str("driver", cfg.Storage.Driver).Msg("storage opened")
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			// Close database connection
			if database != nil {
				if err := database.Close(); err != nil {
					log.Error().Err(err).Msg("failed to close database")
					return err
				}
			}

			// Close log file
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	app = commands.NewBoardCmd(flags).Register(app)
	app = commands.NewTaskCmd(flags).Register(app)
	app = commands.NewCalCmd(flags).Register(app)
	app = commands.NewBookingCmd(flags).Register(app)
	app = commands.NewTransferCmd(flags).Register(app)
	app = commands.NewAuthCmd(flags).Register(app)
	app = commands.NewWatchCmd(flags).Register(app)
	app = commands.NewConfigCmd(flags).Register(app)

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Println()
		fmt.Println(runErr.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
