package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/cam-per/sludge/internal/config"
	"github.com/cam-per/sludge/internal/datafile"
	"github.com/cam-per/sludge/internal/logger"
)

type app struct {
	cfg    *config.Config
	log    *zap.Logger
	src    *datafile.Source
	closer io.Closer
}

func newApp() *app { return &app{} }

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:  "sludge",
		Usage: "inspect and render SLUDGE sprite banks and depth maps",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "packed data file or directory of extracted resources",
				Sources: cli.EnvVars("SLUDGE_DATA"),
			},
			&cli.Int64Flag{
				Name:    "index",
				Usage:   "offset of the resource index in the data file",
				Sources: cli.EnvVars("SLUDGE_DATA_INDEX"),
			},
			&cli.StringFlag{
				Name:    "lightmap-mode",
				Usage:   "default light map mode: none, hotspot or pixel",
				Sources: cli.EnvVars("SLUDGE_LIGHTMAP_MODE"),
			},
			&cli.IntFlag{
				Name:    "window-scale",
				Usage:   "pixel scale of the view window",
				Sources: cli.EnvVars("SLUDGE_WINDOW_SCALE"),
			},
			&cli.StringFlag{
				Name:    "charset",
				Usage:   "code page of font character tables",
				Sources: cli.EnvVars("SLUDGE_FONT_CHARSET"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				Sources: cli.EnvVars("SLUDGE_LOG_LEVEL"),
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "development logging at debug level",
			},
		},
		Before: a.before,
		After:  a.after,
		Commands: []*cli.Command{
			a.infoCommand(),
			a.exportCommand(),
			a.dumpCommand(),
			a.composeCommand(),
			a.previewCommand(),
			a.viewCommand(),
		},
	}
}

func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.LoadWithOverrides(config.LoadOptions{
		DataPath:     cmd.String("data"),
		DataIndex:    cmd.Int64("index"),
		LightMapMode: cmd.String("lightmap-mode"),
		WindowScale:  cmd.Int("window-scale"),
		FontCharset:  cmd.String("charset"),
		LogLevel:     cmd.String("log-level"),
	})
	if err != nil {
		return ctx, err
	}
	a.cfg = cfg

	a.log, err = newLogger(cfg.Logging, cmd.Bool("verbose"))
	if err != nil {
		return ctx, fmt.Errorf("init logger: %w", err)
	}
	zap.ReplaceGlobals(a.log)
	return logger.NewContext(ctx, a.log), nil
}

func (a *app) after(ctx context.Context, cmd *cli.Command) error {
	if a.closer != nil {
		a.closer.Close()
	}
	if a.log != nil {
		a.log.Sync() //nolint:errcheck
	}
	return nil
}

func newLogger(cfg config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	if verbose || cfg.Level == "debug" {
		return zap.NewDevelopment()
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(cfg.ZapLevel())
	return zc.Build()
}

// source opens the configured data location on first use.
func (a *app) source(ctx context.Context) (*datafile.Source, error) {
	if a.src != nil {
		return a.src, nil
	}
	path := a.cfg.Data.Path
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		a.src = datafile.NewSource(os.DirFS(path))
		logger.L(ctx).Debug("using resource directory", zap.String("path", path))
		return a.src, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	container, err := datafile.NewContainer(f, info.Size(), a.cfg.Data.Index)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	a.closer = f
	a.src = datafile.NewSource(container)
	logger.L(ctx).Debug("opened data file",
		zap.String("path", path),
		zap.Int64("index", a.cfg.Data.Index),
		zap.Int("resources", container.Len()))
	return a.src, nil
}
