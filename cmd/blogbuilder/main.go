package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/blogbuilder/internal/build"
	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/directives"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/markup"
	"git.home.luguber.info/inful/blogbuilder/internal/page"
	"git.home.luguber.info/inful/blogbuilder/internal/site"
	"git.home.luguber.info/inful/blogbuilder/internal/thumbnail"
	"git.home.luguber.info/inful/blogbuilder/internal/version"
)

var CLI struct {
	Config  string `short:"c" help:"Configuration file path" default:"config.yml"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Output string `short:"o" help:"Output directory, overrides the configured one"`
	} `cmd:"" help:"Build the site from the source tree"`

	List struct {
		All bool `short:"a" help:"Include drafts and invalid pages"`
	} `cmd:"" help:"List pages and their publish state without building"`

	Init struct {
		Force bool `help:"Overwrite existing configuration file"`
	} `cmd:"" help:"Initialize a new configuration file"`

	Version struct{} `cmd:"" help:"Print the version"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	switch ctx.Command() {
	case "build":
		runBuild(logger)
	case "list":
		runList(logger)
	case "init":
		if err := config.Default().Write(CLI.Config, CLI.Init.Force); err != nil {
			logger.Error("init failed", logfields.Error(err))
			os.Exit(1)
		}
		logger.Info("configuration written", logfields.Output(CLI.Config))
	case "version":
		fmt.Println(version.String())
	}
}

func loadConfig(logger *slog.Logger) *config.Config {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		logger.Error("failed to load configuration", logfields.Error(err))
		os.Exit(1)
	}
	if CLI.Build.Output != "" {
		cfg.Output = CLI.Build.Output
	}
	return cfg
}

func newBuilder(cfg *config.Config, logger *slog.Logger) *page.Builder {
	renderer := markup.NewRenderer(directives.NewRegistry(), thumbnail.NewGenerator(logger), logger)
	return page.NewBuilder(cfg.Source, renderer, logger).WithThumbSize(cfg.ThumbnailSize)
}

func runBuild(logger *slog.Logger) {
	cfg := loadConfig(logger)

	siteRenderer, err := site.NewRenderer(cfg.Output, site.SiteMeta{
		Title:        cfg.Site.Title,
		Author:       cfg.Site.Author,
		CanonicalURL: cfg.Site.CanonicalURL,
		Description:  cfg.Site.Description,
	}, cfg.TemplatePath)
	if err != nil {
		logger.Error("failed to set up templates", logfields.Error(err))
		os.Exit(1)
	}

	svc := build.NewService(cfg, newBuilder(cfg, logger), siteRenderer, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := svc.Run(ctx)
	if err != nil {
		logger.Error("build failed", logfields.Error(err))
		fmt.Fprintln(os.Stderr, report.Summary())
		os.Exit(1)
	}

	for _, skip := range report.Skipped {
		fmt.Fprintf(os.Stderr, "skipped %s: [%s] %s\n", skip.Page, skip.Category, skip.Message)
	}
	fmt.Println(report.Summary())

	// valid pages were still written, but a skipped page means the
	// build is not clean
	if len(report.Skipped) > 0 {
		os.Exit(1)
	}
}

func runList(logger *slog.Logger) {
	cfg := loadConfig(logger)
	builder := newBuilder(cfg, logger)

	sources, err := build.DiscoverSources(cfg.Source)
	if err != nil {
		logger.Error("failed to enumerate source tree", logfields.Error(err))
		os.Exit(1)
	}

	for _, rel := range sources {
		rec, buildErr := builder.Build(rel)
		switch {
		case buildErr != nil:
			if CLI.List.All {
				fmt.Printf("%-10s %s  (%v)\n", "invalid", rel, buildErr)
			}
		case rec.Publishable():
			fmt.Printf("%-10s %s  %s\n", "published", rel,
				rec.Meta.PubDate.Format("2006-01-02"))
		default:
			if CLI.List.All {
				fmt.Printf("%-10s %s\n", "draft", rel)
			}
		}
	}
}
