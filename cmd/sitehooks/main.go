package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"

	"github.com/eringen/sitehooks"
)

// version is set at build time via ldflags.
var version = "dev"

var cli struct {
	Source      string `short:"s" help:"Site source directory" env:"SOURCE_DIR" default:"source"`
	ThemeConfig string `help:"Theme configuration file" env:"THEME_CONFIG" default:"_config.butterfly.yml"`

	Serve struct {
		Addr string `short:"a" help:"Listen address" env:"ADDR" default:":4000"`
	} `cmd:"" help:"Serve the site locally with the hooks applied"`

	Build struct {
		Output string `short:"o" help:"Output directory" default:"public"`
	} `cmd:"" help:"Render every post to static HTML"`

	Images struct{} `cmd:"" help:"List post images with type and dimensions"`

	Version struct{} `cmd:"" help:"Print the sitehooks version"`
}

func main() {
	// A missing .env is fine; the environment may be set another way.
	_ = godotenv.Load()

	ctx := kong.Parse(&cli,
		kong.Name("sitehooks"),
		kong.Description("Image and front matter hooks for a static blog"),
		kong.UsageOnError(),
	)

	if ctx.Command() == "version" {
		fmt.Printf("sitehooks %s\n", version)
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("sitehooks: %v", err)
	}

	switch ctx.Command() {
	case "serve":
		cfg.Addr = cli.Serve.Addr
		app := sitehooks.New(cfg)
		sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := app.Start(sigCtx); err != nil {
			log.Fatalf("sitehooks: %v", err)
		}
	case "build":
		cfg.OutputDir = cli.Build.Output
		app := sitehooks.New(cfg)
		if err := app.Build(context.Background(), cfg.OutputDir); err != nil {
			log.Fatalf("sitehooks: build: %v", err)
		}
	case "images":
		if err := printImages(sitehooks.ImagesRoot(cfg.SourceDir)); err != nil {
			log.Fatalf("sitehooks: %v", err)
		}
	default:
		log.Fatalf("sitehooks: unknown command %q", ctx.Command())
	}
}

func loadConfig() (sitehooks.Config, error) {
	cfg := sitehooks.ConfigFromEnv()
	cfg.SourceDir = cli.Source
	cfg.ThemeConfigPath = cli.ThemeConfig
	theme, err := sitehooks.LoadThemeConfig(cfg.ThemeConfigPath)
	if err != nil {
		return cfg, err
	}
	cfg.ApplyTheme(theme)
	return cfg, nil
}

func printImages(root string) error {
	images, err := sitehooks.ListImages(root)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tTYPE\tSIZE\tDIMENSIONS")
	for _, img := range images {
		dims := "-"
		if img.Width > 0 {
			dims = fmt.Sprintf("%dx%d", img.Width, img.Height)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", img.Path, img.MIME, img.Size, dims)
	}
	return w.Flush()
}
