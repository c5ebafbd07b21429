package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"ytcurator/config"
	"ytcurator/playlist"
	"ytcurator/youtube"
)

const version = "0.3.0"

func main() {
	// .env is optional; it typically carries YTCURATOR_CREDENTIALS_FILE.
	_ = godotenv.Load()

	command := "run"
	args := os.Args[1:]
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	switch command {
	case "run":
		cmdRun(args)
	case "version":
		fmt.Println("ytcurator " + version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `ytcurator - YouTube playlist curation

Usage:
  ytcurator run [flags]    Classify, reorder and prune the playlist
  ytcurator version        Print the version
  ytcurator help           Show this help message

Examples:
  ytcurator run -playlist PLxxxx -max 10          # Curate, keep 10 viewable
  ytcurator run -playlist PLxxxx -dry-run         # Report only, no writes
  ytcurator run -tz Europe/London -region GB      # Regional settings

Configuration also comes from ytcurator.yaml and YTCURATOR_* environment
variables; flags take precedence.

For help on specific command: ytcurator <command> -h
`)
}

func cmdRun(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	playlistID := fs.String("playlist", "", "Playlist ID to curate")
	credentials := fs.String("credentials", "", "Path to service-account JSON key")
	maxRetained := fs.Int("max", -1, "Viewable entries to retain (-1 = from config)")
	dryRun := fs.Bool("dry-run", false, "Compute and report mutations without applying them")
	timezone := fs.String("tz", "", "IANA timezone for report timestamps")
	region := fs.String("region", "", "Region code for restriction checks")
	verbose := fs.Bool("verbose", false, "Enable debug logging")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: ytcurator run [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Flags override file and environment.
	if *playlistID != "" {
		cfg.PlaylistID = *playlistID
	}
	if *credentials != "" {
		cfg.CredentialsFile = *credentials
	}
	if *maxRetained >= 0 {
		cfg.MaxRetained = *maxRetained
	}
	if *dryRun {
		cfg.DryRun = true
	}
	if *timezone != "" {
		cfg.Timezone = *timezone
	}
	if *region != "" {
		cfg.Region = *region
	}

	// Validation must fail before any external call is made.
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	loc, err := cfg.Location()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	client, err := youtube.NewClient(ctx, youtube.ClientOptions{
		CredentialsFile: cfg.CredentialsFile,
		RPS:             cfg.APIRate,
		Retry:           cfg.RetryConfig(),
		Logger:          logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating client: %v\n", err)
		os.Exit(1)
	}

	curator := playlist.NewCurator(
		youtube.NewPlaylistSource(client, cfg.PlaylistID, cfg.Region),
		youtube.NewPlaylistSink(client, cfg.PlaylistID),
		playlist.Options{
			MaxRetained: cfg.MaxRetained,
			DryRun:      cfg.DryRun,
			Location:    loc,
			Logger:      logger,
		},
	)

	report, err := curator.Run(ctx)
	if report != nil {
		if printErr := curator.Print(os.Stdout, report); printErr != nil {
			fmt.Fprintf(os.Stderr, "Error printing report: %v\n", printErr)
		}
	}
	if err != nil {
		var malformed *youtube.MalformedEntryError
		if errors.As(err, &malformed) {
			fmt.Fprintf(os.Stderr, "Error: playlist data cannot be curated: %v\n", malformed)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
