package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/oauth2"

	"icu-workouts/internal/api"
	"icu-workouts/internal/auth"
	"icu-workouts/internal/config"
	"icu-workouts/internal/intervals"
	"icu-workouts/internal/service"
	"icu-workouts/internal/store"
	"icu-workouts/internal/tui"
)

const usage = `Usage: icu-workouts [command] [flags]

Commands:
  (none)     open the terminal dashboard
  generate   generate and save a workout from a JSON file
  text       print the workout builder text for a JSON file
  list       list saved workouts
  export     write a saved workout as a FIT file
  serve      run the HTTP API
  auth       connect to intervals.icu with OAuth
  logout     forget stored OAuth tokens

Run 'icu-workouts <command> --help' for command flags.
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.SetOutput(os.Stderr)
		log.Fatal(err)
	}
}

func run(args []string) error {
	ctx := context.Background()

	cmd := ""
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}
	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		fmt.Print(usage)
		return nil
	}

	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		fmt.Println("No config file found. Creating example config...")
		if err := config.CreateExample(); err != nil {
			return fmt.Errorf("creating example config: %w", err)
		}
		configDir, _ := config.GetConfigDir()
		fmt.Printf("\nPlease edit the config file at:\n  %s/config.json\n\n", configDir)
		fmt.Println("You need an intervals.icu API key (or OAuth client credentials).")
		fmt.Println("Get one from: https://intervals.icu/settings (Developer Settings)")
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		configDir, _ := config.GetConfigDir()
		fmt.Printf("Config validation failed: %v\n\n", err)
		fmt.Printf("Please edit the config file at:\n  %s/config.json\n", configDir)
		return nil
	}

	logFile, err := cfg.Log.Writer()
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)
	if cmd == "serve" {
		log.SetOutput(io.MultiWriter(os.Stderr, logFile))
	}

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	switch cmd {
	case "auth":
		return authenticate(ctx, db, cfg)
	case "logout":
		if err := db.DeleteAuth(); err != nil && !errors.Is(err, store.ErrNoAuth) {
			return fmt.Errorf("removing tokens: %w", err)
		}
		fmt.Println("Stored intervals.icu tokens removed.")
		return nil
	}

	client, err := newClient(ctx, db, cfg)
	if err != nil {
		return err
	}
	app := newApp(client, db, cfg)

	switch cmd {
	case "", "tui":
		return runTUI(app)
	case "generate":
		return runGenerate(ctx, app, args)
	case "text":
		return runText(ctx, app, args)
	case "list":
		return runList(ctx, app, args)
	case "export":
		return runExport(ctx, app, args)
	case "serve":
		return runServe(ctx, app, cfg, args)
	default:
		fmt.Print(usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// application holds the wired services shared by every command
type application struct {
	client   *intervals.Client
	profiles *service.ProfileRetriever
	workouts *service.WorkoutService
	fitness  *service.FitnessService
}

func newApp(client *intervals.Client, db *store.Store, cfg *config.Config) *application {
	profiles := service.NewProfileRetriever(client, db, cfg.ProfileTTL())
	return &application{
		client:   client,
		profiles: profiles,
		workouts: service.NewWorkoutService(profiles, client, db),
		fitness:  service.NewFitnessService(client, db),
	}
}

func runTUI(app *application) error {
	model := tui.NewApp(tui.Services{
		Profiles:  app.profiles,
		Workouts:  app.workouts,
		Fitness:   app.fitness,
		RateLimit: app.client,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

// newClient builds an intervals.icu client from an API key, or from stored
// OAuth tokens, running the OAuth flow when none are stored yet
func newClient(ctx context.Context, db *store.Store, cfg *config.Config) (*intervals.Client, error) {
	opts := []intervals.Option{intervals.WithObserver(api.ObserveIntervalsRequest)}
	if cfg.Intervals.BaseURL != "" {
		opts = append(opts, intervals.WithBaseURL(cfg.Intervals.BaseURL))
	}

	if cfg.UsesAPIKey() {
		return intervals.NewAPIKeyClient(cfg.Intervals.AthleteID, cfg.Intervals.APIKey, opts...), nil
	}

	storedAuth, err := db.GetAuth()
	if errors.Is(err, store.ErrNoAuth) {
		fmt.Println("No authentication found. Starting OAuth flow...")
		if err := authenticate(ctx, db, cfg); err != nil {
			return nil, fmt.Errorf("authentication: %w", err)
		}
		storedAuth, err = db.GetAuth()
		if err != nil {
			return nil, fmt.Errorf("fetching auth after login: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("checking auth: %w", err)
	}

	token := &oauth2.Token{
		AccessToken:  storedAuth.AccessToken,
		RefreshToken: storedAuth.RefreshToken,
		Expiry:       storedAuth.ExpiresAt,
	}
	tokenSource := auth.NewTokenSource(oauthConfig(cfg), token, func(newToken *oauth2.Token) error {
		return db.UpdateTokens(newToken.AccessToken, newToken.RefreshToken, newToken.Expiry)
	})

	if _, err := tokenSource.Token(); err != nil {
		fmt.Println("Stored token is invalid or expired. Re-authenticating...")
		if err := authenticate(ctx, db, cfg); err != nil {
			return nil, fmt.Errorf("re-authentication: %w", err)
		}
		return newClient(ctx, db, cfg)
	}

	athleteID := cfg.Intervals.AthleteID
	if athleteID == intervals.CurrentAthlete && storedAuth.AthleteID != "" {
		athleteID = storedAuth.AthleteID
	}
	return intervals.NewClient(athleteID, tokenSource, opts...), nil
}

func oauthConfig(cfg *config.Config) *oauth2.Config {
	return auth.NewOAuthConfig(auth.Config{
		ClientID:     cfg.Intervals.ClientID,
		ClientSecret: cfg.Intervals.ClientSecret,
		RedirectURL:  fmt.Sprintf("http://localhost:%d/callback", cfg.Intervals.CallbackPort),
	})
}

func authenticate(ctx context.Context, db *store.Store, cfg *config.Config) error {
	if cfg.UsesAPIKey() {
		fmt.Println("An API key is configured; OAuth is not needed.")
		return nil
	}

	result, err := auth.Authenticate(ctx, oauthConfig(cfg), cfg.Intervals.CallbackPort, os.Stdout)
	if err != nil {
		return err
	}

	storedAuth := &store.Auth{
		AthleteID:    result.AthleteID,
		AccessToken:  result.Token.AccessToken,
		RefreshToken: result.Token.RefreshToken,
		ExpiresAt:    result.Token.Expiry,
	}
	if err := db.SaveAuth(storedAuth); err != nil {
		return fmt.Errorf("saving auth: %w", err)
	}

	fmt.Println()
	if result.AthleteName != "" {
		fmt.Printf("Successfully authenticated as %s (%s)!\n", result.AthleteName, result.AthleteID)
	} else {
		fmt.Printf("Successfully authenticated as athlete %s!\n", result.AthleteID)
	}
	return nil
}
