package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"icu-workouts/internal/analysis"
	"icu-workouts/internal/api"
	"icu-workouts/internal/config"
	"icu-workouts/internal/intervals"
	"icu-workouts/internal/service"
)

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SortFlags = false
	return fs
}

// readWorkoutRequest reads a workout JSON document from path, "-" meaning stdin
func readWorkoutRequest(path string) (service.WorkoutRequest, error) {
	var req service.WorkoutRequest
	if path == "" {
		return req, errors.New("--file is required")
	}

	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return req, err
		}
		defer f.Close()
		r = f
	}

	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return req, fmt.Errorf("parsing %s: %w", path, err)
	}
	return req, nil
}

func runGenerate(ctx context.Context, app *application, args []string) error {
	fs := newFlagSet("generate")
	file := fs.StringP("file", "f", "", "workout JSON file (- for stdin)")
	planDate := fs.String("plan", "", "also add the workout to the intervals.icu calendar on this date (YYYY-MM-DD)")
	notes := fs.String("notes", "", "notes for the calendar entry")
	asJSON := fs.Bool("json", false, "print the saved workout as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var date time.Time
	if *planDate != "" {
		var err error
		if date, err = time.Parse(intervals.DateLayout, *planDate); err != nil {
			return fmt.Errorf("--plan must be YYYY-MM-DD: %w", err)
		}
	}

	req, err := readWorkoutRequest(*file)
	if err != nil {
		return err
	}

	w, err := app.workouts.Generate(ctx, req)
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(w); err != nil {
			return err
		}
	} else {
		printWorkout(os.Stdout, w)
	}

	if date.IsZero() {
		return nil
	}
	planned, err := app.workouts.Plan(ctx, w.ID, date, *notes)
	if err != nil {
		return fmt.Errorf("planning workout: %w", err)
	}
	if planned.EventID != nil {
		fmt.Printf("\nPlanned on %s (event %d)\n", planned.PlannedDate.Format(intervals.DateLayout), *planned.EventID)
	}
	return nil
}

func printWorkout(out io.Writer, w *service.Workout) {
	fmt.Fprintf(out, "%s (%s)\n", w.Title, w.Sport)
	fmt.Fprintf(out, "  id:        %s\n", w.ID)
	fmt.Fprintf(out, "  duration:  %s\n", analysis.FormatDuration(w.TotalSeconds))
	if w.EstimatedTSS != nil {
		fmt.Fprintf(out, "  TSS:       %d\n", *w.EstimatedTSS)
	}
	if w.EstimatedIF != nil {
		fmt.Fprintf(out, "  IF:        %.2f\n", *w.EstimatedIF)
	}
	if w.Text != "" {
		fmt.Fprintf(out, "\n%s", w.Text)
	}
}

func runText(ctx context.Context, app *application, args []string) error {
	fs := newFlagSet("text")
	file := fs.StringP("file", "f", "", "workout JSON file (- for stdin)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req, err := readWorkoutRequest(*file)
	if err != nil {
		return err
	}

	text, err := app.workouts.Text(ctx, req)
	if err != nil {
		return err
	}
	fmt.Print(text)
	return nil
}

func runList(ctx context.Context, app *application, args []string) error {
	fs := newFlagSet("list")
	limit := fs.IntP("limit", "n", api.DefaultListLimit, "number of workouts to show")
	offset := fs.Int("offset", 0, "number of workouts to skip")
	if err := fs.Parse(args); err != nil {
		return err
	}

	workouts, err := app.workouts.List(ctx, *limit, *offset)
	if err != nil {
		return err
	}
	if len(workouts) == 0 {
		fmt.Println("No saved workouts.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSPORT\tTITLE\tDURATION\tTSS")
	for _, w := range workouts {
		tss := "-"
		if w.EstimatedTSS != nil {
			tss = fmt.Sprintf("%d", *w.EstimatedTSS)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			w.ID, humanize.Time(w.CreatedAt), w.Sport, w.Title, analysis.FormatDuration(w.TotalSeconds), tss)
	}
	return tw.Flush()
}

func runExport(ctx context.Context, app *application, args []string) error {
	fs := newFlagSet("export")
	id := fs.String("id", "", "saved workout id")
	output := fs.StringP("output", "o", "", "output file (default <id>.fit)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("--id is required")
	}
	if *output == "" {
		*output = *id + ".fit"
	}

	f, err := os.Create(*output)
	if err != nil {
		return err
	}
	if err := app.workouts.ExportFIT(ctx, *id, f); err != nil {
		f.Close()
		os.Remove(*output)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", *output)
	return nil
}

func runServe(ctx context.Context, app *application, cfg *config.Config, args []string) error {
	fs := newFlagSet("serve")
	addr := fs.String("addr", cfg.Server.Addr, "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := api.NewHandler(app.client, app.profiles, app.workouts, app.fitness)
	serverCfg := api.DefaultServerConfig(*addr)
	srv := api.NewServer(serverCfg, handler.Routes())

	return api.Serve(ctx, srv, serverCfg.ShutdownTimeout)
}
