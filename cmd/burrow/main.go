// burrow is a terminal roguelike. The controller, view and simulation run as
// separate goroutines sharing one world through guarded access.
//
// Logs go to a file (--log-file) because the terminal belongs to the game.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/muesli/termenv"
	"github.com/spf13/pflag"

	"github.com/randalmurphal/burrow/pkg/burrow"
	"github.com/randalmurphal/burrow/pkg/burrow/access"
	"github.com/randalmurphal/burrow/pkg/burrow/config"
	"github.com/randalmurphal/burrow/pkg/burrow/ecs"
	"github.com/randalmurphal/burrow/pkg/burrow/gameworld"
	"github.com/randalmurphal/burrow/pkg/burrow/message"
	"github.com/randalmurphal/burrow/pkg/burrow/observability"
	"github.com/randalmurphal/burrow/pkg/burrow/savegame"
	"github.com/randalmurphal/burrow/pkg/burrow/tui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := pflag.NewFlagSet("burrow", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	fs.BoolP("help", "h", false, "show help")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(fs)
			return nil
		}
		return err
	}
	if help, _ := fs.GetBool("help"); help {
		printHelp(fs)
		return nil
	}
	if extra := fs.Args(); len(extra) > 0 {
		return fmt.Errorf("unexpected argument: %s", extra[0])
	}

	settings, err := config.Load(fs)
	if err != nil {
		return err
	}

	logger, closeLog, err := openLogger(settings)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tel := setupTelemetry(settings, logger)
	defer tel.shutdown(context.WithoutCancel(ctx))

	store, err := openStore(settings)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	sessionID := settings.Session
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	world, startTurn, err := buildWorld(settings, store, sessionID)
	if err != nil {
		return err
	}
	reg := access.NewRegistry(world,
		access.WithLogger(observability.EnrichLogger(logger, "access", sessionID)),
		access.WithMetrics(tel.metrics),
		access.WithTracing(tel.spans),
	)

	renderer := lipgloss.NewRenderer(os.Stdout)
	if profile, ok := colorProfile(settings.Color); ok {
		renderer.SetColorProfile(profile)
	}

	input := make(chan message.InputEvent, settings.ChannelCapacity)
	done := make(chan struct{})
	program := tea.NewProgram(tui.NewApp(input, done), tea.WithAltScreen())
	screen := tui.ProgramScreen{P: program}

	opts := []burrow.Option{
		burrow.WithLogger(logger),
		burrow.WithChannelCapacity(settings.ChannelCapacity),
		burrow.WithTracing(tel.spans),
		burrow.WithMetrics(tel.metrics),
		burrow.WithSessionID(sessionID),
		burrow.WithStyles(tui.NewStyles(renderer)),
		burrow.WithStartTurn(startTurn),
	}
	if store != nil {
		opts = append(opts, burrow.WithSaveStore(store, uint64(settings.SaveEvery)))
	}
	game, err := burrow.NewGame(reg, tui.ChanInput(input), screen, opts...)
	if err != nil {
		return err
	}

	logger.Info("starting",
		slog.String("session_id", sessionID),
		slog.String("layout", settings.Layout),
		slog.Uint64("turn", startTurn),
	)

	gameErr := make(chan error, 1)
	go func() {
		err := game.Run(ctx)
		close(done)
		screen.Quit()
		gameErr <- err
	}()

	_, progErr := program.Run()
	// The program can stop without an Exit event (killed terminal); stop the
	// game too.
	cancel()
	err = <-gameErr
	if errors.Is(err, context.Canceled) {
		err = nil
	}

	logger.Info("stopped", slog.String("session_id", sessionID), slog.Uint64("turn", game.Turn()))
	return errors.Join(err, progErr)
}

func printHelp(fs *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `burrow: a terminal roguelike.

Move with hjkl or the arrow keys, or with q w e a d z s c.
Enter marks the player, F1 opens the menu, Ctrl+C quits.

Usage:
  burrow [flags]

Examples:
  # Play with saves written to burrow.db every 20 turns
  burrow --save sqlite --save-every 20 --session mine

  # Resume that session
  burrow --save sqlite --session mine --load

Flags:
`)
	fs.SetOutput(os.Stderr)
	fs.PrintDefaults()
}

// openLogger returns a file logger per settings.
func openLogger(s config.Settings) (*slog.Logger, func(), error) {
	var (
		w       io.Writer = io.Discard
		closeFn           = func() {}
	)
	if s.LogFile != "" {
		f, err := os.OpenFile(s.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	}
	return newLogger(w, s), closeFn, nil
}

func newLogger(w io.Writer, s config.Settings) *slog.Logger {
	opts := &slog.HandlerOptions{Level: s.SlogLevel()}
	if s.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// openStore returns the configured save store, or nil for BackendNone.
func openStore(s config.Settings) (savegame.Store, error) {
	switch s.SaveBackend {
	case config.BackendMemory:
		return savegame.NewMemoryStore(), nil
	case config.BackendSQLite:
		st, err := savegame.NewSQLiteStore(s.SavePath)
		if err != nil {
			return nil, fmt.Errorf("open save store: %w", err)
		}
		return st, nil
	}
	return nil, nil
}

// buildWorld restores the session's latest save when --load is set and
// builds a fresh world from the layout otherwise. It returns the turn to
// resume from.
func buildWorld(s config.Settings, store savegame.Store, sessionID string) (*ecs.World, uint64, error) {
	if s.Load {
		if store == nil {
			return nil, 0, errors.New("load: no save store configured")
		}
		w, snap, err := savegame.Read(store, sessionID, "")
		if err != nil {
			return nil, 0, fmt.Errorf("load session %s: %w", sessionID, err)
		}
		return w, snap.Turn, nil
	}

	p, ok := gameworld.PreconByName(s.Layout)
	if !ok {
		return nil, 0, fmt.Errorf("unknown layout %q", s.Layout)
	}
	w, err := gameworld.NewWorld(p)
	if err != nil {
		return nil, 0, err
	}
	return w, 0, nil
}

// colorProfile maps a color setting to a termenv profile. "auto" reports
// false so the renderer keeps what it detected.
func colorProfile(name string) (termenv.Profile, bool) {
	switch name {
	case "ascii":
		return termenv.Ascii, true
	case "ansi":
		return termenv.ANSI, true
	case "ansi256":
		return termenv.ANSI256, true
	case "truecolor":
		return termenv.TrueColor, true
	}
	return termenv.Ascii, false
}
