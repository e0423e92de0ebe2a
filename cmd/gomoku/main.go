package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/luxquant/gomoku/internal/config"
	"github.com/luxquant/gomoku/internal/game"
	"github.com/luxquant/gomoku/internal/spectate"
)

const candidatePreview = 10

var errQuit = errors.New("quit")

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "gomoku:", err)
		os.Exit(1)
	}
}

func run(args []string, in io.Reader, out io.Writer) error {
	cfg, err := parseConfig(args)
	if err != nil {
		return err
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(cfg.Level()).
		With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store := config.NewStore(cfg)
	session := game.New(cfg, logger)
	g, gctx := errgroup.WithContext(ctx)

	if cfg.SpectateAddr != "" {
		srv := spectate.New(spectate.Config{
			Addr:      cfg.SpectateAddr,
			Heartbeat: time.Duration(cfg.SpectateHeartbeatS) * time.Second,
			Logger:    logger,
			Settings:  store,
		}, session)
		session.Observe(srv.Observe)
		g.Go(func() error { return srv.Run(gctx) })
	}

	g.Go(func() error {
		defer cancel()
		err := play(gctx, session, store, in, out)
		if errors.Is(err, errQuit) {
			return nil
		}
		return err
	})
	return g.Wait()
}

// parseConfig loads the config file and environment, then applies the flags
// that were set explicitly on the command line.
func parseConfig(args []string) (config.Config, error) {
	defaults := config.DefaultConfig()
	fs := flag.NewFlagSet("gomoku", flag.ContinueOnError)
	path := fs.String("config", "", "path to a JSON config file")
	mode := fs.String("mode", defaults.Mode, "ai-ai, human-ai or human-human")
	first := fs.String("first", defaults.First, "who plays black in human-ai mode: human or ai")
	size := fs.Int("size", defaults.BoardSize, "board size")
	depth := fs.Int("depth", defaults.AiDepth, "engine search depth")
	seed := fs.Uint64("seed", defaults.Seed, "seed for hashing keys and opening choices")
	spectateAddr := fs.String("spectate", defaults.SpectateAddr, "address for the read-only spectator server, e.g. :8080")
	level := fs.String("log-level", defaults.LogLevel, "debug, info, warn or error")
	delay := fs.Int("delay", defaults.MoveDelayMs, "pause between engine moves in milliseconds")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, errors.Wrap(err, "parse flags")
	}

	cfg, err := config.Load(*path)
	if err != nil {
		return config.Config{}, err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			cfg.Mode = *mode
		case "first":
			cfg.First = *first
		case "size":
			cfg.BoardSize = *size
		case "depth":
			cfg.AiDepth = *depth
		case "seed":
			cfg.Seed = *seed
		case "spectate":
			cfg.SpectateAddr = *spectateAddr
		case "log-level":
			cfg.LogLevel = *level
		case "delay":
			cfg.MoveDelayMs = *delay
		}
	})
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func play(ctx context.Context, session *game.Session, store *config.Store, in io.Reader, out io.Writer) error {
	lines := readLines(ctx, in)

	session.Start()
	fmt.Fprint(out, session.Render())
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		snap := session.Snapshot()
		if snap.Status.Over() {
			fmt.Fprintln(out, outcome(snap))
			return nil
		}

		if !session.CurrentPlayerIsHuman() {
			moved, err := session.Step()
			if err != nil {
				return errors.Wrap(err, "engine move")
			}
			if moved {
				printLastMove(out, session)
			}
			if delay := time.Duration(store.Get().MoveDelayMs) * time.Millisecond; delay > 0 {
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(delay):
				}
			}
			continue
		}

		fmt.Fprint(out, game.RenderCandidates(session.Candidates(), candidatePreview))
		fmt.Fprintf(out, "%s to move (x y, u to undo, n for a new game, set size|depth N, q to quit): ", snap.ToMove)
		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				return errQuit
			}
			line = l
		}
		if err := handleInput(session, store, line, out); err != nil {
			return err
		}
	}
}

func handleInput(session *game.Session, store *config.Store, line string, out io.Writer) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "q", "quit":
		return errQuit
	case "n", "new":
		session.Reset()
		session.Start()
		fmt.Fprint(out, session.Render())
		return nil
	case "set":
		if err := applySetting(session, store, fields[1:]); err != nil {
			fmt.Fprintln(out, "cannot change settings:", err)
			return nil
		}
		session.Start()
		fmt.Fprint(out, session.Render())
		return nil
	case "u", "undo":
		if err := session.Undo(); err != nil {
			fmt.Fprintln(out, "cannot undo:", err)
			return nil
		}
		fmt.Fprint(out, session.Render())
		return nil
	}
	x, y, err := parseMove(fields)
	if err != nil {
		fmt.Fprintln(out, err)
		return nil
	}
	if err := session.Submit(x, y); err != nil {
		fmt.Fprintln(out, err)
		return nil
	}
	printLastMove(out, session)
	return nil
}

func outcome(snap game.Snapshot) string {
	var result string
	switch snap.Status {
	case game.StatusBlackWon:
		result = "Black wins"
	case game.StatusWhiteWon:
		result = "White wins"
	default:
		result = "Draw"
	}
	if snap.Message != "" {
		result += " (" + snap.Message + ")"
	}
	return fmt.Sprintf("%s after %d rounds", result, snap.Round)
}

func parseMove(fields []string) (int, int, error) {
	if len(fields) != 2 {
		return 0, 0, errors.Errorf("expected two coordinates, got %d fields", len(fields))
	}
	x, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, errors.Wrapf(err, "bad x coordinate %q", fields[0])
	}
	y, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, errors.Wrapf(err, "bad y coordinate %q", fields[1])
	}
	return x, y, nil
}

// applySetting changes one setting in store and starts a new game with it.
func applySetting(session *game.Session, store *config.Store, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: set size|depth N")
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return errors.Wrapf(err, "bad value %q", args[1])
	}
	cfg := store.Get()
	switch args[0] {
	case "size":
		cfg.BoardSize = n
	case "depth":
		cfg.AiDepth = n
	default:
		return errors.Errorf("unknown setting %q", args[0])
	}
	if err := store.Update(cfg); err != nil {
		return err
	}
	return session.Configure(cfg)
}

func printLastMove(out io.Writer, session *game.Session) {
	history := session.History()
	if len(history) > 0 {
		last := history[len(history)-1].View()
		if last.IsAI {
			fmt.Fprintf(out, "%s plays (%d,%d) score %d [%s] in %.1fms\n",
				last.Player, last.X, last.Y, last.Score, last.Reason, last.ElapsedMs)
			if len(last.Path) > 0 {
				fmt.Fprintf(out, "  line: %s\n", game.FormatPath(last.Path, candidatePreview))
			}
			if a := last.Analysis; a != nil && (a.Threat != "" || a.Opportunity != "") {
				fmt.Fprintf(out, "  threat %s, opportunity %s\n", orNone(a.Threat), orNone(a.Opportunity))
			}
			fmt.Fprintf(out, "  %d searches, %d cache hits\n", last.Searches, last.CacheHits)
		} else {
			fmt.Fprintf(out, "%s plays (%d,%d)\n", last.Player, last.X, last.Y)
		}
	}
	fmt.Fprint(out, session.Render())
}

func orNone(level string) string {
	if level == "" {
		return "none"
	}
	return level
}

// readLines feeds stdin lines to a channel so the game loop can also watch
// for cancellation. The channel is closed at EOF; the reader stops sending
// once ctx is done.
func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}
