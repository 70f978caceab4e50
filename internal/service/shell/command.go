// Package shell hosts the alarm engine in a terminal: it wires the
// configured persistence backend, the tone generator, and the console
// notification surface, renders the clock face once per second, and maps
// line commands onto the engine's operations.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/oshokin/alarm-clock/internal/audio"
	"github.com/oshokin/alarm-clock/internal/clockface"
	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/repository/alarms"
	"github.com/oshokin/alarm-clock/internal/service/engine"
	"github.com/oshokin/alarm-clock/internal/service/ring"
)

// Options controls the alarm-clock process and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// StateFile overrides the persistence location from the settings.
	StateFile string
}

// Run starts the clock and blocks until the context is canceled or the
// user quits. An interrupt while an alarm rings dismisses it instead of
// exiting, mirroring the escape affordance of the original surface.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "alarm-clock")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if opts.StateFile != "" {
		settings.StateFile = opts.StateFile
	}

	configureLogging(settings)

	repo, closeRepo, err := openRepository(ctx, settings)
	if err != nil {
		return err
	}
	defer closeRepo()

	var outMu sync.Mutex

	beeper := audio.NewBeeper(settings.ToneFrequency, playbackSink)
	notifier := newConsoleNotifier(os.Stdout, &outMu)
	sessions := ring.NewManager(beeper, notifier)
	eng := engine.New(ctx, repo, sessions, engine.WithTickInterval(settings.TickInterval))

	logger.InfoKV(ctx, "Alarm clock started",
		"backend", settings.Backend, "tick_interval", settings.TickInterval)

	go eng.Run(ctx)

	return interact(ctx, eng, os.Stdin, os.Stdout, &outMu)
}

// configureLogging applies the log level and optional rotating file.
func configureLogging(settings *config.Config) {
	level, ok := logger.ParseLogLevel(settings.LogLevel)
	if !ok {
		level = logger.Level()
	}

	if settings.LogFile != "" {
		logger.SetLogger(logger.NewWithRotation(zap.NewAtomicLevelAt(level), settings.LogFile))

		return
	}

	logger.SetLevel(level)
}

// openRepository creates the configured persistence backend and a
// release function for it.
func openRepository(ctx context.Context, settings *config.Config) (alarms.Repository, func(), error) {
	if settings.Backend == config.BackendSQLite {
		repo, err := alarms.NewSQLiteRepository(ctx, settings.DatabaseFile)
		if err != nil {
			return nil, nil, fmt.Errorf("open alarm database: %w", err)
		}

		return repo, func() {
			if closeErr := repo.Close(); closeErr != nil {
				logger.WarnKV(ctx, "Failed to close alarm database", "error", closeErr)
			}
		}, nil
	}

	return alarms.NewFileRepository(settings.StateFile), func() {}, nil
}

// interact renders the clock face and processes user commands until the
// context ends or the user quits.
func interact(ctx context.Context, eng *engine.Engine, in io.Reader, out io.Writer, outMu *sync.Mutex) error {
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

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

	printHelp(out)

	ticker := clockTicker(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-interrupts:
			// The global cancel affordance: dismiss when ringing, quit otherwise.
			if !eng.Dismiss(ctx) {
				return nil
			}
		case snapshot := <-ticker:
			renderClock(out, outMu, snapshot)
		case line, ok := <-lines:
			if !ok {
				return nil
			}

			if quit := handleCommand(ctx, eng, out, line); quit {
				return nil
			}
		}
	}
}

// clockTicker emits a clock face snapshot once per second.
func clockTicker(ctx context.Context) <-chan clockface.Snapshot {
	ticks := make(chan clockface.Snapshot, 1)

	go func() {
		defer close(ticks)

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				// Drop the frame when the reader is busy with a command.
				select {
				case ticks <- clockface.At(now):
				default:
				}
			}
		}
	}()

	return ticks
}

// renderClock redraws the clock face line in place.
func renderClock(out io.Writer, outMu *sync.Mutex, snapshot clockface.Snapshot) {
	outMu.Lock()
	defer outMu.Unlock()

	_, _ = fmt.Fprintf(out, "\r%s:%s %s  %s > ",
		color.HiCyanString(snapshot.Time),
		color.CyanString(snapshot.Seconds),
		color.HiCyanString(snapshot.Meridiem),
		color.HiBlackString(snapshot.Date))
}

// handleCommand executes one user command line, reporting whether the
// shell should exit.
func handleCommand(ctx context.Context, eng *engine.Engine, out io.Writer, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	switch fields[0] {
	case "add":
		addAlarmCommand(ctx, eng, out, fields[1:])
	case "quick":
		if a, err := eng.QuickAlarm(ctx); err == nil {
			_, _ = fmt.Fprintf(out, "\nquick alarm set for %s\n", a.Time)
		}
	case "list":
		listAlarms(out, eng.Alarms())
	case "toggle":
		toggleAlarmCommand(ctx, eng, out, fields[1:])
	case "delete":
		deleteAlarmCommand(ctx, eng, out, fields[1:])
	case "dismiss":
		if !eng.Dismiss(ctx) {
			_, _ = fmt.Fprintln(out, "\nnothing is ringing")
		}
	case "snooze":
		if snoozed := eng.Snooze(ctx); snoozed != nil {
			_, _ = fmt.Fprintf(out, "\nsnoozed for 5 minutes (%s)\n", snoozed.Time)
		} else {
			_, _ = fmt.Fprintln(out, "\nnothing is ringing")
		}
	case "help":
		printHelp(out)
	case "quit", "exit":
		return true
	default:
		_, _ = fmt.Fprintf(out, "\nunknown command %q, try 'help'\n", fields[0])
	}

	return false
}

// addAlarmCommand parses "add HH:MM [daily] [label...]".
func addAlarmCommand(ctx context.Context, eng *engine.Engine, out io.Writer, args []string) {
	if len(args) == 0 {
		_, _ = fmt.Fprintln(out, "\nusage: add HH:MM [daily] [label]")

		return
	}

	var (
		timeOfDay = args[0]
		repeat    = alarm.RepeatOnce
		rest      = args[1:]
	)

	if len(rest) > 0 && rest[0] == "daily" {
		repeat = alarm.RepeatDaily
		rest = rest[1:]
	}

	added, err := eng.AddAlarm(ctx, timeOfDay, strings.Join(rest, " "), repeat)
	if err != nil {
		_, _ = fmt.Fprintf(out, "\ncannot add alarm: %v\n", err)

		return
	}

	_, _ = fmt.Fprintf(out, "\nalarm set for %s (%s)\n", added.Time, added.Repeat)
}

// toggleAlarmCommand parses "toggle <id>".
func toggleAlarmCommand(ctx context.Context, eng *engine.Engine, out io.Writer, args []string) {
	if len(args) == 0 {
		_, _ = fmt.Fprintln(out, "\nusage: toggle <id>")

		return
	}

	toggled, err := eng.ToggleAlarm(ctx, args[0])
	if err != nil {
		_, _ = fmt.Fprintf(out, "\ncannot toggle alarm: %v\n", err)

		return
	}

	state := "off"
	if toggled.Enabled {
		state = "on"
	}

	_, _ = fmt.Fprintf(out, "\nalarm %s is now %s\n", toggled.ID, state)
}

// deleteAlarmCommand parses "delete <id>".
func deleteAlarmCommand(ctx context.Context, eng *engine.Engine, out io.Writer, args []string) {
	if len(args) == 0 {
		_, _ = fmt.Fprintln(out, "\nusage: delete <id>")

		return
	}

	if err := eng.DeleteAlarm(ctx, args[0]); err != nil {
		_, _ = fmt.Fprintf(out, "\ncannot delete alarm: %v\n", err)

		return
	}

	_, _ = fmt.Fprintln(out, "\nalarm deleted")
}

// listAlarms prints the collection in its deterministic order.
func listAlarms(out io.Writer, listed []*alarm.Alarm) {
	if len(listed) == 0 {
		_, _ = fmt.Fprintln(out, "\nno alarms set")

		return
	}

	_, _ = fmt.Fprintln(out)

	for _, a := range listed {
		state := color.HiBlackString("off")
		if a.Enabled {
			state = color.HiGreenString("on")
		}

		repeat := "Once"
		if a.Repeat == alarm.RepeatDaily {
			repeat = "Daily"
		}

		_, _ = fmt.Fprintf(out, "%s  %s  %s [%s]  id=%s\n",
			color.HiWhiteString(a.Time), state, a.DisplayLabel(), repeat, a.ID)
	}
}

// printHelp lists the available commands.
func printHelp(out io.Writer) {
	_, _ = fmt.Fprintln(out, "\ncommands: add HH:MM [daily] [label] | quick | list | toggle <id> | delete <id> | dismiss | snooze | help | quit")
}
