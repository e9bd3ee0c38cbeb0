package cmd

import (
	"fmt"
	"strings"

	"github.com/go-drift/litho/cmd/litho/internal/tui"
	"github.com/go-drift/litho/pkg/trace"
)

func init() {
	RegisterCommand(&Command{
		Name:  "trace",
		Short: "Record and inspect mount traces",
		Long: `Record mount events of a scripted demo session into a bbolt database,
and print them back.

Subcommands:
  record DB      Run the scripted session, appending events to DB
  show DB        Print the events stored in DB
  clear DB       Delete every event stored in DB

The scripted session lays the feed out, scrolls two pages, moves the
selection, removes a row and adds one.

Flags:
  --items N      Number of rows for record (default 50)
  --from N       First sequence number for show (default 1)
  --kind KIND    Only show events of KIND (mount, unmount, bind, ...)`,
		Usage: "litho trace <record|show|clear> DB [flags]",
		Run:   runTrace,
	})
}

func runTrace(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("subcommand and database are required\n\nUsage: litho trace <record|show|clear> DB")
	}
	sub, path, rest := strings.ToLower(args[0]), args[1], args[2:]
	switch sub {
	case "record":
		return traceRecord(path, rest)
	case "show":
		return traceShow(path, rest)
	case "clear":
		sink, err := trace.OpenBoltSink(path)
		if err != nil {
			return err
		}
		defer sink.Close()
		return sink.Clear()
	default:
		return fmt.Errorf("unknown subcommand %q (use record, show or clear)", sub)
	}
}

func traceRecord(path string, args []string) error {
	items, args, err := intFlag(args, "--items", defaultItems)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Extensions.Tracing = true

	sink, err := trace.OpenBoltSink(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	before, err := sink.Count()
	if err != nil {
		sink.Close()
		return err
	}
	rec := trace.NewRecorder(0, sink)

	m := tui.New(cfg, items, rec)
	m.Resize(defaultWidth, defaultHeight)
	m.Run(func() {
		m.ScrollBy(defaultHeight)
		m.ScrollBy(defaultHeight)
		m.Select(3)
		m.RemoveSelected()
		m.Add()
		m.LithoView().EndTransitions()
	})
	m.Close()

	// Close the recorder first, it closes the sink.
	if err := rec.Close(); err != nil {
		return err
	}
	reopened, err := trace.OpenBoltSink(path)
	if err != nil {
		return err
	}
	defer reopened.Close()
	after, err := reopened.Count()
	if err != nil {
		return err
	}
	fmt.Printf("Recorded %d events to %s (%d total)\n", after-before, path, after)
	return nil
}

func traceShow(path string, args []string) error {
	from, args, err := intFlag(args, "--from", 1)
	if err != nil {
		return err
	}
	kind, args, err := stringFlag(args, "--kind", "")
	if err != nil {
		return err
	}
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}

	sink, err := trace.OpenBoltSink(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer sink.Close()

	events, err := sink.Events(uint64(max(from, 0)), 0)
	if err != nil {
		return err
	}
	shown := 0
	for _, ev := range events {
		if kind != "" && ev.Kind != kind {
			continue
		}
		fmt.Println(ev)
		shown++
	}
	fmt.Printf("\n%d of %d events\n", shown, len(events))
	return nil
}
