package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/go-drift/litho/cmd/litho/internal/tui"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	defaultItems  = 50
)

func init() {
	RegisterCommand(&Command{
		Name:  "demo",
		Short: "Scroll an incrementally mounted feed",
		Long: `Show a feed of rows in the terminal.

Only rows inside the window are mounted. Scrolling mounts rows entering the
window and unmounts rows leaving it, reusing pooled content. Removed rows
stay mounted for their disappear transition.

Keys:
  up/down, k/j   Move the selection
  pgup/pgdown    Scroll by a page
  a              Add a row after the selection
  x              Remove the selected row
  r              Unmount everything and remount
  q              Quit

When stdout is not a terminal, a single frame is printed instead.

Flags:
  --items N      Number of rows (default 50)`,
		Usage: "litho demo [--items N]",
		Run:   runDemo,
	})
}

func runDemo(args []string) error {
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

	m := tui.New(cfg, items, nil)
	if !isTerminal(os.Stdout) {
		width, height := terminalSize()
		m.Resize(width, height)
		fmt.Println(m.Frame(false))
		m.Close()
		return nil
	}

	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// terminalSize returns the size of stdout, or the default size when it is
// not a terminal.
func terminalSize() (int, int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 || height <= 0 {
		return defaultWidth, defaultHeight
	}
	return width, height
}
