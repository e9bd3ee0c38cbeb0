package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/go-drift/litho/cmd/litho/internal/sample"
	"github.com/go-drift/litho/pkg/flex"
	"github.com/go-drift/litho/pkg/litho"
	"github.com/go-drift/litho/pkg/node"
)

func init() {
	RegisterCommand(&Command{
		Name:  "dump",
		Short: "Print the layout and render tree of the sample feed",
		Long: `Lay out the sample feed and print its layout tree, its render tree and
the reconciliation counters.

With --select, the feed is laid out a second time with that row selected,
showing how much of the previous tree was reused.

Flags:
  --items N      Number of rows (default 5)
  --width N      Layout width in cells (default: terminal width)
  --select N     Relayout with row N selected`,
		Usage: "litho dump [--items N] [--width N] [--select N]",
		Run:   runDump,
	})
}

func runDump(args []string) error {
	items, args, err := intFlag(args, "--items", 5)
	if err != nil {
		return err
	}
	termWidth, _ := terminalSize()
	width, args, err := intFlag(args, "--width", termWidth)
	if err != nil {
		return err
	}
	selected, args, err := intFlag(args, "--select", -1)
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

	main := litho.NewLooper()
	feed := sample.Feed{Title: "litho dump", Items: sample.Items(items), Selected: -1}
	tree := litho.NewComponentTree(sample.Build(feed), litho.TreeOptions{Config: cfg, Main: main})
	defer tree.Release()

	main.Run(func() { tree.SetSizeSpec(flex.ExactSpec(width), flex.UnspecifiedSpec()) })
	tree.WaitIdle()
	main.RunUntilIdle()
	ls := tree.Committed()
	if ls == nil {
		return fmt.Errorf("layout did not commit")
	}
	printLayout(ls)

	if selected >= 0 {
		feed.Selected = selected
		main.Run(func() { tree.SetRoot(sample.Build(feed)) })
		tree.WaitIdle()
		main.RunUntilIdle()
		fmt.Printf("\nAfter selecting row %d:\n\n", selected)
		printLayout(tree.Committed())
	}
	return nil
}

func printLayout(ls *litho.LayoutState) {
	fmt.Printf("Layout v%d (%dx%d):\n", ls.Version(), ls.Width(), ls.Height())
	fmt.Print(ls.Dump())
	fmt.Println()
	fmt.Println("Render tree:")
	fmt.Print(ls.DumpRenderTree())
	fmt.Println()
	printStats(ls.Stats())
}

func printStats(s node.Stats) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "nodes\tcreated\tcopied\treused\treconciled\trecreated")
	fmt.Fprintf(w, "\t%d\t%d\t%d\t%d\t%d\n", s.Created, s.Copied, s.Reused, s.Reconciled, s.Recreated)
	w.Flush()
}
