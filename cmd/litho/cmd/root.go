// Package cmd implements the litho CLI commands.
//
// The command structure follows standard Go CLI patterns with a root command
// that dispatches to subcommands (demo, dump, trace).
package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-drift/litho/pkg/config"
)

// Version information set at build time.
var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
)

// Command represents a CLI command.
type Command struct {
	Name  string
	Short string
	Long  string
	Usage string
	Run   func(args []string) error
}

type rootCommand struct {
	Command
	SubCommands []*Command
}

var rootCmd = &rootCommand{Command: Command{
	Name:  "litho",
	Short: "litho - incremental component mounting in the terminal",
	Long: `litho lays out declarative component trees off the main thread and
mounts them incrementally, reusing pooled content.

Use "litho <command> --help" for more information about a command.`,
	Usage: "litho <command> [flags]",
}}

// Commands registered with the CLI.
var commands = make(map[string]*Command)

// configDir is where litho.yaml is looked up.
var configDir = "."

// RegisterCommand adds a command to the CLI.
func RegisterCommand(cmd *Command) {
	commands[cmd.Name] = cmd
	rootCmd.SubCommands = append(rootCmd.SubCommands, cmd)
}

// Execute runs the CLI with the given arguments.
func Execute() error {
	args := os.Args[1:]

	if len(args) == 0 {
		printHelp()
		return nil
	}

	var filteredArgs []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-h", "--help", "help":
			if len(filteredArgs) == 0 {
				printHelp()
				return nil
			}
			filteredArgs = append(filteredArgs, arg)
		case "-v", "--version", "version":
			if len(filteredArgs) == 0 {
				fmt.Printf("litho version %s (built %s)\n", Version, BuildTime)
				return nil
			}
			filteredArgs = append(filteredArgs, arg)
		case "--config-dir":
			if i+1 >= len(args) {
				return fmt.Errorf("--config-dir requires a directory path")
			}
			configDir = args[i+1]
			i++
		default:
			if strings.HasPrefix(arg, "--config-dir=") {
				configDir = strings.TrimPrefix(arg, "--config-dir=")
				continue
			}
			filteredArgs = append(filteredArgs, arg)
		}
	}
	args = filteredArgs

	if len(args) == 0 {
		printHelp()
		return nil
	}

	cmdName := args[0]
	cmd, ok := commands[cmdName]
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", cmdName)
		printHelp()
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	cmdArgs := args[1:]
	for _, arg := range cmdArgs {
		if arg == "-h" || arg == "--help" || arg == "help" {
			printCommandHelp(cmd)
			return nil
		}
	}

	return cmd.Run(cmdArgs)
}

// loadConfig reads litho.yaml from the config directory, falling back to
// the defaults when there is none.
func loadConfig() (config.Config, error) {
	cfg, err := config.LoadOptional(configDir)
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// intFlag extracts "--name N" or "--name=N" from args.
func intFlag(args []string, name string, def int) (int, []string, error) {
	val := def
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		var raw string
		switch {
		case arg == name:
			if i+1 >= len(args) {
				return 0, nil, fmt.Errorf("%s requires a value", name)
			}
			raw = args[i+1]
			i++
		case strings.HasPrefix(arg, name+"="):
			raw = strings.TrimPrefix(arg, name+"=")
		default:
			out = append(out, arg)
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0, nil, fmt.Errorf("%s: invalid number %q", name, raw)
		}
		val = n
	}
	return val, out, nil
}

// stringFlag extracts "--name V" or "--name=V" from args.
func stringFlag(args []string, name, def string) (string, []string, error) {
	val := def
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == name:
			if i+1 >= len(args) {
				return "", nil, fmt.Errorf("%s requires a value", name)
			}
			val = args[i+1]
			i++
		case strings.HasPrefix(arg, name+"="):
			val = strings.TrimPrefix(arg, name+"=")
		default:
			out = append(out, arg)
		}
	}
	return val, out, nil
}

func printHelp() {
	fmt.Println(rootCmd.Long)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  %s\n", rootCmd.Usage)
	fmt.Println()
	fmt.Println("Commands:")
	for _, sub := range rootCmd.SubCommands {
		fmt.Printf("  %-14s %s\n", sub.Name, sub.Short)
	}
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -h, --help           Show help for a command")
	fmt.Println("  -v, --version        Show version information")
	fmt.Println("  --config-dir DIR     Directory holding litho.yaml (default: .)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  litho demo                  Scroll an incrementally mounted feed")
	fmt.Println("  litho dump --items 5        Print the layout and render tree")
	fmt.Println("  litho trace record t.db     Record a scripted session")
}

func printCommandHelp(cmd *Command) {
	fmt.Println(cmd.Long)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  %s\n", cmd.Usage)
}
