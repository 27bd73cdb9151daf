package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"proctl/runner"
)

func main() {
	if len(os.Args) < 2 || os.Args[1] != "run" {
		usage()
		os.Exit(2)
	}

	opts, commands, parseErr := parseRunArgs(os.Args[2:])
	if parseErr != nil {
		fmt.Fprintln(os.Stderr, "proctl:", parseErr)
		usage()
		os.Exit(2)
	}
	if len(commands) == 0 {
		fmt.Fprintln(os.Stderr, "proctl: no command provided")
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var exitCode int
	if len(commands) == 1 {
		report, err := runner.Run(ctx, commands[0], opts)
		if writeErr := writeReport(report); writeErr != nil {
			fmt.Fprintln(os.Stderr, "proctl:", writeErr)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "proctl:", err)
		}
		exitCode = report.ExitCode
		if err != nil && exitCode == 0 {
			exitCode = 1
		}
	} else {
		reports := runner.RunAll(ctx, commands, opts)
		if writeErr := writeReport(reports); writeErr != nil {
			fmt.Fprintln(os.Stderr, "proctl:", writeErr)
		}
		for _, report := range reports {
			if exitCode == 0 && report.ExitCode != 0 {
				exitCode = report.ExitCode
			}
		}
	}
	os.Exit(exitCode)
}

func parseRunArgs(args []string) (runner.Options, [][]string, error) {
	opts := runner.Defaults()
	i := 0
parse:
	for ; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			i++
			break parse
		case arg == "--trace":
			opts.Trace = true
		case arg == "--timeout":
			if i+1 >= len(args) {
				return opts, nil, fmt.Errorf("--timeout needs a value")
			}
			i++
			d, err := time.ParseDuration(args[i])
			if err != nil {
				return opts, nil, fmt.Errorf("bad timeout %q: %w", args[i], err)
			}
			opts.Timeout = d
		case arg == "--jobs":
			if i+1 >= len(args) {
				return opts, nil, fmt.Errorf("--jobs needs a value")
			}
			i++
			n, err := strconv.Atoi(args[i])
			if err != nil || n < 1 {
				return opts, nil, fmt.Errorf("bad jobs value %q", args[i])
			}
			opts.Jobs = n
		default:
			if len(arg) > 0 && arg[0] == '-' {
				return opts, nil, fmt.Errorf("unknown flag: %s", arg)
			}
			break parse
		}
	}
	return opts, splitCommands(args[i:]), nil
}

// splitCommands breaks the argument tail into one command per "--" separated
// group. Empty groups vanish.
func splitCommands(args []string) [][]string {
	var commands [][]string
	var cur []string
	for _, arg := range args {
		if arg == "--" {
			if len(cur) > 0 {
				commands = append(commands, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, arg)
	}
	if len(cur) > 0 {
		commands = append(commands, cur)
	}
	return commands
}

// writeReport persists the run outcome: one report object for a single
// command, an array for a batch.
func writeReport(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile("report.json", data, 0644); err != nil {
		return fmt.Errorf("write report.json: %w", err)
	}
	return nil
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: proctl run [--timeout <dur>] [--trace] [--jobs <n>] -- <command> [args...] [-- <command> [args...]]...")
}
