package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// Supported subcommands:
// - login/logout/whoami: manage the stored session
// - list/get/types:      read assets and asset types
// - generate:            mint a QR code, barcode or NFC tag and wait for it
// - scan:                record a scan by asset id or scanned payload
// - export:              write an asset, label or audit trail report
// - import:              bulk import assets from a file

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = []command{
	{name: "login", summary: "Store a bearer token", run: runLogin},
	{name: "logout", summary: "Forget the stored token", run: runLogout},
	{name: "whoami", summary: "Show the session status", run: runWhoami},
	{name: "list", summary: "List assets with filters", run: runList},
	{name: "get", summary: "Show one asset as JSON", run: runGet},
	{name: "generate", summary: "Generate a digital tag and wait until it is ready", run: runGenerate},
	{name: "scan", summary: "Record an asset scan", run: runScan},
	{name: "export", summary: "Export a PDF or Excel report", run: runExport},
	{name: "import", summary: "Bulk import assets", run: runImport},
	{name: "types", summary: "List asset types", run: runTypes},
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd, ok := findCommand(os.Args[1])
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cmd, os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd command, args []string) error {
	a, err := newApp(ctx, os.Stdout)
	if err != nil {
		return err
	}
	defer a.Close()

	return cmd.run(ctx, a, args)
}

func findCommand(name string) (command, bool) {
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd, true
		}
	}

	return command{}, false
}

func newFlagSet(name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: assetctl %s %s\n\nOptions:\n", name, usage)
		fs.PrintDefaults()
	}

	return fs
}

func printUsage() {
	fmt.Println("Asset tracking command line client")
	fmt.Println()
	fmt.Println("Usage: assetctl <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	for _, cmd := range commands {
		fmt.Printf("  %-10s %s\n", cmd.name, cmd.summary)
	}
	fmt.Println()
	fmt.Println("Run 'assetctl <command> -h' for command options.")
	fmt.Println("Configuration is read from config/config.yaml; API_BASEURL and friends override it.")
}
