// Command autoping-setup is a one-shot interactive flow that configures one
// AutoPing watchdog entry on a Power Switch Pro device: it verifies
// connectivity, shows the entries already configured, asks for the new
// entry's parameters and a confirmation, then creates the entry.
//
// Connection settings come from the POWER_SWITCH_* environment variables
// (optionally via a .env file); anything missing is prompted for.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/pdu-tools/powerswitch-mcp/pkg/powerswitch"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: autoping-setup [flags]\n\nInteractively add an AutoPing watchdog entry to a Power Switch Pro device.\n\nFlags:\n")
		flag.PrintDefaults()
	}

	envFile := flag.String("env", ".env", "path to .env file (ignored if missing)")
	flag.Parse()

	if err := run(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(envFile string) error {
	if err := loadDotEnv(envFile); err != nil {
		return err
	}

	ctx := context.Background()

	conn, err := promptConnection()
	if err != nil {
		return err
	}

	client, err := powerswitch.New(conn)
	if err != nil {
		return err
	}

	fmt.Printf("\nConnecting to Power Switch Pro at %s...\n", conn.Host)
	if err := client.Verify(ctx); err != nil {
		return fmt.Errorf("failed to connect to device: %w", err)
	}
	fmt.Println("Connected successfully!")

	entries, err := client.AutoPing.List(ctx)
	if err != nil {
		return fmt.Errorf("list autoping entries: %w", err)
	}
	fmt.Println(renderEntries(entries))

	params, err := promptEntry()
	if err != nil {
		return err
	}

	ok, err := confirmEntry(params)
	if err != nil {
		return err
	}
	if !ok {
		// Declined: no mutation, clean exit.
		fmt.Println("Cancelled.")
		return nil
	}

	created, err := client.AutoPing.Add(ctx, params)
	if err != nil {
		return fmt.Errorf("add autoping entry: %w", err)
	}

	fmt.Println(renderCreated(created))
	return nil
}

// loadDotEnv loads environment variables from path. Missing files are ignored.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
