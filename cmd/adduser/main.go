package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"expensetracker/internal/cli"
	"expensetracker/internal/services"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	name := fs.String("name", "", "Display name for the new user")
	email := fs.String("email", "", "Email address (optional)")
	key := fs.String("key", "", "API key (optional, generated when omitted)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" {
		fmt.Fprintln(stdout, "Usage: adduser -name <name> [-email <email>] [-key <api_key>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flag: name")
	}

	logger := cli.SetupLogger()
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()
	store := cli.OpenStore(ctx, logger, cfg)
	svc := services.NewTrackerService(store)
	defer svc.Close()

	var emailPtr *string
	if *email != "" {
		emailPtr = email
	}

	user, err := svc.CreateUser(ctx, *name, emailPtr, *key)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Fprintf(stdout, "User %q created with ID %d\n", user.Name, user.ID)
	fmt.Fprintf(stdout, "API key: %s\n", user.APIKey)
	return nil
}
