// ms-teams-push posts the latest Global Trade Alert intervention to a
// Microsoft Teams channel as an Adaptive Card. It runs once and exits.
//
// Usage:
//
//	ms-teams-push [--config=<file>] [--dotenv=<file>] [--dry-run]
//	ms-teams-push version
//
// WEBHOOK_URL and GTA_API_KEY must be set in the environment or the dotenv file.
package main

import (
	"os"
)

// Version is set at build time via -ldflags "-X main.Version=..."
var Version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Getenv, os.Stdout, os.Stderr))
}
