// Orderdesk-server is a demo platform backend for the orderdesk client.
//
// It serves records, the product catalog and order creation over an HTTP JSON
// API backed by SQLite, publishes created orders on a websocket event feed and
// can announce itself over mDNS.
//
// Usage:
//
//	orderdesk-server serve [flags]
//
// See 'orderdesk-server serve --help' for available options.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/orderdesk/internal/server"
	"github.com/muurk/orderdesk/internal/store"
	"github.com/muurk/orderdesk/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "orderdesk-server",
	Short: "OrderDesk demo platform backend",
	Long: `A standalone backend implementing the platform API the orderdesk client uses.

It is meant for development and demos: records and products are seeded from a
YAML file into a SQLite database, and orders are stored with sequential order
numbers.

Note: For viewing records and creating orders, use the 'orderdesk' client.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Server command and flags
var (
	certPath     string
	keyPath      string
	selfSigned   bool
	host         string
	port         int
	token        string
	dbPath       string
	seedPath     string
	advertise    bool
	instanceName string
	logLevel     string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the platform backend",
	Long: `Start the demo platform backend.

Without --db the catalog lives in memory and is reseeded on every start. With
--db the database file is created and seeded once, then reused.

TLS is enabled by providing --cert and --key, or with --self-signed which
generates an in-memory certificate for the host.`,
	Example: `  # In-memory catalog on port 8080
  orderdesk-server serve

  # Persistent catalog with a custom seed and an API token
  orderdesk-server serve --db ./orderdesk.db --seed ./seed.yaml --token s3cret

  # TLS with a generated certificate, announced over mDNS
  orderdesk-server serve --self-signed --port 8443 --advertise

  # TLS with your own certificate
  orderdesk-server serve --cert cert.pem --key key.pem --log-level debug`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&certPath, "cert", "", "Path to TLS certificate file")
	serveCmd.Flags().StringVar(&keyPath, "key", "", "Path to TLS private key file")
	serveCmd.Flags().BoolVar(&selfSigned, "self-signed", false, "Serve TLS with a generated self-signed certificate")
	serveCmd.Flags().StringVar(&host, "host", "", "Server hostname (empty = listen on all interfaces)")
	serveCmd.Flags().IntVar(&port, "port", 8080, "Server port")
	serveCmd.Flags().StringVar(&token, "token", os.Getenv("ORDERDESK_TOKEN"), "Bearer token required on API calls (default $ORDERDESK_TOKEN, empty = no auth)")
	serveCmd.Flags().StringVar(&dbPath, "db", store.MemoryPath, "SQLite database path")
	serveCmd.Flags().StringVar(&seedPath, "seed", "", "YAML seed file applied to an empty catalog (default: built-in seed)")
	serveCmd.Flags().BoolVar(&advertise, "advertise", false, "Announce the backend over mDNS")
	serveCmd.Flags().StringVar(&instanceName, "name", "", "mDNS instance name (default: orderdesk-<hostname>)")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Validate: Either both cert and key are provided, or neither
	if (certPath != "" && keyPath == "") || (certPath == "" && keyPath != "") {
		return fmt.Errorf("both --cert and --key must be provided together")
	}
	if selfSigned && certPath != "" {
		return fmt.Errorf("--self-signed cannot be combined with --cert/--key")
	}

	// If files are provided, validate they exist
	if certPath != "" {
		if _, err := os.Stat(certPath); os.IsNotExist(err) {
			return fmt.Errorf("certificate file not found: %s", certPath)
		}
		if _, err := os.Stat(keyPath); os.IsNotExist(err) {
			return fmt.Errorf("private key file not found: %s", keyPath)
		}
	}
	if seedPath != "" {
		if _, err := os.Stat(seedPath); err != nil {
			return fmt.Errorf("cannot access seed file: %w", err)
		}
	}

	// Create server configuration
	config := &server.Config{
		Host:         host,
		Port:         port,
		CertPath:     certPath,
		KeyPath:      keyPath,
		GenerateCert: selfSigned,
		Token:        token,
		DBPath:       dbPath,
		SeedPath:     seedPath,
		Advertise:    advertise,
		InstanceName: instanceName,
		LogLevel:     logLevel,
	}

	// Create and start server
	srv, err := server.New(config)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("orderdesk-server %s (commit: %s)\n", version.Version, version.Commit)
	},
}
