package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/scbrown/blockwright/internal/server"
	"github.com/scbrown/blockwright/internal/store"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an HTTP server for generating programs and reading history",
	Long: `Start an HTTP server that compiles requests and wraps the local SQLite
history store.

The server provides a JSON API at /api/v1/:
  POST /generate              compile {"text", "format"}
  GET  /actions               available actions
  GET  /blocks/{id}           a block definition
  GET  /concepts/{name}       a concept explanation (?level=)
  GET  /status                loaded knowledge summary
  GET  /generations           history (?since, difficulty, understood, limit)
  POST /generations           record a generation
  GET  /generations/{id}      one history entry
  GET  /stats                 history statistics
  GET  /health                health check

Use bw config to set store_mode=remote and remote_url to point other bw
instances at this server instead of a local database.`,
	Example: `  # Start server on default port
  bw serve

  # Start on a custom address
  bw serve --addr :9090

  # Start with a specific database
  bw serve --db /path/to/history.db --addr localhost:7274`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.New(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		opts := []server.Option{server.WithLogger(log)}
		if !recordHistory {
			opts = append(opts, server.WithoutHistory())
		}
		srv := server.New(newCompiler(), s, opts...)

		// Listen first so we can report the actual address.
		ln, err := net.Listen("tcp", serveAddr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", serveAddr, err)
		}

		fmt.Fprintf(os.Stderr, "bw serve listening on %s\n", ln.Addr())
		log.Info("server started", "addr", ln.Addr().String(), "db", dbPath, "record", recordHistory)

		// Graceful shutdown on SIGINT/SIGTERM.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Serve(ln)
		}()

		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr, "shutting down...")
			return srv.Shutdown(context.Background())
		case err := <-errCh:
			return err
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":7274", "address to listen on (host:port)")
	rootCmd.AddCommand(serveCmd)
}
