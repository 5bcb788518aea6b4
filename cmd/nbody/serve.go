package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/san-kum/nbody/internal/monitor"
	"github.com/san-kum/nbody/internal/storage"
)

func newServeCmd() *cobra.Command {
	var (
		addr    string
		open    bool
		origins []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "serve stored runs over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := openStore()
			defer st.Close()
			if err := st.Init(); err != nil {
				return err
			}

			url, srv, err := monitor.New(st).WithOrigins(origins...).Start(addr)
			if err != nil {
				return err
			}
			if open {
				if err := browser.OpenURL(url + "/api/runs"); err != nil {
					slog.Warn("could not open browser", "component", "cli", "error", err)
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			<-ctx.Done()

			shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdown)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "listen address")
	cmd.Flags().BoolVar(&open, "open", false, "open the run list in a browser")
	cmd.Flags().StringSliceVar(&origins, "origin", nil, "allow cross-origin requests from this origin (repeatable)")
	return cmd
}

// startMonitor serves st while a run is in progress. An empty addr disables it.
func startMonitor(addr string, st *storage.Store) (*monitor.Monitor, func(), error) {
	if addr == "" {
		return nil, func() {}, nil
	}
	if err := st.Init(); err != nil {
		return nil, nil, err
	}

	m := monitor.New(st)
	_, srv, err := m.Start(addr)
	if err != nil {
		return nil, nil, err
	}
	return m, func() { _ = srv.Close() }, nil
}
