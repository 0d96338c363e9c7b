package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/shashiranjanraj/supplydesk/app/routes"
	"github.com/shashiranjanraj/supplydesk/config"
	"github.com/shashiranjanraj/supplydesk/internal/kernel"
	"github.com/shashiranjanraj/supplydesk/internal/server"
	"github.com/shashiranjanraj/supplydesk/pkg/auth"
	"github.com/shashiranjanraj/supplydesk/pkg/grpc"
)

// supplydesk serve
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run", "start"},
	Short:   "Start the HTTP server (and the gRPC health service when GRPC_PORT is set)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := kernel.Boot(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return server.Start(gctx, ":"+config.AppPort(), a.Handler())
		})
		if port := config.GRPCPort(); port != "" {
			ln, err := net.Listen("tcp", ":"+port)
			if err != nil {
				stop()
				_ = g.Wait()
				return fmt.Errorf("grpc: listen on :%s: %w", port, err)
			}
			g.Go(func() error {
				return grpc.New(a.Ping).Serve(gctx, ln)
			})
		}
		return g.Wait()
	},
}

// supplydesk route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		infos := kernel.NewRouter(routes.Controllers{}).Routes()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}

// supplydesk admin:hash <password>
var adminHashCmd = &cobra.Command{
	Use:   "admin:hash <password>",
	Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := auth.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}
