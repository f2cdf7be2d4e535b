// Command spannerctl checks Cloud Spanner connection settings and shows how
// the ORM types map onto Spanner columns.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scalebig/sequelize/connector"
	"github.com/scalebig/sequelize/datatypes"
	"github.com/scalebig/sequelize/dialect"
	_ "github.com/scalebig/sequelize/providers/pgadapter"
	_ "github.com/scalebig/sequelize/providers/spanner"
)

type app struct {
	cfgFile  string
	provider string
	verbose  bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "spannerctl",
		Short:        "Inspect Cloud Spanner connections and type mappings",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (yaml)")
	root.PersistentFlags().StringVar(&a.provider, "provider", dialect.NameCloudSpanner,
		"connection provider ("+dialect.NameCloudSpanner+" or "+dialect.NameCloudSpannerPG+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(a.typesCmd(), a.pingCmd(), a.queryCmd())
	return root
}

func (a *app) logger() (*zap.Logger, error) {
	if a.verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// withConnection opens the configured database for the duration of fn.
func (a *app) withConnection(ctx context.Context, fn func(*connector.Manager, *connector.Connection) error) error {
	cfg, err := connector.LoadConfig(a.cfgFile)
	if err != nil {
		return err
	}
	logger, err := a.logger()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	m, err := connector.NewManager(a.provider, nil, connector.WithLogger(logger))
	if err != nil {
		return err
	}
	conn, err := m.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Disconnect(context.WithoutCancel(ctx), conn); err != nil {
			logger.Warn("disconnect failed", zap.Error(err))
		}
	}()
	return fn(m, conn)
}

func (a *app) typesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "Print the Spanner column type of every ORM type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			registry := dialect.NewCloudSpannerRegistry()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tSPANNER\tTAGS")
			for _, def := range registry.Definitions() {
				sql, err := registry.SQLFor(datatypes.Type{Name: def.Name})
				if err != nil {
					sql = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%v\n", def.Name, sql, def.Tags)
			}
			return w.Flush()
		},
	}
}

func (a *app) pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Connect to the configured database and run a round trip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withConnection(cmd.Context(), func(m *connector.Manager, conn *connector.Connection) error {
				if err := m.Ping(cmd.Context(), conn); err != nil {
					return err
				}
				s := m.Stats()
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintf(w, "database\t%s\n", conn.Database())
				fmt.Fprintf(w, "connection\t%s\n", s.ConnectionID)
				fmt.Fprintf(w, "state\t%s\n", s.State)
				fmt.Fprintf(w, "open connections\t%d\n", s.Pool.OpenConnections)
				fmt.Fprintf(w, "parsers\t%v\n", s.ParserTags)
				return w.Flush()
			})
		},
	}
}

func (a *app) queryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query SQL [ARGS...]",
		Short: "Run a query and print the decoded rows",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := make([]any, 0, len(args)-1)
			for _, arg := range args[1:] {
				params = append(params, arg)
			}
			return a.withConnection(cmd.Context(), func(m *connector.Manager, conn *connector.Connection) error {
				q, err := m.Querier(conn)
				if err != nil {
					return err
				}
				rows, err := q.QueryContext(cmd.Context(), args[0], params...)
				if err != nil {
					return err
				}
				defer rows.Close()

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				header := true
				for rows.Next() {
					if header {
						columns, err := rows.Columns()
						if err != nil {
							return err
						}
						printRow(w, toAny(columns))
						header = false
					}
					values, err := rows.Values()
					if err != nil {
						return err
					}
					printRow(w, values)
				}
				if err := rows.Err(); err != nil {
					return err
				}
				return w.Flush()
			})
		},
	}
}

func printRow(w *tabwriter.Writer, values []any) {
	for i, v := range values {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		if v == nil {
			v = "NULL"
		}
		fmt.Fprint(w, v)
	}
	fmt.Fprintln(w)
}

func toAny(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
