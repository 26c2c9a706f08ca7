package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"hr-approvals/internal/app"
	"hr-approvals/internal/db"
)

func newMigrateCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pools, err := s.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer pools.Close()

			v, err := db.MigrationVersion(pools.Write, pools.Dialect)
			if err != nil {
				return err
			}
			if s.json() {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{
					"driver":  s.cfg.DBDriver,
					"version": v,
				})
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d (%s)\n", v, s.cfg.DBDriver)
			return err
		},
	}
}

func newImportCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "import <directory.yaml>",
		Short: "Import departments, work schedules and employees",
		Long:  "Import a directory snapshot. Rows whose id already exists are left untouched, so the same file can be imported again.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pools, err := s.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer pools.Close()

			res, err := app.NewDirectoryImporter(pools, s.logger).ImportFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if s.json() {
				return printJSON(cmd.OutOrStdout(), map[string]int{
					"departments": res.Departments,
					"schedules":   res.Schedules,
					"employees":   res.Employees,
					"skipped":     res.Skipped,
				})
			}
			return printTable(cmd.OutOrStdout(),
				[]string{"departments", "schedules", "employees", "skipped"},
				[][]string{{
					strconv.Itoa(res.Departments),
					strconv.Itoa(res.Schedules),
					strconv.Itoa(res.Employees),
					strconv.Itoa(res.Skipped),
				}})
		},
	}
}

func newExpireCmd(s *session) *cobra.Command {
	var beforeYear int
	cmd := &cobra.Command{
		Use:   "expire",
		Short: "Forfeit unused vacation days outside the carry-over window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return s.withApp(cmd.Context(), func(a *app.App, _ *db.Pools) error {
				year := beforeYear
				if year == 0 {
					year = a.Expiry.Cutoff()
				}
				report, err := a.Expiry.Run(cmd.Context(), year)
				if err != nil {
					return err
				}
				if s.json() {
					return printJSON(cmd.OutOrStdout(), map[string]int{
						"before_year": report.BeforeYear,
						"balances":    report.Balances,
						"days":        report.Days,
						"skipped":     report.Skipped,
					})
				}
				return printTable(cmd.OutOrStdout(),
					[]string{"before_year", "balances", "days", "skipped"},
					[][]string{{
						strconv.Itoa(report.BeforeYear),
						strconv.Itoa(report.Balances),
						strconv.Itoa(report.Days),
						strconv.Itoa(report.Skipped),
					}})
			})
		},
	}
	cmd.Flags().IntVar(&beforeYear, "before-year", 0, "Expire balances of years before this one (default: current year minus carry-over)")
	return cmd
}
