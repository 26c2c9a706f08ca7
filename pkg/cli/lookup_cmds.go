package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"hr-approvals/internal/app"
	"hr-approvals/internal/db"
	"hr-approvals/internal/domain"
	"hr-approvals/internal/service/approval"
)

func newBalanceCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <employee-id> <year>",
		Short: "Show an employee's vacation balance for a year",
		Long:  "Show the vacation balance. A year with no stored balance shows the opening balance from the tenure table and is marked provisional; nothing is written.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[1])
			if err != nil || year < 1900 || year > 9999 {
				return fmt.Errorf("invalid year %q", args[1])
			}
			return s.withApp(cmd.Context(), func(a *app.App, _ *db.Pools) error {
				b, stored, err := a.Ledger.Lookup(cmd.Context(), args[0], year)
				if err != nil {
					return err
				}
				if s.json() {
					return printJSON(cmd.OutOrStdout(), map[string]interface{}{
						"employee_id":    b.EmployeeID,
						"year":           b.Year,
						"earned_days":    b.EarnedDays,
						"used_days":      b.UsedDays,
						"pending_days":   b.PendingDays,
						"expired_days":   b.ExpiredDays,
						"available_days": b.Available(),
						"provisional":    !stored,
					})
				}
				return printTable(cmd.OutOrStdout(),
					[]string{"employee", "year", "earned", "used", "pending", "expired", "available"},
					[][]string{{
						b.EmployeeID,
						strconv.Itoa(b.Year),
						strconv.Itoa(b.EarnedDays),
						strconv.Itoa(b.UsedDays),
						strconv.Itoa(b.PendingDays),
						strconv.Itoa(b.ExpiredDays),
						strconv.Itoa(b.Available()),
					}})
			})
		},
	}
}

func newApproversCmd(s *session) *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:   "approvers <employee-id>",
		Short: "List who may approve an employee's requests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := domain.DelegationType(strings.ToUpper(typ))
			if t != approval.AnyType && !t.Valid() {
				return fmt.Errorf("invalid --type %q: use ALL, VACATION, INCIDENT or PERMISSION", typ)
			}
			return s.withApp(cmd.Context(), func(a *app.App, _ *db.Pools) error {
				approvers, err := a.Resolver.ApproversForEmployee(cmd.Context(), args[0], t)
				if err != nil {
					return err
				}
				if s.json() {
					out := make([]map[string]interface{}, len(approvers))
					for i, ap := range approvers {
						out[i] = map[string]interface{}{
							"employee_id":     ap.EmployeeID,
							"name":            ap.Name,
							"basis":           ap.Basis,
							"level":           ap.Level,
							"delegator_id":    ap.DelegatorID,
							"delegator_name":  ap.DelegatorName,
							"delegation_type": ap.DelegationType,
						}
					}
					return printJSON(cmd.OutOrStdout(), out)
				}
				rows := make([][]string, len(approvers))
				for i, ap := range approvers {
					rows[i] = []string{ap.EmployeeID, ap.Name, string(ap.Basis), strconv.Itoa(ap.Level), ap.DelegatorID, string(ap.DelegationType)}
				}
				return printTable(cmd.OutOrStdout(), []string{"employee", "name", "basis", "level", "delegator", "delegation type"}, rows)
			})
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "Only delegates covering this request category: ALL, VACATION, INCIDENT or PERMISSION (default every delegate)")
	return cmd
}
