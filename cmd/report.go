package cmd

import (
	"database/sql"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/KoroshM/Multithreading-Barbershop-Exercise/ledger"
)

var (
	reportLedgerPath string
	reportSessionID  string

	reportCmd = &cobra.Command{
		Use:   "report",
		Short: "Print recorded simulation sessions from a ledger",
		Args:  cobra.NoArgs,
		RunE:  runReport,
	}
)

func init() {
	reportCmd.Flags().StringVar(&reportLedgerPath, "ledger", "barbershop.db", "ledger database path")
	reportCmd.Flags().StringVar(&reportSessionID, "session", "", "print the individual visits of one session")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	l, err := ledger.Open(reportLedgerPath, logrus.StandardLogger())
	if err != nil {
		return err
	}
	defer l.Close()

	if reportSessionID != "" {
		return printVisits(cmd.OutOrStdout(), l, reportSessionID)
	}
	return printSessions(cmd.OutOrStdout(), l)
}

func printSessions(w io.Writer, l *ledger.Ledger) error {
	sessions, err := l.Sessions()
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Session", "Started", "Barbers", "Seats", "Customers", "Served", "Dropped"})
	for _, s := range sessions {
		table.Append([]string{
			s.ID,
			s.StartedAt.Format("2006-01-02 15:04:05"),
			strconv.Itoa(s.Barbers),
			strconv.Itoa(s.WaitingSeats),
			strconv.Itoa(s.Customers),
			nullStr(s.Served),
			nullStr(s.Dropped),
		})
	}
	table.Render()
	return nil
}

func printVisits(w io.Writer, l *ledger.Ledger, sessionID string) error {
	visits, err := l.Visits(sessionID)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Customer", "Chair", "Outcome", "Recorded"})
	for _, v := range visits {
		table.Append([]string{
			strconv.Itoa(v.Customer),
			nullStr(v.Chair),
			v.Outcome,
			v.RecordedAt.Format("15:04:05.000"),
		})
	}
	table.Render()
	return nil
}

// nullStr renders a nullable count, "-" when the value was never written.
func nullStr(n sql.NullInt64) string {
	if !n.Valid {
		return "-"
	}
	return strconv.FormatInt(n.Int64, 10)
}
