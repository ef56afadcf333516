// Package cmd is the command line entry point: it turns flags, positional
// arguments and scenario files into one simulation run.
package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/KoroshM/Multithreading-Barbershop-Exercise/config"
	"github.com/KoroshM/Multithreading-Barbershop-Exercise/ledger"
	"github.com/KoroshM/Multithreading-Barbershop-Exercise/rest"
	"github.com/KoroshM/Multithreading-Barbershop-Exercise/shop"
	"github.com/KoroshM/Multithreading-Barbershop-Exercise/sim"
)

var (
	configPath string
	jitterUs   int
	ledgerPath string
	listenAddr string
	verbose    bool

	rootCmd = &cobra.Command{
		Use:   "barbershop [num_barbers num_chairs num_customers service_time_us]",
		Short: "Simulate a barbershop full of concurrent barbers and customers",
		Long: `barbershop runs the sleeping-barber simulation: a fixed number of barbers,
a bounded waiting room, and a stream of customers who are either served or
turned away. Parameters come from the four positional arguments, a YAML
scenario file, or the built-in defaults, in that order of precedence.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 4 {
				return fmt.Errorf("expected no arguments or exactly 4 (num_barbers num_chairs num_customers service_time_us), got %d", len(args))
			}
			return nil
		},
		RunE: runSimulation,
	}
)

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "YAML scenario file")
	rootCmd.Flags().IntVar(&jitterUs, "jitter", -1, "arrival jitter upper bound in microseconds (-1 keeps the scenario value)")
	rootCmd.Flags().StringVar(&ledgerPath, "ledger", "", "record the run into this sqlite ledger")
	rootCmd.Flags().StringVar(&listenAddr, "listen", "", "serve the live status API on this address (e.g. :8080)")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "enable debug logging")
}

// EntryPoint runs the root command. Called from main.
func EntryPoint() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// scenarioFromArgs overlays the four positional arguments, in the original
// driver's order, onto a scenario.
func scenarioFromArgs(args []string, sc config.Scenario) (config.Scenario, error) {
	fields := []struct {
		name string
		dst  *int
	}{
		{"num_barbers", &sc.Barbers},
		{"num_chairs", &sc.WaitingSeats},
		{"num_customers", &sc.Customers},
		{"service_time_us", &sc.ServiceTimeUs},
	}
	for i, f := range fields {
		n, err := strconv.Atoi(args[i])
		if err != nil {
			return config.Scenario{}, fmt.Errorf("invalid %s %q: not a number", f.name, args[i])
		}
		*f.dst = n
	}
	return sc, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	sc := config.Default()
	var err error
	if configPath != "" {
		if sc, err = config.Load(configPath); err != nil {
			return err
		}
	}
	if len(args) == 4 {
		if sc, err = scenarioFromArgs(args, sc); err != nil {
			return err
		}
	}
	if jitterUs >= 0 {
		sc.ArrivalJitterUs = jitterUs
	}
	if err := sc.Validate(); err != nil {
		return err
	}

	log := logrus.New()
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	s := shop.New(sc.Barbers, sc.WaitingSeats, log)

	if listenAddr != "" {
		srv := rest.NewStatusServer(s)
		go func() {
			if err := srv.Start(listenAddr); err != nil && err != http.ErrServerClosed {
				log.Errorf("status server: %v", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
	}

	var rec sim.Recorder
	var session *ledger.Session
	if ledgerPath != "" {
		l, err := ledger.Open(ledgerPath, log)
		if err != nil {
			return err
		}
		defer l.Close()
		session, err = l.BeginSession(ledger.SessionParams{
			Barbers:       sc.Barbers,
			WaitingSeats:  sc.WaitingSeats,
			Customers:     sc.Customers,
			ServiceTimeUs: sc.ServiceTimeUs,
		})
		if err != nil {
			return err
		}
		rec = session
	}

	result := sim.Run(s, sim.Params{
		Barbers:       sc.Barbers,
		WaitingSeats:  sc.WaitingSeats,
		Customers:     sc.Customers,
		ServiceTime:   sc.ServiceTime(),
		ArrivalJitter: sc.ArrivalJitter(),
	}, rec)

	if session != nil {
		if err := session.Finish(result.Served, result.Dropped, result.Elapsed); err != nil {
			return err
		}
	}

	printSummary(cmd.OutOrStdout(), result, s.Drops())
	return nil
}

func printSummary(w io.Writer, result sim.Result, drops int) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Chair", "Customers served"})
	for chairID, n := range result.ServedByChair {
		table.Append([]string{strconv.Itoa(chairID), strconv.Itoa(n)})
	}
	table.SetFooter([]string{"total", strconv.Itoa(result.Served)})
	table.Render()
	fmt.Fprintf(w, "# customers who didn't receive a service = %d\n", drops)
}
