// cmd/root.go
package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/smpl-go/smpl/engine"
	"github.com/smpl-go/smpl/report"
	"github.com/smpl-go/smpl/scenario"
	"github.com/smpl-go/smpl/trace"
)

var (
	scenarioPath string
	logLevel     string
	outPath      string
	traceFlag    bool
	serviceMean  float64
	preempt      bool
)

var rootCmd = &cobra.Command{
	Use:   "smpl",
	Short: "Discrete-event simulation engine in the tradition of SMPL",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scenario file and print its simulation report",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("invalid log level: %s", logLevel)
		}
		log := logrus.New()
		log.SetLevel(level)

		s, err := scenario.Load(scenarioPath)
		if err != nil {
			return err
		}
		if traceFlag {
			s.Trace = true
		}

		eng := engine.New()
		handles, err := scenario.Apply(s, eng)
		if err != nil {
			return err
		}
		if s.Trace {
			eng.SetSink(trace.Logrus(log))
		}

		log.Infof("starting model %q with %d facilities", s.Model, len(handles))

		if len(s.Facilities) > 0 {
			h := handles[s.Facilities[0].Name]
			if err := runDemoModel(eng, h, serviceMean, preempt); err != nil {
				return err
			}
		}

		out := os.Stdout
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		if err := report.Write(out, eng); err != nil {
			return err
		}

		log.Info("simulation complete")
		return nil
	},
}

// Execute runs the root command, exiting the process with status 1 on
// failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "path to a scenario YAML file (required)")
	runCmd.Flags().StringVar(&logLevel, "log", "info", "log level (debug, info, warn, error)")
	runCmd.Flags().StringVar(&outPath, "out", "", "write the report here instead of stdout")
	runCmd.Flags().BoolVar(&traceFlag, "trace", false, "force tracing on regardless of the scenario file")
	runCmd.Flags().Float64Var(&serviceMean, "service-mean", 1.0, "mean service time for the built-in demo model")
	runCmd.Flags().BoolVar(&preempt, "preempt", false, "use preempt instead of request for the built-in demo model")
	runCmd.MarkFlagRequired("scenario")

	rootCmd.AddCommand(runCmd)
}
