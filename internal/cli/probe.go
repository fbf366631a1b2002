package cli

import (
	"fmt"

	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/launchpad/internal/api"
	"github.com/mesh-intelligence/launchpad/internal/fallback"
	"github.com/mesh-intelligence/launchpad/pkg/types"
)

// probeResult is one row of the probe report.
type probeResult struct {
	Endpoint string `json:"endpoint"`
	Step     int    `json:"step,omitempty"`
	Status   int    `json:"status"`
	Source   string `json:"source"`
}

const (
	sourceLive     = "live"
	sourceFallback = "fallback"
)

func newProbeCmd(a *app) *cobra.Command {
	var (
		user    string
		step    int
		metrics bool
	)
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Call every read endpoint for a user and report which were served live",
		Long: `Probe calls each read endpoint for --user (step endpoints at --step) and
reports whether the response came from the store or from a fallback payload.
With --metrics the fallback counters are printed in Prometheus text format.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" {
				return userError("--user is required")
			}
			s, err := a.openSession()
			if err != nil {
				return err
			}
			defer s.Close()

			var results []probeResult
			for _, r := range s.api.Routes() {
				if r.Kind != api.KindRead && r.Kind != api.KindStepRead {
					continue
				}
				req := &types.Request{UserID: user}
				if r.Kind == api.KindStepRead {
					req.Step = step
				}
				out, err := s.api.Call(cmd.Context(), r.Name, req)
				if err != nil {
					return sysError("%w", err)
				}
				res := probeResult{Endpoint: r.Name, Step: req.Step, Status: out.Status, Source: sourceLive}
				if fallback.IsMarked(out.Body) {
					res.Source = sourceFallback
				}
				results = append(results, res)
			}

			w := cmd.OutOrStdout()
			if a.flags.jsonMode {
				if err := printJSON(w, results); err != nil {
					return err
				}
			} else {
				t := newTable("ENDPOINT", "STEP", "STATUS", "SOURCE")
				for _, res := range results {
					stepCol := "-"
					if res.Step != 0 {
						stepCol = fmt.Sprint(res.Step)
					}
					t.AddRow(res.Endpoint, stepCol, res.Status, res.Source)
				}
				fmt.Fprintln(w, t)
			}

			if !metrics {
				return nil
			}
			families, err := s.metrics.Gather()
			if err != nil {
				return sysError("gather metrics: %w", err)
			}
			enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
			for _, mf := range families {
				if err := enc.Encode(mf); err != nil {
					return sysError("encode metrics: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id to probe (required)")
	cmd.Flags().IntVar(&step, "step", 1, "step number for step endpoints")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "print fallback metrics in Prometheus text format")
	return cmd
}
