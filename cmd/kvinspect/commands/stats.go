package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

const metricPrefix = "sealkv_"

// stats: count every store, then print the sealkv_ series those reads produced.
func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print entry counts and store operation metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			labels, err := appCtx.Inspector.Labels()
			if err != nil {
				return err
			}
			for _, l := range labels {
				s, err := appCtx.Inspector.Store(l)
				if err != nil {
					return err
				}
				n, err := s.Count()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\t%d entries\n", l, n)
			}

			families, err := appCtx.Gatherer.Gather()
			if err != nil {
				return err
			}
			var lines []string
			for _, mf := range families {
				if !strings.HasPrefix(mf.GetName(), metricPrefix) {
					continue
				}
				for _, m := range mf.GetMetric() {
					var pairs []string
					for _, lp := range m.GetLabel() {
						pairs = append(pairs, lp.GetName()+"="+lp.GetValue())
					}
					var v float64
					switch {
					case m.Counter != nil:
						v = m.GetCounter().GetValue()
					case m.Gauge != nil:
						v = m.GetGauge().GetValue()
					case m.Histogram != nil:
						v = float64(m.GetHistogram().GetSampleCount())
					}
					lines = append(lines, fmt.Sprintf("%s{%s} %g", mf.GetName(), strings.Join(pairs, ","), v))
				}
			}
			sort.Strings(lines)
			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}
