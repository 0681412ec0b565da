package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/powerplan/api/productionplan"
	"github.com/kilianp07/powerplan/core/dispatch"
	"github.com/kilianp07/powerplan/pkg/export"
)

type planOptions struct {
	payload    string
	format     string
	permissive bool
}

func init() {
	rootCmd.AddCommand(newPlanCmd())
}

func newPlanCmd() *cobra.Command {
	opts := &planOptions{}
	c := &cobra.Command{
		Use:   "plan",
		Short: "Compute a production plan offline from a payload file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlan(cmd.InOrStdin(), cmd.OutOrStdout(), opts)
		},
	}
	c.Flags().StringVarP(&opts.payload, "payload", "p", "", "payload file, - for stdin")
	c.Flags().StringVarP(&opts.format, "format", "f", export.FormatTable, "output format: json, csv or table")
	c.Flags().BoolVar(&opts.permissive, "permissive", false, "skip numeric range checks")
	_ = c.MarkFlagRequired("payload")
	return c
}

func runPlan(stdin io.Reader, out io.Writer, opts *planOptions) error {
	in := stdin
	if opts.payload != "-" {
		f, err := os.Open(opts.payload)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	payload, err := productionplan.DecodePayload(in)
	if err != nil {
		return err
	}
	if err := payload.Validate(!opts.permissive); err != nil {
		return err
	}
	req, err := payload.Request("")
	if err != nil {
		return err
	}
	ranked := dispatch.RankPowerplants(req.Fuels.Gas, req.Fuels.Kerosine, req.Fuels.Wind, req.Plants)
	res := dispatch.ComputeNecessaryProduction(ranked, req.Load)
	if err := export.Write(out, opts.format, export.FromResult(req.Load, ranked, res)); err != nil {
		return fmt.Errorf("render plan: %w", err)
	}
	return nil
}
