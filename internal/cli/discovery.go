package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newAreasCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "areas",
		Short: "List Home Assistant areas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			areas, err := opts.client().Areas(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list areas: %w", err)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME")
			for _, a := range areas {
				fmt.Fprintf(tw, "%s\t%s\n", a.ID, a.Name)
			}
			return tw.Flush()
		},
	}
}

func newLightsCommand(opts *globalOptions) *cobra.Command {
	var area string
	cmd := &cobra.Command{
		Use:   "lights",
		Short: "List color-capable lights in an area",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lights, err := opts.client().ColorLights(cmd.Context(), area)
			if err != nil {
				return fmt.Errorf("failed to list lights: %w", err)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ENTITY\tNAME")
			for _, l := range lights {
				fmt.Fprintf(tw, "%s\t%s\n", l.EntityID, l.Name)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&area, "area", "a", "", "area id (required)")
	_ = cmd.MarkFlagRequired("area")
	return cmd
}
