package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthJSON bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the backend is reachable",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func init() {
	healthCmd.Flags().BoolVar(&healthJSON, "json", false, "print JSON")
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	h, err := s.Client.Health(cmd.Context())
	if err != nil {
		return fmt.Errorf("backend at %s is unreachable: %w", s.Client.BaseURL(), err)
	}

	out := cmd.OutOrStdout()
	if healthJSON {
		return writeJSON(out, h)
	}
	fmt.Fprintf(out, "%s: %s (version %s)\n", s.Client.BaseURL(), h.Status, h.Version)
	return nil
}
