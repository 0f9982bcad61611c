package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bher20/ebillcalc/internal/auth"
)

var (
	tokenName string
	tokenRole string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage API tokens for admin endpoints",
}

var tokenCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Generate a new API token",
	Long: `Generates a random bearer token and prints it with a config snippet
holding its bcrypt hash. Only the hash goes in the config; keep the token.`,
	RunE: runTokenCreate,
}

func init() {
	tokenCreateCmd.Flags().StringVar(&tokenName, "name", "admin", "Token name")
	tokenCreateCmd.Flags().StringVar(&tokenRole, "role", auth.RoleAdmin, "Role: admin or viewer")
	tokenCmd.AddCommand(tokenCreateCmd)
	rootCmd.AddCommand(tokenCmd)
}

func runTokenCreate(cmd *cobra.Command, args []string) error {
	if tokenRole != auth.RoleAdmin && tokenRole != auth.RoleViewer {
		return fmt.Errorf("unknown role: %s (available: admin, viewer)", tokenRole)
	}
	raw, hash, err := auth.GenerateToken()
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Token: %s\n\n", raw)
	fmt.Fprintln(w, "Add to your config file:")
	fmt.Fprintln(w, "auth:")
	fmt.Fprintln(w, "  tokens:")
	fmt.Fprintf(w, "    - name: %s\n      role: %s\n      hash: '%s'\n", tokenName, tokenRole, hash)
	return nil
}
