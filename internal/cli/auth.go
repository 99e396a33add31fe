package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sprite-ai/preflight/internal/config"
)

var authTokenFlag string

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the reviewer token",
}

var authLoginCmd = &cobra.Command{
	Use:   "login --token <token>",
	Short: "Store a reviewer token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token := strings.TrimSpace(authTokenFlag)
		if token == "" {
			return fmt.Errorf("--token is required")
		}
		if err := config.SaveToken(token); err != nil {
			return err
		}
		color.Green("Token stored.")
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.ClearToken(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var authTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print the stored token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := config.LoadToken()
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	authLoginCmd.Flags().StringVar(&authTokenFlag, "token", "", "reviewer token to store")
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authTokenCmd)
}
