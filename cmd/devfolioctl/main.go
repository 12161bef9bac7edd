package main

import (
	"fmt"
	"os"

	"github.com/devfolio-io/devfolio/cmd/devfolioctl/cmd"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cmd.RenderError(err.Error()))
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "devfolioctl",
	Short: "devfolioctl - manage devfolio projects from the terminal",
	Long: `devfolioctl talks to a running devfolio server.

It helps you:
  - List, create, edit and delete portfolio projects
  - Watch project lifecycle events on RabbitMQ

Authenticate by passing the session cookie with --cookie or DEVFOLIO_COOKIE.
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cmd.BindGlobalFlags(rootCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cmd.ProjectsCmd)
	rootCmd.AddCommand(cmd.EventsCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("devfolioctl version %s\n", version)
	},
}
