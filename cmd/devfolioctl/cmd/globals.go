package cmd

import (
	"os"
	"time"

	"github.com/devfolio-io/devfolio/pkg/client"
	"github.com/spf13/cobra"
)

var (
	baseURL string
	cookie  string
	timeout time.Duration
)

// BindGlobalFlags registers the connection flags shared by every subcommand.
func BindGlobalFlags(root *cobra.Command) {
	root.PersistentFlags().StringVar(&baseURL, "url", envOr("DEVFOLIO_URL", "http://localhost:8029"), "devfolio server base URL")
	root.PersistentFlags().StringVar(&cookie, "cookie", os.Getenv("DEVFOLIO_COOKIE"), "Cookie header carrying the session")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
}

func newClient() *client.Client {
	opts := []client.Option{}
	if cookie != "" {
		opts = append(opts, client.WithCookie(cookie))
	}
	return client.New(baseURL, opts...)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
