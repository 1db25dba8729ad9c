// Command sseproxy translates a proprietary upstream chat provider's SSE
// stream into an OpenAI-compatible chat.completion.chunk stream.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Best-effort local-dev convenience: a missing .env is not an error.
	_ = godotenv.Load()

	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "sseproxy",
		Short:        "Translate an upstream chat provider's SSE stream to OpenAI-compatible chunks",
		SilenceUsage: true,
	}
	root.AddCommand(buildServeCmd(), buildReplayCmd())
	return root
}
