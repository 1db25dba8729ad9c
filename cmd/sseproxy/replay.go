package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aiproxy/sseproxy/core"
	"github.com/aiproxy/sseproxy/internal/utils"
	"github.com/aiproxy/sseproxy/transport"
)

func buildReplayCmd() *cobra.Command {
	var (
		modelID     string
		userMessage string
	)

	cmd := &cobra.Command{
		Use:   "replay <transcript-file>",
		Short: "Feed a recorded upstream SSE transcript through the translation core and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("replay: open %s: %w", args[0], err)
			}
			defer f.Close()

			scanner := utils.NewSSEScanner(f)
			decoder := transport.ChunkDecoder{}
			session := core.NewSession(modelID, true, userMessage)

			ctx := context.Background()
			out := cmd.OutOrStdout()
			for {
				payload, err := scanner.Next()
				if err == io.EOF {
					break
				}
				if err != nil {
					return fmt.Errorf("replay: scan: %w", err)
				}

				chunk, err := decoder.Decode(payload)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "skipping malformed chunk: %v\n", err)
					continue
				}

				for _, frame := range session.Consume(ctx, chunk) {
					fmt.Fprint(out, frame)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&modelID, "model", "glm-4.6", "model name echoed in emitted frames")
	cmd.Flags().StringVar(&userMessage, "user-message", "", "last user message, for filename inference during tool-argument repair")
	return cmd
}
