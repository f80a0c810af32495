package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the webhookctl command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "webhookctl",
		Short: "Operator tooling for webhook-dispatch",
		Long: `webhookctl helps operators and subscribers work with webhook-dispatch.

Generate signing secrets, compute or check X-Signature values for a payload,
and validate event type catalog files before deploying them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newSecretCmd(),
		newSignCmd(),
		newVerifyCmd(),
		newEventTypesCmd(),
	)
	return root
}

func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// readPayload reads the body to sign from a file, or stdin when path is "-"
func readPayload(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read payload file: %w", err)
	}
	return data, nil
}
