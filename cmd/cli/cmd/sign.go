package cmd

import (
	"errors"
	"fmt"

	"github.com/marcelsud/webhook-dispatch/webhook/signature"
	"github.com/spf13/cobra"
)

// ErrSignatureMismatch is returned by verify when the signature does not match
var ErrSignatureMismatch = errors.New("signature mismatch")

func newSignCmd() *cobra.Command {
	var (
		secret      string
		payloadPath string
	)

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Compute the X-Signature header for a payload",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("--secret is required")
			}
			payload, err := readPayload(cmd, payloadPath)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signature.Sign(payload, signature.Key(secret)))
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "subscription secret")
	cmd.Flags().StringVarP(&payloadPath, "payload", "p", "-", "payload file, - for stdin")
	return cmd
}

func newVerifyCmd() *cobra.Command {
	var (
		secrets     []string
		payloadPath string
		sig         string
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check an X-Signature header against a payload",
		Long: `Check an X-Signature header against a payload.

Pass --secret more than once to accept any of several secrets while rotating.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(secrets) == 0 {
				return fmt.Errorf("--secret is required")
			}
			if sig == "" {
				return fmt.Errorf("--signature is required")
			}
			payload, err := readPayload(cmd, payloadPath)
			if err != nil {
				return err
			}

			keys := make([][]byte, 0, len(secrets))
			for _, s := range secrets {
				keys = append(keys, signature.Key(s))
			}
			if !signature.VerifyAny(payload, sig, keys...) {
				return ErrSignatureMismatch
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signature valid")
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&secrets, "secret", nil, "subscription secret (repeatable)")
	cmd.Flags().StringVarP(&payloadPath, "payload", "p", "-", "payload file, - for stdin")
	cmd.Flags().StringVar(&sig, "signature", "", "X-Signature value to check")
	return cmd
}
