package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/domain/qris"
	"github.com/pendaftaran-turnamen-magic-chase-gogo/tokoss/internal/infrastructure/qrgenerator"
)

var Version = "dev"

const defaultQRSize = 300

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "qris",
		Short:         "Compose, verify and inspect QRIS payloads",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(composeCmd())
	rootCmd.AddCommand(verifyCmd())
	rootCmd.AddCommand(inspectCmd())
	return rootCmd
}

func composeCmd() *cobra.Command {
	var (
		pngPath string
		size    int
	)

	cmd := &cobra.Command{
		Use:   "compose <payload|-> <amount>",
		Short: "Turn a static merchant payload into a dynamic one for amount",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			amount, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("amount %q: %w", args[1], err)
			}

			dynamic := qris.ComposeDynamicPayload(payload, amount)
			fmt.Fprintln(cmd.OutOrStdout(), dynamic)

			if pngPath == "" {
				return nil
			}
			png, err := qrgenerator.NewGenerator(size).Generate(dynamic)
			if err != nil {
				return err
			}
			return os.WriteFile(pngPath, png, 0o644)
		},
	}

	cmd.Flags().StringVar(&pngPath, "png", "", "also write the payload as a QR code PNG to this file")
	cmd.Flags().IntVar(&size, "size", defaultQRSize, "PNG width and height in pixels")
	return cmd
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <payload|->",
		Short: "Check the trailing CRC-16 of a payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			if !qris.VerifyChecksum(payload) {
				return qris.ErrChecksumMismatch
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <payload|->",
		Short: "Print the TLV fields of a payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			fields, err := qris.ParseFields(payload)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, f := range fields {
				fmt.Fprintf(out, "%s %02d %s\n", f.Tag, len([]rune(f.Value)), f.Value)
			}

			info, err := qris.Inspect(payload)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\ninitiation: %s\n", info.PointOfInitiation)
			fmt.Fprintf(out, "merchant:   %s, %s\n", info.MerchantName, info.MerchantCity)
			if info.Amount != "" {
				fmt.Fprintf(out, "amount:     %s\n", info.Amount)
			}
			fmt.Fprintf(out, "checksum:   %s\n", info.Checksum)
			return nil
		},
	}
}

// readPayload takes the payload from the argument, or from r when the
// argument is "-".
func readPayload(r io.Reader, arg string) (string, error) {
	if arg != "-" {
		return strings.TrimSpace(arg), nil
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}
