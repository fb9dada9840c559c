package main

import (
	"fmt"

	"github.com/pquerna/otp/totp"
	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"
)

var (
	totpAccount string
	totpIssuer  string
	totpPNG     string
)

var totpCmd = &cobra.Command{
	Use:   "totp",
	Short: "Generate an admin TOTP secret",
	Long: `Generates a new TOTP secret for the admin login. Set it as ADMIN_TOTP_SECRET
and enrol it in an authenticator app, from the printed URL or the QR code
written with --png.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := totp.Generate(totp.GenerateOpts{
			Issuer:      totpIssuer,
			AccountName: totpAccount,
		})
		if err != nil {
			return fmt.Errorf("generate totp secret: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "ADMIN_TOTP_SECRET=%s\n", key.Secret())
		fmt.Fprintf(out, "otpauth URL: %s\n", key.URL())

		if totpPNG != "" {
			if err := qrcode.WriteFile(key.URL(), qrcode.Medium, 256, totpPNG); err != nil {
				return fmt.Errorf("write qr code: %w", err)
			}
			fmt.Fprintf(out, "QR code written to %s\n", totpPNG)
		}
		return nil
	},
}

func init() {
	totpCmd.Flags().StringVar(&totpAccount, "account", "admin@folio.local", "Account name shown in the authenticator")
	totpCmd.Flags().StringVar(&totpIssuer, "issuer", "folio", "Issuer shown in the authenticator")
	totpCmd.Flags().StringVar(&totpPNG, "png", "", "Write the enrolment QR code to this PNG file")
}
