package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/docverify/internal/verification"
	"github.com/spf13/cobra"
)

func (r *runner) lookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <code|url>",
		Short: "Check a verification code",
		Long:  "Check a verification code. The argument may be the bare code or the verification URL it was published under.",
		Args:  cobra.ExactArgs(1),
		RunE: r.run(func(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
			code := args[0]
			if strings.Contains(code, "/") {
				c, err := verification.ExtractCodeFromURL(code)
				if err != nil {
					return err
				}
				code = c
			}

			ctx, cancel := app.requestContext(ctx)
			defer cancel()

			resp, err := app.api.LookupCode(ctx, code)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !resp.Verified || resp.DocumentInfo == nil {
				fmt.Fprintf(out, "NOT VERIFIED: no document matches %s\n", code)
				return nil
			}

			info := resp.DocumentInfo
			fmt.Fprintf(out, "VERIFIED: %s\n", code)
			fmt.Fprintf(out, "Title:     %s\n", info.Title)
			if info.SignerName != "" {
				fmt.Fprintf(out, "Signer:    %s\n", info.SignerName)
			}
			if info.SignatureTimestamp != nil {
				fmt.Fprintf(out, "Signed at: %s\n", info.SignatureTimestamp.Format(time.RFC3339))
			}
			return nil
		}),
	}
}
