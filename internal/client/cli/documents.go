package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/docverify/internal/api"
	"github.com/spf13/cobra"
)

func (r *runner) createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <title>",
		Short: "Create a draft document",
		Args:  cobra.MinimumNArgs(1),
		RunE: r.authed(func(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
			ctx, cancel := app.requestContext(ctx)
			defer cancel()

			doc, err := app.api.CreateDocument(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Document %d created: %q (%s)\n", doc.ID, doc.Title, doc.Status)
			return nil
		}),
	}
}

func (r *runner) finalizeCmd() *cobra.Command {
	var qrOut string

	cmd := &cobra.Command{
		Use:   "finalize <document-id>",
		Short: "Finalize a document and issue its verification code",
		Args:  cobra.ExactArgs(1),
		RunE: r.authed(func(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
			id, err := parseDocumentID(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := app.requestContext(ctx)
			defer cancel()

			resp, err := app.api.FinalizeDocument(ctx, id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Verification code: %s\n", resp.Code)
			fmt.Fprintf(out, "Verification URL:  %s\n", resp.VerificationURL)
			if resp.QRURL != "" {
				fmt.Fprintf(out, "QR image:          %s\n", resp.QRURL)
			}

			if qrOut != "" {
				if err := os.WriteFile(qrOut, []byte(resp.QRSVG), 0o644); err != nil {
					return fmt.Errorf("write QR: %w", err)
				}
				fmt.Fprintf(out, "QR code written to %s\n", qrOut)
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&qrOut, "qr-out", "", "write the QR code SVG to this file")
	return cmd
}

func (r *runner) signCmd() *cobra.Command {
	var (
		method   string
		platform string
		blockOut string
	)

	cmd := &cobra.Command{
		Use:   "sign <document-id>",
		Short: "Sign a finalized document",
		Args:  cobra.ExactArgs(1),
		RunE: r.authed(func(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
			id, err := parseDocumentID(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := app.requestContext(ctx)
			defer cancel()

			resp, err := app.api.SignDocument(ctx, api.SignRequest{
				DocumentID: id,
				Method:     method,
				Platform:   platform,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			sig := resp.Signature
			fmt.Fprintf(out, "Signature %d recorded at %s (code %s)\n",
				sig.ID, sig.Timestamp.Format(time.RFC3339), sig.VerificationCode)
			if resp.BlockURL != "" {
				fmt.Fprintf(out, "Signature block: %s\n", resp.BlockURL)
			}

			if blockOut == "" {
				fmt.Fprintln(out, resp.Block)
				return nil
			}
			if err := os.WriteFile(blockOut, []byte(resp.Block), 0o644); err != nil {
				return fmt.Errorf("write signature block: %w", err)
			}
			fmt.Fprintf(out, "Signature block written to %s\n", blockOut)
			return nil
		}),
	}

	cmd.Flags().StringVar(&method, "method", "simple", "signature method: simple, advanced or qualified")
	cmd.Flags().StringVar(&platform, "platform", "web", "platform the signature was made on: web, mobile or pos")
	cmd.Flags().StringVar(&blockOut, "block-out", "", "write the HTML signature block to this file instead of stdout")
	return cmd
}

func (r *runner) stampCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stamp <document-id> <in.pdf> <out.pdf>",
		Short: "Stamp a PDF with the document's verification footer",
		Args:  cobra.ExactArgs(3),
		RunE: r.authed(func(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
			id, err := parseDocumentID(args[0])
			if err != nil {
				return err
			}

			pdf, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("read PDF: %w", err)
			}

			ctx, cancel := app.requestContext(ctx)
			defer cancel()

			stamped, err := app.api.StampDocument(ctx, id, pdf)
			if err != nil {
				return err
			}

			if err := os.WriteFile(args[2], stamped, 0o644); err != nil {
				return fmt.Errorf("write PDF: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stamped PDF written to %s\n", args[2])
			return nil
		}),
	}
}

func (r *runner) signaturesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signatures <document-id>",
		Short: "List the signatures on a document",
		Args:  cobra.ExactArgs(1),
		RunE: r.authed(func(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
			id, err := parseDocumentID(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := app.requestContext(ctx)
			defer cancel()

			sigs, err := app.api.ListSignatures(ctx, id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(sigs) == 0 {
				fmt.Fprintln(out, "No signatures")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSIGNER\tSIGNED AT\tMETHOD\tPLATFORM\tCODE")
			for _, s := range sigs {
				fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\n",
					s.ID, s.SignerID, s.Timestamp.Format(time.RFC3339), s.Method, s.Platform, s.VerificationCode)
			}
			return tw.Flush()
		}),
	}
}
