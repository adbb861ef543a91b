// internal/cli/pdf.go
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"qrstudio-backend/internal/export"
	"qrstudio-backend/internal/generator"
)

func newPDFCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pdf <text|->",
		Short: "Export a QR code as an A4 PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd, args)
			if err != nil {
				return err
			}
			output, _ := cmd.Flags().GetString("output")
			if output == "" {
				return errors.New("--output is required")
			}

			opts, err := a.options()
			if err != nil {
				return err
			}
			opts.Format = generator.FormatPNG
			if password := a.v.GetString("password"); password != "" {
				opts.EnablePDFPassword = true
				opts.PDFPassword = password
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			result, err := a.newGenerator().RenderLocal(ctx, text, opts)
			if err != nil {
				return err
			}
			_, image, err := generator.DecodeDataURL(result.DataURL)
			if err != nil {
				return err
			}

			doc, err := export.RenderPDF(image, export.PDFOptions{
				Title:          a.v.GetString("title"),
				Caption:        text,
				ImageType:      "PNG",
				EnablePassword: opts.EnablePDFPassword,
				Password:       opts.PDFPassword,
				CreatedAt:      time.Now(),
			})
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, doc, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(a.out, "wrote %s (%d bytes)\n", output, len(doc))
			return nil
		},
	}
	addRenderFlags(cmd)
	cmd.Flags().String("title", "", "heading printed above the code")
	cmd.Flags().String("password", "", "protect the document with this password (at least 4 characters)")
	return cmd
}
