// internal/cli/inspect.go
package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"qrstudio-backend/internal/content"
)

// ErrInvalidContent is returned by validate when the payload has errors.
var ErrInvalidContent = errors.New("content is not valid")

func (a *app) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newDetectCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <text|->",
		Short: "Print the content type of a QR payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd, args)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, content.Detect(text))
			return err
		},
	}
}

func newParseCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <text|->",
		Short: "Print the structured fields of a QR payload as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd, args)
			if err != nil {
				return err
			}
			contentType, ok := content.ParseContentType(a.v.GetString("type"))
			if !ok {
				contentType = content.Detect(text)
			}
			return a.printJSON(content.Parse(text, contentType))
		},
	}
	cmd.Flags().String("type", "", "content type to parse as (detected when empty)")
	return cmd
}

func newValidateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <text|->",
		Short: "Check a QR payload and print its optimized form",
		Long: `Validate a payload against the rules of its content type and print the
report as JSON. Exits with an error when the payload is invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd, args)
			if err != nil {
				return err
			}
			report := content.ValidateAndOptimize(text, a.v.GetString("type"))
			if err := a.printJSON(report); err != nil {
				return err
			}
			if !report.IsValid {
				return ErrInvalidContent
			}
			return nil
		},
	}
	cmd.Flags().String("type", "", "content type to validate as (detected when empty)")
	return cmd
}
