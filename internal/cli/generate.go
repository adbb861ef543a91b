// internal/cli/generate.go
package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"qrstudio-backend/internal/generator"
)

func addRenderFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Int("size", generator.DefaultSize, "logical size in pixels")
	flags.Int("margin", generator.DefaultMargin, "quiet zone in modules")
	flags.String("level", string(generator.DefaultLevel), "error correction level (L, M, Q, H)")
	flags.String("foreground", generator.DefaultForeground, "module color")
	flags.String("background", generator.DefaultBackground, "background color")
	flags.String("logo", "", "image file placed in the center")
	flags.Int("logo-size", generator.DefaultLogoSize, "logo size in percent of the code")
	flags.StringP("output", "o", "", "write the image to this file instead of printing a data URL")
}

// options collects generator options from flags, environment and config.
func (a *app) options() (generator.Options, error) {
	opts := generator.Options{
		Size:                 a.v.GetInt("size"),
		ErrorCorrectionLevel: generator.ErrorCorrectionLevel(a.v.GetString("level")),
		Foreground:           a.v.GetString("foreground"),
		Background:           a.v.GetString("background"),
		Format:               generator.Format(a.v.GetString("format")),
	}
	if a.v.IsSet("margin") {
		margin := a.v.GetInt("margin")
		opts.Margin = &margin
	}
	if path := a.v.GetString("logo"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return opts, fmt.Errorf("failed to read logo: %w", err)
		}
		opts.LogoURL = generator.EncodeDataURL(http.DetectContentType(data), data)
		opts.LogoSize = a.v.GetInt("logo-size")
	}
	return opts, nil
}

// readText returns the single argument, or stdin when it is "-".
func readText(cmd *cobra.Command, args []string) (string, error) {
	if args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func (a *app) newGenerator() *generator.Generator {
	opts := []generator.Option{generator.WithLogger(a.logger)}
	if q := a.v.GetFloat64("quality"); q > 0 {
		opts = append(opts, generator.WithImageQuality(q))
	}
	if endpoint := a.v.GetString("endpoint"); endpoint != "" {
		opts = append(opts, generator.WithStrategy(
			generator.MethodServerSide,
			generator.NewRemoteRenderer(endpoint, a.v.GetDuration("timeout")),
		))
	}
	return generator.New(nil, opts...)
}

func newGenerateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <text|->",
		Short: "Render a QR code",
		Long: `Render a QR code from text. Pass "-" to read the text from stdin.

With --endpoint the code is rendered by a remote render endpoint; on failure
it falls back to local rendering once.`,
		Aliases: []string{"gen", "g"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd, args)
			if err != nil {
				return err
			}
			opts, err := a.options()
			if err != nil {
				return err
			}

			caps := generator.Capabilities{Canvas: true, DevicePixelRatio: generator.ClampPixelRatio(a.v.GetFloat64("scale"))}
			if a.v.GetString("endpoint") != "" {
				caps.Canvas = false
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			result, err := a.newGenerator().Generate(ctx, text, opts, caps, false)
			if err != nil {
				return err
			}
			a.logger.Debug("QR code generated",
				zap.String("method", string(result.Method)),
				zap.String("format", string(result.Format)),
				zap.Int("size", result.Size))

			return a.writeResult(cmd, result)
		},
	}
	addRenderFlags(cmd)
	cmd.Flags().String("format", string(generator.DefaultFormat), "output format (png, jpeg, webp, svg)")
	cmd.Flags().Float64("scale", 1, "device pixel ratio for the raster backing store (1-4)")
	cmd.Flags().Float64("quality", generator.DefaultImageQuality, "JPEG quality in (0, 1]")
	cmd.Flags().String("endpoint", "", "render endpoint URL for server-side rendering")
	cmd.Flags().Duration("timeout", 10*time.Second, "render endpoint timeout")
	return cmd
}

func (a *app) writeResult(cmd *cobra.Command, result *generator.Result) error {
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		if result.SVG != "" {
			_, err := fmt.Fprintln(a.out, result.SVG)
			return err
		}
		_, err := fmt.Fprintln(a.out, result.DataURL)
		return err
	}

	var data []byte
	if result.SVG != "" {
		data = []byte(result.SVG)
	} else {
		_, decoded, err := generator.DecodeDataURL(result.DataURL)
		if err != nil {
			return err
		}
		data = decoded
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	fmt.Fprintf(a.out, "wrote %s (%s, %d bytes, %s)\n", output, result.Format, len(data), result.Method)
	return nil
}
