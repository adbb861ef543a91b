// Package cli implements qrcli, a command-line front end to the generator,
// content classifier and PDF export.
//
// Settings resolve from flags, then QRCLI_* environment variables, then a
// .qrcli.yaml file in the working directory or the one named by --config.
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// app carries what every subcommand needs.
type app struct {
	v       *viper.Viper
	out     io.Writer
	logger  *zap.Logger
	cfgFile string
}

// NewRootCommand builds the command tree. Output goes to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out, logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "qrcli",
		Short: "Generate, inspect and export QR codes",
		Long: `qrcli renders QR codes locally or through a render endpoint and
classifies QR payloads.

Examples:
  qrcli generate "https://example.com" -o site.png
  qrcli generate "WIFI:T:WPA;S:Home;P:secret;;" --format svg -o wifi.svg
  qrcli detect "mailto:ada@example.com"
  qrcli validate "geo:52.52,13.405"
  qrcli pdf "https://example.com" --title "Our site" -o site.pdf`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Subcommands share flag names, so only the running command's
			// flags are bound.
			if err := a.v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			return a.init()
		},
	}
	root.SetOut(out)

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default .qrcli.yaml)")
	root.PersistentFlags().BoolP("verbose", "v", false, "log generation details to stderr")

	root.AddCommand(
		newGenerateCommand(a),
		newDetectCommand(a),
		newParseCommand(a),
		newValidateCommand(a),
		newPDFCommand(a),
	)
	return root
}

func (a *app) init() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.AddConfigPath(".")
		a.v.SetConfigType("yaml")
		a.v.SetConfigName(".qrcli")
	}
	a.v.SetEnvPrefix("QRCLI")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		// Only a missing default file is tolerated.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	if a.v.GetBool("verbose") {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		a.logger = logger
	}
	return nil
}
