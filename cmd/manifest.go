package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/framekit/walletwidget/internal/frame"
)

var manifestURL string

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Print the frame embed manifest",
	Long: `Print the embed descriptor the hosting feed uses to render the
widget's preview card and launch button. Paste it into the page metadata
of the deployed mini-app.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := frame.Default(manifestURL).JSON()
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

func init() {
	manifestCmd.Flags().StringVar(&manifestURL, "url", "https://walletwidget.example.org", "deployed mini-app URL")
}
