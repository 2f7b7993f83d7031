package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/framekit/walletwidget/internal/session"
	"github.com/framekit/walletwidget/internal/ui"
)

var widgetCmd = &cobra.Command{
	Use:   "widget",
	Short: "Run the interactive wallet widget",
	Long: `Run the wallet widget panel.

On start the widget attempts a silent reconnection from the persisted
session, then tracks provider account/chain changes until it is closed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		changes := make(chan session.Session, 8)

		// Pressing "c" in the widget is the explicit user action, so the
		// local provider's authorization is granted without a second prompt.
		ctrl := newController(
			func(string) bool { return true },
			session.WithOnChange(func(s session.Session) {
				select {
				case changes <- s:
				default: // widget repaints from snapshots; dropping is fine
				}
			}),
		)
		defer ctrl.Close()

		prog := ui.NewWidget(ctrl, changes, time.Duration(cfg.WatchInterval)*time.Second)
		_, err := prog.Run()
		return err
	},
}
