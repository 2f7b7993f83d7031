package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/framekit/walletwidget/internal/config"
	"github.com/framekit/walletwidget/internal/provider"
	"github.com/framekit/walletwidget/internal/session"
	"github.com/framekit/walletwidget/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show provider and session status",
	Long: `Inspect the current environment without prompting: which provider
sources are present, what the persisted session record claims, and which
accounts the live provider reports as already authorized.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rec := session.DefaultRecordStore().Load()

		recorded := "none"
		if rec.Connected && rec.Address != "" {
			recorded = ui.TruncateAddr(rec.Address)
		}

		// nil authorizer: status never prompts.
		resolver := newResolver(nil)

		pairs := [][2]string{
			{"Network", fmt.Sprintf("%s (chain %d)", cfg.NetworkMode, config.ChainID(cfg.NetworkMode))},
			{"Sources", strings.Join(resolver.Names(), " → ")},
			{"Recorded session", recorded},
		}

		p, err := resolver.Resolve()
		if err != nil {
			pairs = append(pairs, [2]string{"Provider", ui.Err("none found")})
			fmt.Println(ui.KeyValueBlock("Wallet Status", pairs))
			return nil
		}
		pairs = append(pairs, [2]string{"Provider", p.Name()})

		ctx, cancel := context.WithTimeout(context.Background(), config.RPCTimeout)
		defer cancel()

		raw, err := p.Request(ctx, provider.MethodAccounts, []any{})
		if err != nil {
			pairs = append(pairs, [2]string{"Accounts", ui.Err(err.Error())})
		} else {
			var accounts []string
			_ = json.Unmarshal(raw, &accounts)
			if len(accounts) == 0 {
				pairs = append(pairs, [2]string{"Accounts", ui.Meta("none authorized")})
			} else {
				pairs = append(pairs, [2]string{"Accounts", ui.Addr(strings.Join(accounts, ", "))})
			}
		}

		fmt.Println(ui.KeyValueBlock("Wallet Status", pairs))
		return nil
	},
}
