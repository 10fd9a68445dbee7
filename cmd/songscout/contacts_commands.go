package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"songscout/internal/config"
	"songscout/internal/store"
)

func newContactsCommand(ctx *commandContext) *cobra.Command {
	contactsCmd := &cobra.Command{
		Use:   "contacts",
		Short: "Inspect aggregated songwriter contacts",
	}

	contactsCmd.AddCommand(newContactsListCommand(ctx))
	contactsCmd.AddCommand(newContactsStageCommand(ctx))

	return contactsCmd
}

func newContactsListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var hotOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contacts ordered by unsigned score",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				contacts, err := st.ListContacts(cmd.Context(), limit)
				if err != nil {
					return err
				}

				rows := make([][]string, 0, len(contacts))
				for _, contact := range contacts {
					if hotOnly && !contact.HotLead {
						continue
					}
					rows = append(rows, []string{
						truncate(contact.SongwriterName, 32),
						strconv.Itoa(contact.UnsignedScore),
						yesNo(contact.HotLead),
						strconv.FormatInt(contact.TrackCount, 10),
						strconv.FormatInt(contact.TotalStreams, 10),
						fmt.Sprintf("%.1f%%", contact.WowGrowthPct),
						fmt.Sprintf("%d/%d", contact.RegistryFoundCount, contact.RegistrySearchedCount),
						string(contact.Stage),
					})
				}
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No contacts yet")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]tableColumn{
						column("SONGWRITER"), rightColumn("SCORE"), column("HOT"),
						rightColumn("TRACKS"), rightColumn("STREAMS"), rightColumn("GROWTH"),
						rightColumn("REGISTRY"), column("STAGE"),
					},
					rows,
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 25, "Maximum number of contacts to list")
	cmd.Flags().BoolVar(&hotOnly, "hot", false, "Show hot leads only")
	return cmd
}

func newContactsStageCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stage <songwriter> <discovery|watch|active_search>",
		Short: "Move a contact through the outreach pipeline",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stage := store.ContactStage(args[1])
			switch stage {
			case store.StageDiscovery, store.StageWatch, store.StageActiveSearch:
			default:
				return fmt.Errorf("unknown stage %q", args[1])
			}

			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				contact, err := st.ContactBySongwriter(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if contact == nil {
					return fmt.Errorf("no contact named %q", args[0])
				}
				if err := st.SetContactStage(cmd.Context(), args[0], stage); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s moved to %s\n", args[0], stage)
				return nil
			})
		},
	}
}
