package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRoomsCmd() *cobra.Command {
	roomsCmd := &cobra.Command{
		Use:   "rooms",
		Short: "Inspect rooms",
	}

	roomsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List public rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result RoomList
			if err := client.Get("/api/v1/rooms", &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	})

	roomsCmd.AddCommand(&cobra.Command{
		Use:   "get <room-id>",
		Short: "Show one room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Room
			if err := client.Get(fmt.Sprintf("/api/v1/rooms/%s", args[0]), &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	})

	roomsCmd.AddCommand(&cobra.Command{
		Use:   "state <room-id>",
		Short: "Show a room's game state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameState
			if err := client.Get(fmt.Sprintf("/api/v1/rooms/%s/state", args[0]), &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	})

	roomsCmd.AddCommand(&cobra.Command{
		Use:   "history <room-id>",
		Short: "Show a room's mutation history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result History
			if err := client.Get(fmt.Sprintf("/api/v1/rooms/%s/history", args[0]), &result); err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	})

	return roomsCmd
}
