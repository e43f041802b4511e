package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"techpanel/internal/sessionlog"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived interview sessions",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum sessions to show")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	archive, err := sessionlog.OpenArchive(cfg.Sessions.ArchivePath)
	if err != nil {
		return err
	}
	defer archive.Close()

	sessions, err := archive.List(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println(dimStyle.Render("Архив пуст."))
		return nil
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("%-20s %-28s %-10s %-6s %-12s", "ДАТА", "КАНДИДАТ", "ГРЕЙД", "ХОДЫ", "РЕШЕНИЕ")))
	for _, s := range sessions {
		fmt.Printf("%-20s %-28s %-10s %-6d %-12s\n",
			s.StartedAt.Local().Format("2006-01-02 15:04"),
			s.Participant, s.Grade, s.Turns, s.Recommendation)
		fmt.Println(dimStyle.Render("  " + s.LogPath))
	}
	return nil
}
