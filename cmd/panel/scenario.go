package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"techpanel/internal/scenario"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario [file]",
	Short: "Run a scripted interview simulation",
	Long: `Runs the interview against a YAML scenario file instead of a live
candidate. The scenario supplies the intake and the candidate's scripted
messages; the panel behaves exactly as in an interactive session.

Example:
  panel scenario scenarios/middle_backend.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runScenario,
}

func runScenario(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	sc, err := scenario.Load(args[0])
	if err != nil {
		return err
	}

	eng, err := buildEngine(ctx, cfg)
	if err != nil {
		return err
	}
	startedAt := time.Now()

	fmt.Println(dimStyle.Render(fmt.Sprintf("Сценарий %s: %d сообщений", args[0], len(sc.ScriptedUserMessages))))

	res, err := scenario.NewRunner(eng, logger).Run(ctx, sc)
	if err != nil {
		return err
	}

	for _, turn := range res.Turns {
		fmt.Println()
		fmt.Println(questionStyle.Render(fmt.Sprintf("[%d] Интервьюер: %s", turn.TurnID, turn.AgentVisibleMessage)))
		if turn.UserMessage != "" {
			fmt.Println(promptStyle.Render("    Кандидат: ") + turn.UserMessage)
		}
	}
	if res.ScriptExhausted {
		fmt.Println(dimStyle.Render("Сценарий закончился раньше интервью; сессия остановлена."))
	}

	fmt.Println()
	fmt.Print(renderMarkdown(feedbackMarkdown(res.Final)))

	label := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	logPath, err := persistSession(ctx, cfg, eng, sc.Intake, res.Final, label, startedAt)
	if err != nil {
		return fmt.Errorf("failed to persist the session: %w", err)
	}
	fmt.Println(dimStyle.Render("Лог сессии: " + logPath))
	return nil
}
