package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"techpanel/internal/types"
)

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Run an interactive interview session",
	Long: `Starts a live interview: the panel asks for the candidate intake,
plans the topics, then interviews turn by turn until the plan is exhausted
or the candidate says "стоп интервью".`,
	RunE: runInterview,
}

func runInterview(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	in := bufio.NewReader(os.Stdin)

	intake, err := readIntake(in)
	if err != nil {
		return err
	}

	eng, err := buildEngine(ctx, cfg)
	if err != nil {
		return err
	}
	startedAt := time.Now()

	fmt.Println()
	fmt.Println(headerStyle.Render("— Интервью началось. Команда выхода: «стоп интервью» —"))
	fmt.Println(dimStyle.Render("Планирую темы..."))

	out, err := eng.Begin(ctx, intake)
	if err != nil {
		return fmt.Errorf("failed to start the interview: %w", err)
	}

	for !out.Finished {
		fmt.Println()
		fmt.Println(questionStyle.Render("Интервьюер: " + out.Question))
		fmt.Print(promptStyle.Render(intake.ParticipantName + " > "))

		answer, rerr := in.ReadString('\n')
		if rerr != nil {
			// EOF ends the session gracefully with a report.
			eng.RequestStop()
			answer = ""
		}

		out, err = eng.Submit(ctx, strings.TrimSpace(answer))
		if err != nil {
			return fmt.Errorf("interview turn failed: %w", err)
		}
	}

	fmt.Println()
	fmt.Print(renderMarkdown(feedbackMarkdown(*out.Final)))

	logPath, err := persistSession(ctx, cfg, eng, intake, *out.Final, "interactive", startedAt)
	if err != nil {
		return fmt.Errorf("failed to persist the session: %w", err)
	}
	fmt.Println(dimStyle.Render("Лог сессии: " + logPath))
	return nil
}

// readIntake collects the candidate profile from the terminal.
func readIntake(in *bufio.Reader) (types.Intake, error) {
	fmt.Println(headerStyle.Render("Новая сессия — данные кандидата"))

	name, err := readField(in, "Имя кандидата")
	if err != nil {
		return types.Intake{}, err
	}
	position, err := readField(in, "Позиция")
	if err != nil {
		return types.Intake{}, err
	}

	var grade types.GradeTarget
	for {
		raw, rerr := readField(in, "Целевой грейд (intern/junior/middle/senior/staff/principal)")
		if rerr != nil {
			return types.Intake{}, rerr
		}
		grade, err = types.ParseGradeTarget(raw)
		if err == nil {
			break
		}
		fmt.Println(dimStyle.Render("Неизвестный грейд, попробуйте еще раз."))
	}

	fmt.Print(promptStyle.Render("Краткое описание опыта > "))
	summary, err := in.ReadString('\n')
	if err != nil {
		return types.Intake{}, fmt.Errorf("failed to read intake: %w", err)
	}

	return types.Intake{
		ParticipantName:   name,
		Position:          position,
		GradeTarget:       grade,
		ExperienceSummary: strings.TrimSpace(summary),
	}, nil
}

func readField(in *bufio.Reader, label string) (string, error) {
	for {
		fmt.Print(promptStyle.Render(label + " > "))
		raw, err := in.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read intake: %w", err)
		}
		if value := strings.TrimSpace(raw); value != "" {
			return value, nil
		}
	}
}
