package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"learnhub-quiz-service/internal/app"
	"learnhub-quiz-service/internal/config"
	"learnhub-quiz-service/internal/domain"
	"learnhub-quiz-service/internal/logger"
)

// NewPlayCmd runs one quiz attempt in the terminal against the configured backends.
func NewPlayCmd(configPath *string) *cobra.Command {
	var quizID, userID string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Take a quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger.Init("warn", true)
			svc, err := buildServices(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer svc.Close()
			return playQuiz(cmd.Context(), svc.quizzes, userID, quizID, os.Stdin, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&quizID, "quiz", "1", "quiz id")
	cmd.Flags().StringVar(&userID, "user", "local", "user id the attempt is counted for")
	return cmd
}

func playQuiz(ctx context.Context, quizzes *app.QuizService, userID, quizID string, in io.Reader, out io.Writer) error {
	snap, err := quizzes.StartQuiz(ctx, userID, quizID)
	if err != nil {
		return err
	}
	session, err := quizzes.Session(userID, snap.SessionID)
	if err != nil {
		return err
	}
	defer func() { _ = quizzes.Discard(ctx, userID, snap.SessionID) }()

	quiz := session.Quiz()
	fmt.Fprintf(out, "%s (%d questions", quiz.Title, len(quiz.Questions))
	if quiz.TimeLimitMinutes > 0 {
		fmt.Fprintf(out, ", %d min", quiz.TimeLimitMinutes)
	}
	fmt.Fprintf(out, ", pass at %d%%)\n", quiz.PassingScore)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-session.Done():
				return
			}
		}
	}()

	for snap.State == domain.StateRunning {
		q := quiz.Questions[snap.CurrentIndex]
		printQuestion(out, snap, q)

		select {
		case <-session.Done():
			fmt.Fprintln(out, "\ntime is up")
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return errors.New("input closed before the quiz finished")
			}
			value, err := parseAnswer(q, line)
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			if _, err := quizzes.SubmitAnswer(ctx, userID, snap.SessionID, value); err != nil && !errors.Is(err, domain.ErrInvalidState) {
				return err
			}
		}
		if snap, err = quizzes.Snapshot(ctx, userID, snap.SessionID); err != nil {
			return err
		}
	}

	<-session.Done()
	snap, err = quizzes.Snapshot(ctx, userID, snap.SessionID)
	if err != nil {
		return err
	}
	printResult(out, snap, quiz)
	return nil
}

func printQuestion(out io.Writer, snap domain.SessionSnapshot, q domain.Question) {
	fmt.Fprintf(out, "\n[%d/%d]", snap.CurrentIndex+1, snap.TotalQuestions)
	if snap.RemainingSeconds > 0 {
		fmt.Fprintf(out, " %02d:%02d left", snap.RemainingSeconds/60, snap.RemainingSeconds%60)
	}
	fmt.Fprintf(out, "\n%s\n", q.Text)
	switch q.Kind {
	case domain.KindMultipleChoice:
		for i, opt := range q.Options {
			fmt.Fprintf(out, "  %d) %s\n", i+1, opt)
		}
	case domain.KindTrueFalse:
		fmt.Fprintln(out, "  t) true\n  f) false")
	}
	fmt.Fprint(out, "> ")
}

// parseAnswer maps terminal input to an answer: 1-based option numbers, t/f, or free text.
func parseAnswer(q domain.Question, line string) (domain.AnswerValue, error) {
	line = strings.TrimSpace(line)
	switch q.Kind {
	case domain.KindMultipleChoice:
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > len(q.Options) {
			return domain.AnswerValue{}, fmt.Errorf("pick a number between 1 and %d", len(q.Options))
		}
		return domain.IndexAnswer(n - 1), nil
	case domain.KindTrueFalse:
		switch strings.ToLower(line) {
		case "t", "true", "1":
			return domain.IndexAnswer(0), nil
		case "f", "false", "2":
			return domain.IndexAnswer(1), nil
		}
		return domain.AnswerValue{}, errors.New("answer t or f")
	default:
		if line == "" {
			return domain.AnswerValue{}, errors.New("type an answer")
		}
		return domain.TextAnswer(line), nil
	}
}

func printResult(out io.Writer, snap domain.SessionSnapshot, quiz domain.Quiz) {
	if snap.Result == nil {
		fmt.Fprintln(out, "\nno result")
		return
	}
	r := snap.Result
	verdict := "not passed"
	if r.Passed {
		verdict = "passed"
	}
	fmt.Fprintf(out, "\nscore %d%% (%d/%d correct), %s\n", r.ScorePercent, r.CorrectCount, r.TotalQuestions, verdict)
	for i, q := range quiz.Questions {
		mark := "-"
		if i < len(snap.Answers) && snap.Answers[i].IsCorrect {
			mark = "+"
		}
		fmt.Fprintf(out, " %s %s", mark, q.Text)
		if q.Explanation != "" {
			fmt.Fprintf(out, " (%s)", q.Explanation)
		}
		fmt.Fprintln(out)
	}
}
