package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/linguo/internal/practice"
	"github.com/abhisek/linguo/internal/store"
	"github.com/abhisek/linguo/internal/ui/components"
	"github.com/abhisek/linguo/internal/ui/theme"
)

var answerCmd = &cobra.Command{
	Use:   "answer <text>",
	Short: "Grade one answer and apply it to the learner's progress",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		questionID, _ := cmd.Flags().GetString("question")
		responseMs, _ := cmd.Flags().GetInt("response-ms")
		combo, _ := cmd.Flags().GetInt("combo")

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		clk, err := newClock()
		if err != nil {
			return err
		}

		svc := practice.NewService(st, clk, cfg.HeartsEnabled)
		out, err := svc.SubmitAnswer(cmd.Context(), practice.Submission{
			UserID:       userFlag(cmd),
			QuestionID:   questionID,
			Answer:       strings.Join(args, " "),
			ResponseTime: time.Duration(responseMs) * time.Millisecond,
			Combo:        combo,
		})
		if errors.Is(err, practice.ErrOutOfHearts) {
			fmt.Println(theme.Incorrect.Render("Out of hearts."), "Hearts refill one every 30 minutes.")
			return err
		}
		if err != nil {
			return err
		}

		printOutcome(out)
		return nil
	},
}

func printOutcome(out *practice.Outcome) {
	if out.Correct {
		fmt.Println(theme.Correct.Render("✓ Correct"))
	} else {
		first, _, _ := strings.Cut(out.Question.CorrectAnswer, "|")
		fmt.Println(theme.Incorrect.Render("✗ Incorrect"), "expected:", strings.TrimSpace(first))
	}
	if out.Revision {
		fmt.Println(theme.Hint.Render("Revision mode: hearts are not at risk."))
	}

	fmt.Printf("Next review in %d day(s), mastery %.0f%%\n", out.Concept.IntervalDays, out.Concept.Mastery*100)
	fmt.Println("Hearts ", components.HeartsView(out.Hearts, store.MaxHearts))

	if r := out.Streak; r != nil {
		fmt.Printf("+%d XP, streak %d\n", r.XPGain, r.NewStreak)
		if r.StreakFreezeUsed {
			fmt.Println("A streak freeze kept your streak alive.")
		}
		if r.FreezeEarned {
			fmt.Println("You earned a streak freeze!")
		}
		if r.StreakMilestone > 0 {
			fmt.Println(theme.Streak.Render(fmt.Sprintf("🔥 %d day milestone!", r.StreakMilestone)))
		}
		if r.LeveledUp() {
			fmt.Printf("Level up! %d → %d\n", r.PreviousLevel, r.NewLevel)
		}
	}

	for _, t := range out.Transitions {
		fmt.Printf("Skill %s: %s → %s\n", t.SkillID, t.From, t.To)
	}
	for _, id := range out.Unlocked {
		fmt.Println(theme.Correct.Render("Unlocked " + id))
	}
	for _, u := range out.Challenges {
		if u.CompletedNow {
			fmt.Printf("Challenge complete: %s (+%d XP)\n", u.Challenge.Title, u.XPGranted)
		}
	}
}

func init() {
	answerCmd.Flags().String("question", "", "Question ID")
	answerCmd.Flags().Int("response-ms", 0, "Response time in milliseconds (0 = untimed)")
	answerCmd.Flags().Int("combo", 1, "XP combo multiplier")
	_ = answerCmd.MarkFlagRequired("question")
	addUserFlag(answerCmd)
}
