package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/malbeclabs/ifaceload/internal/store"
)

const commitPrompt = "Commit changes (y/n)? "

// NewPromptDecider asks on out whether to commit and reads the answer from
// in. Only "y" commits; any other answer, including end of input, rolls back.
func NewPromptDecider(in io.Reader, out io.Writer) store.Decider {
	reader := bufio.NewReader(in)

	return func(ctx context.Context, _ store.Summary) (store.Decision, error) {
		fmt.Fprint(out, commitPrompt)

		type answer struct {
			line string
			err  error
		}
		answerCh := make(chan answer, 1)
		go func() {
			line, err := reader.ReadString('\n')
			answerCh <- answer{line: line, err: err}
		}()

		var a answer
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return store.DecisionRollback, ctx.Err()
		case a = <-answerCh:
		}
		if a.err != nil && !errors.Is(a.err, io.EOF) {
			return store.DecisionRollback, fmt.Errorf("failed to read confirmation: %w", a.err)
		}

		if strings.ToLower(strings.TrimSpace(a.line)) == "y" {
			return store.DecisionCommit, nil
		}
		fmt.Fprintln(out, "Rolling back.")
		return store.DecisionRollback, nil
	}
}
