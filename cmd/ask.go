/*
Copyright © 2026 The GiziSehat Authors

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gizisehat/gizi/pkg/assistant"
	"github.com/gizisehat/gizi/pkg/gizi"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// conversation is the JSON output of the ask command.
type conversation struct {
	Session      string                 `json:"session_id"`
	Messages     []assistant.Message    `json:"messages"`
	QuickReplies []assistant.QuickReply `json:"quick_replies"`
}

// getAskCmd returns the ask command.
func getAskCmd() *cobra.Command {
	var sessionID, chip string
	var interactive bool

	askCmd := &cobra.Command{
		Use:   "ask CHILD_ID [QUESTION]",
		Short: "Ask the nutrition assistant",
		Long: `Ask the assistant about feeding and growth of a child. Without
--session a new conversation is started and its ID is printed, pass it
with --session to continue. A quick-reply chip is chosen with --chip.
With --interactive questions are read from stdin until an empty line.

Examples:
  gizi ask sari "menu MPASI 9 bulan"
  gizi ask sari --session 5f0c... --chip protein
  gizi ask sari -i`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			if len(args) == 2 {
				text = args[1]
			}
			return withEngine(func(ctx context.Context, svc gizi.Gizi) error {
				if interactive {
					return runChat(ctx, svc, args[0], sessionID)
				}
				return runAsk(ctx, svc, args[0], sessionID, text, chip)
			})
		},
	}

	askCmd.Flags().StringVarP(&sessionID, "session", "s", "", "continue a conversation")
	askCmd.Flags().StringVarP(&chip, "chip", "c", "", "quick-reply intent ID")
	askCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "read questions from stdin")
	return askCmd
}

func runAsk(
	ctx context.Context,
	svc gizi.Gizi,
	childID, sessionID, text, chip string,
) error {
	var res conversation
	sid, greeting, err := openSession(ctx, svc, childID, sessionID)
	if err != nil {
		return err
	}
	res.Session = sid
	res.Messages = greeting

	var reply assistant.Message
	switch {
	case chip != "":
		reply, err = svc.SelectQuickReply(ctx, sid, chip)
	case text != "":
		reply, err = svc.SendMessage(ctx, sid, text)
	}
	if err != nil {
		return err
	}
	if reply.ID != "" {
		res.Messages = append(res.Messages, reply)
	}
	res.QuickReplies = svc.QuickReplies()

	return output(res, func() {
		for _, m := range res.Messages {
			printMessage(m)
		}
		printChips(res.QuickReplies)
		if sessionID == "" {
			gn.Info("Continue with <em>--session %s</em>", sid)
		}
	})
}

// openSession starts a conversation when sessionID is empty.
func openSession(
	ctx context.Context,
	svc gizi.Gizi,
	childID, sessionID string,
) (string, []assistant.Message, error) {
	if sessionID != "" {
		return sessionID, nil, nil
	}
	s, msgs, err := svc.StartSession(ctx, childID)
	if err != nil {
		return "", nil, err
	}
	return s.ID, msgs, nil
}

func runChat(ctx context.Context, svc gizi.Gizi, childID, sessionID string) error {
	sid, greeting, err := openSession(ctx, svc, childID, sessionID)
	if err != nil {
		return err
	}
	for _, m := range greeting {
		printMessage(m)
	}
	chips := svc.QuickReplies()
	printChips(chips)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			return nil
		}

		var reply assistant.Message
		if id, ok := chipID(chips, line); ok {
			reply, err = svc.SelectQuickReply(ctx, sid, id)
		} else {
			reply, err = svc.SendMessage(ctx, sid, line)
		}
		if err != nil {
			return err
		}
		printMessage(reply)
	}
}

// chipID resolves "#n" to the intent of the n-th quick reply.
func chipID(chips []assistant.QuickReply, s string) (string, bool) {
	var n int
	if _, err := fmt.Sscanf(s, "#%d", &n); err != nil {
		return "", false
	}
	if n < 1 || n > len(chips) {
		return "", false
	}
	return chips[n-1].IntentID, true
}

func printMessage(m assistant.Message) {
	if m.Role == assistant.Caregiver {
		fmt.Printf("> %s\n", m.Text)
		return
	}
	fmt.Printf("%s\n\n", m.Text)
}

func printChips(chips []assistant.QuickReply) {
	for i, c := range chips {
		fmt.Printf("  #%d %s\n", i+1, c.Text)
	}
}
