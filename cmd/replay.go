package cmd

import (
	"context"
	"fmt"

	"github.com/mj1618/desktop-focus/internal/config"
	"github.com/mj1618/desktop-focus/internal/output"
	"github.com/mj1618/desktop-focus/internal/platform"
	"github.com/mj1618/desktop-focus/internal/platform/scripted"
	"github.com/mj1618/desktop-focus/internal/session"
	"github.com/mj1618/desktop-focus/internal/speech"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay <script.yaml>",
	Short: "Play a scripted focus session and print what was announced",
	Long: `Load a scripted accessibility tree and play its steps through a running
coordinator. Each step is one of:

  - activate: <bundle id>              bring an application to the front
  - focus: <element id>                move focus to an element
  - value: {element: <id>, text: ...}  change an element's value

The transcript lists every step with its outcome, the announcements it caused,
the mode afterwards, and which elements still hold a live subscription. The
final state is taken after shutdown, so no subscription should remain live.

With --stream, events are written as JSONL while the script plays: one line
per announcement, then a "done" line with the final state. Output is always
JSONL in this mode regardless of the --format flag.

Examples:
  desktop-focus replay session.yaml
  desktop-focus replay session.yaml --format json --pretty
  desktop-focus replay session.yaml --stream`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().Bool("stream", false, "Stream announcements as JSONL while playing")
}

// Transcript is the output of the replay command.
type Transcript struct {
	Script        string               `yaml:"script"        json:"script"`
	Steps         []session.StepResult `yaml:"steps"         json:"steps"`
	Announcements []speech.Entry       `yaml:"announcements" json:"announcements"`
	Final         session.Snapshot     `yaml:"final"         json:"final"`
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	tree, err := scripted.Load(args[0])
	if err != nil {
		return err
	}
	stream, _ := cmd.Flags().GetBool("stream")
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if stream {
		return streamReplay(ctx, cmd, tree, cfg, log)
	}

	sess, err := session.New(cfg, tree, log)
	if err != nil {
		return err
	}
	sess.Start(ctx)
	steps, err := sess.Replay(ctx)
	if stopErr := sess.Stop(); err == nil {
		err = stopErr
	}
	if err != nil {
		return fmt.Errorf("replay %s: %w", args[0], err)
	}

	return output.Fprint(cmd.OutOrStdout(), Transcript{
		Script:        args[0],
		Steps:         steps,
		Announcements: sess.Speech(0),
		Final:         sess.Snapshot(),
	})
}

// streamReplay drives the session through the tree's event source, the way a
// native host would, and emits announcements as they happen.
func streamReplay(ctx context.Context, cmd *cobra.Command, tree *scripted.Tree, cfg config.Config, log zerolog.Logger) error {
	st := output.NewStream(cmd.OutOrStdout())
	provider := scripted.NewProvider(tree, platform.AnnouncerFunc(func(text string) {
		st.Emit("announce", map[string]string{"text": text})
	}))

	sess, err := session.New(cfg, tree, log, provider.Announcer)
	if err != nil {
		return err
	}
	sess.Start(ctx)
	watchErr := provider.Events.Watch(ctx, sess)
	if err := sess.Stop(); err != nil {
		return err
	}
	if watchErr != nil {
		st.Emit("error", map[string]string{"error": watchErr.Error()})
		return watchErr
	}
	return st.Emit("done", sess.Snapshot())
}
