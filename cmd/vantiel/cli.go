package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/cnbyhn/vantiel/internal/errors"
	"github.com/cnbyhn/vantiel/internal/ops"
	"github.com/cnbyhn/vantiel/internal/save"
	"github.com/cnbyhn/vantiel/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(engine *ops.Engine) *cli.App {
	app := &cli.App{
		Name:    "vantiel",
		Usage:   "Save and journal engine for turn-based campaigns",
		Version: Version,
		Commands: []*cli.Command{
			newGameCmd(engine),
			turnCmd(engine),
			applyProfileCmd(engine),
			importCmd(engine),
			showCmd(engine),
			tailCmd(engine),
			rebuildIndexCmd(engine),
			webCmd(engine),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// newGameCmd creates the new-game command.
func newGameCmd(engine *ops.Engine) *cli.Command {
	return &cli.Command{
		Name:  "new-game",
		Usage: "Start a new game (optional profile text via --profile or stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "profile", Aliases: []string{"p"}, Usage: "Profile text (NAME:/CLASS:/DOG:/CITY:/CAUSE: lines or free form)"},
		},
		Action: func(c *cli.Context) error {
			profileText := c.String("profile")
			if profileText == "" && stdinHasData() {
				text, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				profileText = text
			}

			output, err := engine.NewGame(c.Context, ops.NewGameInput{ProfileText: profileText})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// turnCmd creates the turn command.
func turnCmd(engine *ops.Engine) *cli.Command {
	return &cli.Command{
		Name:  "turn",
		Usage: "Persist one turn (dialogue piped via stdin, one 'Speaker: text' per line)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "scene", Aliases: []string{"s"}, Required: true, Usage: "Scene reference (e.g. act1.harbor.3)"},
			&cli.StringFlag{Name: "tags", Usage: "Comma-separated scene tags"},
			&cli.StringFlag{Name: "choices", Usage: "Comma-separated choices offered this turn"},
			&cli.IntFlag{Name: "choice-taken", Value: -1, Usage: "Index of the choice taken"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "GM", Usage: "Turn mode: GM|IC"},
		},
		Action: func(c *cli.Context) error {
			if !stdinHasData() {
				return outputError(errors.NewInvalidRequest("dialogue must be piped via stdin"))
			}
			text, err := readStdin()
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			dialogue := parseDialogue(text)
			if len(dialogue) == 0 {
				return outputError(errors.NewInvalidRequest("dialogue is required"))
			}

			s, err := engine.CurrentSave(c.Context)
			if err != nil {
				return outputError(err)
			}

			input := ops.PersistTurnInput{
				SceneRef:  c.String("scene"),
				Dialogue:  dialogue,
				SceneTags: splitList(c.String("tags")),
				Choices:   splitList(c.String("choices")),
				Mode:      save.Mode(c.String("mode")),
			}
			if taken := c.Int("choice-taken"); taken >= 0 {
				input.ChoiceTaken = &taken
			}

			output, err := engine.PersistTurn(c.Context, s, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// applyProfileCmd creates the apply-profile command.
func applyProfileCmd(engine *ops.Engine) *cli.Command {
	return &cli.Command{
		Name:  "apply-profile",
		Usage: "Apply onboarding answers to the current save",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "text", Aliases: []string{"t"}, Usage: "Free-form answer text to parse"},
			&cli.StringFlag{Name: "name", Usage: "Character name"},
			&cli.StringFlag{Name: "class", Usage: "Character class"},
			&cli.StringFlag{Name: "city", Usage: "Home city"},
			&cli.StringFlag{Name: "cause", Usage: "Cause of death: Strays|Attacker|Accident"},
			&cli.StringFlag{Name: "dog", Usage: "Dog present: yes|no"},
		},
		Action: func(c *cli.Context) error {
			text := c.String("text")
			if text == "" && stdinHasData() {
				piped, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				text = piped
			}

			input := ops.ApplyProfileInput{
				Text:     text,
				Name:     c.String("name"),
				Class:    c.String("class"),
				City:     c.String("city"),
				Attacker: c.String("cause"),
			}
			switch strings.ToLower(c.String("dog")) {
			case "yes", "y", "true":
				yes := true
				input.AppaPresent = &yes
			case "no", "n", "false":
				no := false
				input.AppaPresent = &no
			}

			output, err := engine.ApplyProfile(c.Context, input)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(engine *ops.Engine) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Merge an uploaded save file into the current save",
		ArgsUsage: "<path>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("path argument is required"))
			}

			output, err := engine.ImportSave(c.Context, ops.ImportSaveInput{Path: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// showCmd creates the show command.
func showCmd(engine *ops.Engine) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Show the current save with derived status",
		Action: func(c *cli.Context) error {
			output, err := engine.ShowSave(c.Context)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// tailCmd creates the tail command.
func tailCmd(engine *ops.Engine) *cli.Command {
	return &cli.Command{
		Name:  "tail",
		Usage: "Show the newest journal entries",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 10, Usage: "Number of entries"},
		},
		Action: func(c *cli.Context) error {
			output, err := engine.JournalTail(c.Context, ops.JournalTailInput{Limit: c.Int("limit")})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// rebuildIndexCmd creates the rebuild-index command.
func rebuildIndexCmd(engine *ops.Engine) *cli.Command {
	return &cli.Command{
		Name:  "rebuild-index",
		Usage: "Rebuild the journal index from the journal file",
		Action: func(c *cli.Context) error {
			output, err := engine.RebuildIndex(c.Context)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// webCmd creates the web command.
func webCmd(engine *ops.Engine) *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Serve the save and journal viewer",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Bind address"},
			&cli.IntFlag{Name: "port", Value: 8787, Usage: "Listen port"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(engine, engine.Config(), Version, c.String("bind"), c.Int("port"))
			return web.Run(srv)
		},
	}
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if gameErr, ok := err.(*errors.GameError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", gameErr.Code, gameErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// splitList splits a comma-separated string into a trimmed slice.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// parseDialogue converts "Speaker: text" lines into dialogue lines. Lines
// without a speaker prefix are attributed to the Narrator.
func parseDialogue(text string) []save.Line {
	var lines []save.Line
	for _, raw := range strings.Split(text, "\n") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		speaker, rest, ok := strings.Cut(raw, ":")
		if ok && speaker != "" && !strings.Contains(speaker, " ") {
			lines = append(lines, save.Line{Speaker: speaker, Text: strings.TrimSpace(rest)})
			continue
		}
		lines = append(lines, save.Line{Speaker: "Narrator", Text: raw})
	}
	return lines
}
