package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/fsnotify/fsnotify"
	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/yargevad/filepathx"
	"go.uber.org/zap"

	"promptforge/internal/config"
	"promptforge/internal/fsaccess"
	"promptforge/internal/importer"
	"promptforge/internal/logging"
	"promptforge/internal/prompt"
	"promptforge/internal/services"
	"promptforge/internal/tokens"
	"promptforge/internal/utils"
)

// buildFlags are shared by build, send and watch.
type buildFlags struct {
	form        string
	mode        string
	with        string
	files       []string
	skip        []string
	interactive bool
	restore     bool
	save        bool
}

func (f *buildFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.form, "form", "", "YAML form file with mode, goal, requirements, return_format, warnings and context")
	cmd.Flags().StringVar(&f.mode, "mode", "", "prompt mode: develop, commit or code-check (overrides the form)")
	cmd.Flags().StringVar(&f.with, "with", "", "additional directory merged into the staged files")
	cmd.Flags().StringArrayVarP(&f.files, "file", "f", nil, "individual file or ** glob to stage (repeatable)")
	cmd.Flags().StringArrayVar(&f.skip, "skip", nil, "top-level entry to leave out (repeatable)")
	cmd.Flags().BoolVarP(&f.interactive, "interactive", "i", false, "choose top-level entries with a fuzzy finder")
	cmd.Flags().BoolVar(&f.restore, "restore", false, "reuse the directories saved by --save when none are given")
	cmd.Flags().BoolVar(&f.save, "save", false, "remember the directories for --restore")
}

// assembled is the outcome of a build.
type assembled struct {
	Text        string
	Mode        prompt.Mode
	Form        prompt.Form
	Files       []importer.StagedFile
	Attachments []importer.Attachment
	RootName    string
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string
	var app *App

	root := &cobra.Command{
		Use:           "promptforge",
		Short:         "Assemble code prompts from project files and estimate their token cost",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := utils.LoadEnv(); err != nil && !errors.Is(err, os.ErrNotExist) {
				fmt.Fprintln(os.Stderr, "warning: .env not loaded:", err)
			}
			if err := config.Prepare(v, cfgFile); err != nil {
				return err
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			app = NewApp(cfg)
			return app.startup(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil {
				app.shutdown()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ./promptforge.yaml or $HOME/.config/promptforge/promptforge.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn or error")
	pf.String("db", "", "database path")
	pf.String("tokenizer", "tiktoken", "local tokenizer: tiktoken, huggingface or heuristic")
	pf.String("tokenizer-model", "gpt-4o", "model or encoding used by the local tokenizer")
	pf.Bool("remote-tokens", false, "count tokens with the Gemini countTokens API")
	pf.StringSlice("exclude", nil, "doublestar patterns to skip while scanning")
	v.BindPFlag("log.level", pf.Lookup("log-level"))
	v.BindPFlag("database.path", pf.Lookup("db"))
	v.BindPFlag("tokens.tokenizer", pf.Lookup("tokenizer"))
	v.BindPFlag("tokens.tokenizer_model", pf.Lookup("tokenizer-model"))
	v.BindPFlag("tokens.remote", pf.Lookup("remote-tokens"))
	v.BindPFlag("scan.exclude", pf.Lookup("exclude"))

	appRef := func() *App { return app }
	root.AddCommand(
		newBuildCmd(appRef),
		newSendCmd(appRef, v),
		newWatchCmd(appRef),
		newChatsCmd(appRef),
		newKeysCmd(appRef),
		newModelsCmd(appRef),
		newRootsCmd(appRef),
	)
	return root
}

func newBuildCmd(app func() *App) *cobra.Command {
	var flags buildFlags
	var output string
	var toClipboard, noTokens bool

	cmd := &cobra.Command{
		Use:   "build [dir]",
		Short: "Scan, stage and assemble a prompt",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			ctx := cmd.Context()
			out, err := a.assemble(ctx, flags, args)
			if err != nil {
				return err
			}
			if !noTokens {
				a.printEstimate(ctx, out)
			}

			if output != "" {
				if err := os.WriteFile(output, []byte(out.Text), 0o644); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				fmt.Fprintln(os.Stderr, "Prompt written to", output)
			} else if !toClipboard {
				fmt.Fprintln(cmd.OutOrStdout(), out.Text)
			}
			if toClipboard {
				if err := clipboard.WriteAll(out.Text); err != nil {
					return fmt.Errorf("copy to clipboard: %w", err)
				}
				fmt.Fprintln(os.Stderr, "Prompt copied to clipboard.")
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the prompt to a file")
	cmd.Flags().BoolVarP(&toClipboard, "clipboard", "c", false, "copy the prompt to the clipboard")
	cmd.Flags().BoolVar(&noTokens, "no-tokens", false, "skip the token estimate")
	return cmd
}

func newSendCmd(app func() *App, v *viper.Viper) *cobra.Command {
	var flags buildFlags
	var chatID uint
	var modelKey, message string

	cmd := &cobra.Command{
		Use:   "send [dir]",
		Short: "Build a prompt and send it to a model inside a chat",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			ctx := cmd.Context()

			var text string
			var attachments []importer.Attachment
			mode := prompt.ModeDevelop
			if message != "" && flags.form == "" && len(args) == 0 && len(flags.files) == 0 && !flags.restore {
				text = message
			} else {
				out, err := a.assemble(ctx, flags, args)
				if err != nil {
					return err
				}
				text, attachments, mode = out.Text, out.Attachments, out.Mode
				if message != "" {
					text = message + "\n\n" + text
				}
			}

			if modelKey == "" && chatID == 0 {
				modelKey = v.GetString("llm.model")
			}
			res, err := a.conversations.Send(ctx, services.SendInput{
				ChatID:      chatID,
				ModelKey:    modelKey,
				Mode:        mode,
				Text:        text,
				Attachments: attachments,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Assistant.Content)
			fmt.Fprintf(os.Stderr, "chat %d: %s\n", res.Chat.ID, res.Chat.Title)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().UintVar(&chatID, "chat", 0, "continue an existing chat")
	cmd.Flags().StringVarP(&modelKey, "model", "m", "", "model key, for example gemini|gemini-2.5-flash")
	cmd.Flags().StringVar(&message, "message", "", "message text, sent alone or before the assembled prompt")
	v.BindPFlag("llm.model", cmd.Flags().Lookup("model"))
	return cmd
}

func newWatchCmd(app func() *App) *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "watch <form.yaml> [dir]",
		Short: "Re-estimate the prompt every time the form file changes",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			ctx := cmd.Context()
			formPath := args[0]
			flags.form = formPath

			out, err := a.assemble(ctx, flags, args[1:])
			if err != nil {
				return err
			}
			blocks := prompt.NewBlockSet(a.cfg.Prompt.MaxFileBlocks)
			for _, f := range out.Files {
				if _, err := blocks.AddFile(f.Path, f.Text); err != nil {
					logging.Warn("file left out of the estimate", zap.String("path", f.Path), zap.Error(err))
				}
			}
			refs := attachmentRefs(out.Attachments)

			est := a.newEstimator("watch", func(e tokens.Estimate) {
				if !e.Pending {
					fmt.Fprintln(cmd.OutOrStdout(), describeEstimate(e))
				}
			})
			refresh := func() {
				form, _, err := prompt.LoadForm(formPath)
				if err != nil {
					fmt.Fprintln(os.Stderr, "form:", err)
					return
				}
				setFormBlocks(blocks, form)
				est.RecomputeDebounced(blocks.TokenItems(), refs)
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("start watcher: %w", err)
			}
			defer watcher.Close()
			// Editors often replace the file, so the directory is watched.
			if err := watcher.Add(filepath.Dir(formPath)); err != nil {
				return fmt.Errorf("watch %s: %w", formPath, err)
			}
			target := filepath.Clean(formPath)

			refresh()
			fmt.Fprintln(os.Stderr, "Watching", formPath, "(Ctrl+C to stop)")
			for {
				select {
				case <-ctx.Done():
					return nil
				case ev, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if filepath.Clean(ev.Name) == target && (ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
						refresh()
					}
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					logging.Warn("watch error", zap.Error(err))
				}
			}
		},
	}
	flags.register(cmd)
	return cmd
}

func setFormBlocks(blocks *prompt.BlockSet, form prompt.Form) {
	returnFormat := form.ReturnFormat
	if form.UseDefaultReturnFormat {
		returnFormat = strings.TrimSpace(returnFormat + "\n" + prompt.DefaultReturnFormat)
	}
	for label, text := range map[string]string{
		prompt.LabelGoal:         form.Goal,
		prompt.LabelFeatures:     form.Requirements,
		prompt.LabelReturnFormat: returnFormat,
		prompt.LabelWarnings:     form.Warnings,
		prompt.LabelContext:      form.Context,
	} {
		if err := blocks.SetText(label, text); err != nil {
			logging.Warn("form field not applied", zap.String("label", label), zap.Error(err))
		}
	}
}

func newChatsCmd(app func() *App) *cobra.Command {
	cmd := &cobra.Command{Use: "chats", Short: "Manage saved chats"}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List chats, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			chats, err := app().services.Chats.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range chats {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\n", c.ID, c.UpdatedAt.Local().Format("2006-01-02 15:04"), c.ModelKey, c.Title)
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Print a chat with its messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			chat, err := app().services.Chats.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "# %s (%s)\n", chat.Title, chat.ModelKey)
			for _, m := range chat.Messages {
				fmt.Fprintf(w, "\n[%d] %s", m.ID, m.Role)
				if m.Attachments != "" {
					fmt.Fprintf(w, " (attachments: %s)", m.Attachments)
				}
				fmt.Fprintf(w, "\n%s\n", m.Content)
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Rename a chat",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app().services.Chats.Rename(cmd.Context(), id, strings.Join(args[1:], " "))
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a chat; it can be restored with undo for a while",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			a := app()
			if err := a.services.Chats.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Chat %d deleted. Run 'promptforge chats undo %d' within %s to restore it.\n", id, id, a.cfg.Chats.UndoWindow)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "undo <id>",
		Short: "Restore a deleted chat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return app().services.Chats.Undo(cmd.Context(), id)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Remove deleted chats whose undo window has passed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := app().services.Chats.Purge(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d chats purged\n", n)
			return nil
		},
	})
	return cmd
}

func newKeysCmd(app func() *App) *cobra.Command {
	cmd := &cobra.Command{Use: "keys", Short: "Manage provider API keys"}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <provider> [key]",
		Short: "Store an API key; reads stdin when the key is omitted",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var key []byte
			if len(args) == 2 {
				key = []byte(args[1])
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				key = []byte(strings.TrimSpace(string(data)))
			}
			return app().keyring.StoreApiKey(args[0], key)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <provider>",
		Short: "Remove a stored API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().keyring.DeleteApiKey(args[0])
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List providers with a stored key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := app().keyring.ListApiKeys()
			if err != nil {
				return err
			}
			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	})
	return cmd
}

func newModelsCmd(app func() *App) *cobra.Command {
	cmd := &cobra.Command{Use: "models", Short: "List and toggle catalog models"}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List models by provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := app().services.Models.ListModelGroups()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, g := range groups {
				fmt.Fprintln(w, g.ProviderName)
				for _, m := range g.Models {
					state := "enabled"
					if !m.Enabled {
						state = "disabled"
					}
					fmt.Fprintf(w, "  %-45s %-28s %s\n", m.Key, m.DisplayName, state)
				}
			}
			return nil
		},
	})
	for _, enable := range []bool{true, false} {
		use, short := "enable <key|provider>", "Enable a model or every model of a provider"
		if !enable {
			use, short = "disable <key|provider>", "Disable a model or every model of a provider"
		}
		cmd.AddCommand(&cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				models := app().services.Models
				if strings.Contains(args[0], "|") {
					_, err := models.SetModelEnabled(args[0], enable)
					return err
				}
				_, err := models.SetProviderEnabled(args[0], enable)
				return err
			},
		})
	}
	return cmd
}

func newRootsCmd(app func() *App) *cobra.Command {
	cmd := &cobra.Command{Use: "roots", Short: "Show or forget the directories saved with --save"}
	slots := []importer.Slot{importer.SlotPrimary, importer.SlotSecondary}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the saved directories that are still accessible",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			for _, slot := range slots {
				root, err := a.services.Roots.Restore(cmd.Context(), slot)
				if errors.Is(err, services.ErrNoRoot) {
					continue
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", slot, root.ID())
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget the saved directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			a.importer.Clear()
			for _, slot := range slots {
				if err := a.services.Roots.Clear(cmd.Context(), slot); err != nil {
					return err
				}
			}
			return nil
		},
	})
	return cmd
}

// assemble runs the import pipeline for the flags and positional dir and
// renders the prompt.
func (a *App) assemble(ctx context.Context, flags buildFlags, args []string) (*assembled, error) {
	form, mode := prompt.Form{}, prompt.ModeDevelop
	if flags.form != "" {
		var err error
		form, mode, err = prompt.LoadForm(flags.form)
		if err != nil {
			return nil, err
		}
	}
	if flags.mode != "" {
		m, err := prompt.ParseMode(flags.mode)
		if err != nil {
			return nil, err
		}
		mode = m
	}

	dirs := map[importer.Slot]string{}
	if len(args) > 0 {
		dirs[importer.SlotPrimary] = args[0]
	}
	if flags.with != "" {
		dirs[importer.SlotSecondary] = flags.with
	}
	for _, slot := range []importer.Slot{importer.SlotPrimary, importer.SlotSecondary} {
		var root fsaccess.DirectoryHandle
		if dir, ok := dirs[slot]; ok {
			h, err := fsaccess.OpenDir(dir, a.scanOptions())
			if err != nil {
				return nil, fmt.Errorf("open %s: %w", dir, err)
			}
			root = h
		} else if flags.restore {
			h, err := a.services.Roots.Restore(ctx, slot)
			if errors.Is(err, services.ErrNoRoot) {
				continue
			}
			if err != nil {
				return nil, err
			}
			root = h
		} else {
			continue
		}
		if err := a.importRoot(ctx, slot, root, flags); err != nil {
			return nil, err
		}
		if summary := a.importer.Summary(); summary != "" {
			fmt.Fprintf(os.Stderr, "%s: %s\n", root.Name(), summary)
		}
		if flags.save {
			if err := a.services.Roots.Save(ctx, slot, root); err != nil {
				return nil, err
			}
		}
	}

	if len(flags.files) > 0 {
		picked, err := openPicked(flags.files)
		if err != nil {
			return nil, err
		}
		if _, err := a.importer.Pick(ctx, picked); err != nil {
			return nil, err
		}
		if summary := a.importer.Summary(); summary != "" {
			fmt.Fprintf(os.Stderr, "picked files: %s\n", summary)
		}
	}

	st := a.importer.State()
	out := &assembled{
		Mode:        mode,
		Form:        form,
		Files:       st.Files,
		Attachments: a.importer.Attachments(),
		RootName:    projectRootName(st.Roots),
	}
	if st.Merge.Renamed > 0 || st.Merge.Duplicates > 0 || st.Merge.Dropped > 0 {
		fmt.Fprintf(os.Stderr, "merge: %d renamed, %d duplicates skipped, %d over the file limit\n",
			st.Merge.Renamed, st.Merge.Duplicates, st.Merge.Dropped)
	}
	out.Text = prompt.BuildPrompt(form, mode, out.Files, out.RootName)
	return out, nil
}

func (a *App) importRoot(ctx context.Context, slot importer.Slot, root fsaccess.DirectoryHandle, flags buildFlags) error {
	if _, err := a.importer.Scan(ctx, slot, root); err != nil {
		return err
	}
	st := a.importer.State()
	if st.Tag != importer.TagFilter {
		fmt.Fprintf(os.Stderr, "%s: nothing to import\n", root.Name())
		return nil
	}
	for _, name := range flags.skip {
		a.importer.Toggle(name)
	}
	if flags.interactive {
		names, err := chooseTops(st.Tops)
		if err != nil {
			return err
		}
		if names == nil {
			a.importer.CancelFilter()
			return nil
		}
		a.importer.SetSelection(names)
	}
	_, err := a.importer.Stage(ctx)
	return err
}

// chooseTops returns nil when the user aborts.
func chooseTops(tops []importer.TopEntry) ([]string, error) {
	idx, err := fuzzyfinder.FindMulti(
		tops,
		func(i int) string {
			if tops[i].Kind == fsaccess.KindDirectory {
				return tops[i].Name + "/"
			}
			return tops[i].Name
		},
		fuzzyfinder.WithPromptString("include (Tab selects, Enter confirms)> "),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, nil
		}
		return nil, fmt.Errorf("fuzzy finder: %w", err)
	}
	names := make([]string, 0, len(idx))
	for _, i := range idx {
		names = append(names, tops[i].Name)
	}
	return names, nil
}

// openPicked expands ** globs and opens each match.
func openPicked(patterns []string) ([]fsaccess.FileHandle, error) {
	var picked []fsaccess.FileHandle
	seen := map[string]bool{}
	for _, p := range patterns {
		matches, err := filepathx.Glob(p)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", p, err)
		}
		if len(matches) == 0 {
			fmt.Fprintf(os.Stderr, "no files match %s\n", p)
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			seen[m] = true
			h, err := fsaccess.OpenFile(m)
			if errors.Is(err, fsaccess.ErrTypeMismatch) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("open %s: %w", m, err)
			}
			picked = append(picked, h)
		}
	}
	return picked, nil
}

func (a *App) printEstimate(ctx context.Context, out *assembled) {
	items := []tokens.Item{{Checksum: utils.Checksum32(out.Text), Text: out.Text}}
	est := a.newEstimator("build", nil)
	est.Recompute(items, attachmentRefs(out.Attachments))
	e, err := est.Wait(ctx)
	if err != nil {
		return
	}
	fmt.Fprintln(os.Stderr, describeEstimate(e))
}

// projectRootName names the tree after the primary root, or the second
// root when only that one was imported.
func projectRootName(roots map[importer.Slot]importer.RootRef) string {
	for _, slot := range []importer.Slot{importer.SlotPrimary, importer.SlotSecondary} {
		if r, ok := roots[slot]; ok && r.Name != "" {
			return r.Name
		}
	}
	return ""
}

func attachmentRefs(atts []importer.Attachment) []tokens.FileRef {
	refs := make([]tokens.FileRef, 0, len(atts))
	for _, at := range atts {
		refs = append(refs, tokens.FileRef{Name: at.Name, MIMEType: at.MIME, Size: at.Size, Data: at.Data})
	}
	return refs
}

func describeEstimate(e tokens.Estimate) string {
	if !e.Available() {
		if e.Err != "" {
			return "token estimate unavailable: " + e.Err
		}
		return "token estimate pending"
	}
	return fmt.Sprintf("~%d tokens", e.Tokens)
}

func parseID(s string) (uint, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return uint(n), nil
}
