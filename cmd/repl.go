package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/pflow-dev/pflow-core/internal/ir"
)

var replConfigPath string

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive shell for loading, validating, and running workflows",
	Long: `Starts an interactive shell around the same node registry and runtime
used by run-workflow/validate. Useful for iterating on a workflow definition
without re-paying node discovery on every invocation.

Commands:
  load <path-or-name>        load a workflow and make it current
  validate                   compile the current workflow
  run [key=value ...]        compile and run the current workflow
  nodes [query]               list/search the node type catalog
  help                        show this message
  exit                        leave the shell`,
	Args: cobra.NoArgs,
	RunE: runREPL,
}

func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().StringVar(&replConfigPath, "config-path", "", "Custom configuration directory path (defaults to ~/.pflow)")
}

func runREPL(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var env *environment
	err := withSpinner("Discovering nodes and MCP servers...", false, func() error {
		var bootstrapErr error
		env, bootstrapErr = bootstrapEnvironment(ctx, replConfigPath, false)
		return bootstrapErr
	})
	if err != nil {
		return fmt.Errorf("initializing pflow environment: %w", err)
	}

	historyFile := filepath.Join(os.TempDir(), ".pflow_repl_history")
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "pflow> ",
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
		AutoComplete:      replCompleter(),
	})
	if err != nil {
		return fmt.Errorf("creating readline instance: %w", err)
	}
	defer rl.Close()

	session := &replSession{env: env, out: cmd.OutOrStdout()}
	fmt.Fprintln(session.out, "pflow repl. Type 'help' for commands, Ctrl-D to exit.")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		} else if err == io.EOF {
			fmt.Fprintln(session.out, "goodbye")
			return nil
		} else if err != nil {
			return fmt.Errorf("readline error: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			return nil
		}
		if err := session.execute(ctx, input); err != nil {
			fmt.Fprintf(session.out, "error: %v\n", err)
		}
	}
}

func replCompleter() readline.AutoCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("load"),
		readline.PcItem("validate"),
		readline.PcItem("run"),
		readline.PcItem("nodes"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)
}

type replSession struct {
	env     *environment
	out     io.Writer
	current *loadedWorkflow
}

type loadedWorkflow struct {
	path string
	name string
}

func (s *replSession) execute(ctx context.Context, input string) error {
	fields := strings.Fields(input)
	verb := fields[0]
	rest := fields[1:]

	switch verb {
	case "help":
		fmt.Fprintln(s.out, replCmd.Long)
		return nil
	case "load":
		if len(rest) != 1 {
			return fmt.Errorf("usage: load <path-or-name>")
		}
		path, err := resolveWorkflowRef(s.env.configDir, rest[0])
		if err != nil {
			return err
		}
		w, err := loadWorkflowFile(path)
		if err != nil {
			return err
		}
		s.current = &loadedWorkflow{path: path, name: w.Name}
		fmt.Fprintf(s.out, "loaded %q (%d nodes)\n", w.Name, len(w.Nodes))
		return nil
	case "validate":
		w, err := s.requireCurrent()
		if err != nil {
			return err
		}
		if _, err := compileWorkflow(s.env, w); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "workflow %q is valid\n", w.Name)
		return nil
	case "run":
		w, err := s.requireCurrent()
		if err != nil {
			return err
		}
		inputs, err := parseKeyValueArgs(rest)
		if err != nil {
			return err
		}
		result, err := compileAndRun(ctx, s.env, w, inputs)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(result.Outputs, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, string(data))
		return nil
	case "nodes":
		query := strings.Join(rest, " ")
		entries := s.env.registry.List()
		if query != "" {
			entries = s.env.registry.Search(query)
		}
		for _, e := range entries {
			fmt.Fprintf(s.out, "%s\t%s\n", e.Key, e.Interface.Description)
		}
		return nil
	default:
		return fmt.Errorf("unknown command %q, type 'help' for a list", verb)
	}
}

func (s *replSession) requireCurrent() (*ir.Workflow, error) {
	if s.current == nil {
		return nil, fmt.Errorf("no workflow loaded, use 'load <path-or-name>' first")
	}
	return loadWorkflowFile(s.current.path)
}
