package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagEnum // has predefined values
	flagFile // file, optionally filtered by extension
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long   string   // --output
	Short  string   // o (empty if none)
	Type   flagType // completion type
	Desc   string   // help text
	Values []string // for enum flags
	Exts   []string // for file flags, without dots
}

// commandDef describes a command for completion.
type commandDef struct {
	Name  string
	Desc  string
	Flags []flagDef
	Args  []string // fixed positional values
}

// completionMeta holds completion-specific metadata for flags.
// Flag names, types, and descriptions come from the FlagSet.
type completionMeta struct {
	Values []string // enum values
	Exts   []string // file extensions
	IsFile bool     // any file
	IsDir  bool     // directory completion
}

// flagCompletionMeta maps flag names to their completion metadata.
var flagCompletionMeta = map[string]completionMeta{
	"date-format": {Values: datePresetNames()},

	"config":       {Exts: []string{"yaml", "yml"}},
	"registry":     {Exts: []string{"yaml", "yml"}},
	"authors":      {Exts: []string{"yaml", "yml"}},
	"style":        {Exts: []string{"css"}},
	"metrics-file": {IsFile: true},

	"examples": {IsDir: true},
	"wiki":     {IsDir: true},
	"output":   {IsDir: true},
}

// datePresetNames lists the date presets in the order help shows them.
func datePresetNames() []string {
	return []string{"iso", "european", "us", "long"}
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int":
			fd.Type = flagInt
		default:
			fd.Type = flagString
		}

		if meta, ok := flagCompletionMeta[f.Name]; ok {
			switch {
			case len(meta.Values) > 0:
				fd.Type = flagEnum
				fd.Values = meta.Values
			case len(meta.Exts) > 0 || meta.IsFile:
				fd.Type = flagFile
				fd.Exts = meta.Exts
			case meta.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
// Flags are extracted from the actual FlagSets.
func getCommands() []commandDef {
	siteFlagDefs := extractFlagsFromFlagSet(newBuildFlagSet("build", &buildFlags{}))
	doctorFlagDefs := extractFlagsFromFlagSet(newDoctorFlagSet(&doctorFlags{}))

	return []commandDef{
		{Name: "build", Desc: "Generate one HTML page per registry entry", Flags: siteFlagDefs},
		{Name: "watch", Desc: "Build, then rebuild when sources change", Flags: siteFlagDefs},
		{Name: "doctor", Desc: "Check the site configuration", Flags: doctorFlagDefs},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command", Args: []string{"build", "watch", "doctor", "version", "completion"}},
		{Name: "completion", Desc: "Generate shell completion script", Args: []string{string(ShellBash), string(ShellZsh), string(ShellFish)}},
	}
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported or write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	var script string
	switch shell {
	case ShellBash:
		script = bashScript(getCommands())
	case ShellZsh:
		script = zshScript(getCommands())
	case ShellFish:
		script = fishScript(getCommands())
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish)", ErrUnsupportedShell, shell)
	}
	_, err := io.WriteString(w, script)
	return err
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: nbsite completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(nbsite completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (after compinit):")
	fmt.Fprintln(w, "    eval \"$(nbsite completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    nbsite completion fish > ~/.config/fish/completions/nbsite.fish")
}

// flagWords lists every spelling of the flags, long and short.
func flagWords(flags []flagDef) []string {
	words := make([]string, 0, len(flags)*2)
	for _, f := range flags {
		words = append(words, "--"+f.Long)
		if f.Short != "" {
			words = append(words, "-"+f.Short)
		}
	}
	return words
}

// flagPattern is the case pattern matching a flag's spellings.
func flagPattern(f flagDef) string {
	if f.Short != "" {
		return "--" + f.Long + "|-" + f.Short
	}
	return "--" + f.Long
}

// bashScript renders a bash completion function.
// With no command word, or a flag in its place, build is assumed.
func bashScript(cmds []commandDef) string {
	var b strings.Builder
	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		names = append(names, c.Name)
	}

	b.WriteString("# bash completion for nbsite\n")
	b.WriteString("_nbsite_completions() {\n")
	b.WriteString("    local cur prev cmd\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n")
	b.WriteString("    cmd=\"${COMP_WORDS[1]}\"\n\n")
	b.WriteString("    if [[ ${COMP_CWORD} -eq 1 && \"$cur\" != -* ]]; then\n")
	fmt.Fprintf(&b, "        COMPREPLY=( $(compgen -W \"%s\" -- \"$cur\") )\n", strings.Join(names, " "))
	b.WriteString("        return\n    fi\n")
	b.WriteString("    [[ \"$cmd\" == -* ]] && cmd=build\n\n")
	b.WriteString("    case \"$cmd\" in\n")

	for _, c := range cmds {
		fmt.Fprintf(&b, "        %s)\n", c.Name)
		if len(c.Args) > 0 {
			fmt.Fprintf(&b, "            COMPREPLY=( $(compgen -W \"%s\" -- \"$cur\") )\n", strings.Join(c.Args, " "))
			b.WriteString("            ;;\n")
			continue
		}
		if len(c.Flags) == 0 {
			b.WriteString("            ;;\n")
			continue
		}
		b.WriteString("            case \"$prev\" in\n")
		for _, f := range c.Flags {
			switch f.Type {
			case flagEnum:
				fmt.Fprintf(&b, "                %s) COMPREPLY=( $(compgen -W \"%s\" -- \"$cur\") ); return ;;\n",
					flagPattern(f), strings.Join(f.Values, " "))
			case flagDir:
				fmt.Fprintf(&b, "                %s) COMPREPLY=( $(compgen -d -- \"$cur\") ); return ;;\n", flagPattern(f))
			case flagFile:
				fmt.Fprintf(&b, "                %s) COMPREPLY=( $(compgen -f -- \"$cur\") ); return ;;\n", flagPattern(f))
			case flagString, flagInt:
				fmt.Fprintf(&b, "                %s) return ;;\n", flagPattern(f))
			}
		}
		b.WriteString("            esac\n")
		fmt.Fprintf(&b, "            COMPREPLY=( $(compgen -W \"%s\" -- \"$cur\") )\n", strings.Join(flagWords(c.Flags), " "))
		b.WriteString("            ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("}\n")
	b.WriteString("complete -F _nbsite_completions nbsite\n")
	return b.String()
}

// zshEscape makes text safe inside a single-quoted _arguments option.
func zshEscape(s string) string {
	r := strings.NewReplacer("'", `'\''`, "[", "(", "]", ")", ":", `\:`)
	return r.Replace(s)
}

// zshAction is the _arguments action for a flag that takes a value.
func zshAction(f flagDef) string {
	switch f.Type {
	case flagEnum:
		return ":" + f.Long + ":(" + strings.Join(f.Values, " ") + ")"
	case flagDir:
		return ":directory:_files -/"
	case flagFile:
		switch len(f.Exts) {
		case 0:
			return ":file:_files"
		case 1:
			return `:file:_files -g "*.` + f.Exts[0] + `"`
		default:
			return `:file:_files -g "*.(` + strings.Join(f.Exts, "|") + `)"`
		}
	case flagBool:
		return ""
	default:
		return ":" + f.Long + ":"
	}
}

// zshScript renders a zsh completion function.
func zshScript(cmds []commandDef) string {
	var b strings.Builder

	b.WriteString("#compdef nbsite\n\n")
	b.WriteString("_nbsite() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, zshEscape(c.Desc))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    if (( CURRENT == 2 )) && [[ ${words[2]} != -* ]]; then\n")
	b.WriteString("        _describe 'command' commands\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    local cmd=${words[2]}\n")
	b.WriteString("    [[ $cmd == -* ]] && cmd=build\n\n")
	b.WriteString("    case $cmd in\n")

	for _, c := range cmds {
		fmt.Fprintf(&b, "        %s)\n", c.Name)
		switch {
		case len(c.Args) > 0:
			fmt.Fprintf(&b, "            _values '%s' %s\n", c.Name, strings.Join(c.Args, " "))
		case len(c.Flags) > 0:
			b.WriteString("            _arguments")
			for _, f := range c.Flags {
				desc := "[" + zshEscape(f.Desc) + "]" + zshAction(f)
				if f.Short != "" {
					fmt.Fprintf(&b, " \\\n                '(-%s --%s)'{-%s,--%s}'%s'", f.Short, f.Long, f.Short, f.Long, desc)
				} else {
					fmt.Fprintf(&b, " \\\n                '--%s%s'", f.Long, desc)
				}
			}
			b.WriteString("\n")
		}
		b.WriteString("            ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _nbsite nbsite\n")
	return b.String()
}

// fishEscape makes text safe inside a single-quoted fish string.
func fishEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, "'", `\'`).Replace(s)
}

// fishScript renders fish completions.
func fishScript(cmds []commandDef) string {
	var b strings.Builder

	b.WriteString("# fish completion for nbsite\n\n")
	b.WriteString("function __fish_nbsite_needs_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -eq 1\n")
	b.WriteString("end\n\n")
	b.WriteString("function __fish_nbsite_using_command\n")
	b.WriteString("    set -l cmd (commandline -opc)\n")
	b.WriteString("    test (count $cmd) -gt 1; and test $cmd[2] = $argv[1]\n")
	b.WriteString("end\n\n")
	b.WriteString("complete -c nbsite -f\n\n")

	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c nbsite -n __fish_nbsite_needs_command -a %s -d '%s'\n", c.Name, fishEscape(c.Desc))
	}

	for _, c := range cmds {
		cond := "'__fish_nbsite_using_command " + c.Name + "'"
		if len(c.Args) > 0 {
			fmt.Fprintf(&b, "\ncomplete -c nbsite -n %s -a '%s'\n", cond, strings.Join(c.Args, " "))
			continue
		}
		if len(c.Flags) > 0 {
			b.WriteString("\n")
		}
		for _, f := range c.Flags {
			fmt.Fprintf(&b, "complete -c nbsite -n %s", cond)
			if f.Short != "" {
				fmt.Fprintf(&b, " -s %s", f.Short)
			}
			fmt.Fprintf(&b, " -l %s -d '%s'", f.Long, fishEscape(f.Desc))
			switch f.Type {
			case flagEnum:
				fmt.Fprintf(&b, " -x -a '%s'", strings.Join(f.Values, " "))
			case flagDir:
				b.WriteString(" -x -a '(__fish_complete_directories)'")
			case flagFile:
				b.WriteString(" -r -F")
			case flagString, flagInt:
				b.WriteString(" -x")
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}
