// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

var execLineRe = regexp.MustCompile(`^!?\s*exec\s+buildconv\s+(.+)`)

// TestCommandScriptCoverage verifies that every runnable leaf command has at
// least one testscript under testdata/script exercising it. Exemptions must
// name a reason, and an exemption for a covered or removed command fails.
func TestCommandScriptCoverage(t *testing.T) {
	t.Parallel()

	exemptions := map[string]string{
		"watch": "blocks until interrupted; sync and debounce are unit-tested in internal/watch",
	}

	root := NewRootCommand(NewApp(Dependencies{Environ: []string{}}))
	commands, aliases := collectLeafCommands(root)

	for name, reason := range exemptions {
		if !commands[name] {
			t.Errorf("stale exemption: %q does not exist (reason was: %s)", name, reason)
		}
	}

	covered := scanScriptCoverage(t, filepath.Join("testdata", "script"), commands, aliases)

	for name, reason := range exemptions {
		if covered[name] {
			t.Errorf("unnecessary exemption: %q is covered by a script (reason was: %s)", name, reason)
		}
	}

	var uncovered []string
	for name := range commands {
		if exemptions[name] == "" && !covered[name] {
			uncovered = append(uncovered, name)
		}
	}
	slices.Sort(uncovered)
	for _, name := range uncovered {
		t.Errorf("uncovered command: %q has no script in testdata/script", name)
	}
}

// collectLeafCommands returns the paths of visible runnable commands without
// visible children, and a map from alias paths to canonical paths.
func collectLeafCommands(root *cobra.Command) (commands map[string]bool, aliases map[string]string) {
	commands = make(map[string]bool)
	aliases = make(map[string]string)
	walkCommands(root, "", commands, aliases)
	return commands, aliases
}

func walkCommands(cmd *cobra.Command, prefix string, commands map[string]bool, aliases map[string]string) {
	for _, child := range cmd.Commands() {
		if child.Hidden {
			continue
		}
		path := strings.TrimSpace(prefix + " " + child.Name())
		for _, alias := range child.Aliases {
			aliases[strings.TrimSpace(prefix+" "+alias)] = path
		}

		visible := 0
		for _, grandchild := range child.Commands() {
			if !grandchild.Hidden {
				visible++
			}
		}
		// Routing nodes such as bare `config` only print help.
		if visible == 0 && (child.RunE != nil || child.Run != nil) {
			commands[path] = true
		}
		walkCommands(child, path, commands, aliases)
	}
}

// scanScriptCoverage returns the commands invoked by `exec buildconv` lines
// in the .txtar files of dir.
func scanScriptCoverage(t *testing.T, dir string, commands map[string]bool, aliases map[string]string) map[string]bool {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read %s: %v", dir, err)
	}
	covered := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".txtar" {
			continue
		}
		scanScript(t, filepath.Join(dir, entry.Name()), commands, aliases, covered)
	}
	return covered
}

func scanScript(t *testing.T, path string, commands map[string]bool, aliases map[string]string, covered map[string]bool) {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Errorf("open %s: %v", path, err)
		return
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		m := execLineRe.FindStringSubmatch(strings.TrimSpace(scanner.Text()))
		if m == nil {
			continue
		}
		if name := longestCommand(strings.Fields(m[1]), commands, aliases); name != "" {
			covered[name] = true
		}
	}
	if err := scanner.Err(); err != nil {
		t.Errorf("scan %s: %v", path, err)
	}
}

// longestCommand resolves aliases level by level and returns the longest
// prefix of tokens that names a known command.
func longestCommand(tokens []string, commands map[string]bool, aliases map[string]string) string {
	resolved := resolveAliases(tokens, aliases)
	var best string
	for i := 1; i <= len(resolved); i++ {
		if candidate := strings.Join(resolved[:i], " "); commands[candidate] {
			best = candidate
		}
	}
	return best
}

func resolveAliases(tokens []string, aliases map[string]string) []string {
	resolved := slices.Clone(tokens)
	for i := range resolved {
		prefix := strings.Join(resolved[:i+1], " ")
		canonical, ok := aliases[prefix]
		if !ok {
			continue
		}
		parts := strings.Fields(canonical)
		copy(resolved, parts)
	}
	return resolved
}

func TestResolveAliases(t *testing.T) {
	t.Parallel()

	aliases := map[string]string{
		"cfg":      "config",
		"cfg show": "config show",
	}

	tests := []struct {
		name   string
		tokens []string
		want   []string
	}{
		{name: "no alias", tokens: []string{"config", "show"}, want: []string{"config", "show"}},
		{name: "top-level alias", tokens: []string{"cfg", "dump"}, want: []string{"config", "dump"}},
		{name: "flags are kept", tokens: []string{"plan", "-o", "json"}, want: []string{"plan", "-o", "json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := resolveAliases(tt.tokens, aliases); !slices.Equal(got, tt.want) {
				t.Errorf("resolveAliases(%v) = %v, want %v", tt.tokens, got, tt.want)
			}
		})
	}
}

func TestLongestCommand(t *testing.T) {
	t.Parallel()

	commands := map[string]bool{"config show": true, "plan": true}
	if got := longestCommand([]string{"config", "show", "-o", "json"}, commands, nil); got != "config show" {
		t.Errorf("longestCommand = %q, want %q", got, "config show")
	}
	if got := longestCommand([]string{"config"}, commands, nil); got != "" {
		t.Errorf("routing node should not match, got %q", got)
	}
}
