package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

// fixture is a four-party dataset: D is the largest party and (B, C) is an
// unrealistic pair, so 2023 has 11 subsets with D of which 5 are feasible.
var fixtureFiles = map[string]string{
	"cabinets.csv": "Kabinet,Partijen\nK1,\"A, D\"\nK2,\"A, B, D\"\nK3,\"A, D\"\n",
	"tk.csv":       "Jaar,A,B,C,D\n2023,30,25,20,75\n",
	"ek.csv":       "Jaar,Partij,Zetels\n2023,D,30\n2023,A,10\n",
	"topics.json":  `{"A":[1,0],"D":[0,1]}`,
	"reference.yaml": `name: fixture
description: four-party test reference
ideology:
  - name: axis
    weight: 1
    dimensions: 1
    coordinates: {A: [-1], B: [1], C: [2], D: [0]}
unrealistic_pairs:
  - [B, C]
`,
}

const fixtureConfig = `log:
  level: error
scoring:
  concurrency: 2
reference:
  file: {{dir}}/reference.yaml
dataset:
  source: file
  dir: {{dir}}
  cabinets: [cabinets.csv]
  lower_chamber: [tk.csv]
  upper_chamber: [ek.csv]
  topic_vectors: topics.json
metrics:
  enabled: true
  textfile: {{dir}}/coalition.prom
`

// writeFixture writes the dataset, reference and config files to a temp dir
// and returns the config path.
func writeFixture(t *testing.T) (dir, configPath string) {
	t.Helper()
	dir = t.TempDir()
	for name, body := range fixtureFiles {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	cfg := bytes.ReplaceAll([]byte(fixtureConfig), []byte("{{dir}}"), []byte(filepath.ToSlash(dir)))
	configPath = filepath.Join(dir, "coalition.yaml")
	if err := os.WriteFile(configPath, cfg, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir, configPath
}

// runCLI executes root with args and returns what it wrote to stdout and
// stderr.
func runCLI(t *testing.T, root *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// replaceCommand swaps the subcommand called name for cmd.
func replaceCommand(t *testing.T, root *cobra.Command, name string, cmd *cobra.Command) {
	t.Helper()
	for _, sub := range root.Commands() {
		if sub.Name() == name {
			root.RemoveCommand(sub)
			root.AddCommand(cmd)
			return
		}
	}
	t.Fatalf("subcommand %q not found", name)
}
