package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gosuri/uitable"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/launchpad/pkg/types"
)

const tableMaxColWidth = 60

func newTable(headers ...any) *uitable.Table {
	t := uitable.New()
	t.MaxColWidth = tableMaxColWidth
	t.Wrap = true
	t.AddRow(headers...)
	return t
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError("marshal output: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// outcomeJSON is the --json rendering of an endpoint outcome.
type outcomeJSON struct {
	Endpoint string `json:"endpoint"`
	Status   int    `json:"status"`
	Fallback bool   `json:"fallback"`
	Body     any    `json:"body"`
}

// printOutcome writes out and returns a user error for non-2xx statuses.
func printOutcome(w io.Writer, jsonMode bool, name string, out types.Outcome) error {
	if jsonMode {
		if err := printJSON(w, outcomeJSON{Endpoint: name, Status: out.Status, Fallback: out.Fallback, Body: out.Body}); err != nil {
			return err
		}
	} else {
		if out.Fallback {
			fmt.Fprintf(w, "# %s served from fallback payload\n", name)
		}
		if err := printJSON(w, out.Body); err != nil {
			return err
		}
	}
	if out.Status >= 400 {
		return userError("%s: status %d", name, out.Status)
	}
	return nil
}

// readBody parses a request body given inline (--data) or as a file
// (--file, "-" for stdin). JSON and YAML are both accepted.
func readBody(stdin io.Reader, data, file string) (types.Document, error) {
	var raw []byte
	switch {
	case data != "" && file != "":
		return nil, userError("--data and --file are mutually exclusive")
	case data != "":
		raw = []byte(data)
	case file == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, sysError("read stdin: %w", err)
		}
		raw = b
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, userError("read %s: %w", file, err)
		}
		raw = b
	default:
		return nil, userError("one of --data or --file is required")
	}

	var m map[string]any
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, userError("request body must be a JSON or YAML object: %w", err)
	}
	if m == nil {
		return nil, userError("request body is empty")
	}
	return types.FromYAML(m), nil
}
