package version

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/regenrek/panestore/internal/cli/root"
	"github.com/regenrek/panestore/internal/cli/spec"
)

func TestVersionText(t *testing.T) {
	var out bytes.Buffer
	ctx := root.CommandContext{
		Deps: root.Dependencies{Version: "1.2.3", AppName: "panestore"},
		Out:  &out,
	}
	if err := run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := out.String(); got != "panestore 1.2.3 (config schema 1.0.0)\n" {
		t.Fatalf("out = %q", got)
	}
}

func TestVersionJSON(t *testing.T) {
	var out bytes.Buffer
	ctx := root.CommandContext{
		Deps: root.Dependencies{Version: "1.2.3", AppName: "panestore"},
		Spec: spec.Command{ID: "version"},
		Out:  &out,
		JSON: true,
	}
	if err := run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	var env struct {
		Data struct {
			Version      string `json:"version"`
			ConfigSchema string `json:"config_schema"`
		} `json:"data"`
		Meta struct {
			Command string `json:"command"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(out.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Data.Version != "1.2.3" || env.Data.ConfigSchema != "1.0.0" || env.Meta.Command != "version" {
		t.Fatalf("envelope = %+v", env)
	}
}
