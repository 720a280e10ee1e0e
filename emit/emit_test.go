package emit

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/arfaoui/lalrgen/grammar"
	"github.com/arfaoui/lalrgen/grammar/symbol"
)

func compileSmallGrammar(t *testing.T) *grammar.Result {
	t.Helper()
	b := grammar.NewBuilder()
	b.Add("S", grammar.Production{NT: "S", Body: []symbol.Symbol{symbol.Terminal("a")}})
	b.Goal("S")
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	res, err := grammar.Compile(g)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	return res
}

func TestJSONEmitProducesExpectedShape(t *testing.T) {
	res := compileSmallGrammar(t)
	var buf bytes.Buffer
	e := JSON{}
	if err := e.Emit(&buf, res); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	for _, key := range []string{"run_id", "goals", "starts", "num_states", "actions", "gotos", "productions"} {
		if _, ok := doc[key]; !ok {
			t.Fatalf("expected top-level key %q in emitted JSON, got %v", key, doc)
		}
	}
	if doc["run_id"] != res.Report.RunID {
		t.Fatalf("run_id = %v, want %v", doc["run_id"], res.Report.RunID)
	}
}

func TestJSONEmitStateKeysAreStrings(t *testing.T) {
	res := compileSmallGrammar(t)
	var buf bytes.Buffer
	if err := (JSON{}).Emit(&buf, res); err != nil {
		t.Fatalf("Emit failed: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	actions, ok := doc["actions"].(map[string]any)
	if !ok || len(actions) == 0 {
		t.Fatalf("expected a non-empty actions map keyed by state ID string, got %v", doc["actions"])
	}
	for k := range actions {
		if _, err := json.Number(k).Int64(); err != nil {
			t.Fatalf("state key %q should parse as an integer string", k)
		}
	}
}

func TestTargetStringNames(t *testing.T) {
	if TargetJSON.String() != "json" {
		t.Fatalf("TargetJSON.String() = %q, want %q", TargetJSON.String(), "json")
	}
}
