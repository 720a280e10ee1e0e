// Package emit renders a compiled grammar.Result into a portable format
// a runtime driver can load without depending on this module at all.
// lalrgen ships exactly one back end (JSON); the Emitter interface is the
// seam a second back end would implement.
package emit

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/arfaoui/lalrgen/grammar"
)

// Target names a back end. Only TargetJSON is implemented; the type
// exists so a second back end has somewhere to register itself.
type Target int

const (
	TargetJSON Target = iota
)

func (t Target) String() string {
	switch t {
	case TargetJSON:
		return "json"
	default:
		return "unknown"
	}
}

// Emitter renders a compiled Result to w.
type Emitter interface {
	Emit(w io.Writer, res *grammar.Result) error
}

// tableDTO is the portable, JSON-serializable shape of a compiled parser
// table: plain maps and slices only, independent of this module's
// internal pointer-based types.
type tableDTO struct {
	RunID   string                           `json:"run_id"`
	Goals   []string                         `json:"goals"`
	Starts  map[string]int                   `json:"starts"`
	States  int                              `json:"num_states"`
	Actions map[string]map[string]actionDTO  `json:"actions"`
	Gotos   map[string]map[string]int        `json:"gotos"`
	Prods   []prodDTO                        `json:"productions"`
}

type actionDTO struct {
	Kind   string `json:"kind"`
	Target int    `json:"target,omitempty"`
	Prod   int    `json:"prod,omitempty"`
}

type prodDTO struct {
	NT  string   `json:"nt"`
	RHS []string `json:"rhs"`
}

// JSON is the one concrete emitter this repo implements: a single JSON
// document containing the ACTION/GOTO tables and the flattened
// production list, keyed by state ID as a string (JSON object keys are
// always strings).
type JSON struct {
	Indent string
}

func (e JSON) Emit(w io.Writer, res *grammar.Result) error {
	dto := tableDTO{
		RunID:   res.Report.RunID,
		Goals:   res.Report.Goals,
		Starts:  res.Tables.Starts,
		States:  len(res.Tables.States),
		Actions: map[string]map[string]actionDTO{},
		Gotos:   map[string]map[string]int{},
	}

	for id, row := range res.Tables.Actions {
		out := make(map[string]actionDTO, len(row))
		for term, a := range row {
			out[term] = actionDTO{Kind: actionKindString(a.Kind), Target: a.Target, Prod: a.Prod}
		}
		dto.Actions[stateKey(id)] = out
	}
	for id, row := range res.Tables.Gotos {
		dto.Gotos[stateKey(id)] = row
	}
	for _, p := range res.Prods.Prods {
		rhs := make([]string, len(p.RHS))
		for i, s := range p.RHS {
			rhs[i] = s.String()
		}
		dto.Prods = append(dto.Prods, prodDTO{NT: p.NT, RHS: rhs})
	}

	enc := json.NewEncoder(w)
	if e.Indent != "" {
		enc.SetIndent("", e.Indent)
	}
	return enc.Encode(dto)
}

func actionKindString(k grammar.ActionKind) string {
	switch k {
	case grammar.ActionShift:
		return "shift"
	case grammar.ActionReduce:
		return "reduce"
	case grammar.ActionAccept:
		return "accept"
	default:
		return "unknown"
	}
}

func stateKey(id int) string { return fmt.Sprintf("%d", id) }
