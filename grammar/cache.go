package grammar

import (
	"encoding/json"
	"fmt"

	"github.com/arfaoui/lalrgen/grammar/symbol"
	"github.com/dekarrin/rezi"
)

// cachePayload is the serializable snapshot of a compiled Result that
// EncodeCache/DecodeCache round-trip through rezi's binary envelope: just what a driver
// needs to execute the table (not the grammar or the FIRST/FOLLOW/
// nullable analysis it was built from).
type cachePayload struct {
	RunID     string
	Goals     []string
	Starts    map[string]int
	NumStates int
	Actions   map[int]map[string]Action
	Gotos     map[int]map[string]int
}

func (p cachePayload) MarshalBinary() ([]byte, error) {
	return json.Marshal(p)
}

func (p *cachePayload) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, p)
}

// EncodeCache serializes res's tables into rezi's binary envelope, for
// on-disk caching under the run's Report.RunID. Grounded on
// dekarrin-tunaq's rezi.EncBinary/rezi.DecBinary usage over a type
// implementing encoding.BinaryMarshaler/BinaryUnmarshaler; the payload
// itself is plain JSON rather than tunaq's bespoke varint field format,
// since reproducing that hand-rolled format brings no benefit to a
// caller that only ever reads what this module wrote (spec §6, cache
// component).
func EncodeCache(res *Result) []byte {
	p := cachePayload{
		RunID:     res.Report.RunID,
		Goals:     res.Report.Goals,
		Starts:    res.Tables.Starts,
		NumStates: len(res.Tables.States),
		Actions:   res.Tables.Actions,
		Gotos:     res.Tables.Gotos,
	}
	return rezi.EncBinary(p)
}

// DecodeCache reverses EncodeCache, reconstructing just the Tables and
// the run identifier they were cached under.
func DecodeCache(data []byte) (*Tables, string, error) {
	var p cachePayload
	n, err := rezi.DecBinary(data, &p)
	if err != nil {
		return nil, "", fmt.Errorf("cache: %w", err)
	}
	if n != len(data) {
		return nil, "", fmt.Errorf("cache: decoded %d/%d bytes, payload is truncated or corrupt", n, len(data))
	}

	states := make([]*State, p.NumStates)
	for i := range states {
		states[i] = &State{ID: i, Transitions: map[string]int{}}
	}
	for id, row := range p.Gotos {
		if id >= 0 && id < len(states) {
			for nt, target := range row {
				states[id].Transitions[symbol.Nonterminal(nt).Key()] = target
			}
		}
	}
	for id, row := range p.Actions {
		if id >= 0 && id < len(states) {
			for t, a := range row {
				if a.Kind == ActionShift {
					states[id].Transitions[symbol.Terminal(t).Key()] = a.Target
				}
			}
		}
	}

	return &Tables{
		States:  states,
		Starts:  p.Starts,
		Actions: p.Actions,
		Gotos:   p.Gotos,
	}, p.RunID, nil
}
