package grammar

import (
	"testing"

	"github.com/arfaoui/lalrgen/grammar/symbol"
	"github.com/arfaoui/lalrgen/internal/lexample"
	"github.com/arfaoui/lalrgen/token"
)

// driveToAccept walks src through tables starting at start, shifting and
// reducing exactly as a generated driver would, and reports whether the
// table accepted the full token stream.
func driveToAccept(t *testing.T, tables *Tables, pt *ProdTable, start int, src token.Source) bool {
	t.Helper()
	stack := []int{start}
	for {
		top := stack[len(stack)-1]
		var terminal string
		if tok, ok := src.Peek(); ok {
			terminal = tok.Kind
		} else {
			terminal = EndMarker
		}

		action, ok := tables.Actions[top][terminal]
		if !ok {
			return false
		}
		switch action.Kind {
		case ActionShift:
			if terminal != EndMarker {
				src.Take()
			}
			stack = append(stack, action.Target)
		case ActionReduce:
			prod := pt.Prods[action.Prod]
			stack = stack[:len(stack)-len(prod.RHS)]
			gt, ok := tables.Gotos[stack[len(stack)-1]][prod.NT]
			if !ok {
				t.Fatalf("no goto for %s from state %d", prod.NT, stack[len(stack)-1])
			}
			stack = append(stack, gt)
		case ActionAccept:
			return true
		}
	}
}

// TestIntegrationDrivesArithmeticTokenStream exercises the full path a
// real caller would use: compile a grammar, emit-free in-memory tables,
// feed a token.Source, and walk it to acceptance or rejection.
func TestIntegrationDrivesArithmeticTokenStream(t *testing.T) {
	g := arithGrammar(t)
	res, err := Compile(g)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	mk := func(kind string) token.Token { return token.Token{Kind: kind} }
	src := lexample.NewFixed(
		mk("NUM"), mk("STAR"), mk("NUM"), mk("PLUS"), mk("NUM"),
	)

	if !driveToAccept(t, res.Tables, res.Prods, res.Tables.Starts["E"], src) {
		t.Fatalf("expected NUM STAR NUM PLUS NUM to be accepted by the arithmetic grammar's table")
	}
}

func TestIntegrationRejectsMalformedTokenStream(t *testing.T) {
	g := arithGrammar(t)
	res, err := Compile(g)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	mk := func(kind string) token.Token { return token.Token{Kind: kind} }
	src := lexample.NewFixed(mk("NUM"), mk("STAR"), mk("PLUS"))

	if driveToAccept(t, res.Tables, res.Prods, res.Tables.Starts["E"], src) {
		t.Fatalf("expected NUM STAR PLUS to be rejected")
	}
}

func TestIntegrationOptionalSymbolBothPresentAndAbsent(t *testing.T) {
	opt, err := symbol.Optional(symbol.Terminal("semi"))
	if err != nil {
		t.Fatalf("symbol.Optional failed: %v", err)
	}
	g := buildGrammar(t, func(b *Builder) {
		b.Add("S", Production{NT: "S", Body: []symbol.Symbol{symbol.Terminal("stmt"), opt}})
		b.Goal("S")
	})
	res, err := Compile(g)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	mk := func(kind string) token.Token { return token.Token{Kind: kind} }
	withSemi := lexample.NewFixed(mk("stmt"), mk("semi"))
	if !driveToAccept(t, res.Tables, res.Prods, res.Tables.Starts["S"], withSemi) {
		t.Fatalf("expected stmt semi to be accepted")
	}

	withoutSemi := lexample.NewFixed(mk("stmt"))
	if !driveToAccept(t, res.Tables, res.Prods, res.Tables.Starts["S"], withoutSemi) {
		t.Fatalf("expected bare stmt (optional semi absent) to be accepted")
	}
}
