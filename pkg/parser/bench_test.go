package parser_test

import (
	"strings"
	"testing"

	"github.com/sandrolain/gomolang/pkg/parser"
	"github.com/sandrolain/gomolang/pkg/types"
)

var (
	simpleExpr  = "math.cos(q.anim_time * 38) * 10"
	complexExpr = `
t.total = 0;
for_each(t.entity, q.get_nearby_entities(8), {
	t.entity.is_hostile ? {
		t.total += math.clamp(t.entity.health / 20, 0, 1);
	};
});
loop(4, {
	t.total > 3 ? break;
	t.total = t.total * 1.5;
});
return t.total ?? 0;`
)

func BenchmarkParseSimple(b *testing.B) {
	arena := types.NewArena(simpleExpr)
	b.ReportAllocs()
	b.SetBytes(int64(len(simpleExpr)))
	for i := 0; i < b.N; i++ {
		parser.Parse(arena, simpleExpr)
	}
}

func BenchmarkParseComplex(b *testing.B) {
	arena := types.NewArena(complexExpr)
	b.ReportAllocs()
	b.SetBytes(int64(len(complexExpr)))
	for i := 0; i < b.N; i++ {
		parser.Parse(arena, complexExpr)
	}
}

func BenchmarkParseLarge(b *testing.B) {
	src := strings.Repeat(complexExpr, 200)
	arena := types.NewArena(src)
	b.ReportAllocs()
	b.SetBytes(int64(len(src)))
	for i := 0; i < b.N; i++ {
		parser.Parse(arena, src)
	}
}

func BenchmarkLexer(b *testing.B) {
	b.ReportAllocs()
	b.SetBytes(int64(len(complexExpr)))
	for i := 0; i < b.N; i++ {
		l := parser.NewLexer(complexExpr)
		for l.Next(true).Type != parser.TokenEOF {
		}
	}
}
