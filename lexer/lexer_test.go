package lexer

import (
	"testing"

	"fox/token"
)

func runTestSuccess(t *testing.T, scanner *Lexer, expected []token.Token) {
	t.Run("ValidTokenScan", func(t *testing.T) {
		got, err := scanner.Scan()
		if err != nil {
			t.Errorf("scanner.Scan() raised an error: %v", err)
		}
		if len(got) != len(expected) {
			t.Fatalf("scanner.Scan() produced %d tokens, want %d: %v", len(got), len(expected), got)
		}
		for i := range expected {
			if got[i].Kind != expected[i].Kind || got[i].Lexeme != expected[i].Lexeme {
				t.Errorf("token[%d] = %v, want %v", i, got[i], expected[i])
			}
		}
	})
}

func bare(kind token.Kind, lexeme string) token.Token {
	return token.New(kind, lexeme, 0, 0)
}

func TestOperatorsSuccess(t *testing.T) {
	expected := []token.Token{
		bare(token.EQUAL_EQUAL, "=="),
		bare(token.SLASH, "/"),
		bare(token.ASSIGN, "="),
		bare(token.STARSTAR, "**"),
		bare(token.PLUS, "+"),
		bare(token.LARGER, ">"),
		bare(token.MINUS, "-"),
		bare(token.LESS, "<"),
		bare(token.NOT_EQUAL, "!="),
		bare(token.LESS_EQUAL, "<="),
		bare(token.LARGER_EQUAL, ">="),
		bare(token.AND, "&&"),
		bare(token.OR, "||"),
		bare(token.BANG, "!"),
		bare(token.EOF, ""),
	}
	scanner := New("==/=**+>-<!=<=>=&&||!")
	runTestSuccess(t, scanner, expected)
}

func TestStarDisambiguation(t *testing.T) {
	expected := []token.Token{
		bare(token.STAR, "*"),
		bare(token.STAR, "*"),
		bare(token.STARSTAR, "**"),
		bare(token.EOF, ""),
	}
	scanner := New("* * **")
	runTestSuccess(t, scanner, expected)
}

func TestScanSuccess(t *testing.T) {
	expected := []token.Token{
		bare(token.LPAREN, "("),
		bare(token.RPAREN, ")"),
		bare(token.LBRACE, "{"),
		bare(token.RBRACE, "}"),
		bare(token.LBRACKET, "["),
		bare(token.RBRACKET, "]"),
		bare(token.COLON, ":"),
		bare(token.STARSTAR, "**"),
		bare(token.SEMICOLON, ";"),
		bare(token.PLUS, "+"),
		bare(token.NOT_EQUAL, "!="),
		bare(token.LESS_EQUAL, "<="),
		bare(token.EOF, ""),
	}
	scanner := New("(){}[]:**;+!=<=")
	runTestSuccess(t, scanner, expected)
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	expected := []token.Token{
		bare(token.FUNC, "func"),
		bare(token.IDENTIFIER, "main"),
		bare(token.LPAREN, "("),
		bare(token.RPAREN, ")"),
		bare(token.KW_VOID, "void"),
		bare(token.LBRACE, "{"),
		bare(token.VAR, "var"),
		bare(token.IDENTIFIER, "x_1"),
		bare(token.COLON, ":"),
		bare(token.KW_INT, "int"),
		bare(token.ASSIGN, "="),
		bare(token.IDENTIFIER, "y2"),
		bare(token.SEMICOLON, ";"),
		bare(token.RBRACE, "}"),
		bare(token.EOF, ""),
	}
	scanner := New("func main() void { var x_1: int = y2; }")
	runTestSuccess(t, scanner, expected)
}

func TestNumberLiterals(t *testing.T) {
	got, err := New("42 3.14 0").Scan()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Kind != token.INT || got[0].Literal != int64(42) {
		t.Errorf("got[0] = %v, want INT 42", got[0])
	}
	if got[1].Kind != token.DOUBLE || got[1].Literal != float64(3.14) {
		t.Errorf("got[1] = %v, want DOUBLE 3.14", got[1])
	}
	if got[2].Kind != token.INT || got[2].Literal != int64(0) {
		t.Errorf("got[2] = %v, want INT 0", got[2])
	}
}

func TestStringLiteralRetainsEscapesRaw(t *testing.T) {
	got, err := New(`"hi\n"`).Scan()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Kind != token.STRING {
		t.Fatalf("got[0].Kind = %v, want STRING", got[0].Kind)
	}
	// the escape sequence passes through unprocessed; the parser handles it.
	if got[0].Literal != `hi\n` {
		t.Errorf("got[0].Literal = %q, want %q", got[0].Literal, `hi\n`)
	}
}

func TestCharLiteral(t *testing.T) {
	got, err := New(`'a'`).Scan()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Kind != token.CHAR || got[0].Literal != "a" {
		t.Errorf("got[0] = %v, want CHAR \"a\"", got[0])
	}
}

func TestUnterminatedStringLiteralErrors(t *testing.T) {
	_, err := New(`"unterminated`).Scan()
	if err == nil {
		t.Fatal("expected an error for an unterminated string literal")
	}
}

func TestIdentifierCannotLeadWithDigit(t *testing.T) {
	got, err := New("1abc").Scan()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].Kind != token.INT || got[0].Literal != int64(1) {
		t.Fatalf("got[0] = %v, want INT 1", got[0])
	}
	if got[1].Kind != token.IDENTIFIER || got[1].Lexeme != "abc" {
		t.Errorf("got[1] = %v, want IDENTIFIER \"abc\"", got[1])
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	expected := []token.Token{
		bare(token.IDENTIFIER, "x"),
		bare(token.EOF, ""),
	}
	scanner := New("# this is a comment\nx")
	runTestSuccess(t, scanner, expected)
}

func TestIllegalAmpersandErrors(t *testing.T) {
	_, err := New("a & b").Scan()
	if err == nil {
		t.Fatal("expected an error for a lone '&'")
	}
}
