package command

import "testing"

func TestTokenizeWhitespaceAndQuotes(t *testing.T) {
	toks := Tokenize(`open 'my file.txt' --flag=value "another one"`)
	want := []Token{
		{Kind: Text, Text: "open"},
		{Kind: Text, Text: "my file.txt"},
		{Kind: Text, Text: "--flag"},
		{Kind: Equals, Text: "="},
		{Kind: Text, Text: "value"},
		{Kind: Text, Text: "another one"},
	}
	if len(toks) != len(want) {
		t.Fatalf("got %+v", toks)
	}
	for i := range want {
		if toks[i] != want[i] {
			t.Fatalf("index %d: got %+v want %+v", i, toks[i], want[i])
		}
	}
}

func TestTokenizeUnterminatedQuoteCoversTail(t *testing.T) {
	toks := Tokenize(`save "no closing quote`)
	if len(toks) != 2 {
		t.Fatalf("got %+v", toks)
	}
	if toks[1].Kind != Unterminated || toks[1].Text != "no closing quote" {
		t.Fatalf("got %+v", toks[1])
	}
}

func TestArgsNextAndAssertEmpty(t *testing.T) {
	a := Args{tokens: []Token{{Kind: Text, Text: "a"}, {Kind: Text, Text: "b"}}}
	v, err := a.Next()
	if err != nil || v != "a" {
		t.Fatalf("got %q %v", v, err)
	}
	if _, ok := a.TryNext(); !ok {
		t.Fatal("expected a second argument")
	}
	if err := a.AssertEmpty(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := a.Next(); err == nil {
		t.Fatal("expected TooFewArguments")
	}
}

func TestArgsAssertEmptyFailsWithLeftoverTokens(t *testing.T) {
	a := Args{tokens: []Token{{Kind: Text, Text: "a"}, {Kind: Text, Text: "b"}}}
	a.Next()
	if err := a.AssertEmpty(); err == nil {
		t.Fatal("expected TooManyArguments")
	}
}
