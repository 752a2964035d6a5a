package compiler

import (
	"bytes"
	"testing"
)

func TestWriteTokensXML(t *testing.T) {
	tokens := mustLex(t, `let s = "a<b"; if (x<1) {}`)
	var buf bytes.Buffer
	if err := WriteTokensXML(&buf, tokens); err != nil {
		t.Fatalf("WriteTokensXML: %v", err)
	}
	want := `<tokens>
<keyword> let </keyword>
<identifier> s </identifier>
<symbol> = </symbol>
<stringConstant> a<b </stringConstant>
<symbol> ; </symbol>
<keyword> if </keyword>
<symbol> ( </symbol>
<identifier> x </identifier>
<symbol> &lt; </symbol>
<integerConstant> 1 </integerConstant>
<symbol> ) </symbol>
<symbol> { </symbol>
<symbol> } </symbol>
</tokens>
`
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteTokensXML_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTokensXML(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "<tokens>\n</tokens>\n" {
		t.Errorf("got %q", buf.String())
	}
}
