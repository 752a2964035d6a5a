package compiler

import (
	"bufio"
	"fmt"
	"io"
)

// WriteTokensXML writes the token dump used to check a tokenizer by eye:
//
//	<tokens>
//	<keyword> class </keyword>
//	<symbol> &lt; </symbol>
//	</tokens>
//
// Symbol text is already escaped by Lex. String constants are written
// verbatim, as the reference tokenizer output expects.
func WriteTokensXML(w io.Writer, tokens []Token) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "<tokens>")
	for _, tok := range tokens {
		tag := tok.Kind.xmlTag()
		fmt.Fprintf(bw, "<%s> %s </%s>\n", tag, tok.Text, tag)
	}
	fmt.Fprintln(bw, "</tokens>")
	return bw.Flush()
}
