package compiler

// TokenStream is a read-only cursor over a materialised token slice.
// Lookahead never moves the cursor; only Advance and Backward do.
type TokenStream struct {
	tokens []Token
	pos    int // index of the next token to consume
}

func NewTokenStream(tokens []Token) *TokenStream {
	return &TokenStream{tokens: tokens}
}

// HasMore reports whether any token is left to consume.
func (ts *TokenStream) HasMore() bool {
	return ts.pos < len(ts.tokens)
}

// Remaining returns the number of unconsumed tokens.
func (ts *TokenStream) Remaining() int {
	return len(ts.tokens) - ts.pos
}

// Advance consumes and returns the next token. Calling it with nothing left
// is a programming error.
func (ts *TokenStream) Advance() Token {
	if !ts.HasMore() {
		panic("TokenStream.Advance called at end of stream")
	}
	tok := ts.tokens[ts.pos]
	ts.pos++
	return tok
}

// Peek returns the next token without consuming it.
func (ts *TokenStream) Peek() Token {
	if !ts.HasMore() {
		panic("TokenStream.Peek called at end of stream")
	}
	return ts.tokens[ts.pos]
}

// PeekN returns the next n tokens without consuming them. Reading past the
// end of the stream panics; callers check Remaining first.
func (ts *TokenStream) PeekN(n int) []Token {
	if n < 1 {
		panic("TokenStream.PeekN: n must be at least 1")
	}
	if n > ts.Remaining() {
		panic("TokenStream.PeekN reads past end of stream")
	}
	out := make([]Token, n)
	copy(out, ts.tokens[ts.pos:ts.pos+n])
	return out
}

// Backward un-consumes the most recently consumed token.
func (ts *TokenStream) Backward() {
	if ts.pos == 0 {
		panic("TokenStream.Backward called at start of stream")
	}
	ts.pos--
}

// last returns the most recently consumed token, or the zero Token.
func (ts *TokenStream) last() Token {
	if ts.pos == 0 {
		return Token{}
	}
	return ts.tokens[ts.pos-1]
}
