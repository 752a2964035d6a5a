// Package compiler translates Jack classes into Hack VM code in a single pass.
//
// Pipeline: Jack source → Lex → TokenStream → Engine.CompileClass → VM text
//
// The engine parses and emits at the same time; no syntax tree is built.
package compiler
