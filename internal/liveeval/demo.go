package liveeval

import (
	"bytes"
	"context"
	stdhtml "html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// EvalFunc is the pluggable evaluation function threaded through the DAG
// evaluator: given the environment produced by the previous cell and this
// cell's input, it produces this cell's output and the environment to
// thread to the next cell. It has no separate error return; a failing
// evaluation must be encoded in O, per the error-handling design that
// treats user-code failure as ordinary Complete output.
//
// ctx is cancelled when the evaluator invalidates this cell's job (an
// upstream edit invalidated it, or the cell was dropped); since Go has no
// analogue of the source runtime's asynchronous killThread, a long-running
// evalFunc must poll ctx at its own suspension points to be interruptible,
// per the cooperative-cancellation strategy in spec.md's design notes.
type EvalFunc[I any, O any, Env any] func(ctx context.Context, env Env, cell I) (O, Env)

var markdownRenderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
		html.WithXHTML(),
	),
)

// renderHTML pre-renders a cell's source text to HTML with goldmark, for
// embedding in the SourceBlock the client receives. Rendering failures fall
// back to escaped plain text rather than surfacing an error, mirroring
// markdownToHTML's fallback in the web front-end.
func renderHTML(src string) string {
	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(src), &buf); err != nil {
		return "<pre>" + stdhtml.EscapeString(src) + "</pre>"
	}

	return buf.String()
}

// DefaultParseCells splits a whole-file snapshot into one SourceBlock per
// non-blank line, demonstrating the pluggable parseCells contract. A real
// language front-end would replace this with an actual lexer/parser; the
// live-eval core is agnostic to what I actually is.
func DefaultParseCells(text string) []SourceBlock {
	lines := strings.Split(text, "\n")

	blocks := make([]SourceBlock, 0, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		lexemes := strings.Fields(line)

		blocks = append(blocks, SourceBlock{
			Line:    i + 1,
			BlockID: i,
			Lexemes: lexemes,
			HTML:    renderHTML(line),
		})
	}

	return blocks
}

// DemoResult is the output of DefaultEvalFunc: the cell's computed text
// plus the running environment snapshot at the time it completed, useful
// for tests asserting against spec.md's literal end-to-end scenarios.
type DemoResult struct {
	Text string
	Env  string
}

// DefaultEvalFunc implements the demo evaluation rule from spec.md's
// end-to-end scenarios: evalFun(e, s) = (s++"!", e++s), where s is the
// cell's lexemes joined by single spaces. The environment is the
// concatenation of those texts for every cell evaluated so far. It ignores
// ctx, since it never blocks.
func DefaultEvalFunc(_ context.Context, env string, cell SourceBlock) (DemoResult, string) {
	text := strings.Join(cell.Lexemes, " ")

	out := DemoResult{
		Text: text + "!",
		Env:  env + text,
	}

	return out, out.Env
}

// demoBlockID is a small helper used by tests to build a SourceBlock
// without going through DefaultParseCells. It sets Line and BlockID to line
// and derives Lexemes and HTML from text, so SourceBlockEq, which compares
// every field, treats two such blocks as equal when line and text match.
func demoBlockID(line int, text string) SourceBlock {
	return SourceBlock{
		Line:    line,
		BlockID: line,
		Lexemes: strings.Split(text, " "),
		HTML:    renderHTML(text),
	}
}
