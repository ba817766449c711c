/*
 * parser.go, part of msicastep.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package msi

import (
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	chem "github.com/rmera/msicastep"
)

// Causes of the parse errors. They can be found with errors.Is.
var (
	ErrUnbalanced         = errors.New("unbalanced parentheses")
	ErrUnexpectedToken    = errors.New("unexpected token")
	ErrUnterminatedString = errors.New("unterminated string")
	ErrTooDeep            = errors.New("constructs nested too deep")
	ErrNotModel           = errors.New("root construct is not a Model")
	ErrMissingField       = errors.New("missing required field")
	ErrBadLiteral         = errors.New("malformed literal")
	ErrLattice            = errors.New("malformed lattice vectors")
)

// LiteralKind tells numbers, strings and tuples apart.
type LiteralKind int

const (
	NumberLiteral LiteralKind = iota
	StringLiteral
	TupleLiteral
)

// Literal is the value of a Field. Numbers are kept as written, so no precision
// is lost when a construct is written back.
type Literal struct {
	Kind  LiteralKind
	Text  string   //the number, or the contents of the string
	Items []string //the numbers of a tuple
	Line  int
	Col   int
}

// String returns the literal as written in MSI.
func (L Literal) String() string {
	switch L.Kind {
	case StringLiteral:
		return `"` + L.Text + `"`
	case TupleLiteral:
		return "(" + strings.Join(L.Items, " ") + ")"
	}
	return L.Text
}

// Node is either a *Field or an *Object.
type Node interface {
	Pos() (line, col int)
	write(b *strings.Builder, indent string, refs map[int]string)
}

// Field is a leaf construct: (A <tag> <name> <literal>)
type Field struct {
	Tag   string
	Name  string
	Value Literal
	Line  int
	Col   int
}

// Pos returns the position of the opening parenthesis of the field.
func (F *Field) Pos() (int, int) { return F.Line, F.Col }

func (F *Field) write(b *strings.Builder, indent string, refs map[int]string) {
	v := F.Value
	if refs != nil && F.Tag == "O" {
		v = v.keyed(refs)
	}
	b.WriteString(indent + "(A " + F.Tag + " " + F.Name + " " + v.String() + ")")
}

// Object is a construct with children: (<ordinal> <kind> <children>)
type Object struct {
	Ordinal int
	Kind    string
	Items   []Node
	Line    int
	Col     int
}

// Pos returns the position of the opening parenthesis of the object.
func (O *Object) Pos() (int, int) { return O.Line, O.Col }

func (O *Object) write(b *strings.Builder, indent string, refs map[int]string) {
	ord := strconv.Itoa(O.Ordinal)
	if k, ok := refs[O.Ordinal]; ok {
		ord = k
	}
	b.WriteString(indent + "(" + ord + " " + O.Kind + "\n")
	for _, v := range O.Items {
		v.write(b, indent+"  ", refs)
		b.WriteString("\n")
	}
	b.WriteString(indent + ")")
}

// Canonical returns the text of n in the layout this package writes: one construct
// per line, children indented two spaces.
func Canonical(n Node) string {
	var b strings.Builder
	n.write(&b, "", nil)
	return b.String()
}

// keyed is like Canonical, but ordinals, and the object references of O fields,
// are replaced by the keys in refs, so they can be renumbered when written.
// References to ordinals not in refs get a key that never resolves.
func keyed(n Node, refs map[int]string) string {
	var b strings.Builder
	n.write(&b, "", refs)
	return b.String()
}

func (L Literal) keyed(refs map[int]string) Literal {
	key := func(s string) string {
		n, err := strconv.Atoi(s)
		if err != nil {
			return s
		}
		if k, ok := refs[n]; ok {
			return k
		}
		return "@x" + s
	}
	switch L.Kind {
	case NumberLiteral:
		L.Text = key(L.Text)
	case TupleLiteral:
		items := make([]string, len(L.Items))
		for i, s := range L.Items {
			items[i] = key(s)
		}
		L.Items = items
	}
	return L
}

// Document is the token tree of an MSI file.
type Document struct {
	Root *Object
}

// ReadDocument builds the token tree of the MSI text in r. Constructs nested deeper
// than maxDepth (tuples count as one level) give a ParseError. maxDepth <= 0 means
// DefaultMaxDepth.
func ReadDocument(r io.Reader, maxDepth int) (*Document, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	p := &parser{lex: newLexer(r), maxDepth: maxDepth}
	doc, err := p.document()
	return doc, errDecorate(err, "ReadDocument")
}

type parser struct {
	lex      *lexer
	maxDepth int
}

func perror(cause error, t token, format string, args ...interface{}) *chem.CError {
	return chem.NewError(chem.ParseError, cause, "parser", format, args...).At(t.line, t.col)
}

// unexpected builds the error for a token that doesn't fit the grammar.
func unexpected(t token, expected string) error {
	switch t.kind {
	case tokEOF:
		return perror(ErrUnbalanced, t, "input ended, expected %s", expected)
	case tokRParen:
		return perror(ErrUnexpectedToken, t, "')' found, expected %s", expected)
	}
	return perror(ErrUnexpectedToken, t, "%s %q found, expected %s", t.kind, t.text, expected)
}

func (p *parser) document() (*Document, error) {
	t, err := p.lex.next()
	if err != nil {
		return nil, err
	}
	if t.kind == tokEOF {
		return nil, perror(ErrNotModel, t, "no constructs in the input")
	}
	if t.kind != tokLParen {
		return nil, unexpected(t, "'('")
	}
	n, err := p.construct(t, 1)
	if err != nil {
		return nil, err
	}
	root, ok := n.(*Object)
	if !ok {
		return nil, perror(ErrNotModel, t, "the root construct is a field")
	}
	t, err = p.lex.next()
	if err != nil {
		return nil, err
	}
	switch t.kind {
	case tokEOF:
		return &Document{Root: root}, nil
	case tokRParen:
		return nil, perror(ErrUnbalanced, t, "extra ')'")
	}
	return nil, perror(ErrUnexpectedToken, t, "%s after the root construct", t.kind)
}

// construct parses what comes after the opening parenthesis open.
func (p *parser) construct(open token, depth int) (Node, error) {
	if depth > p.maxDepth {
		return nil, perror(ErrTooDeep, open, "more than %d levels", p.maxDepth)
	}
	t, err := p.lex.next()
	if err != nil {
		return nil, err
	}
	if t.kind != tokWord {
		return nil, unexpected(t, "'A' or an ordinal")
	}
	if t.text == "A" {
		return p.field(open, depth)
	}
	ord, err := strconv.Atoi(t.text)
	if err != nil {
		return nil, unexpected(t, "'A' or an ordinal")
	}
	kind, err := p.lex.next()
	if err != nil {
		return nil, err
	}
	if kind.kind != tokWord {
		return nil, unexpected(kind, "an object kind")
	}
	obj := &Object{Ordinal: ord, Kind: kind.text, Line: open.line, Col: open.col}
	for {
		t, err := p.lex.next()
		if err != nil {
			return nil, err
		}
		switch t.kind {
		case tokRParen:
			return obj, nil
		case tokLParen:
			child, err := p.construct(t, depth+1)
			if err != nil {
				return nil, err
			}
			obj.Items = append(obj.Items, child)
		default:
			return nil, unexpected(t, "'(' or ')'")
		}
	}
}

// field parses the rest of a field, after the A.
func (p *parser) field(open token, depth int) (*Field, error) {
	var words [2]string
	for i := range words {
		t, err := p.lex.next()
		if err != nil {
			return nil, err
		}
		if t.kind != tokWord {
			return nil, unexpected(t, "a field tag and name")
		}
		words[i] = t.text
	}
	lit, err := p.literal(depth)
	if err != nil {
		return nil, err
	}
	t, err := p.lex.next()
	if err != nil {
		return nil, err
	}
	if t.kind != tokRParen {
		return nil, unexpected(t, "')'")
	}
	return &Field{Tag: words[0], Name: words[1], Value: lit, Line: open.line, Col: open.col}, nil
}

func (p *parser) literal(depth int) (Literal, error) {
	t, err := p.lex.next()
	if err != nil {
		return Literal{}, err
	}
	lit := Literal{Text: t.text, Line: t.line, Col: t.col}
	switch t.kind {
	case tokString:
		lit.Kind = StringLiteral
		return lit, nil
	case tokWord:
		lit.Kind = NumberLiteral
		return lit, checkNumber(t)
	case tokLParen:
		if depth+1 > p.maxDepth {
			return Literal{}, perror(ErrTooDeep, t, "more than %d levels", p.maxDepth)
		}
		lit.Kind = TupleLiteral
		lit.Text = ""
		for {
			n, err := p.lex.next()
			if err != nil {
				return Literal{}, err
			}
			if n.kind == tokRParen {
				break
			}
			if n.kind != tokWord {
				return Literal{}, unexpected(n, "a number or ')'")
			}
			if err := checkNumber(n); err != nil {
				return Literal{}, err
			}
			lit.Items = append(lit.Items, n.text)
		}
		if len(lit.Items) == 0 {
			return Literal{}, perror(ErrBadLiteral, t, "empty tuple")
		}
		return lit, nil
	}
	return Literal{}, unexpected(t, "a value")
}

// checkNumber verifies that the token is a finite number. Any integer or real
// notation is fine: 0, 12, -1.5, 3.2e-5.
func checkNumber(t token) error {
	c := t.text[0]
	if !(c >= '0' && c <= '9') && c != '-' && c != '+' && c != '.' {
		return perror(ErrBadLiteral, t, "%q is not a number", t.text)
	}
	f, err := strconv.ParseFloat(t.text, 64)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return perror(chem.ErrNonFinite, t, "%q", t.text)
	}
	if err != nil {
		var nerr *strconv.NumError
		if !errors.As(err, &nerr) || nerr.Err != strconv.ErrRange {
			return perror(ErrBadLiteral, t, "%q is not a number", t.text)
		}
	}
	return nil
}
