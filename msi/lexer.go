/*
 * lexer.go, part of msicastep.
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
	"bufio"
	"io"
	"strings"
	"unicode"

	chem "github.com/rmera/msicastep"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLParen
	tokRParen
	tokWord   //numbers, tags, names and object kinds
	tokString //the text between double quotes, without them
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokWord:
		return "word"
	case tokString:
		return "string"
	}
	return "unknown token"
}

type token struct {
	kind tokenKind
	text string
	line int
	col  int
}

// lexer splits MSI text into tokens. Lines starting with # are comments.
// Any other whitespace, including CR, only separates tokens.
type lexer struct {
	r        *bufio.Reader
	line     int //position of the next rune
	col      int
	prevLine int //position before the last read, for unread
	prevCol  int
}

func newLexer(r io.Reader) *lexer {
	return &lexer{r: bufio.NewReader(r), line: 1, col: 1}
}

func (l *lexer) read() (rune, error) {
	c, _, err := l.r.ReadRune()
	if err != nil {
		return 0, err
	}
	l.prevLine, l.prevCol = l.line, l.col
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c, nil
}

func (l *lexer) unread() {
	l.r.UnreadRune()
	l.line, l.col = l.prevLine, l.prevCol
}

// ioError turns a read error into a ParseError at the current position.
func (l *lexer) ioError(err error) error {
	return chem.NewError(chem.ParseError, err, "lexer", "reading input").At(l.line, l.col)
}

// next returns the next token. At the end of the input it returns a tokEOF token
// and a nil error.
func (l *lexer) next() (token, error) {
	for {
		c, err := l.read()
		if err == io.EOF {
			return token{kind: tokEOF, line: l.line, col: l.col}, nil
		}
		if err != nil {
			return token{}, l.ioError(err)
		}
		line, col := l.prevLine, l.prevCol
		switch {
		case unicode.IsSpace(c):
			continue
		case c == '#':
			if err := l.skipLine(); err != nil {
				return token{}, err
			}
			continue
		case c == '(':
			return token{kind: tokLParen, text: "(", line: line, col: col}, nil
		case c == ')':
			return token{kind: tokRParen, text: ")", line: line, col: col}, nil
		case c == '"':
			return l.str(line, col)
		default:
			l.unread()
			return l.word(line, col)
		}
	}
}

func (l *lexer) skipLine() error {
	for {
		c, err := l.read()
		if err == io.EOF || (err == nil && c == '\n') {
			return nil
		}
		if err != nil {
			return l.ioError(err)
		}
	}
}

// str reads a string up to the closing quote. Strings can't span lines.
func (l *lexer) str(line, col int) (token, error) {
	var b strings.Builder
	for {
		c, err := l.read()
		if err == io.EOF || (err == nil && (c == '\n' || c == '\r')) {
			return token{}, chem.NewError(chem.ParseError, ErrUnterminatedString, "lexer", "").At(line, col)
		}
		if err != nil {
			return token{}, l.ioError(err)
		}
		if c == '"' {
			return token{kind: tokString, text: b.String(), line: line, col: col}, nil
		}
		b.WriteRune(c)
	}
}

func (l *lexer) word(line, col int) (token, error) {
	var b strings.Builder
	for {
		c, err := l.read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return token{}, l.ioError(err)
		}
		if unicode.IsSpace(c) || c == '(' || c == ')' || c == '"' {
			l.unread()
			break
		}
		b.WriteRune(c)
	}
	return token{kind: tokWord, text: b.String(), line: line, col: col}, nil
}
