// Package scanner turns program source into a stream of tokens consumed by
// lang/compiler: byte-at-a-time advance/peek over the source string, with
// re-entrant whitespace and comment skipping so insignificant tokens never
// reach the caller.
package scanner

import (
	"unicode/utf8"

	"github.com/mna/ploxvm/lang/token"
)

// Lexeme is a single scanned token occurrence: the tag, the raw source
// substring it came from, and the 1-based line it starts on.
type Lexeme struct {
	Kind token.Token
	Text string
	Line int
}

// Scanner is a lazy tokenizer over a source string. It keeps no token
// history: the compiler is responsible for remembering `previous` and
// `current`.
type Scanner struct {
	src   string
	start int
	cur   int
	line  int
}

// New returns a Scanner positioned at the start of source.
func New(source string) *Scanner {
	return &Scanner{src: source, start: 0, cur: 0, line: 1}
}

// Init rewinds s to scan a new source string, reusing the Scanner value.
func (s *Scanner) Init(source string) {
	s.src = source
	s.start = 0
	s.cur = 0
	s.line = 1
}

// Scan returns the next non-insignificant token: an EOF token at end of
// source, an ERROR token on a malformed lexeme (its Text is the diagnostic
// message), or the next real token otherwise. Comments, newlines, and
// whitespace are consumed internally and never returned.
func (s *Scanner) Scan() Lexeme {
	for {
		s.skipWhitespaceAndComments()
		s.start = s.cur

		if s.atEnd() {
			return s.make(token.EOF)
		}

		c := s.advance()
		switch {
		case isAlpha(c):
			return s.identifier()
		case isDigit(c):
			return s.number()
		}

		switch c {
		case '(':
			return s.make(token.LPAREN)
		case ')':
			return s.make(token.RPAREN)
		case '{':
			return s.make(token.LBRACE)
		case '}':
			return s.make(token.RBRACE)
		case ',':
			return s.make(token.COMMA)
		case '.':
			return s.make(token.DOT)
		case '-':
			if s.match('-') {
				return s.make(token.MINUS_MINUS)
			}
			return s.make(token.MINUS)
		case '+':
			if s.match('+') {
				return s.make(token.PLUS_PLUS)
			}
			return s.make(token.PLUS)
		case ';':
			return s.make(token.SEMI)
		case '*':
			return s.make(token.STAR)
		case ':':
			return s.make(token.COLON)
		case '?':
			return s.make(token.QUERY)
		case '!':
			if s.match('=') {
				return s.make(token.BANG_EQ)
			}
			return s.make(token.BANG)
		case '=':
			if s.match('=') {
				return s.make(token.EQ_EQ)
			}
			return s.make(token.EQ)
		case '<':
			if s.match('=') {
				return s.make(token.LT_EQ)
			}
			return s.make(token.LT)
		case '>':
			if s.match('=') {
				return s.make(token.GT_EQ)
			}
			return s.make(token.GT)
		case '/':
			return s.make(token.SLASH)
		case '"':
			return s.string()
		}

		return s.errorf("Unexpected character.")
	}
}

func (s *Scanner) skipWhitespaceAndComments() {
	for {
		if s.atEnd() {
			return
		}
		switch s.peek() {
		case ' ', '\r', '\t':
			s.advance()
		case '\n':
			s.line++
			s.advance()
		case '/':
			if s.peekAt(1) == '/' {
				for !s.atEnd() && s.peek() != '\n' {
					s.advance()
				}
			} else {
				return
			}
		default:
			return
		}
	}
}

func (s *Scanner) string() Lexeme {
	for !s.atEnd() && s.peek() != '"' {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.atEnd() {
		return s.errorf("Unterminated string.")
	}
	s.advance() // closing quote
	return s.make(token.STRING)
}

func (s *Scanner) number() Lexeme {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekAt(1)) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	return s.make(token.NUMBER)
}

func (s *Scanner) identifier() Lexeme {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.advance()
	}
	lit := s.src[s.start:s.cur]
	kind := token.IDENTIFIER
	if len(lit) > 1 {
		// keywords are always longer than a single letter, skip the map lookup
		// otherwise
		kind = token.Lookup(lit)
	}
	return s.make(kind)
}

func (s *Scanner) atEnd() bool { return s.cur >= len(s.src) }

func (s *Scanner) advance() byte {
	c := s.src[s.cur]
	s.cur++
	return c
}

func (s *Scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.src[s.cur]
}

func (s *Scanner) peekAt(offset int) byte {
	if s.cur+offset >= len(s.src) {
		return 0
	}
	return s.src[s.cur+offset]
}

func (s *Scanner) match(want byte) bool {
	if s.atEnd() || s.src[s.cur] != want {
		return false
	}
	s.cur++
	return true
}

func (s *Scanner) make(kind token.Token) Lexeme {
	return Lexeme{Kind: kind, Text: s.src[s.start:s.cur], Line: s.line}
}

func (s *Scanner) errorf(message string) Lexeme {
	return Lexeme{Kind: token.ERROR, Text: message, Line: s.line}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		c >= utf8.RuneSelf
}

// RuneCount returns the number of Unicode code points in s, used when the
// language exposes a string's length rather than its byte count.
func RuneCount(s string) int { return utf8.RuneCountInString(s) }
