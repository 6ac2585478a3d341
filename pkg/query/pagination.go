package query

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/nnnkkk7/sqlpager/pkg/connection"
)

// Trailing clause patterns. Both are anchored to the end of the statement.
var (
	trailingLimitPattern  = regexp.MustCompile(`(?i)\s+LIMIT\s+(\d+)(?:\s+OFFSET\s+(\d+))?\s*$`)
	trailingOffsetPattern = regexp.MustCompile(`(?i)\s+OFFSET\s+(\d+)\s*$`)
)

// ExistingPagination describes a LIMIT/OFFSET clause the author already put
// at the end of a statement.
//
// When HasOffset is set without HasLimit, LimitValue is nil: the author
// skipped rows without capping them.
type ExistingPagination struct {
	HasLimit    bool
	LimitValue  *int64
	HasOffset   bool
	OffsetValue *int64

	// StatementWithoutPagination is the trimmed statement minus the trailing clause.
	StatementWithoutPagination string
}

// HasUserPagination reports whether the statement carried any trailing clause.
func (p ExistingPagination) HasUserPagination() bool {
	return p.HasLimit || p.HasOffset
}

// Quoting selects how string literals escape their delimiter.
type Quoting int

const (
	// StandardQuoting ends a literal at the next unpaired quote. A backslash
	// is an ordinary character, so 'C:\' is complete.
	StandardQuoting Quoting = iota
	// BackslashQuoting also lets a backslash escape the next character.
	BackslashQuoting
)

// QuotingFor returns the literal syntax of dialect.
func QuotingFor(dialect connection.Dialect) Quoting {
	if dialect != nil && dialect.BackslashEscapes() {
		return BackslashQuoting
	}
	return StandardQuoting
}

// Analyze detects a trailing LIMIT n [OFFSET m] or OFFSET m clause.
//
// Only a clause at parenthesis depth zero, outside string literals and
// comments, counts. A LIMIT inside a subquery earlier in the text is left
// alone, and comments after the clause are ignored. The MySQL
// "LIMIT offset, count" form is not recognized.
func Analyze(raw string, quoting Quoting) ExistingPagination {
	stmt := trimStatement(raw, quoting)
	result := ExistingPagination{StatementWithoutPagination: stmt}

	if loc := trailingLimitPattern.FindStringSubmatchIndex(stmt); loc != nil && atTopLevel(stmt, loc[0], quoting) {
		limit := parseCount(stmt[loc[2]:loc[3]])
		result.HasLimit = true
		result.LimitValue = &limit
		if loc[4] >= 0 {
			offset := parseCount(stmt[loc[4]:loc[5]])
			result.HasOffset = true
			result.OffsetValue = &offset
		}
		result.StatementWithoutPagination = trimStatement(stmt[:loc[0]], quoting)
		return result
	}

	if loc := trailingOffsetPattern.FindStringSubmatchIndex(stmt); loc != nil && atTopLevel(stmt, loc[0], quoting) {
		offset := parseCount(stmt[loc[2]:loc[3]])
		result.HasOffset = true
		result.OffsetValue = &offset
		result.StatementWithoutPagination = trimStatement(stmt[:loc[0]], quoting)
	}

	return result
}

// trimStatement removes surrounding whitespace, trailing comments and
// trailing terminators.
func trimStatement(raw string, quoting Quoting) string {
	stmt := strings.TrimSpace(raw)
	l := lexer{quoting: quoting}
	end := 0
	for i := 0; i < len(stmt); {
		before := l.state
		next := l.next(stmt, i)
		switch {
		case before.inLiteral():
			end = next
		case before == stateCode && !l.state.inComment() && !isSpace(stmt[i]) && stmt[i] != ';':
			end = next
		}
		i = next
	}
	return stmt[:end]
}

// atTopLevel reports whether the clause whose leading whitespace starts at
// pos begins in plain code at depth zero.
func atTopLevel(stmt string, pos int, quoting Quoting) bool {
	keyword := pos
	for keyword < len(stmt) && isSpace(stmt[keyword]) {
		keyword++
	}
	state, depth := scan(stmt, keyword, quoting)
	return state == stateCode && depth == 0
}

// parseCount parses a clause operand. The patterns only capture digits, so
// the sole failure is overflow, which saturates.
func parseCount(digits string) int64 {
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return math.MaxInt64
	}
	return n
}

type lexState int

const (
	stateCode lexState = iota
	stateSingleQuote
	stateDoubleQuote
	stateBacktick
	stateLineComment
	stateBlockComment
)

func (s lexState) inLiteral() bool {
	return s == stateSingleQuote || s == stateDoubleQuote || s == stateBacktick
}

func (s lexState) inComment() bool {
	return s == stateLineComment || s == stateBlockComment
}

type lexer struct {
	quoting Quoting
	state   lexState
	depth   int
}

// next consumes the character at stmt[i], or the two-byte token starting
// there, and returns the index after it. Doubled quotes need no special case
// since the second one reopens the literal.
func (l *lexer) next(stmt string, i int) int {
	c := stmt[i]
	pair := func(b byte) bool { return i+1 < len(stmt) && stmt[i+1] == b }

	switch l.state {
	case stateCode:
		switch {
		case c == '\'':
			l.state = stateSingleQuote
		case c == '"':
			l.state = stateDoubleQuote
		case c == '`':
			l.state = stateBacktick
		case c == '-' && pair('-'):
			l.state = stateLineComment
			return i + 2
		case c == '/' && pair('*'):
			l.state = stateBlockComment
			return i + 2
		case c == '(':
			l.depth++
		case c == ')':
			if l.depth > 0 {
				l.depth--
			}
		}
	case stateSingleQuote, stateDoubleQuote:
		if c == '\\' && l.quoting == BackslashQuoting && i+1 < len(stmt) {
			return i + 2
		}
		if (l.state == stateSingleQuote && c == '\'') || (l.state == stateDoubleQuote && c == '"') {
			l.state = stateCode
		}
	case stateBacktick:
		if c == '`' {
			l.state = stateCode
		}
	case stateLineComment:
		if c == '\n' {
			l.state = stateCode
		}
	case stateBlockComment:
		if c == '*' && pair('/') {
			l.state = stateCode
			return i + 2
		}
	}
	return i + 1
}

// scan walks stmt up to byte offset end and returns the lexical state and
// parenthesis depth in effect there.
func scan(stmt string, end int, quoting Quoting) (lexState, int) {
	l := lexer{quoting: quoting}
	for i := 0; i < end; {
		i = l.next(stmt, i)
	}
	return l.state, l.depth
}

// endsInLineComment reports whether anything appended to stmt on the same
// line would be commented out.
func endsInLineComment(stmt string) bool {
	state, _ := scan(stmt, len(stmt), StandardQuoting)
	return state == stateLineComment
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}
