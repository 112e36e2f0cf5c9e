package state

import "unicode"

// Query is the search text together with a rune-offset caret.
type Query struct {
	Text   string
	Cursor int
}

// Pos returns the caret clamped to the text.
func (q *Query) Pos() int {
	return min(max(q.Cursor, 0), len([]rune(q.Text)))
}

// Set replaces the text and places the caret. It reports whether the text
// changed.
func (q *Query) Set(text string, cursor int) bool {
	changed := text != q.Text
	q.Text = text
	q.Cursor = cursor
	q.Cursor = q.Pos()
	return changed
}

// Insert adds text at the caret.
func (q *Query) Insert(text string) bool {
	insert := []rune(text)
	if len(insert) == 0 {
		return false
	}
	runes := []rune(q.Text)
	pos := q.Pos()
	updated := make([]rune, 0, len(runes)+len(insert))
	updated = append(updated, runes[:pos]...)
	updated = append(updated, insert...)
	updated = append(updated, runes[pos:]...)
	return q.Set(string(updated), pos+len(insert))
}

// DeleteRuneBackward removes the rune before the caret.
func (q *Query) DeleteRuneBackward() bool {
	runes := []rune(q.Text)
	pos := q.Pos()
	if pos == 0 {
		return false
	}
	return q.Set(string(append(runes[:pos-1], runes[pos:]...)), pos-1)
}

// DeleteRuneForward removes the rune under the caret.
func (q *Query) DeleteRuneForward() bool {
	runes := []rune(q.Text)
	pos := q.Pos()
	if pos >= len(runes) {
		return false
	}
	return q.Set(string(append(runes[:pos], runes[pos+1:]...)), pos)
}

// DeleteWordBackward removes the word preceding the caret.
func (q *Query) DeleteWordBackward() bool {
	runes := []rune(q.Text)
	pos := q.Pos()
	if pos == 0 {
		return false
	}
	i := wordStart(runes, pos)
	return q.Set(string(append(runes[:i], runes[pos:]...)), i)
}

// Clear empties the query.
func (q *Query) Clear() bool {
	return q.Set("", 0)
}

func (q *Query) MoveStart() bool {
	return q.moveTo(0)
}

func (q *Query) MoveEnd() bool {
	return q.moveTo(len([]rune(q.Text)))
}

func (q *Query) MoveRuneBackward() bool {
	return q.moveTo(q.Pos() - 1)
}

func (q *Query) MoveRuneForward() bool {
	return q.moveTo(q.Pos() + 1)
}

func (q *Query) MoveWordBackward() bool {
	return q.moveTo(wordStart([]rune(q.Text), q.Pos()))
}

func (q *Query) MoveWordForward() bool {
	runes := []rune(q.Text)
	i := q.Pos()
	for i < len(runes) && !unicode.IsSpace(runes[i]) {
		i++
	}
	for i < len(runes) && unicode.IsSpace(runes[i]) {
		i++
	}
	return q.moveTo(i)
}

func (q *Query) moveTo(pos int) bool {
	if pos < 0 || pos > len([]rune(q.Text)) || pos == q.Pos() {
		return false
	}
	q.Cursor = pos
	return true
}

func wordStart(runes []rune, pos int) int {
	i := pos
	for i > 0 && unicode.IsSpace(runes[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(runes[i-1]) {
		i--
	}
	return i
}
