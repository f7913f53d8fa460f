package feed

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidCursor is returned when a continuation token cannot be decoded.
var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor is an opaque continuation token. Callers persist it verbatim and
// pass it back to continue a listing; the zero value means start of list.
type Cursor string

// IsZero reports whether the cursor points at the start of the list.
func (c Cursor) IsZero() bool {
	return c == ""
}

// offset decodes the cursor into a list offset.
func (c Cursor) offset() (int, error) {
	if c.IsZero() {
		return 0, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(string(c))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	n, err := strconv.Atoi(string(raw))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: bad offset %q", ErrInvalidCursor, string(raw))
	}

	return n, nil
}

// cursorAt encodes a list offset as an opaque token.
func cursorAt(offset int) Cursor {
	return Cursor(base64.RawURLEncoding.EncodeToString([]byte(strconv.Itoa(offset))))
}
