package models

import "fmt"

// Author identifies who wrote a message.
type Author int

const (
	AuthorUser Author = iota
	AuthorAssistant
)

// String returns the wire name of the author
func (a Author) String() string {
	switch a {
	case AuthorUser:
		return "user"
	case AuthorAssistant:
		return "assistant"
	default:
		return fmt.Sprintf("author(%d)", int(a))
	}
}

// ParseAuthor converts "user" or "assistant" into an Author
func ParseAuthor(s string) (Author, error) {
	switch s {
	case "user":
		return AuthorUser, nil
	case "assistant":
		return AuthorAssistant, nil
	default:
		return 0, fmt.Errorf("unknown author %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (a Author) MarshalText() ([]byte, error) {
	switch a {
	case AuthorUser, AuthorAssistant:
		return []byte(a.String()), nil
	default:
		return nil, fmt.Errorf("invalid author %d", int(a))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler
func (a *Author) UnmarshalText(text []byte) error {
	parsed, err := ParseAuthor(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
