package slide

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Content is the payload of an Element: a single string for text, title,
// image and shape elements, or an ordered list for bulletPoints.
type Content struct {
	text  string
	items []string
	list  bool
}

// NewTextContent returns single-string content.
func NewTextContent(s string) Content {
	return Content{text: s}
}

// NewListContent returns list content.
func NewListContent(items []string) Content {
	return Content{items: cloneStrings(items), list: true}
}

// IsList reports whether c holds a list.
func (c Content) IsList() bool { return c.list }

// Text returns the string content; lists are joined with newlines.
func (c Content) Text() string {
	if c.list {
		return strings.Join(c.items, "\n")
	}
	return c.text
}

// Items returns the list content; a non-empty string yields one item.
func (c Content) Items() []string {
	if c.list {
		return cloneStrings(c.items)
	}
	if c.text == "" {
		return []string{}
	}
	return []string{c.text}
}

// As converts c to the shape required by t.
func (c Content) As(t ElementType) Content {
	if t == ElementBullets {
		if c.list {
			return c
		}
		return NewListContent(c.Items())
	}
	if !c.list {
		return c
	}
	return NewTextContent(c.Text())
}

func (c Content) clone() Content {
	c.items = cloneStrings(c.items)
	return c
}

// MarshalJSON encodes list content as an array and text as a string.
func (c Content) MarshalJSON() ([]byte, error) {
	if c.list {
		items := c.items
		if items == nil {
			items = []string{}
		}
		return json.Marshal(items)
	}
	return json.Marshal(c.text)
}

// UnmarshalJSON accepts a string, an array of strings, or an array of
// objects carrying a "text" field.
func (c *Content) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = Content{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = NewTextContent(s)
		return nil
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		items := make([]string, 0, len(raw))
		for i, r := range raw {
			var s string
			if err := json.Unmarshal(r, &s); err == nil {
				items = append(items, s)
				continue
			}
			var obj struct {
				Text *string `json:"text"`
			}
			if err := json.Unmarshal(r, &obj); err != nil || obj.Text == nil {
				return fmt.Errorf("content[%d]: expected string or {\"text\": string}", i)
			}
			items = append(items, *obj.Text)
		}
		*c = NewListContent(items)
		return nil
	}
	return fmt.Errorf("content: expected string or array")
}

// UnmarshalJSON decodes an element and coerces its content to the shape
// its type requires.
func (e *Element) UnmarshalJSON(data []byte) error {
	type plain Element
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = Element(p)
	e.Content = e.Content.As(e.Type)
	return nil
}
