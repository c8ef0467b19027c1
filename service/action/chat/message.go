package chat

import "encoding/json"

const messageVersion = 3

type textNode struct {
	Type    string      `json:"type"`
	Text    string      `json:"text,omitempty"`
	Content []*textNode `json:"content,omitempty"`
}

type envelope struct {
	MessageText *textNode `json:"messageText"`
	Images      []string  `json:"images"`
	RepliedTo   string    `json:"repliedTo"`
	Version     int       `json:"version"`
}

// Envelope wraps plain text into the rich-text document chat clients render.
func Envelope(text string) (string, error) {
	doc := &envelope{
		MessageText: &textNode{
			Type: "doc",
			Content: []*textNode{{
				Type:    "paragraph",
				Content: []*textNode{{Type: "text", Text: text}},
			}},
		},
		Images:  []string{""},
		Version: messageVersion,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
