package line

import "encoding/json"

// Message is one element of a push request's "messages" array.
//
// TextMessage and ImageMessage are the variants this client models. RawMessage
// carries any object already in the Messaging API schema and is forwarded
// without validation.
type Message interface {
	json.Marshaler
	message()
}

// TextMessage renders as {"type":"text","text":...}.
type TextMessage struct {
	Text string
}

// Text returns a TextMessage with body s.
func Text(s string) TextMessage { return TextMessage{Text: s} }

func (TextMessage) message() {}

func (m TextMessage) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}{Type: "text", Text: m.Text})
}

// ImageMessage renders as {"type":"image","originalContentUrl":...,"previewImageUrl":...}.
// Neither URL is checked locally.
type ImageMessage struct {
	OriginalContentURL string
	PreviewImageURL    string
}

// Image returns an ImageMessage for the given original and preview URLs.
func Image(originalURL, previewURL string) ImageMessage {
	return ImageMessage{OriginalContentURL: originalURL, PreviewImageURL: previewURL}
}

func (ImageMessage) message() {}

func (m ImageMessage) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type               string `json:"type"`
		OriginalContentURL string `json:"originalContentUrl"`
		PreviewImageURL    string `json:"previewImageUrl"`
	}{Type: "image", OriginalContentURL: m.OriginalContentURL, PreviewImageURL: m.PreviewImageURL})
}

// RawMessage wraps a caller-supplied message object (a map, a struct or a
// json.RawMessage) in the remote service's own schema.
type RawMessage struct {
	value any
}

// Raw wraps v for passthrough. v must be JSON-serialisable.
func Raw(v any) RawMessage { return RawMessage{value: v} }

// Value returns the wrapped object.
func (m RawMessage) Value() any { return m.value }

func (RawMessage) message() {}

func (m RawMessage) MarshalJSON() ([]byte, error) {
	// encoding/json validates the returned bytes.
	if b, ok := m.value.(json.RawMessage); ok {
		return b, nil
	}
	return json.Marshal(m.value)
}

// RawMessages wraps every element of objects with Raw, keeping order.
func RawMessages[T any](objects []T) []Message {
	out := make([]Message, len(objects))
	for i, o := range objects {
		out[i] = Raw(o)
	}
	return out
}

// pushRequest is the wire body shared by every send operation.
type pushRequest struct {
	To       string    `json:"to"`
	Messages []Message `json:"messages"`
}
