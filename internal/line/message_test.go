package line

import (
	"encoding/json"
	"testing"
)

func TestMessageEncoding(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want string
	}{
		{"text", Text("hi"), `{"type":"text","text":"hi"}`},
		{"image", Image("https://o", "https://p"), `{"type":"image","originalContentUrl":"https://o","previewImageUrl":"https://p"}`},
		{"raw map", Raw(map[string]any{"type": "sticker", "packageId": "1", "stickerId": "2"}), `{"packageId":"1","stickerId":"2","type":"sticker"}`},
		{"raw json", Raw(json.RawMessage(`{"type":"text","text":"x"}`)), `{"type":"text","text":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.msg)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRawMessage_InvalidJSON(t *testing.T) {
	_, err := json.Marshal([]Message{Raw(json.RawMessage(`{not json`))})
	if err == nil {
		t.Fatal("expected error for invalid raw JSON")
	}
}

func TestRawMessages_KeepsOrder(t *testing.T) {
	objs := []map[string]any{{"type": "text", "text": "1"}, {"type": "text", "text": "2"}}
	msgs := RawMessages(objs)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	for i, m := range msgs {
		raw, ok := m.(RawMessage)
		if !ok {
			t.Fatalf("messages[%d] is %T", i, m)
		}
		if raw.Value().(map[string]any)["text"] != objs[i]["text"] {
			t.Errorf("messages[%d] out of order", i)
		}
	}
}
