package log

import (
	"bytes"
	"testing"
	"time"
)

func TestEventCBORRoundTrip(t *testing.T) {
	ts := time.Date(2026, 3, 14, 10, 15, 32, 123456789, time.UTC)
	original := Event{
		Timestamp:  ts,
		SessionID:  "abc12345-def6-7890-abcd-ef1234567890",
		Direction:  DirectionOut,
		Category:   CategoryExchange,
		RemoteAddr: "192.168.1.100:5025",
		Mnemonic:   "SOUR:VOLT:LEV",
		Exchange: &ExchangeEvent{
			Sent:     "SOUR:VOLT:LEV 1.5",
			Received: "",
			Elapsed:  12 * time.Millisecond,
		},
	}

	data, err := EncodeEvent(original)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if !decoded.Timestamp.Equal(original.Timestamp) {
		t.Errorf("Timestamp: got %v, want %v", decoded.Timestamp, original.Timestamp)
	}
	if decoded.SessionID != original.SessionID {
		t.Errorf("SessionID: got %q, want %q", decoded.SessionID, original.SessionID)
	}
	if decoded.Direction != original.Direction {
		t.Errorf("Direction: got %v, want %v", decoded.Direction, original.Direction)
	}
	if decoded.Category != original.Category {
		t.Errorf("Category: got %v, want %v", decoded.Category, original.Category)
	}
	if decoded.Mnemonic != original.Mnemonic {
		t.Errorf("Mnemonic: got %q, want %q", decoded.Mnemonic, original.Mnemonic)
	}
	if decoded.Exchange == nil {
		t.Fatal("Exchange payload was dropped")
	}
	if decoded.Exchange.Sent != original.Exchange.Sent {
		t.Errorf("Exchange.Sent: got %q, want %q", decoded.Exchange.Sent, original.Exchange.Sent)
	}
	if decoded.Exchange.Elapsed != original.Exchange.Elapsed {
		t.Errorf("Exchange.Elapsed: got %v, want %v", decoded.Exchange.Elapsed, original.Exchange.Elapsed)
	}
}

func TestNewFrameEventTruncation(t *testing.T) {
	big := bytes.Repeat([]byte("x"), MaxFrameData+100)

	event := NewFrameEvent("sess-1", DirectionIn, big)
	if event.Category != CategoryFrame {
		t.Errorf("Category: got %v, want %v", event.Category, CategoryFrame)
	}
	if event.Frame.Size != len(big) {
		t.Errorf("Size: got %d, want %d", event.Frame.Size, len(big))
	}
	if len(event.Frame.Data) != MaxFrameData {
		t.Errorf("Data length: got %d, want %d", len(event.Frame.Data), MaxFrameData)
	}
	if !event.Frame.Truncated {
		t.Error("Truncated flag not set for oversized frame")
	}

	small := NewFrameEvent("sess-1", DirectionOut, []byte("*IDN?\n"))
	if small.Frame.Truncated {
		t.Error("Truncated flag set for small frame")
	}
	if string(small.Frame.Data) != "*IDN?\n" {
		t.Errorf("Data: got %q, want %q", small.Frame.Data, "*IDN?\n")
	}
}

func TestDirectionString(t *testing.T) {
	tests := []struct {
		d    Direction
		want string
	}{
		{DirectionIn, "IN"},
		{DirectionOut, "OUT"},
		{Direction(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.d.String(); got != tt.want {
			t.Errorf("Direction(%d).String() = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestCategoryString(t *testing.T) {
	tests := []struct {
		c    Category
		want string
	}{
		{CategoryFrame, "FRAME"},
		{CategoryExchange, "EXCHANGE"},
		{CategoryState, "STATE"},
		{CategoryError, "ERROR"},
		{Category(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("Category(%d).String() = %q, want %q", tt.c, got, tt.want)
		}
	}
}
