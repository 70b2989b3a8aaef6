package codec

import (
	"errors"
	"testing"

	"github.com/scpi-protocol/scpi-go/pkg/model"
)

func floatNode() *model.Node {
	return &model.Node{
		Kind:     model.KindAttribute,
		Mnemonic: "SOUR:VOLT:LEV",
		Dtype:    model.NewScalar(model.KindFloat),
		Writable: true,
	}
}

func fetchNode() *model.Node {
	return &model.Node{
		Kind:     model.KindCommand,
		Mnemonic: "FETC",
		DtypeOut: model.NewScalar(model.KindFloat),
		Reader:   ReaderExtractFloats,
	}
}

func TestEncodeAttribute(t *testing.T) {
	c := New(nil)

	text, err := c.Encode(floatNode(), 1.5)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if text != "1.5" {
		t.Errorf("Encode = %q", text)
	}
}

func TestEncodeCommandWithoutInputDtype(t *testing.T) {
	c := New(nil)

	_, err := c.Encode(fetchNode(), 1)
	if !errors.Is(err, ErrNoArgument) {
		t.Errorf("expected ErrNoArgument, got %v", err)
	}
}

func TestDecodeAttribute(t *testing.T) {
	c := New(nil)

	v, err := c.Decode(floatNode(), "-2.1E+02")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if v != -210.0 {
		t.Errorf("Decode = %v", v)
	}
}

func TestDecodeCommandReader(t *testing.T) {
	c := New(nil)

	v, err := c.Decode(fetchNode(), "1.234,5.678")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	got, ok := v.([]float64)
	if !ok || len(got) != 2 || got[0] != 1.234 || got[1] != 5.678 {
		t.Errorf("Decode = %v", v)
	}
}

func TestDecodeUnknownReader(t *testing.T) {
	c := New(nil)
	node := fetchNode()
	node.Reader = "NoSuchReader"

	_, err := c.Decode(node, "1.0")
	if !errors.Is(err, ErrReaderNotFound) {
		t.Errorf("expected ErrReaderNotFound, got %v", err)
	}
	if !errors.Is(err, ErrResponseParse) {
		t.Errorf("expected wrap in ErrResponseParse, got %v", err)
	}
}

func TestDecodeShapeMismatchPreservesRaw(t *testing.T) {
	c := New(nil)

	_, err := c.Decode(fetchNode(), "garbage,more garbage")
	var pe *ResponseParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ResponseParseError, got %v", err)
	}
	if pe.Raw != "garbage,more garbage" {
		t.Errorf("raw = %q", pe.Raw)
	}
}

func TestDecodeExtraReaderShadowsBuiltin(t *testing.T) {
	c := New(map[string]ReaderFunc{
		ReaderIdentity: func(raw string) (any, error) { return "shadowed", nil },
	})
	node := floatNode()
	node.Reader = ReaderIdentity

	v, err := c.Decode(node, "whatever")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if v != "shadowed" {
		t.Errorf("Decode = %v", v)
	}
}

func TestRegisterReader(t *testing.T) {
	RegisterReader("ParseStatusByte", func(raw string) (any, error) {
		return len(raw), nil
	})
	defer func() {
		registeredMu.Lock()
		delete(registeredReaders, "ParseStatusByte")
		registeredMu.Unlock()
	}()

	c := New(nil)
	node := floatNode()
	node.Reader = "ParseStatusByte"

	v, err := c.Decode(node, "abc")
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if v != 3 {
		t.Errorf("Decode = %v", v)
	}
}

func TestExtractFloats(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []float64
		wantErr bool
	}{
		{"plain pair", "1.234,5.678", []float64{1.234, 5.678}, false},
		{"semicolons", "1;2;3", []float64{1, 2, 3}, false},
		{"leading status token", "OK,1.5,2.5", []float64{1.5, 2.5}, false},
		{"scientific", "-2.100000E+02", []float64{-210}, false},
		{"empty", "", nil, true},
		{"non-numeric tail", "1.5,bogus", nil, true},
		{"lone status token", "ERROR", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ExtractFloats(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", v)
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractFloats failed: %v", err)
			}
			got := v.([]float64)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("element %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseErrorQueue(t *testing.T) {
	v, err := ParseErrorQueue(`-113,"Undefined header"`)
	if err != nil {
		t.Fatalf("ParseErrorQueue failed: %v", err)
	}
	ie := v.(InstrumentError)
	if ie.Code != -113 || ie.Message != "Undefined header" {
		t.Errorf("entry = %+v", ie)
	}
	if ie.IsOK() {
		t.Error("-113 should not be OK")
	}

	v, err = ParseErrorQueue(`0,"No error"`)
	if err != nil {
		t.Fatalf("ParseErrorQueue failed: %v", err)
	}
	if !v.(InstrumentError).IsOK() {
		t.Error("code 0 should be OK")
	}

	if _, err := ParseErrorQueue("not an error record"); err == nil {
		t.Error("expected error for unrecognised response")
	}
}
