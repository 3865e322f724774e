package giftid

import (
	"encoding/json"
	"testing"
)

func TestIDEncodingRoundTrip(t *testing.T) {
	raw, err := Encode(123456789, 42, 7, GiftClassCoal)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	id := ID(raw)

	tests := []struct {
		name   string
		encode func(ID) string
		decode func(string) (ID, error)
	}{
		{"Decimal", ID.String, ParseID},
		{"Hex", ID.Hex, ParseHex},
		{"Base32", ID.Base32, ParseBase32},
		{"Base58", ID.Base58, ParseBase58},
		{"Base62", ID.Base62, ParseBase62},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := tt.encode(id)
			decoded, err := tt.decode(encoded)
			if err != nil {
				t.Fatalf("%s decode error = %v", tt.name, err)
			}
			if decoded != id {
				t.Errorf("%s round trip = %d, want %d", tt.name, decoded, id)
			}
		})
	}
}

func TestIDJSONMarshalUsesDecimalString(t *testing.T) {
	id := ID(123456789012345)

	data, err := json.Marshal(id)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `"123456789012345"`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}

	var decoded ID
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded != id {
		t.Errorf("Unmarshal() = %d, want %d", decoded, id)
	}
}

func TestIDJSONUnmarshalAcceptsBareNumber(t *testing.T) {
	var id ID
	if err := json.Unmarshal([]byte(`123456789`), &id); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if id != 123456789 {
		t.Errorf("Unmarshal() = %d, want 123456789", id)
	}
}

func TestIDScanValue(t *testing.T) {
	want := ID(987654321)

	v, err := want.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}

	tests := []struct {
		name  string
		input interface{}
	}{
		{"int64", v},
		{"string", "987654321"},
		{"bytes", []byte("987654321")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ID
			if err := got.Scan(tt.input); err != nil {
				t.Fatalf("Scan() error = %v", err)
			}
			if got != want {
				t.Errorf("Scan() = %d, want %d", got, want)
			}
		})
	}
}

func TestIDScanNil(t *testing.T) {
	id := ID(42)
	if err := id.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) error = %v", err)
	}
	if id != 0 {
		t.Errorf("Scan(nil) left id = %d, want 0", id)
	}
}

func TestIDBeforeAfter(t *testing.T) {
	a := ID(100)
	b := ID(200)
	if !a.Before(b) {
		t.Error("a.Before(b) = false, want true")
	}
	if !b.After(a) {
		t.Error("b.After(a) = false, want true")
	}
}

func TestParseGiftClass(t *testing.T) {
	tests := []struct {
		input   string
		want    GiftClass
		wantErr bool
	}{
		{"", GiftClassToy, false},
		{"toy", GiftClassToy, false},
		{"coal", GiftClassCoal, false},
		{"bogus", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseGiftClass(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseGiftClass(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseGiftClass(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
