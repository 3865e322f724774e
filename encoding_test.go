package giftid

import "testing"

func TestEncodeDecodeBase32(t *testing.T) {
	values := []int64{0, 1, 31, 32, 1000, 1 << 40, (1 << 62) - 1}
	for _, v := range values {
		s := encodeBase32(v)
		got, err := decodeBase32(s)
		if err != nil {
			t.Fatalf("decodeBase32(%q) error = %v", s, err)
		}
		if got != v {
			t.Errorf("decodeBase32(encodeBase32(%d)) = %d", v, got)
		}
	}
}

func TestEncodeDecodeBase58(t *testing.T) {
	values := []int64{0, 1, 57, 58, 1000, 1 << 40, (1 << 62) - 1}
	for _, v := range values {
		s := encodeBase58(v)
		got, err := decodeBase58(s)
		if err != nil {
			t.Fatalf("decodeBase58(%q) error = %v", s, err)
		}
		if got != v {
			t.Errorf("decodeBase58(encodeBase58(%d)) = %d", v, got)
		}
	}
}

func TestEncodeDecodeBase62(t *testing.T) {
	values := []int64{0, 1, 61, 62, 1000, 1 << 40, (1 << 62) - 1}
	for _, v := range values {
		s := encodeBase62(v)
		got, err := decodeBase62(s)
		if err != nil {
			t.Fatalf("decodeBase62(%q) error = %v", s, err)
		}
		if got != v {
			t.Errorf("decodeBase62(encodeBase62(%d)) = %d", v, got)
		}
	}
}

func TestEncodeDecodeHex(t *testing.T) {
	values := []int64{0, 1, 15, 16, 1000, 1 << 40, (1 << 62) - 1}
	for _, v := range values {
		s := encodeHex(v)
		got, err := decodeHex(s)
		if err != nil {
			t.Fatalf("decodeHex(%q) error = %v", s, err)
		}
		if got != v {
			t.Errorf("decodeHex(encodeHex(%d)) = %d", v, got)
		}
	}
}

func TestDecodeRejectsInvalidCharacters(t *testing.T) {
	if _, err := decodeBase32("!!!"); err != ErrInvalidBase32 {
		t.Errorf("decodeBase32() error = %v, want ErrInvalidBase32", err)
	}
	if _, err := decodeBase58("!!!"); err != ErrInvalidBase58 {
		t.Errorf("decodeBase58() error = %v, want ErrInvalidBase58", err)
	}
	if _, err := decodeBase62("!!!"); err != ErrInvalidBase62 {
		t.Errorf("decodeBase62() error = %v, want ErrInvalidBase62", err)
	}
	if _, err := decodeHex("zz"); err != ErrInvalidHex {
		t.Errorf("decodeHex() error = %v, want ErrInvalidHex", err)
	}
}

func TestDecodeRejectsOverlyLongInput(t *testing.T) {
	long := make([]byte, maxHexLen+1)
	for i := range long {
		long[i] = '0'
	}
	if _, err := decodeHex(string(long)); err != ErrStringTooLong {
		t.Errorf("decodeHex() error = %v, want ErrStringTooLong", err)
	}
}

func TestHexUppercaseAccepted(t *testing.T) {
	got, err := decodeHex("FF")
	if err != nil {
		t.Fatalf("decodeHex() error = %v", err)
	}
	if got != 255 {
		t.Errorf("decodeHex(\"FF\") = %d, want 255", got)
	}
}
