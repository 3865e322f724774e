package giftid

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"time"
)

// ID is a strongly-typed gift identifier. Using a distinct type instead
// of a raw int64 keeps one from accidentally comparing or arithmetic-ing
// a gift ID against an unrelated integer, and gives it a fixed set of
// encodings and marshaling behavior.
type ID int64

// Int64 returns the ID as an int64.
func (id ID) Int64() int64 {
	return int64(id)
}

// String returns the decimal string representation of the ID. This
// implements fmt.Stringer.
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// Hex returns a lowercase hexadecimal encoding of the ID.
func (id ID) Hex() string {
	return encodeHex(int64(id))
}

// Base32 returns a z-base-32 encoding, suitable for an identifier a
// person might need to read aloud or transcribe.
func (id ID) Base32() string {
	return encodeBase32(int64(id))
}

// Base58 returns a Flickr-alphabet base58 encoding with no visually
// ambiguous characters.
func (id ID) Base58() string {
	return encodeBase58(int64(id))
}

// Base62 returns a URL-safe alphanumeric encoding, the shortest of the
// four and the one to prefer in a path segment.
func (id ID) Base62() string {
	return encodeBase62(int64(id))
}

// ParseID parses a decimal string into an ID.
func ParseID(s string) (ID, error) {
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return ID(i), nil
}

// ParseHex parses a hexadecimal string into an ID.
func ParseHex(s string) (ID, error) {
	i, err := decodeHex(s)
	if err != nil {
		return 0, err
	}
	return ID(i), nil
}

// ParseBase32 parses a z-base-32 string into an ID.
func ParseBase32(s string) (ID, error) {
	i, err := decodeBase32(s)
	if err != nil {
		return 0, err
	}
	return ID(i), nil
}

// ParseBase58 parses a Flickr-alphabet base58 string into an ID.
func ParseBase58(s string) (ID, error) {
	i, err := decodeBase58(s)
	if err != nil {
		return 0, err
	}
	return ID(i), nil
}

// ParseBase62 parses a URL-safe alphanumeric string into an ID.
func ParseBase62(s string) (ID, error) {
	i, err := decodeBase62(s)
	if err != nil {
		return 0, err
	}
	return ID(i), nil
}

// MarshalJSON implements json.Marshaler, encoding the ID as a quoted
// decimal string rather than a JSON number. JavaScript's Number type
// only carries 53 bits of integer precision, and this ID carries 63.
func (id ID) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`"%d"`, int64(id))), nil
}

// UnmarshalJSON implements json.Unmarshaler. It accepts both the quoted
// string form it produces and a bare JSON number, for callers that
// generated test fixtures by hand.
func (id *ID) UnmarshalJSON(data []byte) error {
	if len(data) < 1 {
		return fmt.Errorf("giftid: empty JSON data for ID")
	}

	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}

	i, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return fmt.Errorf("giftid: invalid ID: %w", err)
	}
	*id = ID(i)
	return nil
}

// Scan implements sql.Scanner, so an ID column can be read directly
// into this type regardless of whether the driver surfaces it as an
// int64 or as text.
func (id *ID) Scan(value interface{}) error {
	if value == nil {
		*id = 0
		return nil
	}

	switch v := value.(type) {
	case int64:
		*id = ID(v)
	case []byte:
		i, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return err
		}
		*id = ID(i)
	case string:
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		*id = ID(i)
	default:
		return fmt.Errorf("giftid: cannot scan %T into ID", value)
	}
	return nil
}

// Value implements driver.Valuer, storing the ID as a BIGINT/INTEGER
// column.
func (id ID) Value() (driver.Value, error) {
	return int64(id), nil
}

// Components decodes the ID into its constituent fields.
func (id ID) Components() (Components, error) {
	return Decode(int64(id))
}

// Time returns the absolute wall-clock instant the ID was generated at,
// derived from its embedded relative timestamp.
func (id ID) Time() (time.Time, error) {
	c, err := Decode(int64(id))
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(c.AbsoluteMillis()).UTC(), nil
}

// WorkshopID returns the workshop identifier embedded in the ID.
func (id ID) WorkshopID() (uint16, error) {
	c, err := Decode(int64(id))
	if err != nil {
		return 0, err
	}
	return c.WorkshopID, nil
}

// GiftClass returns the gift-class tag embedded in the ID.
func (id ID) GiftClass() (GiftClass, error) {
	c, err := Decode(int64(id))
	if err != nil {
		return 0, err
	}
	return c.GiftClass, nil
}

// Before reports whether id was generated strictly before other. Since
// the timestamp occupies the high bits, this is equivalent to ordering
// the raw int64 values for IDs issued by well-behaved generators.
func (id ID) Before(other ID) bool {
	return id < other
}

// After reports whether id was generated strictly after other.
func (id ID) After(other ID) bool {
	return id > other
}
