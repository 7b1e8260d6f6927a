package utils

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// StripHexPrefix removes an optional 0x prefix.
func StripHexPrefix(str string) string {
	if len(str) >= 2 && (str[0:2] == "0x" || str[0:2] == "0X") {
		return str[2:]
	}
	return str
}

// BytesToHex encodes as lowercase hex, the wire form of every protocol value.
func BytesToHex(b []byte) string {
	return hex.EncodeToString(b)
}

// HexToBytes decodes a hex string, accepting an optional 0x prefix and upper case digits.
func HexToBytes(str string) ([]byte, error) {
	b, err := hex.DecodeString(strings.ToLower(StripHexPrefix(strings.TrimSpace(str))))
	if err != nil {
		return nil, fmt.Errorf("invalid hex string: %w", err)
	}
	return b, nil
}

// HexToFixedBytes decodes a hex string and checks its decoded length.
func HexToFixedBytes(str string, size int) ([]byte, error) {
	b, err := HexToBytes(str)
	if err != nil {
		return nil, err
	}
	if len(b) != size {
		return nil, fmt.Errorf("invalid length: %d (need %d bytes)", len(b), size)
	}
	return b, nil
}

// SerializeData encodes a record for the key-value store.
func SerializeData(data interface{}) ([]byte, error) {
	return json.Marshal(data)
}

// DeserializeData decodes a record read from the key-value store.
func DeserializeData(data []byte, result interface{}) error {
	return json.Unmarshal(data, result)
}
