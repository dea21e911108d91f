package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeCursorToken(t *testing.T) {
	// Test case 1: Standard values
	createdAt := time.Date(2025, 5, 15, 14, 30, 45, 123456789, time.UTC)
	id := "c1f8a3a0-8f49-45a8-9f62-1a2b3c4d5e6f"

	token := EncodeCursorToken(createdAt, id)
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedAt, decodedID, err := DecodeCursorToken(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, createdAt, decodedAt, "Creation time should match after decode")
	assert.Equal(t, id, decodedID, "ID should match after decode")

	// Test case 2: Zero time value
	zeroToken := EncodeCursorToken(time.Time{}, id)
	decodedZero, decodedZeroID, err := DecodeCursorToken(zeroToken)
	assert.NoError(t, err, "Decoding zero time should not return an error")
	assert.Equal(t, time.Time{}, decodedZero, "Zero time should match after decode")
	assert.Equal(t, id, decodedZeroID)

	// Test case 3: Current time values
	now := time.Now().UTC()
	nowToken := EncodeCursorToken(now, id)
	decodedNow, _, err := DecodeCursorToken(nowToken)
	assert.NoError(t, err, "Decoding current time should not return an error")
	assert.True(t, now.Equal(decodedNow), "Current time should match after decode")
}

func TestDecodeCursorTokenError(t *testing.T) {
	// Test invalid base64
	_, _, err := DecodeCursorToken("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode", "Error should mention base64 decoding")

	// Test invalid format (missing separator)
	invalidToken := EncodeMultiFieldToken("2025-05-15T00:00:00Z")
	_, _, err = DecodeCursorToken(invalidToken)
	assert.Error(t, err, "Should return an error for invalid token format")
	assert.Contains(t, err.Error(), "split", "Error should mention splitting issue")

	// Test invalid date format
	invalidDateToken := EncodeMultiFieldToken("notadate", "some-id")
	_, _, err = DecodeCursorToken(invalidDateToken)
	assert.Error(t, err, "Should return an error for invalid date format")
	assert.Contains(t, err.Error(), "created_at parse", "Error should mention time parsing issue")
}

func TestEncodeDecodeMultiFieldToken(t *testing.T) {
	fields := []string{"2025-05-15T14:30:45.123456789Z", "row-id", "extra"}

	token := EncodeMultiFieldToken(fields...)
	decoded, err := DecodeMultiFieldToken(token)
	assert.NoError(t, err)
	assert.Equal(t, fields, decoded)

	// Single field round trip
	single := EncodeMultiFieldToken("only")
	decodedSingle, err := DecodeMultiFieldToken(single)
	assert.NoError(t, err)
	assert.Equal(t, []string{"only"}, decodedSingle)
}
