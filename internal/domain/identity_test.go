package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashIdentity_Deterministic(t *testing.T) {
	a, err := HashIdentity("Alice", "2000-01-01", "F")
	require.NoError(t, err)
	b, err := HashIdentity("Alice", "2000-01-01", "F")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, HashField("Alice"), a.Name)
	assert.NotEqual(t, a.Name, a.DOB)
}

func TestHashIdentity_ByteForByte(t *testing.T) {
	a, err := HashIdentity("Alice", "2000-01-01", "F")
	require.NoError(t, err)
	b, err := HashIdentity("alice", "2000-01-01", "F")
	require.NoError(t, err)
	c, err := HashIdentity("Alice ", "2000-01-01", "F")
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "case is not folded")
	assert.NotEqual(t, a, c, "whitespace is not trimmed")
}

func TestHashIdentity_Rejects(t *testing.T) {
	tests := []struct {
		name                  string
		fullName, dob, gender string
	}{
		{"empty name", "", "2000-01-01", "F"},
		{"blank dob", "Alice", "   ", "F"},
		{"empty gender", "Alice", "2000-01-01", ""},
		{"invalid utf8", "Al\xffce", "2000-01-01", "F"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := HashIdentity(tt.fullName, tt.dob, tt.gender)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestHashedIdentity_JSONRendersHex(t *testing.T) {
	id, err := HashIdentity("Alice", "2000-01-01", "F")
	require.NoError(t, err)

	raw, err := json.Marshal(id)
	require.NoError(t, err)

	var out map[string]string
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, id.Name.String(), out["hashed_name"])
	assert.Len(t, out["hashed_gender"], 64)
}

func TestIdentityRecord_State(t *testing.T) {
	var missing *IdentityRecord
	assert.Equal(t, IdentityStateUnregistered, missing.State())
	assert.Equal(t, IdentityStateActive, (&IdentityRecord{IsActive: true}).State())
	assert.Equal(t, IdentityStateInactive, (&IdentityRecord{}).State())
}

func TestDigest_Scan(t *testing.T) {
	d := HashField("x")
	var out Digest
	require.NoError(t, out.Scan(d[:]))
	assert.Equal(t, d, out)

	assert.Error(t, out.Scan([]byte{1, 2, 3}))
	assert.Error(t, out.Scan("not bytes"))
}
