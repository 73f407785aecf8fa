package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.NoError(t, CheckPassword(hash, "secret123"))
	assert.Error(t, CheckPassword(hash, "wrong"))
}

func TestGenerateSlug(t *testing.T) {
	assert.Equal(t, "ada-lovelace", GenerateSlug("Ada Lovelace"))
	assert.Equal(t, "hello-world", GenerateSlug("  Héllo Wörld!  "))
	assert.Equal(t, "go-1-25-release", GenerateSlug("Go 1.25 Release"))
	assert.Equal(t, "", GenerateSlug("---"))
}

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 7, ParseIntDefault("", 7))
	assert.Equal(t, 7, ParseIntDefault("nope", 7))
	assert.Equal(t, 42, ParseIntDefault("42", 7))
}

func TestParseBoolQuery(t *testing.T) {
	got, err := ParseBoolQuery("")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ParseBoolQuery("true")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, *got)

	_, err = ParseBoolQuery("banana")
	assert.Error(t, err)
}
