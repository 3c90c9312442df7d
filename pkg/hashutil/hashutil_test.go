package hashutil_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elielzinsou/bbc-learning-english-podcast-spider/pkg/hashutil"
)

func TestHashBytes_KnownVectors_SHA256(t *testing.T) {
	vectors := []struct {
		input    string
		expected string
	}{
		{
			input:    "",
			expected: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			input:    "abc",
			expected: "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		},
		{
			input:    "hello world",
			expected: "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9",
		},
	}

	for _, v := range vectors {
		result, err := hashutil.HashBytes([]byte(v.input), hashutil.HashAlgoSHA256)
		require.NoError(t, err)
		assert.Equal(t, v.expected, result, "SHA256 hash mismatch for input: %q", v.input)
	}
}

func TestHashBytes_KnownVectors_BLAKE3(t *testing.T) {
	// BLAKE3 known test vectors from the official specification
	vectors := []struct {
		input    string
		expected string
	}{
		{
			input:    "",
			expected: "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262",
		},
		{
			input:    "abc",
			expected: "6437b3ac38465133ffb63b75273a8db548c558465d79db03fd359c6cd5bd9d85",
		},
	}

	for _, v := range vectors {
		result, err := hashutil.HashBytes([]byte(v.input), hashutil.HashAlgoBLAKE3)
		require.NoError(t, err)
		assert.Equal(t, v.expected, result, "BLAKE3 hash mismatch for input: %q", v.input)
	}
}

func TestHashBytes_UnsupportedAlgorithm(t *testing.T) {
	result, err := hashutil.HashBytes([]byte("test data"), "unsupported")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported hash algorithm")
	assert.Empty(t, result)
}

func TestHashBytes_Deterministic(t *testing.T) {
	data := []byte("deterministic test data")

	hash1, err1 := hashutil.HashBytes(data, hashutil.HashAlgoBLAKE3)
	hash2, err2 := hashutil.HashBytes(data, hashutil.HashAlgoBLAKE3)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, hash1, hash2)
}

func TestHashBytes_OutputLength(t *testing.T) {
	data := []byte("test")

	// Both algorithms produce 32 bytes = 64 hex characters.
	hash256, _ := hashutil.HashBytes(data, hashutil.HashAlgoSHA256)
	assert.Len(t, hash256, 64)

	hashBlake3, _ := hashutil.HashBytes(data, hashutil.HashAlgoBLAKE3)
	assert.Len(t, hashBlake3, 64)
}
