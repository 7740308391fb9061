package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/campus-lostfound/internal/validation"
)

func TestGenerateHoldCode(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		code, err := GenerateHoldCode()
		require.NoError(t, err)
		require.True(t, validation.IsHoldCode(code), code)
		seen[code] = struct{}{}
	}
	// 36^6 вариантов, повторы в тысяче практически исключены
	require.Greater(t, len(seen), 990)
}
