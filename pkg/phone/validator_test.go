package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		region  string
		want    string
		wantErr bool
	}{
		{"us national", "(415) 555-2671", "US", "+14155552671", false},
		{"us dashed", "415-555-2671", "US", "+14155552671", false},
		{"already e164", "+14155552671", "US", "+14155552671", false},
		{"e164 ignores region", "+447911123456", "US", "+447911123456", false},
		{"whitespace padded", "  415 555 2671  ", "US", "+14155552671", false},
		{"empty", "", "US", "", true},
		{"garbage", "not a phone", "US", "", true},
		{"too short", "123", "US", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw, tt.region)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeOrKeep(t *testing.T) {
	assert.Equal(t, "+14155552671", NormalizeOrKeep("415-555-2671", "US"))
	assert.Equal(t, "ext. 42", NormalizeOrKeep("  ext. 42 ", "US"))
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("+14155552671", "US"))
	assert.False(t, IsValid("12", "US"))
}
