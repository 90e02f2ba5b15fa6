package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"formatted with country code", "+1 (217) 555-0199", "2175550199"},
		{"dashes", "217-555-0199", "2175550199"},
		{"dots and spaces", "217. 555 .0199", "2175550199"},
		{"eleven digits leading one", "12175550199", "2175550199"},
		{"eleven digits other prefix keeps last ten", "92175550199", "2175550199"},
		{"international prefix keeps last ten", "+44 20 7123 4567 8", "0712345678"},
		{"short input passes through", "555-0199", "5550199"},
		{"letters only", "call me", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.raw))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"+1 (217) 555-0199",
		"2175550199",
		"12175550199",
		"555-0199",
		"1",
		"",
		"000000000000000",
	}

	for _, raw := range inputs {
		once := Normalize(raw)
		require.LessOrEqual(t, len(once), 10)
		assert.Equal(t, once, Normalize(once), "input %q", raw)
	}
}

func TestIsValidUSNumber(t *testing.T) {
	tests := []struct {
		name   string
		number string
		valid  bool
	}{
		{"valid illinois number", "2175550199", true},
		{"valid canadian number", "4165550199", true},
		{"leading zero", "0175550199", false},
		{"leading one", "1175550199", false},
		{"exchange starts with zero", "2170550199", false},
		{"exchange starts with one", "2171550199", false},
		{"unassigned area code", "5555550199", false},
		{"too short", "217555019", false},
		{"too long", "21755501990", false},
		{"non digit", "217555019x", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidUSNumber(tt.number))
		})
	}
}

func TestStateForAreaCode(t *testing.T) {
	assert.Equal(t, "Illinois", StateForAreaCode("217"))
	assert.Equal(t, "District of Columbia", StateForAreaCode("202"))
	assert.Equal(t, "Ontario", StateForAreaCode("416"))
	assert.Equal(t, UnknownState, StateForAreaCode("555"))
	assert.Equal(t, UnknownState, StateForAreaCode("21"))
	assert.Equal(t, UnknownState, StateForAreaCode(""))
}

func TestAreaCodeTable_NoDuplicates(t *testing.T) {
	seen := make(map[string]string)
	for _, region := range NANPRegions {
		for _, code := range region.Codes {
			require.Len(t, code, 3, "region %s", region.Name)
			prev, dup := seen[code]
			assert.False(t, dup, "area code %s listed for %s and %s", code, prev, region.Name)
			seen[code] = region.Name
		}
	}
}

func TestAreaCodeOf(t *testing.T) {
	assert.Equal(t, "217", AreaCodeOf("2175550199"))
	assert.Equal(t, "21", AreaCodeOf("21"))
	assert.Equal(t, "", AreaCodeOf(""))
}

func TestNewPhoneNumber(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
		wantErr  bool
	}{
		{"formatted", "(217) 555-0199", "2175550199", false},
		{"with country code", "1-217-555-0199", "2175550199", false},
		{"empty", "", "", true},
		{"invalid exchange", "217-055-0199", "", true},
		{"unassigned area code", "555-555-0199", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			phone, err := NewPhoneNumber(tt.raw)
			if tt.wantErr {
				var validationErr PhoneValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.Equal(t, tt.raw, validationErr.Number)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, phone.String())
		})
	}
}

func TestPhoneNumber_Parts(t *testing.T) {
	phone, err := NewPhoneNumber("+1 (217) 555-0199")
	require.NoError(t, err)

	assert.Equal(t, "2175550199", phone.String())
	assert.Equal(t, "217", phone.AreaCode())
	assert.Equal(t, "Illinois", phone.State())
}
