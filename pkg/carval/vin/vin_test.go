package vin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekruzvatanshoev/carval/pkg/carval/apperr"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr string
	}{
		{name: "valid", in: "1HGBH41JXMN109186", want: "1HGBH41JXMN109186"},
		{name: "lowercase", in: "1hgbh41jxmn109186", want: "1HGBH41JXMN109186"},
		{name: "padded", in: "  1HGBH41JXMN109186 ", want: "1HGBH41JXMN109186"},
		{name: "empty", in: "", wantErr: "VIN is required"},
		{name: "short", in: "1HGBH41JXMN10918", wantErr: "exactly 17"},
		{name: "letter I", in: "1HGBH41JXMN10918I", wantErr: "exactly 17"},
		{name: "letter O", in: "1HGBH41JXMN1O9186", wantErr: "exactly 17"},
		{name: "letter Q", in: "QHGBH41JXMN109186", wantErr: "exactly 17"},
		{name: "symbol", in: "1HGBH41JXMN10918-", wantErr: "exactly 17"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.in)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.True(t, apperr.Is(err, apperr.KindValidation))
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	for _, v := range []string{"1HGBH41JXMN109186", "5YJ3E1EA7KF317000", "2t1bu4ee9dc123456"} {
		once, err := Parse(v)
		require.NoError(t, err)
		twice, err := Parse(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice)
		assert.Equal(t, once, Normalize(once))
	}
}

func TestCheckLength(t *testing.T) {
	assert.NoError(t, CheckLength("IIIIIIIIIIIIIIIII"))
	assert.Error(t, CheckLength("ABC"))
	assert.Error(t, CheckLength(""))
}
