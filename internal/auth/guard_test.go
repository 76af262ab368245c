package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func comparators() map[string]Comparator {
	return map[string]Comparator{
		"plain":         PlainComparator{},
		"constant-time": ConstantTimeComparator{},
	}
}

func TestGuard_Login(t *testing.T) {
	for name, cmp := range comparators() {
		t.Run(name, func(t *testing.T) {
			g := NewGuard("s3cret", cmp)

			token, err := g.Login("s3cret")
			require.NoError(t, err)
			assert.Equal(t, "s3cret", token)

			_, err = g.Login("wrong")
			assert.ErrorIs(t, err, ErrInvalidPassword)

			_, err = g.Login("")
			assert.ErrorIs(t, err, ErrMissingPassword)
		})
	}
}

func TestGuard_CheckToken(t *testing.T) {
	g := NewGuard("s3cret", nil)

	assert.NoError(t, g.CheckToken("s3cret"))
	assert.ErrorIs(t, g.CheckToken(""), ErrMissingToken)
	assert.ErrorIs(t, g.CheckToken("S3CRET"), ErrInvalidToken)
	assert.ErrorIs(t, g.CheckToken("s3cret "), ErrInvalidToken)
}

func TestGuard_IsAdmin(t *testing.T) {
	g := NewGuard("s3cret", ConstantTimeComparator{})

	assert.True(t, g.IsAdmin("s3cret"))
	assert.False(t, g.IsAdmin(""))
	assert.False(t, g.IsAdmin("nope"))
}

func TestGuard_EmptySecretDeniesEverything(t *testing.T) {
	g := NewGuard("", nil)

	assert.False(t, g.Enabled())
	assert.False(t, g.IsAdmin(""))
	assert.False(t, g.IsAdmin("anything"))

	_, err := g.Login("anything")
	assert.ErrorIs(t, err, ErrInvalidPassword)
	assert.ErrorIs(t, g.CheckToken("anything"), ErrInvalidToken)
}

func TestComparatorByName(t *testing.T) {
	tests := []struct {
		in      string
		want    Comparator
		wantErr bool
	}{
		{"", PlainComparator{}, false},
		{"plain", PlainComparator{}, false},
		{"Constant-Time", ConstantTimeComparator{}, false},
		{"constant_time", ConstantTimeComparator{}, false},
		{"bcrypt", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ComparatorByName(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
