package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, Fold("café"), Fold("CAFÉ"))
	assert.Equal(t, Fold("café"), Fold("cafe\u0301"), "decomposed accents fold like composed ones")
	assert.Equal(t, "fone bluetooth", Fold("Fone BLUETOOTH"))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off`, EscapeLike("50% off"))
	assert.Equal(t, `a\_b`, EscapeLike("a_b"))
	assert.Equal(t, `c:\\dir`, EscapeLike(`c:\dir`))
	assert.Equal(t, "plain", EscapeLike("plain"))
}
