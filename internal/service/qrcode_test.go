package service

import (
	"testing"

	"cafehub/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQRCode(t *testing.T) {
	f := newFixture(t)
	gen := NewQRGenerator(f.catalog)

	png, err := gen.TablePNG(cafeID, "t3")
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])

	_, err = gen.TablePNG(cafeID, "t99")
	assert.ErrorIs(t, err, catalog.ErrTableNotFound)

	cafe, table, err := ParseTablePayload(TablePayload(cafeID, "t3"))
	require.NoError(t, err)
	assert.Equal(t, cafeID, cafe)
	assert.Equal(t, "t3", table)
}

func TestParseTablePayloadRejects(t *testing.T) {
	for _, payload := range []string{
		"",
		"cafehub://cafes/brew-and-bloom",
		"cafehub://cafes//tables/t1",
		"cafehub://venues/brew-and-bloom/tables/t1",
		"https://cafes/brew-and-bloom/tables/t1",
	} {
		_, _, err := ParseTablePayload(payload)
		assert.ErrorIs(t, err, ErrInvalidScan, payload)
	}
}
