package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpapescrim1106/blueprintproject/internal/omsdata"
)

func TestNameLocationKeyNormalizes(t *testing.T) {
	assert.Equal(t, "jane doe|main st", NameLocationKey(" Jane ", "DOE", " Main St "))
	assert.Equal(t, "jane doe|", NameLocationKey("Jane", "Doe", ""))
}

func TestRowNameLocationKeySplitColumns(t *testing.T) {
	row := omsdata.FromPairs("First name", "Jane", "Last name", "Doe", "Location", "Main St")
	key, ok := RowNameLocationKey(row)
	require.True(t, ok)
	assert.Equal(t, "jane doe|main st", key)
}

func TestRowNameLocationKeyCombinedColumn(t *testing.T) {
	row := omsdata.FromPairs("Patient", "Jane  Doe", "Location", "Main St")
	key, ok := RowNameLocationKey(row)
	require.True(t, ok)
	assert.Equal(t, "jane doe|main st", key)
}

func TestRowNameLocationKeyNoName(t *testing.T) {
	row := omsdata.FromPairs("Location", "Main St", "Status", "due")
	_, ok := RowNameLocationKey(row)
	assert.False(t, ok)
}

func TestSplitAndCombinedColumnsAgree(t *testing.T) {
	split := omsdata.FromPairs("First name", "Jane", "Last name", "Doe", "Location", "Main St")
	combined := omsdata.FromPairs("Patient name", "Jane Doe", "Location", "Main St")

	splitKey, _ := RowNameLocationKey(split)
	combinedKey, _ := RowNameLocationKey(combined)
	assert.Equal(t, splitKey, combinedKey)
}
