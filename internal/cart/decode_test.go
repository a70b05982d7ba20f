package cart

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/Lixing-Zhang/bistro-ordering/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func persistedLine(t *testing.T) models.CartLine {
	t.Helper()
	line, err := NewDraft(bowl()).Line(now)
	require.NoError(t, err)
	return line
}

func TestDecode_RoundTripKeepsLockedPrice(t *testing.T) {
	line := persistedLine(t)
	data, err := json.Marshal([]models.CartLine{line})
	require.NoError(t, err)

	c, rejected, err := Decode(data)
	require.NoError(t, err)
	assert.Empty(t, rejected)
	require.Equal(t, 1, c.Len())

	got := c.Lines()[0]
	assert.Equal(t, line.ID, got.ID)
	assert.True(t, line.TotalPrice.Equal(got.TotalPrice))
	assert.Equal(t, line.Modifiers, got.Modifiers)
}

func TestDecode_WrappedObject(t *testing.T) {
	line := persistedLine(t)
	data, err := json.Marshal(map[string]any{"lines": []models.CartLine{line}})
	require.NoError(t, err)

	c, rejected, err := Decode(data)
	require.NoError(t, err)
	assert.Empty(t, rejected)
	assert.Equal(t, 1, c.Len())
}

func TestDecode_RejectsAndCoerces(t *testing.T) {
	good := persistedLine(t)

	noID := persistedLine(t)
	noID.ID = ""
	noID.Modifiers["toppings"]["chashu"] = 0
	noID.Upsells = models.UpsellSelection{"gyoza": -2}

	zeroQty := persistedLine(t)
	zeroQty.Quantity = 0

	negative := persistedLine(t)
	negative.TotalPrice = d("-4")

	unpriced := persistedLine(t)
	unpriced.TotalPrice = d("0")

	entries := []any{good, noID, zeroQty, "not a line", negative, unpriced, map[string]any{"quantity": 1}}
	data, err := json.Marshal(entries)
	require.NoError(t, err)

	c, rejected, err := Decode(data)
	require.NoError(t, err)

	require.Equal(t, 3, c.Len())
	lines := c.Lines()

	assert.NotEmpty(t, lines[1].ID)
	assert.NotContains(t, lines[1].Modifiers["toppings"], "chashu")
	assert.Nil(t, lines[1].Upsells)

	assert.True(t, d("11.50").Equal(lines[2].TotalPrice), "re-priced total = %s", lines[2].TotalPrice)

	indexes := make([]int, 0, len(rejected))
	for _, r := range rejected {
		indexes = append(indexes, r.Index)
		assert.NotEmpty(t, r.Reason)
	}
	assert.Equal(t, []int{2, 3, 4, 6}, indexes)
}

func TestDecode_RejectsSelectionsOutsideSnapshot(t *testing.T) {
	good := persistedLine(t)

	unknownOption := persistedLine(t)
	unknownOption.Modifiers["toppings"]["nori"] = 1

	overCap := persistedLine(t)
	overCap.Modifiers["size"] = map[string]int{"regular": 5}

	unknownUpsell := persistedLine(t)
	unknownUpsell.Upsells = models.UpsellSelection{"beer": 1}

	hugeUpsell := persistedLine(t)
	hugeUpsell.Upsells = models.UpsellSelection{"gyoza": 1_000_000}

	data, err := json.Marshal([]models.CartLine{good, unknownOption, overCap, unknownUpsell, hugeUpsell})
	require.NoError(t, err)

	c, rejected, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
	assert.Equal(t, good.ID, c.Lines()[0].ID)

	indexes := make([]int, 0, len(rejected))
	for _, r := range rejected {
		indexes = append(indexes, r.Index)
	}
	assert.Equal(t, []int{1, 2, 3, 4}, indexes)
}

func TestDecode_Malformed(t *testing.T) {
	_, _, err := Decode([]byte(`{"lines": 12}`))
	assert.True(t, errors.Is(err, ErrMalformedCart))

	_, _, err = Decode([]byte(`[{`))
	assert.True(t, errors.Is(err, ErrMalformedCart))

	c, rejected, err := Decode([]byte(`  `))
	require.NoError(t, err)
	assert.Empty(t, rejected)
	assert.Equal(t, 0, c.Len())
}
