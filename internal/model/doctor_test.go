package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSlots(t *testing.T) {
	got := NormalizeSlots([]string{" 09:00 AM", "", "  ", "10:00 AM "})
	assert.Equal(t, Slots{"09:00 AM", "10:00 AM"}, got)
}

func TestSlots_ValueScan(t *testing.T) {
	v, err := Slots{"09:00 AM", "09:30 AM"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["09:00 AM","09:30 AM"]`, string(v.([]byte)))

	empty, err := Slots(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty.([]byte)))

	var s Slots
	require.NoError(t, s.Scan([]byte(`["11:00 AM"]`)))
	assert.Equal(t, Slots{"11:00 AM"}, s)

	require.NoError(t, s.Scan(nil))
	assert.Empty(t, s)

	assert.Error(t, s.Scan(42))
}

func TestDoctor_HasSlotAndCapacity(t *testing.T) {
	d := &Doctor{Slots: Slots{"09:00 AM"}, Capacity: 0}

	assert.True(t, d.HasSlot(" 09:00 AM"))
	assert.False(t, d.HasSlot("10:00 AM"))
	assert.Equal(t, 15, d.EffectiveCapacity(15))

	d.Capacity = 3
	assert.Equal(t, 3, d.EffectiveCapacity(15))
}
