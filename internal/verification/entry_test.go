package verification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeEntry_TypingAdvancesFocus(t *testing.T) {
	var e CodeEntry
	assert.Equal(t, EntryEmpty, e.State())

	assert.False(t, e.TypeDigit(0, "1"))
	assert.Equal(t, 1, e.Focus())
	assert.Equal(t, EntryPartial, e.State())

	assert.False(t, e.TypeDigit(1, "2"))
	assert.False(t, e.TypeDigit(2, "3"))
	assert.True(t, e.TypeDigit(3, "4"))
	assert.Equal(t, 3, e.Focus())
	assert.Equal(t, EntryComplete, e.State())
	assert.Equal(t, "1234", e.Code())
}

func TestCodeEntry_RejectsNonDigits(t *testing.T) {
	var e CodeEntry
	assert.False(t, e.TypeDigit(0, "a"))
	assert.Equal(t, EntryEmpty, e.State())
	assert.Equal(t, 0, e.Focus())

	// Only the last character counts.
	e.TypeDigit(0, "57")
	assert.Equal(t, "7", e.Digits()[0])

	assert.False(t, e.TypeDigit(4, "1"))
	assert.False(t, e.TypeDigit(-1, "1"))
}

func TestCodeEntry_Backspace(t *testing.T) {
	var e CodeEntry
	e.TypeDigit(0, "1")
	e.TypeDigit(1, "2")

	// Empty slot: move back.
	e.Backspace(2)
	assert.Equal(t, 1, e.Focus())

	// Filled slot: clear it and stay.
	e.Backspace(1)
	assert.Equal(t, 1, e.Focus())
	assert.Equal(t, "1", e.Code())

	var empty CodeEntry
	empty.Backspace(0)
	assert.Equal(t, 0, empty.Focus())
}

func TestCodeEntry_Paste(t *testing.T) {
	var e CodeEntry
	assert.True(t, e.Paste("5678"))
	assert.Equal(t, "5678", e.Code())
	assert.Equal(t, [CodeLength]string{"5", "6", "7", "8"}, e.Digits())

	assert.True(t, e.Paste("Tu código: 9-1-2-3-4"))
	assert.Equal(t, "9123", e.Code())

	assert.False(t, e.Paste("12"))
	assert.Equal(t, "12", e.Code())
	assert.Equal(t, 2, e.Focus())
	assert.Equal(t, EntryPartial, e.State())

	assert.False(t, e.Paste("abc"))
	assert.Equal(t, "12", e.Code())
}

func TestCodeEntry_Clear(t *testing.T) {
	var e CodeEntry
	e.Paste("1234")
	e.Clear()
	assert.Equal(t, "", e.Code())
	assert.Equal(t, 0, e.Focus())
	assert.Equal(t, EntryEmpty, e.State())
}
