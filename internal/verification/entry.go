package verification

import "strings"

// EntryState summarizes how many code slots are filled.
type EntryState int

const (
	EntryEmpty EntryState = iota
	EntryPartial
	EntryComplete
)

func (s EntryState) String() string {
	switch s {
	case EntryEmpty:
		return "empty"
	case EntryPartial:
		return "partial"
	default:
		return "complete"
	}
}

// CodeEntry models the four single-digit input fields and which one has focus.
// The zero value is an empty entry focused on slot 0.
type CodeEntry struct {
	digits [CodeLength]string
	focus  int
}

// TypeDigit places the last character of input into slot. Non-digits are
// ignored and an empty input clears the slot. Focus advances to the next
// slot after a digit. It reports whether the entry is now complete, which is
// the caller's cue to submit.
func (e *CodeEntry) TypeDigit(slot int, input string) bool {
	if slot < 0 || slot >= CodeLength {
		return false
	}
	if input == "" {
		e.digits[slot] = ""
		e.focus = slot
		return false
	}

	ch := input[len(input)-1]
	if ch < '0' || ch > '9' {
		return false
	}

	e.digits[slot] = string(ch)
	if slot < CodeLength-1 {
		e.focus = slot + 1
	} else {
		e.focus = slot
	}
	return e.State() == EntryComplete
}

// Backspace clears slot, or moves focus back when slot is already empty.
func (e *CodeEntry) Backspace(slot int) {
	if slot < 0 || slot >= CodeLength {
		return
	}
	if e.digits[slot] != "" {
		e.digits[slot] = ""
		e.focus = slot
		return
	}
	if slot > 0 {
		e.focus = slot - 1
	}
}

// Paste fills the slots from the digits found in text, at most four. Slots
// beyond the pasted digits are cleared. It reports whether exactly four
// digits were pasted.
func (e *CodeEntry) Paste(text string) bool {
	var got []byte
	for i := 0; i < len(text) && len(got) < CodeLength; i++ {
		if text[i] >= '0' && text[i] <= '9' {
			got = append(got, text[i])
		}
	}
	if len(got) == 0 {
		return false
	}

	for i := range e.digits {
		if i < len(got) {
			e.digits[i] = string(got[i])
		} else {
			e.digits[i] = ""
		}
	}
	e.focus = min(len(got), CodeLength-1)
	return len(got) == CodeLength
}

// Clear empties every slot and focuses the first.
func (e *CodeEntry) Clear() {
	*e = CodeEntry{}
}

// Code joins the slots.
func (e *CodeEntry) Code() string {
	return strings.Join(e.digits[:], "")
}

// Digits returns a copy of the slots.
func (e *CodeEntry) Digits() [CodeLength]string {
	return e.digits
}

// Focus is the slot that receives the next keystroke.
func (e *CodeEntry) Focus() int {
	return e.focus
}

func (e *CodeEntry) State() EntryState {
	filled := 0
	for _, d := range e.digits {
		if d != "" {
			filled++
		}
	}
	switch filled {
	case 0:
		return EntryEmpty
	case CodeLength:
		return EntryComplete
	default:
		return EntryPartial
	}
}
