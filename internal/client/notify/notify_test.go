package notify

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnackbar(t *testing.T) {
	var s Snackbar
	assert.False(t, s.Last().Shown)

	s.Error("Invalid password.")
	assert.Equal(t, Message{Text: "Invalid password.", Color: ColorError, Shown: true}, s.Last())

	s.Success("Saved.")
	assert.Equal(t, ColorSuccess, s.Last().Color)

	s.Dismiss()
	assert.False(t, s.Last().Shown)
	assert.Equal(t, "Saved.", s.Last().Text)
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Success("logged in")
	p.Error("boom")

	out := buf.String()
	assert.Contains(t, out, "logged in")
	assert.Contains(t, out, "boom")
}

func TestMulti(t *testing.T) {
	var a, b Snackbar
	m := Multi{&a, &b}

	m.Error("x")
	assert.Equal(t, "x", a.Last().Text)
	assert.Equal(t, "x", b.Last().Text)

	m.Success("y")
	assert.Equal(t, ColorSuccess, b.Last().Color)
}
