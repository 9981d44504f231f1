package simlog

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForTagsModule(t *testing.T) {
	var buf bytes.Buffer
	root := New(&buf, slog.LevelDebug)
	log := For(root, ModuleALU)
	log.Info("hello")
	assert.Contains(t, buf.String(), "module=alu")
	assert.Contains(t, buf.String(), "hello")
}

func TestDiscardEmitsNothing(t *testing.T) {
	log := Discard()
	log.Error("should not panic or write anywhere")
}

func TestBinary(t *testing.T) {
	assert.Equal(t, "0b00000110", Binary(0b00000110))
	assert.Equal(t, "0b11111111", Binary(0xFF))
}
