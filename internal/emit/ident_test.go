package emit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"kebab", "task-delete", "TaskDelete"},
		{"snake", "red_green", "RedGreen"},
		{"spaces", "speed load result", "SpeedLoadResult"},
		{"upper run preserved", "NUMA-aware", "NUMAAware"},
		{"already camel", "RedGreen", "RedGreen"},
		{"digits", "mode2-x", "Mode2X"},
		{"leading separator", "-edge", "Edge"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Ident(tt.in))
		})
	}
}

func TestIntegerType(t *testing.T) {
	assert.Equal(t, "uint8_t", integerType(0))
	assert.Equal(t, "uint8_t", integerType(255))
	assert.Equal(t, "uint16_t", integerType(256))
	assert.Equal(t, "uint16_t", integerType(65535))
	assert.Equal(t, "uint32_t", integerType(65536))
	assert.Equal(t, "uint64_t", integerType(1<<32))
}

func TestBitsFor(t *testing.T) {
	assert.Equal(t, 1, bitsFor(0))
	assert.Equal(t, 1, bitsFor(1))
	assert.Equal(t, 2, bitsFor(2))
	assert.Equal(t, 2, bitsFor(3))
	assert.Equal(t, 3, bitsFor(4))
	assert.Equal(t, 4, bitsFor(15))
	assert.Equal(t, 5, bitsFor(16))
}