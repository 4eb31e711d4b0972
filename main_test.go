//go:build !(js && wasm)

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/voxelsplace/bmpkit/bmp"
)

func TestPackArgs(t *testing.T) {
	tests := []struct {
		args   []string
		comp   bmp.PackCompression
		layout bmp.PackLayout
		inputs []string
	}{
		{[]string{"a.bmp"}, bmp.PackCompZlib, bmp.LayoutRaw, []string{"a.bmp"}},
		{[]string{"zstd", "a.bmp", "b.bmp"}, bmp.PackCompZstd, bmp.LayoutRaw, []string{"a.bmp", "b.bmp"}},
		{[]string{"cdc", "none", "a.bmp"}, bmp.PackCompNone, bmp.LayoutCDC, []string{"a.bmp"}},
		{[]string{"zlib", "cdc"}, bmp.PackCompZlib, bmp.LayoutCDC, []string{}},
	}
	for _, tc := range tests {
		comp, layout, inputs := packArgs(tc.args)
		assert.Equal(t, tc.comp, comp, "%v", tc.args)
		assert.Equal(t, tc.layout, layout, "%v", tc.args)
		assert.Equal(t, tc.inputs, inputs, "%v", tc.args)
	}
}
