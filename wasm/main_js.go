//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/voxelsplace/bmpkit/api"
	"github.com/voxelsplace/bmpkit/bmp"
)

func bytesFromJS(v js.Value) []byte {
	buf := make([]byte, v.Get("length").Int())
	js.CopyBytesToGo(buf, v)
	return buf
}

func bytesToJS(b []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(arr, b)
	return arr
}

// decodeBmp returns {width, height, pixels} with pixels as top-down RGBA.
func decodeBmp(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing bmp bytes")
	}
	w, h, pix, err := api.DecodeToRGBA(bytesFromJS(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	result := js.Global().Get("Object").New()
	result.Set("width", w)
	result.Set("height", h)
	result.Set("pixels", bytesToJS(pix))
	return result
}

func bmp2glb(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing bmp bytes")
	}
	out, err := api.BMPToGLB(bytesFromJS(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

// bmp2png takes the bmp bytes and an optional integer scale.
func bmp2png(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing bmp bytes")
	}
	scale := 1
	if len(args) > 1 && args[1].Type() == js.TypeNumber {
		scale = args[1].Int()
	}
	out, err := api.BMPToPNG(bytesFromJS(args[0]), scale)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

// packBmps takes an object mapping names to Uint8Array and an optional codec
// name (none, zlib, zstd; zlib by default).
func packBmps(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing files object")
	}
	comp := bmp.PackCompZlib
	if len(args) > 1 && args[1].Type() == js.TypeString {
		c, ok := api.ParseCompression(args[1].String())
		if !ok {
			return js.ValueOf("unknown compression: " + args[1].String())
		}
		comp = c
	}
	filesObj := args[0]
	files := map[string][]byte{}
	keys := js.Global().Get("Object").Call("keys", filesObj)
	for i := 0; i < keys.Length(); i++ {
		k := keys.Index(i).String()
		files[k] = bytesFromJS(filesObj.Get(k))
	}
	out, err := api.PackBMPs(files, comp)
	if err != nil {
		return js.ValueOf(err.Error())
	}
	return bytesToJS(out)
}

func unpackBmppack(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf("missing pack bytes")
	}
	files, err := api.UnpackBMPPACKToMemory(bytesFromJS(args[0]))
	if err != nil {
		return js.ValueOf(err.Error())
	}
	// return an object mapping names->Uint8Array
	result := js.Global().Get("Object").New()
	for name, b := range files {
		result.Set(name, bytesToJS(b))
	}
	return result
}

func main() {
	js.Global().Set("decodeBmp", js.FuncOf(decodeBmp))
	js.Global().Set("bmp2glb", js.FuncOf(bmp2glb))
	js.Global().Set("bmp2png", js.FuncOf(bmp2png))
	js.Global().Set("packBmps", js.FuncOf(packBmps))
	js.Global().Set("unpackBmppack", js.FuncOf(unpackBmppack))
	select {}
}
