//go:build !(js && wasm)

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/voxelsplace/bmpkit/api"
	"github.com/voxelsplace/bmpkit/bmp"
	"github.com/voxelsplace/bmpkit/utils"
)

func usage() {
	fmt.Println("Usage: bmptool <command> [args]")
	fmt.Println("Commands:")
	fmt.Println("  info input.bmp                          (print header metadata and pixel checksum)")
	fmt.Println("  show input.bmp                          (preview a small image in a true-color terminal)")
	fmt.Println("  bmp2png input.bmp output.png [scale]    (convert to .png, nearest-neighbour upscale by scale)")
	fmt.Println("  bmp2glb input.bmp output.glb [#key]     (convert to .glb using greedy sprite mesh, skipping the key color)")
	fmt.Println("  bmp2pack output.bmppack [none|zlib|zstd] [raw|cdc] input1.bmp [input2.bmp ...]   (pack multiple .bmp into a .bmppack)")
	fmt.Println("  pack2bmp input.bmppack output_dir       (unpack .bmppack into directory of .bmp files)")
	fmt.Println("  pack2glb input.bmppack output.glb       (convert .bmppack -> .glb, one node per entry)")
	fmt.Println("  decodeall input1.bmp [input2.bmp ...]   (decode in parallel and report size and checksum)")
	fmt.Printf("Set %s=debug|info|warn|error to change log verbosity.\n", utils.LogEnv)
}

func fail(err error) {
	utils.Logger.Error("command failed", "cmd", os.Args[1], "err", err)
	os.Exit(1)
}

func need(ok bool) {
	if !ok {
		usage()
		os.Exit(1)
	}
}

// packArgs splits "[comp] [layout] inputs..." in either order.
func packArgs(args []string) (bmp.PackCompression, bmp.PackLayout, []string) {
	comp, layout := bmp.PackCompZlib, bmp.LayoutRaw
	for i := 0; i < 2 && len(args) > 0; i++ {
		if c, ok := api.ParseCompression(args[0]); ok {
			comp, args = c, args[1:]
		} else if l, ok := api.ParseLayout(args[0]); ok {
			layout, args = l, args[1:]
		}
	}
	return comp, layout, args
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "info":
		need(len(os.Args) == 3)
		if err := utils.RunInfo(os.Args[2], os.Stdout); err != nil {
			fail(err)
		}
	case "show":
		need(len(os.Args) == 3)
		if err := utils.RunShow(os.Args[2], os.Stdout); err != nil {
			fail(err)
		}
	case "bmp2png":
		need(len(os.Args) == 4 || len(os.Args) == 5)
		scale := 1
		if len(os.Args) == 5 {
			s, err := strconv.Atoi(os.Args[4])
			if err != nil {
				fail(err)
			}
			scale = s
		}
		if err := utils.RunBMP2PNG(os.Args[2], os.Args[3], scale); err != nil {
			fail(err)
		}
	case "bmp2glb":
		need(len(os.Args) == 4 || len(os.Args) == 5)
		var opts bmp.MeshOptions
		if len(os.Args) == 5 {
			key, err := api.ParseKeyColor(os.Args[4])
			if err != nil {
				fail(err)
			}
			opts = bmp.MeshOptions{SkipKey: true, Key: key}
		}
		if err := utils.RunBMP2GLB(os.Args[2], os.Args[3], opts); err != nil {
			fail(err)
		}
	case "bmp2pack":
		need(len(os.Args) >= 4)
		output := os.Args[2]
		comp, layout, inputs := packArgs(os.Args[3:])
		need(len(inputs) > 0)
		if err := utils.CreatePack(inputs, output, layout, comp); err != nil {
			fail(err)
		}
	case "pack2bmp":
		need(len(os.Args) == 4)
		if err := utils.UnpackToDir(os.Args[2], os.Args[3]); err != nil {
			fail(err)
		}
	case "pack2glb":
		need(len(os.Args) == 4)
		if err := utils.RunPACK2GLB(os.Args[2], os.Args[3]); err != nil {
			fail(err)
		}
	case "decodeall":
		need(len(os.Args) >= 3)
		if err := utils.RunDecodeAll(os.Args[2:], os.Stdout); err != nil {
			fail(err)
		}
	default:
		usage()
		os.Exit(1)
	}

	utils.Logger.Debug("operation completed", "cmd", os.Args[1])
}
