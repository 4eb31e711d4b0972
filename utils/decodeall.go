package utils

import (
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/voxelsplace/bmpkit/bmp"
)

// DecodeResult is the outcome of decoding one file.
type DecodeResult struct {
	Path     string
	Width    int
	Height   int
	Checksum uint64
	Err      error
}

// DecodeAll decodes every path on a pool of workers and returns the results
// in input order.
func DecodeAll(paths []string) []DecodeResult {
	results := make([]DecodeResult, len(paths))
	jobs := make(chan int)
	var wg sync.WaitGroup
	workers := min(runtime.NumCPU(), len(paths))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res := DecodeResult{Path: paths[i]}
				img, err := bmp.Decode(paths[i])
				if err != nil {
					res.Err = err
				} else {
					res.Width, res.Height, res.Checksum = img.Width(), img.Height(), img.Checksum()
				}
				results[i] = res
			}
		}()
	}
	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}

// RunDecodeAll decodes the given files in parallel and writes one report
// line per file. It returns an error if any file failed.
func RunDecodeAll(paths []string, w io.Writer) error {
	if len(paths) == 0 {
		return errors.New("no .bmp files provided")
	}
	start := time.Now()
	results := DecodeAll(paths)
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(w, "%s\tERROR\t%v\n", r.Path, r.Err)
			continue
		}
		fmt.Fprintf(w, "%s\t%dx%d\t%016x\n", r.Path, r.Width, r.Height, r.Checksum)
	}
	Logger.Info("decoded", "files", len(paths), "failed", failed, "ms", time.Since(start).Milliseconds())
	if failed > 0 {
		return errors.Errorf("%d of %d files failed to decode", failed, len(paths))
	}
	return nil
}
