package utils

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/voxelsplace/bmpkit/bmp"
)

// CreatePack reads .bmp files and writes a .bmppack to outputFile.
// Every input must be a BMP the decoder accepts. Entries are named by file
// base name and sorted so the output does not depend on argument order.
func CreatePack(inputFiles []string, outputFile string, layout bmp.PackLayout, comp bmp.PackCompression) error {
	if len(inputFiles) == 0 {
		return errors.New("no .bmp files provided")
	}
	type item struct {
		entry bmp.PackEntry
		err   error
	}
	items := make([]item, len(inputFiles))

	var wg sync.WaitGroup
	for i := range inputFiles {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path := inputFiles[i]
			b, err := os.ReadFile(path)
			if err != nil {
				items[i].err = err
				return
			}
			items[i].entry, items[i].err = bmp.NewPackEntry(filepath.Base(path), b)
		}(i)
	}
	wg.Wait()

	pack := &bmp.Pack{Entries: make([]bmp.PackEntry, 0, len(items))}
	seen := make(map[string]string, len(items))
	for i, it := range items {
		if it.err != nil {
			return errors.Wrap(it.err, inputFiles[i])
		}
		if prev, ok := seen[it.entry.Name]; ok {
			return errors.Errorf("duplicate entry name %s (%s and %s)", it.entry.Name, prev, inputFiles[i])
		}
		seen[it.entry.Name] = inputFiles[i]
		pack.Entries = append(pack.Entries, it.entry)
	}
	pack.Sort()

	start := time.Now()
	data, err := pack.MarshalEx(layout, comp)
	if err != nil {
		return err
	}
	Logger.Info("pack compressed", "entries", len(pack.Entries), "layout", layout, "compression", comp,
		"bytes", len(data), "ms", time.Since(start).Milliseconds())
	return os.WriteFile(outputFile, data, 0o644)
}

// UnpackToDir writes .bmp files from a .bmppack into outputDir.
func UnpackToDir(packFile, outputDir string) error {
	data, err := os.ReadFile(packFile)
	if err != nil {
		return err
	}
	pack, _, err := bmp.UnmarshalPack(data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}
	// Parallel write
	var wg sync.WaitGroup
	errCh := make(chan error, len(pack.Entries))
	for _, e := range pack.Entries {
		wg.Add(1)
		go func(e bmp.PackEntry) {
			defer wg.Done()
			// names are base names on creation; never let one escape outputDir
			name := filepath.Base(filepath.Clean("/" + e.Name))
			if name == "/" || name == "." {
				errCh <- errors.Errorf("invalid entry name %q", e.Name)
				return
			}
			if err := os.WriteFile(filepath.Join(outputDir, name), e.Data, 0o644); err != nil {
				errCh <- err
			}
		}(e)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			return err
		}
	}
	Logger.Info("pack extracted", "entries", len(pack.Entries), "dir", outputDir)
	return nil
}

// UnpackToMemory returns names and raw .bmp bytes without writing to disk.
func UnpackToMemory(packFile string) ([]string, [][]byte, error) {
	data, err := os.ReadFile(packFile)
	if err != nil {
		return nil, nil, err
	}
	pack, _, err := bmp.UnmarshalPack(data)
	if err != nil {
		return nil, nil, err
	}
	names := make([]string, len(pack.Entries))
	blobs := make([][]byte, len(pack.Entries))
	for i, e := range pack.Entries {
		names[i] = e.Name
		blobs[i] = e.Data
	}
	return names, blobs, nil
}
