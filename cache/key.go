package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
)

// SheetKey fingerprints one sheet of a file by path, size and modification
// time, so any edit to the file invalidates its entries.
func SheetKey(path, sheet string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%d\x00%d", abs, info.Size(), info.ModTime().UnixNano())
	return "sheet:" + hex.EncodeToString(h.Sum(nil)[:16]) + ":" + sheet, nil
}
