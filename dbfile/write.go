package dbfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// HUI is one reported high-utility itemset, items in the original
// (pre-rename) namespace as spec.md §6 requires for output.
type HUI struct {
	Items   []uint32
	Utility uint64
}

// Write emits huis in the `<item_1> ... <item_k> #UTIL: <utility>`
// format to path. Paths ending in ".gz" are transparently gzip-
// compressed — a supplemented feature for large result sets, not part
// of the distilled grammar.
func Write(path string, huis []HUI) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var w io.Writer = f
	if strings.HasSuffix(path, ".gz") {
		gz := gzip.NewWriter(f)
		defer gz.Close()
		w = gz
	}
	return WriteTo(w, huis)
}

// WriteTo writes the same format to an arbitrary writer.
func WriteTo(w io.Writer, huis []HUI) error {
	bw := bufio.NewWriter(w)
	for _, h := range huis {
		for _, item := range h.Items {
			bw.WriteString(strconv.FormatUint(uint64(item), 10))
			bw.WriteByte(' ')
		}
		bw.WriteString("#UTIL: ")
		bw.WriteString(strconv.FormatUint(h.Utility, 10))
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("dbfile: write: %w", err)
	}
	return nil
}
