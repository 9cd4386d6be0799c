package extract

import (
	"fmt"
	"io"

	"github.com/roivaz/repometa/internal/logging"
)

// Progress counts examined records and prints a line every N of them.
type Progress struct {
	every int
	count int
	out   io.Writer
	log   logging.Logger
}

func NewProgress(every int, out io.Writer, log logging.Logger) *Progress {
	return &Progress{every: every, out: out, log: log}
}

// Tick records one more examined record.
func (p *Progress) Tick() {
	p.count++
	if p.every <= 0 || p.count%p.every != 0 {
		return
	}
	if p.out != nil {
		fmt.Fprintf(p.out, "%d repos processed\n", p.count)
	}
	p.log.Debug("progress", "scanned", p.count)
}

func (p *Progress) Count() int {
	return p.count
}
