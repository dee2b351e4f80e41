package readfiles

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/notargets/goles/mesh"
	"github.com/notargets/goles/types"
)

var errEarlyEOF = errors.New("early end of file")

// ReadMeshFile reads an SU2 (.su2) or Gambit neutral (.neu) mesh, selected by file extension.
func ReadMeshFile(filename string, ProcLimit int, verbose bool) (m *mesh.Mesh, err error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".su2":
		return ReadSU2File(filename, ProcLimit, verbose)
	case ".neu":
		return ReadGambitFile(filename, ProcLimit, verbose)
	}
	return nil, fmt.Errorf("unrecognized mesh file extension for %s, need .su2 or .neu", filename)
}

/*
The line readers below panic on malformed input, the exported readers recover and return the
panic as an error annotated with the line number.
*/
type lineReader struct {
	*bufio.Reader
	lineNum int
	pending []string
}

// unread pushes a line back, the next call to nextLine returns it.
func (lr *lineReader) unread(line string) {
	lr.pending = append(lr.pending, line)
	lr.lineNum--
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{Reader: bufio.NewReader(r)}
}

func recoverReadError(lr *lineReader, err *error) {
	if r := recover(); r != nil {
		if e, ok := r.(error); ok {
			*err = fmt.Errorf("line %d: %w", lr.lineNum, e)
		} else {
			*err = fmt.Errorf("line %d: %v", lr.lineNum, r)
		}
	}
}

// nextLine returns the next line without its line ending, ok is false at the end of input.
func (lr *lineReader) nextLine() (line string, ok bool) {
	var (
		err error
	)
	if n := len(lr.pending); n > 0 {
		line, lr.pending = lr.pending[n-1], lr.pending[:n-1]
		lr.lineNum++
		return line, true
	}
	line, err = lr.ReadString('\n')
	if err != nil {
		if err != io.EOF {
			panic(err)
		}
		if len(line) == 0 {
			return "", false
		}
	}
	lr.lineNum++
	return strings.TrimRight(line, "\r\n"), true
}

func getLine(lr *lineReader) (line string) {
	var ok bool
	if line, ok = lr.nextLine(); !ok {
		panic(errEarlyEOF)
	}
	return
}

func skipLines(n int, lr *lineReader) {
	for i := 0; i < n; i++ {
		getLine(lr)
	}
}

// uniqueNodes flattens facet vertex lists into a sorted set.
func uniqueNodes(facets [][]int) (nodes []int) {
	seen := make(map[int]struct{})
	for _, f := range facets {
		for _, v := range f {
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				nodes = append(nodes, v)
			}
		}
	}
	sort.Ints(nodes)
	return
}

func logMesh(format string, m *mesh.Mesh, bcs map[types.BCTAG][]int) {
	log.WithFields(log.Fields{
		"format":     format,
		"dim":        m.Dim,
		"vertices":   m.NVerts,
		"elements":   m.K,
		"boundaries": len(bcs),
	}).Info("mesh read")
}
