package fetcher

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// readLines reads r line by line and joins the lines with "\n", appending a
// terminator after the last line too. \n, \r\n and a lone \r all end a line.
// Reading more than limit bytes is an error.
func readLines(r io.Reader, limit int64) (string, error) {
	cr := &countingReader{r: io.LimitReader(r, limit+1)}

	sc := bufio.NewScanner(cr)
	sc.Buffer(make([]byte, 0, 64*1024), int(limit)+1)
	sc.Split(scanLines)

	var b strings.Builder
	for sc.Scan() {
		b.Write(sc.Bytes())
		b.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	if cr.n > limit {
		return "", fmt.Errorf("body exceeds %d bytes", limit)
	}
	return b.String(), nil
}

func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		// A trailing \r may be the first half of \r\n.
		if atEOF {
			return i + 1, data[:i], nil
		}
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
