package pairtree

import (
	"io"

	"github.com/pkg/errors"
)

const (
	kiB = 1024
	miB = 1024 * kiB

	// DefaultBufferSize is the chunk size PutStream reads with when
	// none is given.
	DefaultBufferSize = 8 * kiB
)

// copyChunks copies src to dst reading at most bufSize bytes at a
// time, so src can be arbitrarily large.  Unlike io.CopyBuffer it
// never hands the copy off to a ReaderFrom or WriterTo.
func copyChunks(dst io.Writer, src io.Reader, bufSize int) (written int64, err error) {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	buf := make([]byte, bufSize)
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			nw, werr := dst.Write(buf[:n])
			written += int64(nw)
			if werr != nil {
				return written, werr
			}
			if nw != n {
				return written, io.ErrShortWrite
			}
		}
		if errors.Cause(rerr) == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}
