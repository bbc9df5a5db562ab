package aggregate

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	apierrors "apiscan/internal/errors"
)

const writeBufferSize = 64 * 1024

// WriteStats summarises a written aggregate.
type WriteStats struct {
	Bytes  int64  `json:"bytes"`
	Digest string `json:"digest"`
}

// WriteAggregate concatenates sources, in the given order and byte-for-byte,
// into targetPath. Missing parent directories are created and an existing
// target is truncated. The first failure aborts the write; the target is
// closed on every path, so a failed run may leave a partial file behind.
func WriteAggregate(targetPath string, sources []string) (stats *WriteStats, err error) {
	if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
		return nil, apierrors.IO(apierrors.OutputDirFailed, "cannot create output directory", filepath.Dir(targetPath), err)
	}

	f, err := os.OpenFile(targetPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, apierrors.IO(apierrors.TargetOpenFailed, "cannot open aggregation target", targetPath, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			stats = nil
			err = apierrors.IO(apierrors.TargetCloseFailed, "cannot close aggregation target", targetPath, cerr)
		}
	}()

	hash := sha256.New()
	buf := bufio.NewWriterSize(f, writeBufferSize)
	out := io.MultiWriter(buf, hash)

	var total int64
	for _, src := range sources {
		n, err := appendFile(out, src, targetPath)
		total += n
		if err != nil {
			return nil, err
		}
	}

	if err := buf.Flush(); err != nil {
		return nil, apierrors.IO(apierrors.CopyFailed, "cannot write aggregation target", targetPath, err)
	}

	return &WriteStats{Bytes: total, Digest: hex.EncodeToString(hash.Sum(nil))}, nil
}

// appendFile streams src into w.
func appendFile(w io.Writer, src, targetPath string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, apierrors.IO(apierrors.SourceOpenFailed, "cannot open snapshot file", src, err)
	}
	defer in.Close()

	n, err := io.Copy(w, in)
	if err != nil {
		return n, apierrors.IO(apierrors.CopyFailed, "cannot copy "+src+" into aggregation target", targetPath, err)
	}
	return n, nil
}
