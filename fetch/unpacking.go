package fetch

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio"
	"github.com/hashicorp/go-multierror"
	"github.com/klauspost/pgzip"

	"github.com/safing/biodb/log"
)

const gzipSuffix = ".gz"

// ErrUnsafeArchivePath is returned when an archive entry would be unpacked outside of the destination.
var ErrUnsafeArchivePath = errors.New("archive entry escapes destination")

// UnpackGZIP unpacks a GZIP compressed reader r and returns a new reader.
func UnpackGZIP(r io.Reader) (io.ReadCloser, error) {
	return pgzip.NewReader(r)
}

// Unpack returns a reader of the decompressed content, if name indicates a
// compressed resource. Other resources are passed through.
func Unpack(r io.Reader, name string) (io.ReadCloser, error) {
	if strings.HasSuffix(name, gzipSuffix) {
		return UnpackGZIP(r)
	}
	return io.NopCloser(r), nil
}

// UnpackGZIPFile decompresses src into dst. dst is replaced atomically.
func UnpackGZIPFile(src, dst string) (err error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close() //nolint:errcheck

	gzipReader, err := UnpackGZIP(srcFile)
	if err != nil {
		return fmt.Errorf("failed to read gzip header of %s: %w", src, err)
	}
	defer gzipReader.Close() //nolint:errcheck

	atomicFile, err := renameio.TempFile(filepath.Dir(dst), dst)
	if err != nil {
		return fmt.Errorf("could not create temp file for unpacking: %w", err)
	}
	defer atomicFile.Cleanup() //nolint:errcheck

	n, err := io.Copy(atomicFile, gzipReader)
	if err != nil {
		return fmt.Errorf("failed to unpack %s: %w", src, err)
	}

	err = atomicFile.CloseAtomicallyReplace()
	if err != nil {
		return fmt.Errorf("failed to finalize file %s: %w", dst, err)
	}

	log.Debugf("fetch: unpacked %s to %s (%d bytes)", src, dst, n)
	return nil
}

// UntarGZ unpacks the gzip compressed tar archive src into dstDir. All
// entries are attempted, errors of individual entries are collected.
func UntarGZ(src, dstDir string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close() //nolint:errcheck

	gzipReader, err := UnpackGZIP(srcFile)
	if err != nil {
		return fmt.Errorf("failed to read gzip header of %s: %w", src, err)
	}
	defer gzipReader.Close() //nolint:errcheck

	cleanDst := filepath.Clean(dstDir) + string(filepath.Separator)

	var multierr *multierror.Error
	tarReader := tar.NewReader(gzipReader)
	for {
		header, err := tarReader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			multierr = multierror.Append(multierr, fmt.Errorf("failed to read %s: %w", src, err))
			break
		}

		dstPath := filepath.Join(dstDir, filepath.FromSlash(header.Name)) //nolint:gosec // checked below
		if !strings.HasPrefix(dstPath, cleanDst) {
			multierr = multierror.Append(multierr, fmt.Errorf("%s: %w", header.Name, ErrUnsafeArchivePath))
			continue
		}

		switch header.Typeflag {
		case tar.TypeDir:
			err = os.MkdirAll(dstPath, 0o755)
		case tar.TypeReg:
			err = copyFromTarArchive(tarReader, dstPath)
		default:
			log.Tracef("fetch: skipping archive entry %s of type %c", header.Name, header.Typeflag)
		}
		if err != nil {
			multierr = multierror.Append(multierr, fmt.Errorf("failed to unpack %s: %w", header.Name, err))
		}
	}

	return multierr.ErrorOrNil()
}

func copyFromTarArchive(r io.Reader, dstPath string) error {
	err := os.MkdirAll(filepath.Dir(dstPath), 0o755)
	if err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer dstFile.Close() //nolint:errcheck

	// Copy full file from archive to dst.
	if _, err := io.Copy(dstFile, r); err != nil { //nolint:gosec // archives are trusted upstream dumps
		return err
	}

	return nil
}
