package pkg

import (
	"archive/tar"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/rotisserie/eris"
	"github.com/ulikunitz/xz"
)

// PackDist packs the flat dist directory into a compressed tarball. The
// compression is picked from the archive name: .tar.xz or .tar.br.
// It returns the size of the finished archive.
func PackDist(distDir, archivePath string) (int64, error) {
	entries, err := ioutil.ReadDir(distDir)
	if err != nil {
		return 0, eris.Wrapf(err, "Failed to read dist directory %s", distDir)
	}

	handle, err := os.Create(archivePath)
	if err != nil {
		return 0, eris.Wrapf(err, "Failed to create %s", archivePath)
	}
	defer handle.Close()

	compressor, err := getCompressor(handle, archivePath)
	if err != nil {
		return 0, err
	}

	archive := tar.NewWriter(compressor)
	buf := make([]byte, 4096)
	for _, entry := range entries {
		// the dist directory is flat; anything else in it is a mistake
		if entry.IsDir() {
			continue
		}

		itemPath := filepath.Join(distDir, entry.Name())
		header, err := tar.FileInfoHeader(entry, "")
		if err != nil {
			return 0, eris.Wrapf(err, "Failed to build archive entry for %s", itemPath)
		}

		err = archive.WriteHeader(header)
		if err != nil {
			return 0, eris.Wrapf(err, "Failed to write archive entry for %s", itemPath)
		}

		item, err := os.Open(itemPath)
		if err != nil {
			return 0, eris.Wrapf(err, "Failed to open %s", itemPath)
		}

		_, err = io.CopyBuffer(archive, item, buf)
		item.Close()
		if err != nil {
			return 0, eris.Wrapf(err, "Failed to pack %s", itemPath)
		}
	}

	err = archive.Close()
	if err != nil {
		return 0, eris.Wrap(err, "Failed to finish archive")
	}

	err = compressor.Close()
	if err != nil {
		return 0, eris.Wrap(err, "Failed to finish compression")
	}

	info, err := handle.Stat()
	if err != nil {
		return 0, eris.Wrapf(err, "Failed to check %s", archivePath)
	}

	err = handle.Close()
	if err != nil {
		return 0, eris.Wrapf(err, "Failed to finish writing %s", archivePath)
	}

	return info.Size(), nil
}

func getCompressor(w io.Writer, archivePath string) (io.WriteCloser, error) {
	if strings.HasSuffix(archivePath, ".tar.xz") {
		compressor, err := xz.NewWriter(w)
		if err != nil {
			return nil, eris.Wrap(err, "Failed to initialize xz writer")
		}
		return compressor, nil
	}

	if strings.HasSuffix(archivePath, ".tar.br") {
		return brotli.NewWriterLevel(w, brotli.BestCompression), nil
	}

	return nil, eris.Errorf("Archive format of %s not supported (expected .tar.xz or .tar.br)", archivePath)
}
