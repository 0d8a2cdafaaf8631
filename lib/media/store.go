// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package media

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"
)

// imageDomainKey is the BLAKE3 key for image file names: the ASCII
// domain name zero-padded to 32 bytes.
var imageDomainKey = [32]byte{
	'k', 'e', 'r', 'n', 'e', 'l', 'b', 'r', 'i', 'd', 'g', 'e', '.', 'i', 'm', 'a',
	'g', 'e', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

var extensions = map[string]string{
	MimePNG:  ".png",
	MimeJPEG: ".jpg",
	MimeSVG:  ".svg",
}

// Store writes image renderings into Directory. Files are named by
// the keyed BLAKE3 hash of their decoded bytes, so a figure that is
// displayed repeatedly maps to one file. Files are never removed by
// the store: the client owns them once their path has been reported.
type Store struct {
	// Directory receives image files. Empty means os.TempDir().
	Directory string
}

func (s *Store) directory() string {
	if s.Directory != "" {
		return s.Directory
	}
	return os.TempDir()
}

// Write materializes an image rendering and returns the file path.
func (s *Store) Write(rendering Rendering) (string, error) {
	extension, ok := extensions[rendering.MimeType]
	if !ok {
		return "", fmt.Errorf("media: %s is not an image type", rendering.MimeType)
	}
	content, err := decode(rendering)
	if err != nil {
		return "", err
	}

	sum := hash(content)
	path := filepath.Join(s.directory(), "kernel-bridge-"+hex.EncodeToString(sum[:16])+extension)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("media: checking %s: %w", path, err)
	}

	if err := os.MkdirAll(s.directory(), 0o755); err != nil {
		return "", fmt.Errorf("media: creating %s: %w", s.directory(), err)
	}
	// Write to a temporary name and rename, so a reader never sees a
	// partially written image at the reported path.
	file, err := os.CreateTemp(s.directory(), ".kernel-bridge-*"+extension)
	if err != nil {
		return "", fmt.Errorf("media: creating image file: %w", err)
	}
	temporary := file.Name()
	if _, err := file.Write(content); err != nil {
		file.Close()
		os.Remove(temporary)
		return "", fmt.Errorf("media: writing image file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporary)
		return "", fmt.Errorf("media: writing image file: %w", err)
	}
	if err := os.Chmod(temporary, 0o644); err != nil {
		os.Remove(temporary)
		return "", fmt.Errorf("media: setting image file mode: %w", err)
	}
	if err := os.Rename(temporary, path); err != nil {
		os.Remove(temporary)
		return "", fmt.Errorf("media: renaming image file: %w", err)
	}
	return path, nil
}

// decode returns the file bytes of a rendering. Raster images arrive
// base64 encoded, often wrapped at 76 columns; SVG arrives as text.
func decode(rendering Rendering) ([]byte, error) {
	if rendering.MimeType == MimeSVG {
		return []byte(rendering.Data), nil
	}
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, rendering.Data)
	content, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("media: decoding %s payload: %w", rendering.MimeType, err)
	}
	return content, nil
}

func hash(content []byte) [32]byte {
	hasher, err := blake3.NewKeyed(imageDomainKey[:])
	if err != nil {
		// NewKeyed only fails on a key that is not 32 bytes.
		panic("media: " + err.Error())
	}
	hasher.Write(content)
	var sum [32]byte
	copy(sum[:], hasher.Sum(nil))
	return sum
}
