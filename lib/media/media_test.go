// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package media

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/kernelbridge/lib/jupyter"
)

// pngHeader is enough of a PNG for content checks; the store never
// parses image data.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13}

func TestClassifyPriority(t *testing.T) {
	tests := []struct {
		name   string
		bundle jupyter.MimeBundle
		kind   Kind
		mime   string
	}{
		{"png wins", jupyter.MimeBundle{MimePlain: "<Figure>", MimePNG: "AAAA", MimeSVG: "<svg/>"}, KindImage, MimePNG},
		{"jpeg before svg", jupyter.MimeBundle{MimeJPEG: "AAAA", MimeSVG: "<svg/>"}, KindImage, MimeJPEG},
		{"svg before markdown", jupyter.MimeBundle{MimeSVG: "<svg/>", MimeMarkdown: "# x"}, KindImage, MimeSVG},
		{"markdown before plain", jupyter.MimeBundle{MimeMarkdown: "**b**", MimePlain: "b"}, KindMarkdown, MimeMarkdown},
		{"plain", jupyter.MimeBundle{MimePlain: "2", "text/html": "<b>2</b>"}, KindText, MimePlain},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rendering, ok := Classify(test.bundle)
			if !ok {
				t.Fatal("Classify found nothing")
			}
			if rendering.Kind != test.kind || rendering.MimeType != test.mime {
				t.Fatalf("got %s %s, want %s %s", rendering.Kind, rendering.MimeType, test.kind, test.mime)
			}
		})
	}
}

func TestClassifyNothingDisplayable(t *testing.T) {
	if _, ok := Classify(jupyter.MimeBundle{"text/html": "<p>x</p>", "application/json": map[string]any{}}); ok {
		t.Fatal("Classify reported a rendering for an html-only bundle")
	}
}

func TestStoreWritesDecodedPNG(t *testing.T) {
	store := &Store{Directory: t.TempDir()}
	encoded := base64.StdEncoding.EncodeToString(pngHeader)
	// Kernels wrap base64 payloads; the store must accept that.
	wrapped := encoded[:8] + "\n" + encoded[8:]

	path, err := store.Write(Rendering{Kind: KindImage, MimeType: MimePNG, Data: wrapped})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Dir(path) != store.Directory || !strings.HasSuffix(path, ".png") {
		t.Fatalf("path = %q", path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(content, pngHeader) {
		t.Fatalf("file content = %x, want %x", content, pngHeader)
	}

	again, err := store.Write(Rendering{Kind: KindImage, MimeType: MimePNG, Data: encoded})
	if err != nil {
		t.Fatalf("second Write: %v", err)
	}
	if again != path {
		t.Fatalf("identical image stored at %q and %q", path, again)
	}
	entries, err := os.ReadDir(store.Directory)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("directory holds %d entries, want 1", len(entries))
	}
}

func TestStoreWritesSVGText(t *testing.T) {
	store := &Store{Directory: t.TempDir()}
	const svg = `<svg xmlns="http://www.w3.org/2000/svg"><rect width="1" height="1"/></svg>`
	path, err := store.Write(Rendering{Kind: KindImage, MimeType: MimeSVG, Data: svg})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.HasSuffix(path, ".svg") {
		t.Fatalf("path = %q, want .svg suffix", path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(content) != svg {
		t.Fatalf("content = %q", content)
	}
}

func TestStoreRejectsBadPayload(t *testing.T) {
	store := &Store{Directory: t.TempDir()}
	if _, err := store.Write(Rendering{Kind: KindImage, MimeType: MimePNG, Data: "not base64!"}); err == nil {
		t.Fatal("Write accepted invalid base64")
	}
	if _, err := store.Write(Rendering{Kind: KindText, MimeType: MimePlain, Data: "2"}); err == nil {
		t.Fatal("Write accepted a text rendering")
	}
}

func TestStoreDistinctContentDistinctPaths(t *testing.T) {
	store := &Store{Directory: t.TempDir()}
	first, err := store.Write(Rendering{Kind: KindImage, MimeType: MimeSVG, Data: "<svg>1</svg>"})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	second, err := store.Write(Rendering{Kind: KindImage, MimeType: MimeSVG, Data: "<svg>2</svg>"})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if first == second {
		t.Fatalf("different content shared path %q", first)
	}
}
