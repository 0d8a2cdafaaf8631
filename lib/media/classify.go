// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package media

import (
	"github.com/bureau-foundation/kernelbridge/lib/jupyter"
)

// Kind is the client-visible category of a rendering.
type Kind int

const (
	KindImage Kind = iota + 1
	KindMarkdown
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindMarkdown:
		return "markdown"
	case KindText:
		return "text"
	default:
		return "none"
	}
}

// MIME types the bridge reports, in priority order.
const (
	MimePNG      = "image/png"
	MimeJPEG     = "image/jpeg"
	MimeSVG      = "image/svg+xml"
	MimeMarkdown = "text/markdown"
	MimePlain    = "text/plain"
)

var priority = []struct {
	mimeType string
	kind     Kind
}{
	{MimePNG, KindImage},
	{MimeJPEG, KindImage},
	{MimeSVG, KindImage},
	{MimeMarkdown, KindMarkdown},
	{MimePlain, KindText},
}

// Rendering is the representation chosen from a bundle. For raster
// images Data is the base64 payload as sent by the kernel; for every
// other kind it is the text itself.
type Rendering struct {
	Kind     Kind
	MimeType string
	Data     string
}

// Classify returns the highest priority representation in bundle.
// It returns false when the bundle holds nothing the client can show.
func Classify(bundle jupyter.MimeBundle) (Rendering, bool) {
	for _, candidate := range priority {
		data, ok := bundle.Text(candidate.mimeType)
		if !ok {
			continue
		}
		return Rendering{Kind: candidate.kind, MimeType: candidate.mimeType, Data: data}, true
	}
	return Rendering{}, false
}
