package content

import (
	"path"
	"strings"
)

// Kind is the closed set of renderable content categories. Rendering and
// icon selection dispatch on Kind, never on the raw tag string.
type Kind int

const (
	KindOther Kind = iota
	KindImage
	KindVideo
	KindDocument
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	case KindDocument:
		return "document"
	}
	return "other"
}

var (
	imageExts = map[string]bool{"png": true, "jpg": true, "jpeg": true, "gif": true, "bmp": true, "webp": true}
	videoExts = map[string]bool{"mp4": true, "webm": true, "ogg": true}
	docExts   = map[string]bool{"pdf": true, "doc": true, "docx": true, "ppt": true, "pptx": true}
)

// ParseKind classifies content by its declared type tag, falling back to the
// file extension. Tags are the loose strings uploads carry ("img", "docs",
// "pdf", ...).
func ParseKind(tag, fileURL string) Kind {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "img", "image":
		return KindImage
	case "video":
		return KindVideo
	case "docs", "document", "pdf":
		return KindDocument
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(fileURL), "."))
	switch {
	case imageExts[ext]:
		return KindImage
	case videoExts[ext]:
		return KindVideo
	case docExts[ext]:
		return KindDocument
	}
	return KindOther
}
