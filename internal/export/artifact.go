package export

import (
	"encoding/base64"
	"strings"
	"unicode"

	"github.com/hpungsan/autord/internal/errors"
)

// MIMEType is the media type of .pptx files.
const MIMEType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// Artifact is an exported presentation.
type Artifact struct {
	Bytes    []byte
	MIMEType string
	FileName string
}

// DataURI encodes the artifact as a base64 data URI.
func (a *Artifact) DataURI() string {
	mime := a.MIMEType
	if mime == "" {
		mime = MIMEType
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(a.Bytes)
}

// DecodeDataURI returns the payload of a base64 data URI.
func DecodeDataURI(uri string) (data []byte, mime string, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", errors.NewInvalidRequest("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", errors.NewInvalidRequest("data URI has no payload")
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return nil, "", errors.NewInvalidRequest("data URI is not base64 encoded")
	}
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", errors.NewInvalidRequest("data URI payload is not valid base64")
	}
	return data, mime, nil
}

// FileName derives a download name from a slide title.
func FileName(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.TrimSpace(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	name := strings.TrimSuffix(b.String(), "-")
	if name == "" {
		name = "presentation"
	}
	return name + ".pptx"
}
