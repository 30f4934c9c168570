package domain

import (
	"encoding/base64"
	"errors"
	"time"
)

// File is a stored object in a blob-store bucket.
type File struct {
	ID           string    `json:"$id"`
	BucketID     string    `json:"bucketId"`
	Name         string    `json:"name"`
	MimeType     string    `json:"mimeType"`
	SizeOriginal int64     `json:"sizeOriginal"`
	CreatedAt    time.Time `json:"$createdAt"`
}

// FileList is a page of files plus the unpaged total.
type FileList struct {
	Total int    `json:"total"`
	Files []File `json:"files"`
}

// MediaKind selects which picker the user is shown.
type MediaKind string

const (
	MediaImage    MediaKind = "image"
	MediaVideo    MediaKind = "video"
	MediaAudio    MediaKind = "audio"
	MediaDocument MediaKind = "document"
)

// Asset is one entry of a file-picker result.
type Asset struct {
	URI      string `json:"uri"`
	Name     string `json:"name,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

// UploadPayload is a file normalized for the blob store. Browser hosts fill
// Data; native hosts fill Base64 and set Encoded, so an empty file is still
// content. It is consumed by exactly one upload.
type UploadPayload struct {
	SourceURI string
	Name      string
	MimeType  string
	Size      int64
	Data      []byte
	Base64    string
	Encoded   bool
}

// Bytes returns the raw content. Base64 is decoded only when Data is unset.
func (p *UploadPayload) Bytes() ([]byte, error) {
	if p.Data != nil {
		return p.Data, nil
	}
	if p.Base64 == "" && !p.Encoded {
		return nil, errors.New("upload payload has no content")
	}
	b, err := base64.StdEncoding.DecodeString(p.Base64)
	if err != nil {
		return nil, err
	}
	if b == nil {
		b = []byte{}
	}
	return b, nil
}
