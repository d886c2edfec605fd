package cache

import (
	"bytes"
	"compress/gzip"
	"io"

	"github.com/bytedance/sonic"
)

// Serializer encodes cached values
type Serializer interface {
	Serialize(v interface{}) ([]byte, error)
	Deserialize(data []byte, v interface{}) error
}

// SonicSerializer implements Serializer with sonic JSON
type SonicSerializer struct {
	api sonic.API
}

// NewSonicSerializer creates a sonic-backed serializer
func NewSonicSerializer() *SonicSerializer {
	return &SonicSerializer{api: sonic.ConfigStd}
}

func (s *SonicSerializer) Serialize(v interface{}) ([]byte, error) {
	return s.api.Marshal(v)
}

func (s *SonicSerializer) Deserialize(data []byte, v interface{}) error {
	return s.api.Unmarshal(data, v)
}

// CompressedSerializer gzips the output of another serializer. Sheets are
// mostly repeated strings and shrink well.
type CompressedSerializer struct {
	inner Serializer
	level int
}

// NewCompressedSerializer wraps s; an out-of-range level selects the default
func NewCompressedSerializer(s Serializer, level int) *CompressedSerializer {
	if level < gzip.BestSpeed || level > gzip.BestCompression {
		level = gzip.DefaultCompression
	}
	return &CompressedSerializer{inner: s, level: level}
}

func (c *CompressedSerializer) Serialize(v interface{}) ([]byte, error) {
	data, err := c.inner.Serialize(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, c.level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *CompressedSerializer) Deserialize(data []byte, v interface{}) error {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer r.Close()

	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return c.inner.Deserialize(raw, v)
}
