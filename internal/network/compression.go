// internal/network/compression.go
package network

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
)

// acceptEncoding is advertised on requests that don't set their own.
const acceptEncoding = "br, gzip"

var (
	gzipReaderPool = sync.Pool{
		New: func() interface{} { return new(gzip.Reader) },
	}
	brotliReaderPool = sync.Pool{
		// brotli.NewReader(nil) yields a reader ready for Reset.
		New: func() interface{} { return brotli.NewReader(nil) },
	}
)

// CompressionTransport negotiates brotli or gzip with the server and hands
// callers a decoded body.
type CompressionTransport struct {
	Transport http.RoundTripper
}

// NewCompressionTransport wraps base, defaulting to http.DefaultTransport.
func NewCompressionTransport(base http.RoundTripper) *CompressionTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &CompressionTransport{Transport: base}
}

func (t *CompressionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Accept-Encoding") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("Accept-Encoding", acceptEncoding)
	}

	resp, err := t.Transport.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if err := decompressResponse(resp); err != nil {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("failed to initialize response decompression: %w", err)
	}
	return resp, nil
}

// pooledBody closes both the decoder and the wire body, then returns the
// decoder to its pool.
type pooledBody struct {
	io.Reader
	wire    io.ReadCloser
	release func()
}

func (b *pooledBody) Close() error {
	if b.release != nil {
		b.release()
		b.release = nil
	}
	return b.wire.Close()
}

// decompressResponse unwraps Content-Encoding layers in reverse order of
// application. On error the body may be partly consumed and must be discarded.
func decompressResponse(resp *http.Response) error {
	if resp == nil || resp.Body == nil {
		return nil
	}
	encodings := resp.Header.Values("Content-Encoding")
	if len(encodings) == 0 {
		return nil
	}

	for i := len(encodings) - 1; i >= 0; i-- {
		switch enc := strings.ToLower(strings.TrimSpace(encodings[i])); enc {
		case "gzip":
			zr := gzipReaderPool.Get().(*gzip.Reader)
			if err := zr.Reset(resp.Body); err != nil {
				gzipReaderPool.Put(zr)
				return fmt.Errorf("gzip initialization error: %w", err)
			}
			resp.Body = &pooledBody{Reader: zr, wire: resp.Body, release: func() {
				// A nil Reset would try to read a header; an empty reader fails cleanly.
				_ = zr.Reset(bytes.NewReader(nil))
				gzipReaderPool.Put(zr)
			}}
		case "br":
			br := brotliReaderPool.Get().(*brotli.Reader)
			if err := br.Reset(resp.Body); err != nil {
				brotliReaderPool.Put(br)
				return fmt.Errorf("brotli initialization error: %w", err)
			}
			resp.Body = &pooledBody{Reader: br, wire: resp.Body, release: func() {
				_ = br.Reset(bytes.NewReader(nil))
				brotliReaderPool.Put(br)
			}}
		case "identity", "":
		default:
			return errors.New("unsupported Content-Encoding layer: " + enc)
		}
	}

	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	resp.Uncompressed = true
	return nil
}
