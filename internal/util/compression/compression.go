// Package compression wraps the codecs used for stored area documents.
package compression

type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)

	// Encoding is the HTTP Content-Encoding token for the codec.
	Encoding() string
}
