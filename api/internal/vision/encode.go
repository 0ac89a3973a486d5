package vision

import "encoding/base64"

// Encode turns raw image bytes into the text-safe form the backend expects.
// The bytes are not decoded or validated as an image.
func Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
