// codec.go

package gourdiansession

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const (
	headerAlgorithm = "HS256"
	headerType      = "JWT"

	// maxTokenLength bounds the work done on attacker-supplied input.
	maxTokenLength = 8 << 10
)

// segmentParser decodes token segments as unpadded, strict base64url.
var segmentParser = jwt.NewParser(jwt.WithStrictDecoding())

// Header is the fixed token header.
type Header struct {
	Algorithm string `json:"alg"`
	Type      string `json:"typ"`
}

// defaultHeader is the only header tokens are issued with or accepted under.
var defaultHeader = Header{Algorithm: headerAlgorithm, Type: headerType}

// canonicalHeader is the JSON encoding of defaultHeader. A header segment
// must decode to exactly these bytes, so differently cased, repeated or
// reordered keys are rejected.
var canonicalHeader = []byte(`{"alg":"` + headerAlgorithm + `","typ":"` + headerType + `"}`)

// Payload is the token body.
//
// Fields:
//   - User: Username the token was issued to
//   - Auth: Credential fingerprint or encrypted credential, depending on the variant
//   - ExpiresAt: Expiration as unix seconds
type Payload struct {
	User      string `json:"user"`
	Auth      string `json:"auth"`
	ExpiresAt int64  `json:"exp"`
}

// wirePayload distinguishes a missing exp from a zero one.
type wirePayload struct {
	User      string `json:"user"`
	Auth      string `json:"auth"`
	ExpiresAt *int64 `json:"exp"`
}

// rawToken is a token split into its segments. Only the signature has been
// decoded; header and payload are still untrusted base64url text.
type rawToken struct {
	header        string
	payload       string
	signingString string
	signature     []byte
}

// encodeSegment marshals v to JSON and returns it as unpadded base64url.
func encodeSegment(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// encodeToken builds the signing string from header and payload, signs it
// and joins the three segments.
func encodeToken(header Header, payload Payload, key []byte) (string, error) {
	headerSeg, err := encodeSegment(header)
	if err != nil {
		return "", fmt.Errorf("failed to encode token header: %w", err)
	}

	payloadSeg, err := encodeSegment(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode token payload: %w", err)
	}

	signingString := headerSeg + "." + payloadSeg
	signature, err := sign(signingString, key)
	if err != nil {
		return "", err
	}

	return signingString + "." + signature, nil
}

// splitToken checks the token shape and decodes the signature segment.
func splitToken(token string) (*rawToken, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrMalformedToken)
	}
	if len(token) > maxTokenLength {
		return nil, fmt.Errorf("%w: token exceeds %d bytes", ErrMalformedToken, maxTokenLength)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedToken, len(parts))
	}
	for i, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("%w: segment %d is empty", ErrMalformedToken, i)
		}
	}

	signature, err := segmentParser.DecodeSegment(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: signature segment: %w", ErrMalformedToken, err)
	}

	return &rawToken{
		header:        parts[0],
		payload:       parts[1],
		signingString: parts[0] + "." + parts[1],
		signature:     signature,
	}, nil
}

// decodeHeader decodes the header segment and rejects anything but the
// default header. Call only after the signature has been verified.
func decodeHeader(segment string) (Header, error) {
	data, err := segmentParser.DecodeSegment(segment)
	if err != nil {
		return Header{}, fmt.Errorf("%w: header: %w", ErrMalformedToken, err)
	}

	var header Header
	if err := decodeJSON(data, &header); err != nil {
		return Header{}, fmt.Errorf("%w: header: %w", ErrMalformedToken, err)
	}
	if header != defaultHeader {
		return Header{}, fmt.Errorf("%w: alg=%q typ=%q", ErrUnsupportedAlgorithm, header.Algorithm, header.Type)
	}
	if !bytes.Equal(data, canonicalHeader) {
		return Header{}, fmt.Errorf("%w: non-canonical header %q", ErrUnsupportedAlgorithm, data)
	}
	return header, nil
}

// decodePayload decodes the payload segment and checks required fields.
// Call only after the signature has been verified.
func decodePayload(segment string) (*Payload, error) {
	var wire wirePayload
	if err := decodeJSONSegment(segment, &wire); err != nil {
		return nil, fmt.Errorf("%w: payload: %w", ErrMalformedToken, err)
	}

	switch {
	case wire.User == "":
		return nil, fmt.Errorf("%w: payload is missing user", ErrMalformedToken)
	case wire.Auth == "":
		return nil, fmt.Errorf("%w: payload is missing auth", ErrMalformedToken)
	case wire.ExpiresAt == nil:
		return nil, fmt.Errorf("%w: payload is missing exp", ErrMalformedToken)
	}

	return &Payload{
		User:      wire.User,
		Auth:      wire.Auth,
		ExpiresAt: *wire.ExpiresAt,
	}, nil
}

// decodeJSONSegment base64url-decodes segment and unmarshals exactly one
// JSON object with no unknown fields into v.
func decodeJSONSegment(segment string, v any) error {
	data, err := segmentParser.DecodeSegment(segment)
	if err != nil {
		return err
	}
	return decodeJSON(data, v)
}

// decodeJSON unmarshals exactly one JSON object with no unknown fields.
func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("unexpected data after JSON object")
	}
	return nil
}
