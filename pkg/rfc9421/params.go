package rfc9421

import (
	"encoding/base64"
	"regexp"
	"strconv"
	"strings"

	"github.com/openpayments-go/client/pkg/operrors"
)

// FormatSignatureInput renders the Signature-Input header member for
// params, e.g. sig=("@method" "@target-uri");created=1;keyid="k1";alg="ed25519".
// The label defaults to "sig" when params.Label is empty, matching this
// client's single fixed outgoing signature label.
func FormatSignatureInput(params SignatureParameters) string {
	label := params.Label
	if label == "" {
		label = "sig"
	}
	return label + "=" + componentListAndParams(params)
}

func componentListAndParams(params SignatureParameters) string {
	var b strings.Builder
	b.WriteByte('(')
	for i, name := range params.CoveredComponents {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strconv.Quote(strings.ToLower(name)))
	}
	b.WriteByte(')')
	if params.Created != 0 {
		b.WriteString(";created=")
		b.WriteString(strconv.FormatInt(params.Created, 10))
	}
	b.WriteString(";keyid=")
	b.WriteString(strconv.Quote(params.KeyID))
	b.WriteString(";alg=")
	b.WriteString(strconv.Quote(params.Algorithm))
	if params.Nonce != "" {
		b.WriteString(";nonce=")
		b.WriteString(strconv.Quote(params.Nonce))
	}
	if params.Expires != 0 {
		b.WriteString(";expires=")
		b.WriteString(strconv.FormatInt(params.Expires, 10))
	}
	return b.String()
}

// FormatSignature renders the Signature header member: label=:BASE64SIG:.
func FormatSignature(label string, signature []byte) string {
	if label == "" {
		label = "sig"
	}
	return label + "=:" + base64.StdEncoding.EncodeToString(signature) + ":"
}

var (
	componentsRE = regexp.MustCompile(`^([A-Za-z0-9_-]+)=\(([^)]*)\)(.*)$`)
	paramRE      = regexp.MustCompile(`;\s*([a-zA-Z0-9_]+)=("(?:[^"\\]|\\.)*"|[^;]+)`)
	quotedItemRE = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`)
)

// ParseSignatureInput parses a single Signature-Input member (the part
// after any comma-splitting the caller already performed) into its label
// and SignatureParameters.
func ParseSignatureInput(member string) (string, SignatureParameters, error) {
	member = strings.TrimSpace(member)
	m := componentsRE.FindStringSubmatch(member)
	if m == nil {
		return "", SignatureParameters{}, operrors.ErrMalformedSignatureInput
	}
	label := m[1]
	componentList := m[2]
	paramsPart := m[3]

	var components []string
	for _, item := range quotedItemRE.FindAllStringSubmatch(componentList, -1) {
		components = append(components, item[1])
	}

	params := SignatureParameters{Label: label, CoveredComponents: components}
	for _, pm := range paramRE.FindAllStringSubmatch(";"+strings.TrimPrefix(paramsPart, ";"), -1) {
		key := pm[1]
		value := unquoteParam(pm[2])
		switch key {
		case "keyid":
			params.KeyID = value
		case "alg":
			params.Algorithm = value
		case "nonce":
			params.Nonce = value
		case "created":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return "", SignatureParameters{}, operrors.ErrMalformedSignatureInput
			}
			params.Created = n
		case "expires":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return "", SignatureParameters{}, operrors.ErrMalformedSignatureInput
			}
			params.Expires = n
		}
	}
	if err := params.validate(); err != nil {
		return "", SignatureParameters{}, err
	}
	return label, params, nil
}

func unquoteParam(raw string) string {
	if strings.HasPrefix(raw, `"`) && strings.HasSuffix(raw, `"`) && len(raw) >= 2 {
		if unquoted, err := strconv.Unquote(raw); err == nil {
			return unquoted
		}
	}
	return raw
}

// ParseSignature parses a single Signature member (label=:BASE64:) into its
// label and decoded signature bytes.
func ParseSignature(member string) (string, []byte, error) {
	member = strings.TrimSpace(member)
	idx := strings.Index(member, "=:")
	if idx < 0 || !strings.HasSuffix(member, ":") {
		return "", nil, operrors.ErrMalformedSignatureInput
	}
	label := member[:idx]
	encoded := member[idx+2 : len(member)-1]
	sig, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, operrors.Wrap(operrors.ErrBase64Decode, err)
	}
	return label, sig, nil
}

// SplitMembers splits a comma-joined Signature-Input or Signature header
// value into its individual label=... members, respecting parenthesis and
// quote nesting so commas inside a component list or quoted string are not
// treated as member separators.
func SplitMembers(header string) []string {
	var members []string
	var depthParen, depthQuote int
	start := 0
	for i, r := range header {
		switch r {
		case '(':
			depthParen++
		case ')':
			depthParen--
		case '"':
			depthQuote = 1 - depthQuote
		case ',':
			if depthParen == 0 && depthQuote == 0 {
				members = append(members, strings.TrimSpace(header[start:i]))
				start = i + 1
			}
		}
	}
	if start < len(header) {
		members = append(members, strings.TrimSpace(header[start:]))
	}
	return members
}
