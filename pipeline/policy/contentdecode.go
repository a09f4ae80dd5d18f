package policy

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/beevik/etree"
	"github.com/goccy/go-json"

	"github.com/kbukum/httppipe/pipeline"
)

// DefaultMIMEType is assumed when a response has no content type.
const DefaultMIMEType = "application/json"

var jsonMIMEPattern = regexp.MustCompile(`^(application|text)/([0-9a-z+.-]+\+)?json$`)

var (
	errNoXMLRoot       = errors.New("XML document has no root element")
	errManyXMLRoots    = errors.New("XML document has more than one root element")
	errTextOutsideRoot = errors.New("XML document has text outside the root element")
)

// ContentDecode parses buffered response bodies according to their content
// type and stores the result under pipeline.KeyDeserializedData. JSON
// decodes to any, XML to an *etree.Document and text/* to a string.
// Streamed calls are left untouched.
type ContentDecode struct {
	pipeline.BasePolicy
	encoding string
}

// NewContentDecode creates the policy. encoding names the text encoding of
// response bodies; empty means the content type's charset, then UTF-8.
func NewContentDecode(encoding string) *ContentDecode {
	return &ContentDecode{encoding: encoding}
}

func (p *ContentDecode) OnRequest(req *pipeline.Request) error {
	encoding := p.encoding
	if v, ok := req.Context.Options.PopString(pipeline.OptionResponseEncoding); ok {
		encoding = v
	}
	if encoding != "" {
		req.Context.Set(pipeline.KeyResponseEncoding, encoding)
	}
	return nil
}

func (p *ContentDecode) OnResponse(req *pipeline.Request, resp *pipeline.Response) error {
	if req.Context.Stream() {
		return nil
	}
	data, err := DeserializeFromResponse(resp, responseEncoding(req))
	if err != nil {
		return err
	}
	req.Context.Set(pipeline.KeyDeserializedData, data)
	return nil
}

// DeserializeFromResponse decodes resp's body using its content type,
// defaulting to JSON when the header is missing.
func DeserializeFromResponse(resp *pipeline.Response, encoding string) (any, error) {
	mimeType := DefaultMIMEType
	if ct := resp.ContentType(); ct != "" {
		mediaType, _, _ := strings.Cut(ct, ";")
		mimeType = strings.ToLower(strings.TrimSpace(mediaType))
	}

	text, err := resp.Text(encoding)
	if err != nil {
		return nil, &pipeline.DecodeError{Message: "Response body could not be decoded as text", Response: resp, Err: err}
	}
	return DeserializeFromText(text, mimeType, resp)
}

// DeserializeFromText decodes data by MIME type. Empty data decodes to nil
// for every type and an empty mimeType returns data unchanged. resp, when
// given, is attached to any DecodeError.
//
// An XML body that fails to parse is retried as JSON. If that also fails
// the error reports the XML failure.
func DeserializeFromText(data, mimeType string, resp *pipeline.Response) (any, error) {
	if data == "" {
		return nil, nil
	}
	if mimeType == "" {
		return data, nil
	}

	switch {
	case jsonMIMEPattern.MatchString(mimeType):
		v, err := parseJSON(data)
		if err != nil {
			return nil, &pipeline.DecodeError{Message: "JSON is invalid", Response: resp, Err: err}
		}
		return v, nil
	case strings.Contains(mimeType, "xml"):
		doc, xmlErr := parseXML(data)
		if xmlErr == nil {
			return doc, nil
		}
		if v, err := parseJSON(data); err == nil {
			return v, nil
		}
		return nil, &pipeline.DecodeError{Message: "XML is invalid", Response: resp, Err: xmlErr}
	case strings.HasPrefix(mimeType, "text/"):
		return data, nil
	}
	return nil, &pipeline.DecodeError{
		Message:  fmt.Sprintf("Cannot deserialize content-type: %s", mimeType),
		Response: resp,
	}
}

func parseJSON(data string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return nil, err
	}
	return v, nil
}

func parseXML(data string) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(data); err != nil {
		return nil, err
	}
	if err := checkWellFormed(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// checkWellFormed rejects documents etree reads leniently: exactly one root
// element is allowed, and only whitespace text may sit beside it.
func checkWellFormed(doc *etree.Document) error {
	roots, strayText := 0, false
	for _, tok := range doc.Child {
		switch t := tok.(type) {
		case *etree.Element:
			roots++
		case *etree.CharData:
			if strings.TrimSpace(t.Data) != "" {
				strayText = true
			}
		}
	}
	switch {
	case roots == 0:
		return errNoXMLRoot
	case roots > 1:
		return errManyXMLRoots
	case strayText:
		return errTextOutsideRoot
	}
	return nil
}
