package policy

import (
	"errors"
	"reflect"
	"testing"

	"github.com/beevik/etree"

	apperrors "github.com/kbukum/httppipe/errors"
	"github.com/kbukum/httppipe/pipeline"
)

func TestDeserializeFromText(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		mimeType string
		want     any
		wantErr  string
	}{
		{name: "json object", data: `{"a": 1}`, mimeType: "application/json", want: map[string]any{"a": float64(1)}},
		{name: "json array", data: `[1, "x"]`, mimeType: "application/json", want: []any{float64(1), "x"}},
		{name: "text json", data: `{"a": 1}`, mimeType: "text/json", want: map[string]any{"a": float64(1)}},
		{name: "vendor json", data: `{"b": true}`, mimeType: "application/vnd.example+json", want: map[string]any{"b": true}},
		{name: "malformed json", data: `{"a": `, mimeType: "application/json", wantErr: "JSON is invalid"},
		{name: "xml holding json", data: `{"a": 1}`, mimeType: "application/xml", want: map[string]any{"a": float64(1)}},
		{name: "neither xml nor json", data: "plain words", mimeType: "application/xml", wantErr: "XML is invalid"},
		{name: "xml holding json with markup", data: `{"k":"<b>x</b>"}`, mimeType: "application/xml", want: map[string]any{"k": "<b>x</b>"}},
		{name: "text after xml root", data: "<a/>junk", mimeType: "application/xml", wantErr: "XML is invalid"},
		{name: "two xml roots", data: "<a/><b/>", mimeType: "text/xml", wantErr: "XML is invalid"},
		{name: "plain text", data: "hello", mimeType: "text/plain", want: "hello"},
		{name: "html", data: "<p>hi</p>", mimeType: "text/html", want: "<p>hi</p>"},
		{name: "empty body", data: "", mimeType: "application/json", want: nil},
		{name: "empty body unknown type", data: "", mimeType: "application/octet-stream", want: nil},
		{name: "no mime type", data: "raw", mimeType: "", want: "raw"},
		{name: "binary", data: "\x00\x01", mimeType: "application/octet-stream", wantErr: "Cannot deserialize content-type: application/octet-stream"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DeserializeFromText(tc.data, tc.mimeType, nil)
			if tc.wantErr != "" {
				var decodeErr *pipeline.DecodeError
				if !errors.As(err, &decodeErr) {
					t.Fatalf("expected *DecodeError, got %v", err)
				}
				if decodeErr.Message != tc.wantErr {
					t.Errorf("message = %q, want %q", decodeErr.Message, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("got %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestDeserializeXML(t *testing.T) {
	got, err := DeserializeFromText(`<?xml version="1.0"?><root><item id="1">a</item></root>`, "application/xml", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc, ok := got.(*etree.Document)
	if !ok {
		t.Fatalf("expected *etree.Document, got %T", got)
	}
	if doc.Root().Tag != "root" {
		t.Errorf("root = %q", doc.Root().Tag)
	}
	if item := doc.FindElement("//item[@id='1']"); item == nil || item.Text() != "a" {
		t.Errorf("item not found in %v", doc.Root())
	}
}

func TestDeserializeXMLAllowsProlog(t *testing.T) {
	data := "<?xml version=\"1.0\"?>\n<!DOCTYPE root>\n<!-- note -->\n<root>ok</root>\n"
	got, err := DeserializeFromText(data, "application/xml", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc, ok := got.(*etree.Document)
	if !ok || doc.Root().Tag != "root" {
		t.Errorf("expected root document, got %#v", got)
	}
}

func TestDeserializeXMLMalformedCauses(t *testing.T) {
	tests := []struct {
		data string
		want error
	}{
		{"<a/>junk", errTextOutsideRoot},
		{"<a/><b/>", errManyXMLRoots},
	}
	for _, tc := range tests {
		t.Run(tc.data, func(t *testing.T) {
			_, err := DeserializeFromText(tc.data, "application/xml", nil)
			if !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want cause %v", err, tc.want)
			}
		})
	}
}

func TestDeserializeXMLErrorKeepsXMLCause(t *testing.T) {
	_, err := DeserializeFromText("plain words", "text/xml", nil)
	if !errors.Is(err, errNoXMLRoot) {
		t.Errorf("expected the XML failure as cause, got %v", err)
	}
}

func TestDecodeErrorCarriesResponse(t *testing.T) {
	resp := pipeline.NewBufferedResponse(nil, 200, pipeline.NewHeader("Content-Type", "application/json"), []byte("{bad"))
	_, err := DeserializeFromResponse(resp, "")

	var decodeErr *pipeline.DecodeError
	if !errors.As(err, &decodeErr) || decodeErr.Response != resp {
		t.Fatalf("expected DecodeError with response, got %v", err)
	}
	appErr, ok := apperrors.AsAppError(err)
	if !ok || appErr.Code != apperrors.ErrCodeDecode {
		t.Errorf("expected DECODE_ERROR, got %v", appErr)
	}
}

func TestDeserializeFromResponseInvalidUTF8(t *testing.T) {
	resp := pipeline.NewBufferedResponse(nil, 200, pipeline.NewHeader("Content-Type", "text/plain"), []byte{0x61, 0xFF, 0x62})
	_, err := DeserializeFromResponse(resp, "")

	var decodeErr *pipeline.DecodeError
	if !errors.As(err, &decodeErr) || decodeErr.Response != resp {
		t.Fatalf("expected DecodeError with response, got %v", err)
	}
	if decodeErr.Message != "Response body could not be decoded as text" {
		t.Errorf("message = %q", decodeErr.Message)
	}
}

func TestContentDecodePolicy(t *testing.T) {
	tests := []struct {
		name    string
		header  *pipeline.Header
		body    string
		call    []pipeline.CallOption
		want    any
		wantSet bool
		wantErr bool
	}{
		{
			name:    "json",
			header:  pipeline.NewHeader("Content-Type", "application/json; charset=utf-8"),
			body:    `{"a": 1}`,
			want:    map[string]any{"a": float64(1)},
			wantSet: true,
		},
		{
			name:    "missing content type defaults to json",
			body:    `{"a": 1}`,
			want:    map[string]any{"a": float64(1)},
			wantSet: true,
		},
		{
			name:    "case insensitive content type",
			header:  pipeline.NewHeader("Content-Type", "Application/JSON"),
			body:    `[]`,
			want:    []any{},
			wantSet: true,
		},
		{
			name:    "utf-8 bom stripped",
			header:  pipeline.NewHeader("Content-Type", "application/json"),
			body:    "\xef\xbb\xbf{\"a\": 1}",
			want:    map[string]any{"a": float64(1)},
			wantSet: true,
		},
		{
			name:    "encoding option",
			header:  pipeline.NewHeader("Content-Type", "text/plain"),
			body:    "caf\xe9",
			call:    []pipeline.CallOption{pipeline.WithResponseEncoding("latin1")},
			want:    "café",
			wantSet: true,
		},
		{
			name:    "empty body",
			header:  pipeline.NewHeader("Content-Type", "application/json"),
			want:    nil,
			wantSet: true,
		},
		{
			name:   "stream leaves body alone",
			header: pipeline.NewHeader("Content-Type", "application/json"),
			body:   `{"a": 1}`,
			call:   []pipeline.CallOption{pipeline.WithStream(true)},
		},
		{
			name:    "malformed json fails the call",
			header:  pipeline.NewHeader("Content-Type", "application/json"),
			body:    `{"a": `,
			wantErr: true,
		},
		{
			name:    "binary fails the call",
			header:  pipeline.NewHeader("Content-Type", "application/octet-stream"),
			body:    "\x00",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pl := pipeline.New(staticTransport(200, tc.header, tc.body), NewContentDecode(""))
			req := newCall(t, "GET", "https://example.com", tc.call...)
			resp, err := pl.Send(req)
			if tc.wantErr {
				var decodeErr *pipeline.DecodeError
				if !errors.As(err, &decodeErr) {
					t.Fatalf("expected DecodeError, got %v", err)
				}
				if resp != nil {
					t.Error("failed call should not return a response")
				}
				return
			}
			if err != nil {
				t.Fatalf("Send: %v", err)
			}
			got, ok := resp.Decoded()
			if ok != tc.wantSet {
				t.Fatalf("decoded present = %v, want %v", ok, tc.wantSet)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("decoded = %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestContentDecodeInstanceEncoding(t *testing.T) {
	p := NewContentDecode("windows-1252")
	req := newCall(t, "GET", "https://example.com")
	if err := p.OnRequest(req); err != nil {
		t.Fatalf("OnRequest: %v", err)
	}
	if v, _ := req.Context.Value(pipeline.KeyResponseEncoding); v != "windows-1252" {
		t.Errorf("response_encoding = %v", v)
	}

	req = newCall(t, "GET", "https://example.com", pipeline.WithResponseEncoding("utf-16"))
	_ = p.OnRequest(req)
	if v, _ := req.Context.Value(pipeline.KeyResponseEncoding); v != "utf-16" {
		t.Errorf("per call response_encoding = %v", v)
	}
	if req.Context.Options.Has(pipeline.OptionResponseEncoding) {
		t.Error("response_encoding option should be consumed")
	}
}
