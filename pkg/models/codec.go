package models

import (
	"github.com/mailru/easyjson/jlexer"
	"github.com/mailru/easyjson/jwriter"
)

// easyjson codecs. Requests implement Unmarshaler, responses Marshaler;
// MarshalJSON/UnmarshalJSON route echo's encoding/json serializer through them.

func marshal(v interface{ MarshalEasyJSON(*jwriter.Writer) }) ([]byte, error) {
	w := jwriter.Writer{}
	v.MarshalEasyJSON(&w)
	return w.Buffer.BuildBytes(), w.Error
}

func unmarshal(data []byte, v interface{ UnmarshalEasyJSON(*jlexer.Lexer) }) error {
	r := jlexer.Lexer{Data: data}
	v.UnmarshalEasyJSON(&r)
	return r.Error()
}

// decodeObject walks the fields of a JSON object, calling field for every
// non-null member. Unknown keys must be skipped by field.
func decodeObject(in *jlexer.Lexer, field func(key string)) {
	isTopLevel := in.IsStart()
	if in.IsNull() {
		if isTopLevel {
			in.Consumed()
		}
		in.Skip()
		return
	}
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeFieldName(false)
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		field(key)
		in.WantComma()
	}
	in.Delim('}')
	if isTopLevel {
		in.Consumed()
	}
}

func decodeStrings(in *jlexer.Lexer) []string {
	out := []string{}
	in.Delim('[')
	for !in.IsDelim(']') {
		out = append(out, in.String())
		in.WantComma()
	}
	in.Delim(']')
	return out
}

func encodeStrings(w *jwriter.Writer, v []string) {
	w.RawByte('[')
	for i, s := range v {
		if i > 0 {
			w.RawByte(',')
		}
		w.String(s)
	}
	w.RawByte(']')
}

// DecodeStringArray parses a top-level JSON array of strings.
func DecodeStringArray(data []byte) ([]string, error) {
	in := jlexer.Lexer{Data: data}
	out := decodeStrings(&in)
	in.Consumed()
	return out, in.Error()
}

func (v *GenerateRequest) UnmarshalEasyJSON(in *jlexer.Lexer) {
	decodeObject(in, func(key string) {
		switch key {
		case "prompt":
			v.Prompt = in.String()
		case "size":
			v.Size = in.String()
		case "quality":
			v.Quality = in.String()
		case "background":
			v.Background = in.String()
		default:
			in.SkipRecursive()
		}
	})
}

func (v *GenerateRequest) UnmarshalJSON(data []byte) error { return unmarshal(data, v) }

func (v *EditRequest) UnmarshalEasyJSON(in *jlexer.Lexer) {
	decodeObject(in, func(key string) {
		switch key {
		case "prompt":
			v.Prompt = in.String()
		case "size":
			v.Size = in.String()
		case "quality":
			v.Quality = in.String()
		case "images":
			v.Images = decodeStrings(in)
		case "mask":
			v.Mask = in.String()
		default:
			in.SkipRecursive()
		}
	})
}

func (v *EditRequest) UnmarshalJSON(data []byte) error { return unmarshal(data, v) }

func (v *PromptRequest) UnmarshalEasyJSON(in *jlexer.Lexer) {
	decodeObject(in, func(key string) {
		switch key {
		case "idea":
			v.Idea = in.String()
		case "style":
			v.Style = in.String()
		case "mood":
			v.Mood = in.String()
		default:
			in.SkipRecursive()
		}
	})
}

func (v *PromptRequest) UnmarshalJSON(data []byte) error { return unmarshal(data, v) }

func (v GenerateResponse) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawString(`{"success":`)
	w.Bool(v.Success)
	w.RawString(`,"imageUrl":`)
	w.String(v.ImageURL)
	w.RawByte('}')
}

func (v GenerateResponse) MarshalJSON() ([]byte, error) { return marshal(v) }

func (v ImageEntry) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawString(`{"filename":`)
	w.String(v.Filename)
	w.RawString(`,"url":`)
	w.String(v.URL)
	w.RawString(`,"timestamp":`)
	w.Int64(v.Timestamp)
	w.RawByte('}')
}

func (v ImageEntry) MarshalJSON() ([]byte, error) { return marshal(v) }

func (v ListResponse) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawString(`{"success":`)
	w.Bool(v.Success)
	w.RawString(`,"images":[`)
	for i, img := range v.Images {
		if i > 0 {
			w.RawByte(',')
		}
		img.MarshalEasyJSON(w)
	}
	w.RawString(`]}`)
}

func (v ListResponse) MarshalJSON() ([]byte, error) { return marshal(v) }

func (v UploadResponse) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawString(`{"success":`)
	w.Bool(v.Success)
	w.RawString(`,"filename":`)
	w.String(v.Filename)
	w.RawString(`,"url":`)
	w.String(v.URL)
	w.RawByte('}')
}

func (v UploadResponse) MarshalJSON() ([]byte, error) { return marshal(v) }

func (v PromptResponse) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawString(`{"success":`)
	w.Bool(v.Success)
	w.RawString(`,"prompts":`)
	encodeStrings(w, v.Prompts)
	w.RawByte('}')
}

func (v PromptResponse) MarshalJSON() ([]byte, error) { return marshal(v) }

func (v ErrorResponse) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawString(`{"error":`)
	w.String(v.Error)
	w.RawByte('}')
}

func (v ErrorResponse) MarshalJSON() ([]byte, error) { return marshal(v) }
