package serializer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/rzbill/pagelog/internal/pagewriter"
)

const (
	NameText      = "text"
	NameJSON      = "json"
	NameProtoJSON = "protojson"
)

// Names lists the serializers accepted by ByName.
var Names = []string{NameText, NameJSON, NameProtoJSON}

// ByName returns the serializer registered under name ("" is text).
func ByName(name string) (pagewriter.Serializer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameText:
		return Text{}, nil
	case NameJSON:
		return JSON{}, nil
	case NameProtoJSON:
		return ProtoJSON{}, nil
	default:
		return nil, fmt.Errorf("serializer: unknown serializer %q", name)
	}
}

// Text renders []byte and string verbatim, fmt.Stringer via String and
// anything else with %v. Embedded newlines are escaped as `\n`.
type Text struct{}

func (Text) Serialize(record any) ([]byte, error) {
	var b []byte
	switch v := record.(type) {
	case nil:
		return nil, fmt.Errorf("serializer: nil record")
	case []byte:
		b = append(b, v...)
	case string:
		b = append(b, v...)
	case fmt.Stringer:
		b = append(b, v.String()...)
	default:
		b = fmt.Appendf(b, "%v", v)
	}
	return terminate(escapeNewlines(b)), nil
}

// JSON encodes records with encoding/json. json.RawMessage values and
// []byte payloads holding valid JSON are compacted so they stay on one line;
// other []byte payloads are written as a JSON string of their text.
type JSON struct{}

func (JSON) Serialize(record any) ([]byte, error) {
	switch v := record.(type) {
	case json.RawMessage:
		return compactLine(v)
	case []byte:
		if json.Valid(v) {
			return compactLine(v)
		}
		record = string(v)
	}
	b, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("serializer: marshal json: %w", err)
	}
	return terminate(b), nil
}

// ProtoJSON encodes proto messages with protojson. Other values are first
// converted with structpb.NewValue, so maps, slices and scalars work too.
type ProtoJSON struct {
	// UseProtoNames emits field names as declared in the .proto file.
	UseProtoNames bool
}

func (p ProtoJSON) Serialize(record any) ([]byte, error) {
	msg, ok := record.(proto.Message)
	if !ok {
		v, err := structpb.NewValue(normalize(record))
		if err != nil {
			return nil, fmt.Errorf("serializer: convert %T: %w", record, err)
		}
		msg = v
	}
	b, err := protojson.MarshalOptions{UseProtoNames: p.UseProtoNames}.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("serializer: marshal protojson: %w", err)
	}
	// protojson output is not byte-stable; compact it so a record is one line.
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return nil, fmt.Errorf("serializer: compact protojson: %w", err)
	}
	return terminate(buf.Bytes()), nil
}

func compactLine(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, fmt.Errorf("serializer: compact json: %w", err)
	}
	return terminate(buf.Bytes()), nil
}

// normalize maps types structpb.NewValue rejects onto ones it accepts.
// A []byte holding valid JSON is decoded; any other []byte becomes a string.
func normalize(v any) any {
	switch x := v.(type) {
	case json.RawMessage:
		return normalize([]byte(x))
	case []byte:
		if json.Valid(x) {
			var decoded any
			if err := json.Unmarshal(x, &decoded); err == nil {
				return decoded
			}
		}
		return string(x)
	case fmt.Stringer:
		return x.String()
	case map[string]string:
		out := make(map[string]any, len(x))
		for k, s := range x {
			out[k] = s
		}
		return out
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	default:
		return v
	}
}

func escapeNewlines(b []byte) []byte {
	if bytes.IndexByte(b, '\n') < 0 && bytes.IndexByte(b, '\r') < 0 {
		return b
	}
	b = bytes.ReplaceAll(b, []byte("\r"), []byte(`\r`))
	return bytes.ReplaceAll(b, []byte("\n"), []byte(`\n`))
}

func terminate(b []byte) []byte { return append(b, '\n') }
