// Package irpb encodes a cached compilation artifact (the quadruple
// listing plus the rendered assembly) into a small versioned protobuf
// wire-format message, by hand, using google.golang.org/protobuf's
// low-level protowire encoder rather than protoc-generated code — no
// .proto/protoc toolchain runs in this environment, so the message
// schema below is the field-number contract that would otherwise live
// in a .proto file.
//
// Wire schema (field numbers are part of the cache's on-disk contract,
// do not renumber):
//
//	1: uint32  schema version
//	2: repeated message Quad { 1: string op, 2: string arg1, 3: string arg2, 4: string result }
//	3: string  assembly listing
//	4: string  build id
package irpb

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// SchemaVersion is bumped whenever the field layout below changes
// incompatibly; Decode rejects anything newer than what it understands.
const SchemaVersion = 1

// Quad mirrors internal/quad.Quad without importing it, keeping the
// serialization format decoupled from the in-memory IR's field order.
// The json tags double this struct as the `--json` rendering of the
// quadruple listing, alongside its protobuf wire encoding below.
type Quad struct {
	Op     string `json:"op"`
	Arg1   string `json:"arg1"`
	Arg2   string `json:"arg2"`
	Result string `json:"result"`
}

// Artifact is the cached pair: the quadruple listing a build produced,
// the assembly rendered from it, and the build ID that produced both.
type Artifact struct {
	Quads    []Quad
	Assembly string
	BuildID  string
}

func encodeQuad(q Quad) []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.BytesType)
	b = protowire.AppendString(b, q.Op)
	b = protowire.AppendTag(b, 2, protowire.BytesType)
	b = protowire.AppendString(b, q.Arg1)
	b = protowire.AppendTag(b, 3, protowire.BytesType)
	b = protowire.AppendString(b, q.Arg2)
	b = protowire.AppendTag(b, 4, protowire.BytesType)
	b = protowire.AppendString(b, q.Result)
	return b
}

func decodeQuad(b []byte) (Quad, error) {
	var q Quad
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return q, fmt.Errorf("irpb: malformed quad tag")
		}
		b = b[n:]
		if typ != protowire.BytesType {
			return q, fmt.Errorf("irpb: unexpected wire type %v in quad", typ)
		}
		v, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return q, fmt.Errorf("irpb: malformed quad field %d", num)
		}
		b = b[n:]
		s := string(v)
		switch num {
		case 1:
			q.Op = s
		case 2:
			q.Arg1 = s
		case 3:
			q.Arg2 = s
		case 4:
			q.Result = s
		}
	}
	return q, nil
}

// Encode renders an Artifact as a versioned protobuf wire-format
// message.
func Encode(a Artifact) []byte {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.VarintType)
	b = protowire.AppendVarint(b, SchemaVersion)
	for _, q := range a.Quads {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, encodeQuad(q))
	}
	b = protowire.AppendTag(b, 3, protowire.BytesType)
	b = protowire.AppendString(b, a.Assembly)
	b = protowire.AppendTag(b, 4, protowire.BytesType)
	b = protowire.AppendString(b, a.BuildID)
	return b
}

// Decode parses bytes previously produced by Encode.
func Decode(data []byte) (Artifact, error) {
	var a Artifact
	var sawVersion bool
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return a, fmt.Errorf("irpb: malformed top-level tag")
		}
		data = data[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return a, fmt.Errorf("irpb: malformed version field")
			}
			data = data[n:]
			if v > SchemaVersion {
				return a, fmt.Errorf("irpb: cached artifact schema version %d newer than supported %d", v, SchemaVersion)
			}
			sawVersion = true
		case 2:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return a, fmt.Errorf("irpb: malformed quad field")
			}
			data = data[n:]
			q, err := decodeQuad(v)
			if err != nil {
				return a, err
			}
			a.Quads = append(a.Quads, q)
		case 3:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return a, fmt.Errorf("irpb: malformed assembly field")
			}
			data = data[n:]
			a.Assembly = string(v)
		case 4:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return a, fmt.Errorf("irpb: malformed build id field")
			}
			data = data[n:]
			a.BuildID = string(v)
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return a, fmt.Errorf("irpb: malformed unknown field %d", num)
			}
			data = data[n:]
		}
	}
	if !sawVersion {
		return a, fmt.Errorf("irpb: missing schema version field")
	}
	return a, nil
}
