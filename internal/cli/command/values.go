package command

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/yndnr/journalmap/internal/config"
	"github.com/yndnr/journalmap/pkg/codec"
	"github.com/yndnr/journalmap/pkg/crypto/adaptive"
)

// valuePurpose binds the derived value key to its use.
const valuePurpose = "jmapctl/values"

// newValueCodec returns the value codec selected by cfg together with the
// function that brings user input into the form the codec reads back.
func newValueCodec(cfg *config.Config) (codec.Codec[string], func(string) (string, error), error) {
	var (
		values    codec.Codec[string]
		canonical = func(s string) (string, error) { return s, nil }
	)
	switch cfg.Codec.Value {
	case "json":
		values, canonical = jsonText{}, canonicalJSON
	case "proto":
		values, canonical = protoText{}, canonicalJSON
	case "", "string":
		values = codec.String{}
	default:
		return nil, nil, fmt.Errorf("unknown value codec %q", cfg.Codec.Value)
	}

	if !cfg.Encryption.Enabled {
		return values, canonical, nil
	}

	salt, err := hex.DecodeString(cfg.Encryption.Salt)
	if err != nil {
		return nil, nil, fmt.Errorf("decode encryption salt: %w", err)
	}
	cipher, err := adaptive.FromConfig(adaptive.KeyConfig{
		Passphrase: []byte(cfg.Encryption.Passphrase),
		Salt:       salt,
		Algorithm:  adaptive.CipherType(cfg.Encryption.Algorithm),
	}, valuePurpose)
	if err != nil {
		return nil, nil, fmt.Errorf("build value cipher: %w", err)
	}
	return codec.NewSealed(values, cipher), canonical, nil
}

// canonicalJSON re-encodes a JSON document compactly with sorted object keys.
func canonicalJSON(s string) (string, error) {
	doc, err := parseJSON(s)
	if err != nil {
		return "", err
	}
	return formatJSON(doc)
}

func parseJSON(s string) (any, error) {
	var doc any
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		return nil, fmt.Errorf("value is not a JSON document: %w", err)
	}
	return doc, nil
}

func formatJSON(doc any) (string, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// jsonText stores JSON documents given as text through codec.JSON.
type jsonText struct{}

func (jsonText) Encode(w *codec.Writer, v string) error {
	doc, err := parseJSON(v)
	if err != nil {
		return err
	}
	return codec.JSON[any]{}.Encode(w, doc)
}

func (jsonText) Decode(r *codec.Reader) (string, error) {
	doc, err := codec.JSON[any]{}.Decode(r)
	if err != nil {
		return "", err
	}
	return formatJSON(doc)
}

// protoText stores JSON documents given as text as google.protobuf.Value
// messages through codec.Proto.
type protoText struct{}

func (protoText) Encode(w *codec.Writer, v string) error {
	doc, err := parseJSON(v)
	if err != nil {
		return err
	}
	msg, err := structpb.NewValue(doc)
	if err != nil {
		return fmt.Errorf("convert value: %w", err)
	}
	return codec.Proto[*structpb.Value]{}.Encode(w, msg)
}

func (protoText) Decode(r *codec.Reader) (string, error) {
	msg, err := codec.Proto[*structpb.Value]{}.Decode(r)
	if err != nil {
		return "", err
	}
	return formatJSON(msg.AsInterface())
}
