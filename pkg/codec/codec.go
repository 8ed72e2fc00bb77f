package codec

import (
	"encoding/json"
	"fmt"
	"path"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

const (
	FormatJSON = "json"
	FormatCBOR = "cbor"
)

var decMode cbor.DecMode

func init() {
	var err error
	decMode, err = cbor.DecOptions{
		// Artifacts are string-keyed; decode untyped maps as map[string]any
		// so they behave like their JSON counterparts.
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// FormatFor picks the codec from a file or object name. Unknown extensions are JSON.
func FormatFor(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".cbor":
		return FormatCBOR
	default:
		return FormatJSON
	}
}

// Unmarshal decodes data in the given format into v.
func Unmarshal(format string, data []byte, v any) error {
	switch format {
	case FormatJSON, "":
		return json.Unmarshal(data, v)
	case FormatCBOR:
		return decMode.Unmarshal(data, v)
	default:
		return fmt.Errorf("codec: unsupported format %q", format)
	}
}

// MarshalCBOR encodes v with Core Deterministic Encoding.
func MarshalCBOR(v any) ([]byte, error) {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	return em.Marshal(v)
}
