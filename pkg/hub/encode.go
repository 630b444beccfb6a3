package hub

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	contentTypeKey     = "content-type"
	contentTypeMsgpack = "application/msgpack"
)

// IsObject reports whether msg carries a SendObject payload.
func IsObject(msg *message.Message) bool {
	return msg.Metadata.Get(contentTypeKey) == contentTypeMsgpack
}

// DecodeObject decodes a SendObject payload into v.
func DecodeObject(msg *message.Message, v any) error {
	return errors.Wrap(msgpack.Unmarshal(msg.Payload, v), "decode object")
}
