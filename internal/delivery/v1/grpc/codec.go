package grpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// JSONSubtype - content-subtype, с которым клиенты вызывают сервисы каталога.
const JSONSubtype = "json"

// jsonCodec сериализует сообщения сервисов каталога в JSON. Health и reflection
// по-прежнему используют protobuf.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return JSONSubtype
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
