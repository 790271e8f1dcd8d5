package codec

import "github.com/vmihailenco/msgpack/v5"

// Msgpack serializes values with vmihailenco/msgpack/v5. The zero value is
// ready to use. More compact than JSON; mind the `msgpack:"..."` struct tags
// when field names matter on the wire.
type Msgpack[V any] struct{}

func (Msgpack[V]) Encode(v V) ([]byte, error) {
	return msgpack.Marshal(v)
}
func (Msgpack[V]) Decode(b []byte) (V, error) {
	var v V
	err := msgpack.Unmarshal(b, &v)
	return v, err
}
