package caster

import "encoding/json"

// ChannelCaster converts values to and from the string form they travel
// in on websocket frames.
type ChannelCaster[T any] interface {
	From(string) (T, error)
	To(T) (string, error)
}

type JSONChannelCaster[T any] struct{}

func (jc JSONChannelCaster[T]) From(data string) (T, error) {
	var v T
	err := json.Unmarshal([]byte(data), &v)
	return v, err
}

func (jc JSONChannelCaster[T]) To(v T) (string, error) {
	data, err := json.Marshal(v)
	return string(data), err
}

// Recast re-marshals an untyped decoded value (a JSON message body
// decoded into any) into T.
func Recast[T any](body any) (T, error) {
	var v T
	data, err := json.Marshal(body)
	if err != nil {
		return v, err
	}
	err = json.Unmarshal(data, &v)
	return v, err
}
