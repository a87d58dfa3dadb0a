package bridge

import (
	"github.com/vmihailenco/msgpack/v4"
)

func MsgpackMarshalPanic(val interface{}) []byte {
	data, err := msgpack.Marshal(val)
	if err != nil {
		panic(err)
	}
	return data
}

func MsgpackUnmarshal(data []byte, val interface{}) error {
	return msgpack.Unmarshal(data, val)
}
